package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/config"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/docstore"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/kvstore"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/portal"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/queue"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/store"
)

// maxAttempts caps reconcile retries; after that the message is
// dropped and the local copy stays authoritative.
const maxAttempts = 3

// Reconciler mirrors collection snapshots to the document store and
// runs the overdue-fee sweep. It is the asynchronous half of the
// cache-aside pattern: the API mutates locally and synchronously, this
// process converges the external copy.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	backend := kvstore.Backend(kvstore.NewPostgresBackend(db.Client))
	if cfg.StoreBackend == "memory" {
		backend = kvstore.NewMemoryBackend()
	}

	var bus kvstore.Bus
	if cfg.BusBackend == "redis" {
		bus = kvstore.NewRedisBus(redisClient.Client, "")
	} else {
		bus = kvstore.NewMemoryBus()
	}

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "")
	}

	docs := docstore.New(cfg.DocstoreURL, cfg.DocstoreSkip)

	p := portal.New(backend, bus, q)
	if err := p.Load(ctx); err != nil {
		log.Fatalf("state load failed: %v", err)
	}
	if err := p.Watch(ctx); err != nil {
		log.Fatalf("state watch failed: %v", err)
	}

	go sweepOverdue(ctx, p, cfg.OverdueSweep)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("reconciler started, waiting for messages...")
	for msg := range messages {
		if msg.Type != portal.MessageReconcile {
			continue
		}

		var req portal.ReconcileRequest
		if err := json.Unmarshal(msg.Body, &req); err != nil {
			log.Printf("dropping malformed reconcile message: %v", err)
			continue
		}

		if err := mirror(ctx, backend, docs, cfg.SchoolID, req.Key); err != nil {
			req.Attempt++
			if req.Attempt >= maxAttempts {
				log.Printf("reconcile %s failed after %d attempts, dropping: %v", req.Key, req.Attempt, err)
				continue
			}
			log.Printf("reconcile %s failed (attempt %d), requeueing: %v", req.Key, req.Attempt, err)
			body, _ := json.Marshal(req)
			if perr := q.Publish(ctx, queue.Message{Type: portal.MessageReconcile, Body: body}); perr != nil {
				log.Printf("requeue %s failed: %v", req.Key, perr)
			}
			continue
		}
		log.Printf("reconciled %s", req.Key)

		time.Sleep(10 * time.Millisecond)
	}

	log.Println("reconciler stopped")
}

// mirror copies one collection's current snapshot to the document
// store. The whole value is replaced, never merged, keeping the
// external copy on the same last-write-wins terms as the local one.
func mirror(ctx context.Context, backend kvstore.Backend, docs *docstore.Client, schoolID, key string) error {
	raw, found, err := backend.Load(ctx, key)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	return docs.Set(ctx, "schools/"+schoolID+"/state", docID(key), map[string]any{
		"key":       key,
		"value":     json.RawMessage(raw),
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
	}, false)
}

func docID(key string) string {
	return strings.ReplaceAll(key, ":", "-")
}

// sweepOverdue periodically flips unpaid past-due fees to overdue.
func sweepOverdue(ctx context.Context, p *portal.Portal, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			changed, err := p.Students.MarkOverdue(ctx, now)
			if err != nil {
				log.Printf("overdue sweep failed: %v", err)
				continue
			}
			if changed > 0 {
				log.Printf("overdue sweep marked %d fee(s)", changed)
			}
		case <-ctx.Done():
			return
		}
	}
}
