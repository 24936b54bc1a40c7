package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/cloudinary"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/config"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/docstore"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/httpapi"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/identity"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/kvstore"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/portal"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/queue"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/store"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/textgen"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("api server failed: %v", err)
	}
}

func run(cfg config.App) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var db *store.DB
	if cfg.StoreBackend == "postgres" {
		var err error
		db, err = store.NewDB(cfg.DatabaseURL)
		if err != nil {
			log.Printf("warning: db not reachable: %v", err)
		}
		defer func() {
			_ = db.Close()
		}()
	}

	var redisClient *store.Redis
	if cfg.BusBackend == "redis" || cfg.QueueBackend == "redis" {
		redisClient = store.NewRedis(cfg.RedisAddr)
	}

	var backend kvstore.Backend
	if cfg.StoreBackend == "postgres" && db != nil {
		pg := kvstore.NewPostgresBackend(db.Client)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Printf("warning: state schema not ensured: %v", err)
		}
		backend = pg
	} else {
		backend = kvstore.NewMemoryBackend()
	}

	var bus kvstore.Bus
	if cfg.BusBackend == "redis" && redisClient != nil {
		bus = kvstore.NewRedisBus(redisClient.Client, "")
	} else {
		bus = kvstore.NewMemoryBus()
	}

	var q queue.Queue
	if cfg.QueueBackend == "memory" || redisClient == nil {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "")
	}

	p := portal.New(backend, bus, q)
	if err := p.Load(ctx); err != nil {
		return err
	}
	if err := p.Watch(ctx); err != nil {
		return err
	}

	idClient := identity.New(cfg.IdentityURL, cfg.IdentitySkip)
	docs := docstore.New(cfg.DocstoreURL, cfg.DocstoreSkip)
	gen := textgen.New(cfg.TextGenURL, cfg.TextGenSkip)

	var cdnClient *cloudinary.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cdnClient = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("Cloudinary not configured (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET not set)")
	}

	api := httpapi.New(cfg, p, idClient, docs, gen, cdnClient, db, redisClient)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      api.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
