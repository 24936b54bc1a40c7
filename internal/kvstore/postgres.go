package kvstore

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresBackend persists each key's JSON value as a row in the
// portal_state table.
type PostgresBackend struct {
	db *sql.DB
}

// NewPostgresBackend creates a backend over an open connection pool.
func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// EnsureSchema creates the state table when it does not exist.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS portal_state (
			key        TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// Load returns the stored value for key.
func (b *PostgresBackend) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var raw []byte
	row := b.db.QueryRowContext(ctx, `SELECT value FROM portal_state WHERE key = $1`, key)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

// Save upserts the value for key. The whole value is replaced, never
// merged, so the last writer wins at collection granularity.
func (b *PostgresBackend) Save(ctx context.Context, key string, value []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO portal_state (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	return err
}
