package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/psantana5/vaultmod/pkg/retry"
)

// PostgresStore keeps run history in PostgreSQL, for teams sharing one
// history across machines
type PostgresStore struct {
	sqlStore
}

// NewPostgresStore connects and creates the schema if needed
func NewPostgresStore(cfg Config) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, errors.New("PostgreSQL DSN is required")
	}
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 5
	}
	db.SetMaxOpenConns(maxOpen)
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = 5 * time.Minute
	}
	db.SetConnMaxLifetime(lifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := retry.Do(ctx, retry.DefaultConfig(), db.PingContext); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{sqlStore{db: db, numbered: true}}
	if err := s.initSchema(ctx, "TIMESTAMPTZ"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}
