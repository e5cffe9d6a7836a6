// Package history keeps the results of override runs so they can be
// listed and inspected later.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/psantana5/vaultmod/internal/report"
)

// ErrNotFound is returned for unknown run ids
var ErrNotFound = errors.New("run not found")

// RunSummary is the listing form of a stored run
type RunSummary struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	Source    string        `json:"source" yaml:"source"`
	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration_ns"`
	Applied   int           `json:"applied" yaml:"applied"`
	Failed    int           `json:"failed" yaml:"failed"`
}

// Store persists run results
type Store interface {
	SaveRun(ctx context.Context, r *report.Result) error
	GetRun(ctx context.Context, runID string) (*report.Result, error)
	// ListRuns returns up to limit runs, newest first
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	Close() error
}

// Config selects and configures a store
type Config struct {
	Type string // "sqlite" (default), "postgres" or "memory"
	DSN  string // file path for sqlite, connection string for postgres

	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// NewStore creates a store based on configuration
func NewStore(cfg Config) (Store, error) {
	switch cfg.Type {
	case "sqlite", "":
		path := cfg.DSN
		if path == "" {
			path = "vaultmod-history.db"
		}
		return NewSQLiteStore(path)
	case "postgres", "postgresql":
		return NewPostgresStore(cfg)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported history store %q", cfg.Type)
	}
}

func summarize(r *report.Result) RunSummary {
	return RunSummary{
		RunID:     r.RunID,
		Source:    r.Source,
		StartTime: r.StartTime,
		Duration:  r.Duration,
		Applied:   len(r.Applied),
		Failed:    len(r.Failures),
	}
}
