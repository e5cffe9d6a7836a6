package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/psantana5/vaultmod/internal/report"
	"github.com/psantana5/vaultmod/pkg/models"
)

func sampleRun(source string, start time.Time) *report.Result {
	r := report.NewResult(source)
	r.StartTime = start
	r.AddOutcome(report.Outcome{Record: "cars/m3", Field: "class", Type: "EnumWrapper<CarClass>", Literal: "0x1", Value: "A", Variant: "enum"})
	r.AddFailure("cars/m3", "speed", "fast", models.NewFormatError("coerce", "float32", "fast", "not a valid float32 literal", nil))
	r.EndTime = start.Add(time.Millisecond)
	r.Duration = time.Millisecond
	return r
}

// exercise runs the same checks against every Store implementation
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	older := sampleRun("a.yaml", base)
	newer := sampleRun("b.yaml", base.Add(time.Hour))
	for _, r := range []*report.Result{older, newer} {
		if err := s.SaveRun(ctx, r); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}
	// saving again replaces
	if err := s.SaveRun(ctx, older); err != nil {
		t.Fatalf("SaveRun again: %v", err)
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != newer.RunID {
		t.Fatalf("ListRuns = %+v, want newest first", runs)
	}
	if runs[1].Applied != 1 || runs[1].Failed != 1 || runs[1].Duration != time.Millisecond {
		t.Errorf("summary %+v", runs[1])
	}

	limited, err := s.ListRuns(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Errorf("ListRuns(1) = %v, %v", limited, err)
	}

	got, err := s.GetRun(ctx, older.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Source != "a.yaml" || !got.StartTime.Equal(base) {
		t.Errorf("run header %+v", got)
	}
	if len(got.Applied) != 1 || got.Applied[0].Value != "A" {
		t.Errorf("applied %+v", got.Applied)
	}
	if len(got.Failures) != 1 || got.Failures[0].Kind != "format" {
		t.Errorf("failures %+v", got.Failures)
	}

	if _, err := s.GetRun(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewStore(Config{Type: "sqlite", DSN: filepath.Join(t.TempDir(), "history.db")})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()
	exercise(t, s)
}

// Set DATABASE_DSN to run against a real PostgreSQL
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		t.Skip("Skipping PostgreSQL integration test: DATABASE_DSN not set")
	}
	s, err := NewStore(Config{Type: "postgres", DSN: dsn})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestRebind(t *testing.T) {
	s := &sqlStore{numbered: true}
	if got := s.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Errorf("rebind = %q", got)
	}
	if got := (&sqlStore{}).rebind("a = ?"); got != "a = ?" {
		t.Errorf("rebind without numbering = %q", got)
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore(Config{Type: "mongo"}); err == nil {
		t.Error("expected error")
	}
}
