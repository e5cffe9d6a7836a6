package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/psantana5/vaultmod/internal/report"
)

// sqlStore is the database/sql implementation shared by the SQLite and
// PostgreSQL stores; they differ in placeholders and column types
type sqlStore struct {
	db       *sql.DB
	numbered bool // $1 placeholders instead of ?
}

func (s *sqlStore) initSchema(ctx context.Context, timeType string) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		start_time ` + timeType + ` NOT NULL,
		end_time ` + timeType + ` NOT NULL,
		duration_ns BIGINT NOT NULL,
		applied INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		outcomes TEXT NOT NULL,
		failures TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_start_time ON runs(start_time);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// rebind rewrites ? placeholders for drivers that number them
func (s *sqlStore) rebind(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (s *sqlStore) SaveRun(ctx context.Context, r *report.Result) error {
	outcomes, err := json.Marshal(r.Applied)
	if err != nil {
		return fmt.Errorf("failed to encode outcomes: %w", err)
	}
	failures, err := json.Marshal(r.Failures)
	if err != nil {
		return fmt.Errorf("failed to encode failures: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM runs WHERE run_id = ?`), r.RunID); err != nil {
		return fmt.Errorf("failed to replace run: %w", err)
	}
	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO runs (run_id, source, start_time, end_time, duration_ns, applied, failed, outcomes, failures)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.RunID, r.Source, r.StartTime.UTC(), r.EndTime.UTC(), int64(r.Duration),
		len(r.Applied), len(r.Failures), string(outcomes), string(failures),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return tx.Commit()
}

func (s *sqlStore) GetRun(ctx context.Context, runID string) (*report.Result, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT run_id, source, start_time, end_time, duration_ns, outcomes, failures
		FROM runs WHERE run_id = ?`), runID)

	var (
		r                  report.Result
		duration           int64
		outcomes, failures string
	)
	err := row.Scan(&r.RunID, &r.Source, &r.StartTime, &r.EndTime, &duration, &outcomes, &failures)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	r.Duration = time.Duration(duration)
	if err := json.Unmarshal([]byte(outcomes), &r.Applied); err != nil {
		return nil, fmt.Errorf("failed to decode outcomes: %w", err)
	}
	if err := json.Unmarshal([]byte(failures), &r.Failures); err != nil {
		return nil, fmt.Errorf("failed to decode failures: %w", err)
	}
	return &r, nil
}

func (s *sqlStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT run_id, source, start_time, duration_ns, applied, failed
		FROM runs ORDER BY start_time DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			sum      RunSummary
			duration int64
		)
		if err := rows.Scan(&sum.RunID, &sum.Source, &sum.StartTime, &duration, &sum.Applied, &sum.Failed); err != nil {
			return nil, err
		}
		sum.Duration = time.Duration(duration)
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
