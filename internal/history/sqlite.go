package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps run history in a local SQLite file
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore opens (creating if needed) the history database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	// WAL with a busy timeout so a reader does not fail a concurrent apply
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &SQLiteStore{sqlStore{db: db}}
	if err := s.initSchema(context.Background(), "DATETIME"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}
