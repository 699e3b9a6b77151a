package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"

	"learning-games-service/internal/domain"
)

const createProgressTable = `
CREATE TABLE IF NOT EXISTS learner_progress (
    learner_id TEXT PRIMARY KEY,
    data       TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`

// ProgressRepository persists progress documents in a local SQLite file. It backs
// single-node deployments and the CLI.
type ProgressRepository struct {
	db  *sql.DB
	now func() time.Time
}

// Open connects to the SQLite database at path, creating the file and table if needed.
func Open(path string) (*ProgressRepository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(createProgressTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &ProgressRepository{db: db, now: time.Now}, nil
}

func (r *ProgressRepository) Close() error {
	return r.db.Close()
}

func (r *ProgressRepository) Load(ctx context.Context, learnerID string) ([]byte, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM learner_progress WHERE learner_id = ?`, learnerID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return []byte(data), nil
}

func (r *ProgressRepository) Save(ctx context.Context, learnerID string, data []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO learner_progress (learner_id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(learner_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		learnerID, string(data), r.now().UTC())
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
