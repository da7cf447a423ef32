package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Item statuses recorded per processed file.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one invocation of a batch command.
type Run struct {
	ID        string
	Command   string
	StartedAt time.Time
	EndedAt   time.Time
	Succeeded int
	Failed    int
	Skipped   int
}

// Item is one file processed within a run.
type Item struct {
	RunID        string
	Source       string
	Output       string
	Status       string
	Detail       string
	FallbackUsed bool
	Elapsed      time.Duration
}

// Open initializes or connects to the journal database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) applyMigrations(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
            id TEXT PRIMARY KEY,
            command TEXT NOT NULL,
            started_at TEXT NOT NULL,
            ended_at TEXT,
            succeeded INTEGER NOT NULL DEFAULT 0,
            failed INTEGER NOT NULL DEFAULT 0,
            skipped INTEGER NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS run_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
            source TEXT NOT NULL,
            output TEXT,
            status TEXT NOT NULL,
            detail TEXT,
            fallback_used INTEGER NOT NULL DEFAULT 0,
            elapsed_ms INTEGER NOT NULL DEFAULT 0
        )`,
		`CREATE INDEX IF NOT EXISTS idx_run_items_run_id ON run_items(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}

// BeginRun records the start of a batch run and returns its identifier.
func (s *Store) BeginRun(ctx context.Context, command string) (string, error) {
	id := uuid.NewString()
	started := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, started_at) VALUES (?, ?, ?)`,
		id, command, started)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RecordItem persists the outcome of one processed file.
func (s *Store) RecordItem(ctx context.Context, item Item) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_items (run_id, source, output, status, detail, fallback_used, elapsed_ms)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.RunID, item.Source, item.Output, item.Status, item.Detail,
		boolToInt(item.FallbackUsed), item.Elapsed.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert run item: %w", err)
	}
	return nil
}

// FinishRun closes out a run with its final counters.
func (s *Store) FinishRun(ctx context.Context, runID string, succeeded, failed, skipped int) error {
	ended := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET ended_at = ?, succeeded = ?, failed = ?, skipped = ? WHERE id = ?`,
		ended, succeeded, failed, skipped, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, started_at, ended_at, succeeded, failed, skipped
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			started string
			ended   sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Command, &started, &ended, &run.Succeeded, &run.Failed, &run.Skipped); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if ended.Valid {
			run.EndedAt, _ = time.Parse(time.RFC3339Nano, ended.String)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FindRun resolves a run by its full identifier or a unique prefix,
// regardless of the run's age.
func (s *Store) FindRun(ctx context.Context, idPrefix string) (Run, error) {
	if idPrefix == "" {
		return Run{}, fmt.Errorf("empty run identifier")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, started_at, ended_at, succeeded, failed, skipped
         FROM runs WHERE id LIKE ? || '%' ORDER BY started_at DESC`, idPrefix)
	if err != nil {
		return Run{}, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		var (
			run     Run
			started string
			ended   sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Command, &started, &ended, &run.Succeeded, &run.Failed, &run.Skipped); err != nil {
			return Run{}, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if ended.Valid {
			run.EndedAt, _ = time.Parse(time.RFC3339Nano, ended.String)
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("no run matching %q", idPrefix)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("run identifier %q is ambiguous (%d matches)", idPrefix, len(matches))
	}
}

// RunItems returns the items of one run in insertion order.
func (s *Store) RunItems(ctx context.Context, runID string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source, output, status, detail, fallback_used, elapsed_ms
         FROM run_items WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			item      Item
			output    sql.NullString
			detail    sql.NullString
			fallback  int
			elapsedMs int64
		)
		if err := rows.Scan(&item.RunID, &item.Source, &output, &item.Status, &detail, &fallback, &elapsedMs); err != nil {
			return nil, fmt.Errorf("scan run item: %w", err)
		}
		item.Output = output.String
		item.Detail = detail.String
		item.FallbackUsed = fallback != 0
		item.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		items = append(items, item)
	}
	return items, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
