// Package history keeps a log of collage runs in SQLite.
//
// Every run is recorded with the labels it was asked for and how it ended.
// The log holds no image data.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the database file name inside the data directory.
const FileName = "history.db"

// Store manages the run log
type Store struct {
	db *sql.DB
}

// Run is one recorded pipeline run
type Run struct {
	ID        int64
	Username  string
	Period    string // Friendly label
	Dimension string // Friendly label
	ImageSize string // Friendly label
	Result    string // "ok", "canceled", "timeout" or an error kind name
	Message   string // Error message, empty on success
	Images    int    // Cells that received artwork
	Width     int
	Height    int
	Output    string // Where the collage was written, if anywhere
	Duration  time.Duration
	Timestamp time.Time
}

// OK reports whether the run produced a collage.
func (r Run) OK() bool {
	return r.Result == "ok"
}

// NewStore opens (or creates) the run log at dbPath
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps :memory: databases consistent
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000", // Wait up to 10 seconds on lock
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL", // serve and generate may share the file
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			period TEXT NOT NULL,
			dimension TEXT NOT NULL,
			image_size TEXT NOT NULL,
			result TEXT NOT NULL,
			message TEXT,
			images INTEGER NOT NULL DEFAULT 0,
			width INTEGER NOT NULL DEFAULT 0,
			height INTEGER NOT NULL DEFAULT 0,
			output TEXT,
			duration_ms INTEGER NOT NULL,
			timestamp INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
		CREATE INDEX IF NOT EXISTS idx_runs_username ON runs(username, timestamp);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record appends a run to the log and returns its id.
// A zero Timestamp is recorded as now.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}

	query := `
		INSERT INTO runs (username, period, dimension, image_size, result, message,
			images, width, height, output, duration_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		run.Username,
		run.Period,
		run.Dimension,
		run.ImageSize,
		run.Result,
		nullable(run.Message),
		run.Images,
		run.Width,
		run.Height,
		nullable(run.Output),
		run.Duration.Milliseconds(),
		run.Timestamp.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}

	return id, nil
}

// Recent returns the newest runs first. A limit of zero or less returns
// every run. When username is non-empty only that user's runs are returned.
func (s *Store) Recent(ctx context.Context, username string, limit int) ([]Run, error) {
	query := `
		SELECT id, username, period, dimension, image_size, result, COALESCE(message, ''),
			images, width, height, COALESCE(output, ''), duration_ms, timestamp
		FROM runs
	`
	var args []any
	if username != "" {
		query += " WHERE username = ?"
		args = append(args, username)
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var durationMs int64
		var timestampUnix int64

		err := rows.Scan(
			&r.ID,
			&r.Username,
			&r.Period,
			&r.Dimension,
			&r.ImageSize,
			&r.Result,
			&r.Message,
			&r.Images,
			&r.Width,
			&r.Height,
			&r.Output,
			&durationMs,
			&timestampUnix,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.Timestamp = time.Unix(timestampUnix, 0)

		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// Cleanup removes runs older than maxAge and returns how many were deleted
func (s *Store) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()

	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old runs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// Count returns the number of recorded runs
// If failedOnly is true, only runs that did not produce a collage are counted
func (s *Store) Count(ctx context.Context, failedOnly bool) (int, error) {
	query := "SELECT COUNT(*) FROM runs"
	if failedOnly {
		query += " WHERE result != 'ok'"
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}

	return count, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
