// Package history persists pipeline run outcomes to a local SQLite
// database so past runs can be inspected after the fact.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/assetpipe/internal/pipeline"
)

// Entry is one recorded configuration run.
type Entry struct {
	ID            int64
	RunAt         time.Time
	Inputs        []string
	Configuration string
	Status        pipeline.Status
	Warnings      int
	Errors        int
	Duration      time.Duration
	Error         string
}

// Store persists run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies the
// schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applySchema(context.Background()); err != nil {
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
func (s *Store) Path() string { return s.path }

// Record persists one row per configuration report of a run.
func (s *Store) Record(ctx context.Context, inputs []string, reports []*pipeline.Report) error {
	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return fmt.Errorf("serializing inputs: %w", err)
	}

	runAt := time.Now().UTC().Format(time.RFC3339Nano)

	for _, report := range reports {
		errMsg := ""
		if report.Err != nil {
			errMsg = report.Err.Error()
		}

		_, err := s.db.ExecContext(
			ctx,
			`INSERT INTO runs (
                run_at, inputs, configuration, status,
                warnings, errors, duration_ms, error_message
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runAt,
			string(inputsJSON),
			report.Configuration,
			string(report.Status),
			report.Warnings,
			report.Errors,
			report.Duration.Milliseconds(),
			nullableString(errMsg),
		)
		if err != nil {
			return fmt.Errorf("recording run: %w", err)
		}
	}

	return nil
}

// Recent returns the most recent entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_at, inputs, configuration, status,
                warnings, errors, duration_ms, error_message
         FROM runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []*Entry

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Clear removes all recorded runs.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}

	return res.RowsAffected()
}

func (s *Store) applySchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS runs (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            run_at TEXT NOT NULL,
            inputs TEXT NOT NULL,
            configuration TEXT NOT NULL,
            status TEXT NOT NULL,
            warnings INTEGER NOT NULL DEFAULT 0,
            errors INTEGER NOT NULL DEFAULT 0,
            duration_ms INTEGER NOT NULL DEFAULT 0,
            error_message TEXT
        )`)
	if err != nil {
		return fmt.Errorf("applying history schema: %w", err)
	}

	return nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id         int64
		runAtRaw   string
		inputsRaw  string
		config     string
		statusStr  string
		warnings   int
		errCount   int
		durationMS int64
		errMsg     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&runAtRaw,
		&inputsRaw,
		&config,
		&statusStr,
		&warnings,
		&errCount,
		&durationMS,
		&errMsg,
	); err != nil {
		return nil, fmt.Errorf("scanning history row: %w", err)
	}

	entry := &Entry{
		ID:            id,
		Configuration: config,
		Status:        pipeline.Status(statusStr),
		Warnings:      warnings,
		Errors:        errCount,
		Duration:      time.Duration(durationMS) * time.Millisecond,
		Error:         errMsg.String,
	}

	if runAt, err := time.Parse(time.RFC3339Nano, runAtRaw); err == nil {
		entry.RunAt = runAt
	}

	if err := json.Unmarshal([]byte(inputsRaw), &entry.Inputs); err != nil {
		return nil, fmt.Errorf("parsing recorded inputs: %w", err)
	}

	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}

	return value
}
