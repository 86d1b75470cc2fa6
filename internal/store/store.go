// Package store persists classification history in SQLite. History feeds
// the profile scorer and the bayes training set, and backs the history
// command.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tidymark/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; old databases are rejected rather than silently misread.
const schemaVersion = 1

// Record is one persisted classification outcome.
type Record struct {
	ID           int64
	RunID        string
	URL          string
	Title        string
	Domain       string
	Category     string
	Subject      string
	ResourceType string
	Subcategory  string
	Confidence   float64
	Methods      []string
	CreatedAt    time.Time
}

// RunSummary aggregates one classification run.
type RunSummary struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Total        int
	Classified   int
	Unclassified int
	CacheHits    int
	CacheMisses  int
}

// Store manages history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrStore, "store", "open", "create data directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "store", "open", "open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrStore, "store", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
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

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return services.Wrap(services.ErrStore, "store", "init", "check schema_version table", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return services.Wrap(services.ErrStore, "store", "init", "begin schema tx", err)
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return services.Wrap(services.ErrStore, "store", "init", "create schema", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return services.Wrap(services.ErrStore, "store", "init", "record schema version", err)
		}
		if err := tx.Commit(); err != nil {
			return services.Wrap(services.ErrStore, "store", "init", "commit schema tx", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return services.Wrap(services.ErrStore, "store", "init", "read schema version", err)
	}
	if version != schemaVersion {
		return services.Wrap(services.ErrStore, "store", "init",
			fmt.Sprintf("database has schema version %d, expected %d (delete %s to rebuild)", version, schemaVersion, s.path), nil)
	}
	return nil
}

// BeginRun records the start of a classification run and returns its ID.
func (s *Store) BeginRun(ctx context.Context) (string, error) {
	runID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, started_at) VALUES (?, ?)", runID, now); err != nil {
		return "", services.Wrap(services.ErrStore, "store", "begin-run", "insert run", err)
	}
	return runID, nil
}

// FinishRun records the end of a run with its aggregate counters.
func (s *Store) FinishRun(ctx context.Context, summary RunSummary) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, total = ?, classified = ?, unclassified = ?,
            cache_hits = ?, cache_misses = ? WHERE id = ?`,
		now, summary.Total, summary.Classified, summary.Unclassified,
		summary.CacheHits, summary.CacheMisses, summary.ID)
	if err != nil {
		return services.Wrap(services.ErrStore, "store", "finish-run", "update run", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return services.Wrap(services.ErrStore, "store", "finish-run", "rows affected", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrStore, "store", "finish-run",
			fmt.Sprintf("unknown run %s", summary.ID), nil)
	}
	return nil
}

// SaveResult persists one classification outcome under the given run.
func (s *Store) SaveResult(ctx context.Context, record Record) error {
	methodsJSON, err := json.Marshal(record.Methods)
	if err != nil {
		return services.Wrap(services.ErrStore, "store", "save-result", "marshal methods", err)
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results (
            run_id, url, title, domain, category, subject, resource_type,
            subcategory, confidence, methods_json, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.RunID, record.URL, record.Title, record.Domain, record.Category,
		record.Subject, record.ResourceType, record.Subcategory,
		record.Confidence, string(methodsJSON), createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return services.Wrap(services.ErrStore, "store", "save-result", "insert result", err)
	}
	return nil
}

// Recent returns the most recently saved results, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, url, title, domain, category, subject, resource_type,
            subcategory, confidence, methods_json, created_at
         FROM results ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "store", "recent", "query results", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Classified returns persisted results that landed in a real category, for
// training the bayes model.
func (s *Store) Classified(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 5000
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, url, title, domain, category, subject, resource_type,
            subcategory, confidence, methods_json, created_at
         FROM results WHERE category != 'Unclassified' ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "store", "classified", "query results", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// CategoryCountsByDomain aggregates historical category counts per domain,
// the seed data for the profile scorer.
func (s *Store) CategoryCountsByDomain(ctx context.Context) (map[string]map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT domain, category, COUNT(1) FROM results
         WHERE domain != '' AND category != 'Unclassified'
         GROUP BY domain, category`)
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "store", "domain-counts", "query counts", err)
	}
	defer rows.Close()

	counts := make(map[string]map[string]int)
	for rows.Next() {
		var domain, category string
		var count int
		if err := rows.Scan(&domain, &category, &count); err != nil {
			return nil, services.Wrap(services.ErrStore, "store", "domain-counts", "scan counts", err)
		}
		if counts[domain] == nil {
			counts[domain] = make(map[string]int)
		}
		counts[domain][category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStore, "store", "domain-counts", "iterate counts", err)
	}
	return counts, nil
}

// Runs returns the most recent run summaries, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, total, classified, unclassified,
            cache_hits, cache_misses
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "store", "runs", "query runs", err)
	}
	defer rows.Close()

	summaries := make([]RunSummary, 0, limit)
	for rows.Next() {
		var summary RunSummary
		var startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(&summary.ID, &startedAt, &finishedAt, &summary.Total,
			&summary.Classified, &summary.Unclassified,
			&summary.CacheHits, &summary.CacheMisses); err != nil {
			return nil, services.Wrap(services.ErrStore, "store", "runs", "scan run", err)
		}
		summary.StartedAt = parseTimestamp(startedAt)
		if finishedAt.Valid {
			summary.FinishedAt = parseTimestamp(finishedAt.String)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStore, "store", "runs", "iterate runs", err)
	}
	return summaries, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var record Record
		var methodsJSON, createdAt string
		if err := rows.Scan(&record.ID, &record.RunID, &record.URL, &record.Title,
			&record.Domain, &record.Category, &record.Subject, &record.ResourceType,
			&record.Subcategory, &record.Confidence, &methodsJSON, &createdAt); err != nil {
			return nil, services.Wrap(services.ErrStore, "store", "scan", "scan result", err)
		}
		if err := json.Unmarshal([]byte(methodsJSON), &record.Methods); err != nil {
			record.Methods = nil
		}
		record.CreatedAt = parseTimestamp(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStore, "store", "scan", "iterate results", err)
	}
	return records, nil
}

func parseTimestamp(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
