package usage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/gqlcheck/internal/schema"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Record is one ingested usage observation.
type Record struct {
	Coordinate schema.Coordinate `json:"coordinate"`
	SeenAt     time.Time         `json:"seen_at"`
	Count      int64             `json:"count"`
}

// Store is a SQLite-backed usage oracle. Rows are scoped by tag, so one
// database can hold telemetry for several schema variants (production,
// staging, ...).
type Store struct {
	db  *sql.DB
	tag string

	now func() time.Time // overridable in tests
}

// Open creates or opens a usage database at the given path, scoped to tag.
// Applies required pragmas and the schema automatically; idempotent.
//
// The database is configured with:
//   - WAL mode for concurrent reads during ingestion
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
func Open(path, tag string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to usage database: %w", err)
	}

	// SQLite supports one writer at a time; keep a single connection to
	// avoid SQLITE_BUSY during ingestion.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, tag: tag, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// HasUsage implements Oracle. Answers NoData when the store holds no
// telemetry at all for the tag; otherwise Used or Unused by windowed lookup.
func (s *Store) HasUsage(ctx context.Context, coordinate schema.Coordinate, window time.Duration) (Answer, error) {
	var hasAny bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM field_usage WHERE tag = ?)
	`, s.tag).Scan(&hasAny)
	if err != nil {
		return NoData, fmt.Errorf("query telemetry presence: %w", err)
	}
	if !hasAny {
		return NoData, nil
	}

	cutoff := s.now().Add(-window).Unix()
	var used bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM field_usage
			WHERE tag = ? AND coordinate = ? AND seen_at >= ? AND count > 0
		)
	`, s.tag, string(coordinate), cutoff).Scan(&used)
	if err != nil {
		return NoData, fmt.Errorf("query usage for %s: %w", coordinate, err)
	}

	if used {
		return Used, nil
	}
	return Unused, nil
}

// Ingest bulk-loads usage records inside a single transaction.
// Records with a non-positive count are stored as zero-traffic observations.
func (s *Store) Ingest(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ingest: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO field_usage (coordinate, tag, seen_at, count)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare ingest: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		count := rec.Count
		if count < 0 {
			count = 0
		}
		if _, err := stmt.ExecContext(ctx, string(rec.Coordinate), s.tag, rec.SeenAt.Unix(), count); err != nil {
			return fmt.Errorf("ingest %s: %w", rec.Coordinate, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ingest: %w", err)
	}
	return nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
