package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store errors.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrActiveScanExists is returned when creating a ScanRun for a user
	// who already has one in progress.
	ErrActiveScanExists = errors.New("user already has an active scan run")

	// ErrActiveRemovalExists is returned when creating a RemovalRequest
	// for an exposure that already has a non-terminal request.
	ErrActiveRemovalExists = errors.New("exposure already has an active removal request")
)

// Store provides SQLite-backed persistence for the scan pipeline.
// It manages connection pooling and enforces the exclusivity invariants
// through partial unique indexes.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// read performance.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the store at the specified directory.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, "datascrub.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating a
	// new file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer; a single pooled connection avoids
	// SQLITE_BUSY churn under concurrent scan finalization.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- One row per scan invocation per user.
	CREATE TABLE IF NOT EXISTS scan_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		plan TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		sources_checked INTEGER DEFAULT 0,
		exposures_found INTEGER DEFAULT 0
	);

	-- At most one non-terminal run per user. The partial index makes the
	-- check-then-act race safe: the second concurrent insert fails here.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_scan_runs_active
		ON scan_runs(user_id) WHERE status = 'IN_PROGRESS';
	CREATE INDEX IF NOT EXISTS idx_scan_runs_user ON scan_runs(user_id);
	CREATE INDEX IF NOT EXISTS idx_scan_runs_started ON scan_runs(started_at);

	-- Durable record of a user's data appearing at a source. Never
	-- deleted, only status-transitioned.
	CREATE TABLE IF NOT EXISTS exposures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		source TEXT NOT NULL,
		source_name TEXT NOT NULL,
		url TEXT,
		data_type TEXT NOT NULL,
		data_preview TEXT NOT NULL,
		severity TEXT NOT NULL,
		status TEXT NOT NULL,
		requires_manual_action INTEGER NOT NULL DEFAULT 0,
		confidence_json TEXT NOT NULL,
		first_seen_at TEXT NOT NULL,
		last_seen_at TEXT NOT NULL,
		UNIQUE(user_id, source, source_name, data_preview)
	);

	CREATE INDEX IF NOT EXISTS idx_exposures_user ON exposures(user_id);
	CREATE INDEX IF NOT EXISTS idx_exposures_status ON exposures(status);

	CREATE TABLE IF NOT EXISTS removal_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		exposure_id INTEGER NOT NULL REFERENCES exposures(id),
		user_id TEXT NOT NULL,
		source TEXT NOT NULL,
		method TEXT NOT NULL,
		status TEXT NOT NULL,
		is_proactive INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		submitted_at TEXT,
		completed_at TEXT,
		notes TEXT
	);

	-- At most one non-terminal request per exposure.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_removal_requests_active
		ON removal_requests(exposure_id)
		WHERE status IN ('PENDING', 'SUBMITTED', 'IN_PROGRESS');
	CREATE INDEX IF NOT EXISTS idx_removal_requests_user ON removal_requests(user_id);
	CREATE INDEX IF NOT EXISTS idx_removal_requests_source ON removal_requests(source);

	-- Per-scanner-per-run result log for operational trend analysis.
	CREATE TABLE IF NOT EXISTS scanner_outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_run_id INTEGER NOT NULL REFERENCES scan_runs(id),
		scanner_name TEXT NOT NULL,
		scanner_type TEXT NOT NULL,
		status TEXT NOT NULL,
		response_time_ms INTEGER NOT NULL,
		result_count INTEGER NOT NULL,
		http_status INTEGER,
		error_detail TEXT,
		recorded_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_outcomes_run ON scanner_outcomes(scan_run_id);
	CREATE INDEX IF NOT EXISTS idx_outcomes_scanner ON scanner_outcomes(scanner_name);

	-- Encrypted identity profiles: one JSON document of per-field
	-- ciphertexts per user. Plaintext identity never touches this table.
	CREATE TABLE IF NOT EXISTS identity_profiles (
		user_id TEXT PRIMARY KEY,
		profile_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure
// involving the named index or column set. modernc.org/sqlite exposes
// constraint failures only through the error text.
func isUniqueViolation(err error, marker string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, "constraint failed") {
		return false
	}
	return marker == "" || strings.Contains(msg, marker)
}

// formatTime serializes a timestamp for storage. Zero times store as NULL
// via the nullable helper below.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// nullableTime serializes a timestamp that may be zero.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // SQLite default datetime format
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. Returns zero time if no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseNullableTimestamp handles columns that may be NULL.
func parseNullableTimestamp(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	return parseTimestamp(s.String)
}
