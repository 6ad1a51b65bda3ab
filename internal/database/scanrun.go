package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// CreateScanRun inserts a new IN_PROGRESS run and returns it with its
// assigned ID. The partial unique index rejects a second active run for the
// same user; that surfaces as ErrActiveScanExists.
func (s *Store) CreateScanRun(ctx context.Context, run *model.ScanRun) (*model.ScanRun, error) {
	query := `
	INSERT INTO scan_runs (user_id, type, plan, status, started_at, sources_checked, exposures_found)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		run.UserID,
		string(run.Type),
		string(run.Plan),
		string(run.Status),
		formatTime(run.StartedAt),
		run.SourcesChecked,
		run.ExposuresFound,
	)
	if err != nil {
		if isUniqueViolation(err, "idx_scan_runs_active") {
			return nil, ErrActiveScanExists
		}
		return nil, fmt.Errorf("failed to insert scan run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read scan run id: %w", err)
	}

	created := *run
	created.ID = id
	return &created, nil
}

// FinalizeScanRun moves a run to a terminal status and records its counts.
func (s *Store) FinalizeScanRun(ctx context.Context, id int64, status model.ScanStatus, sourcesChecked, exposuresFound int) error {
	query := `
	UPDATE scan_runs
	SET status = ?, finished_at = ?, sources_checked = ?, exposures_found = ?
	WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		string(status),
		formatTime(time.Now()),
		sourcesChecked,
		exposuresFound,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize scan run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check finalize result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetScanRun retrieves a run by ID.
func (s *Store) GetScanRun(ctx context.Context, id int64) (*model.ScanRun, error) {
	query := `
	SELECT id, user_id, type, plan, status, started_at, finished_at, sources_checked, exposures_found
	FROM scan_runs WHERE id = ?
	`
	return s.scanRunRow(s.db.QueryRowContext(ctx, query, id))
}

// ActiveScanRun returns the user's IN_PROGRESS run, or ErrNotFound.
func (s *Store) ActiveScanRun(ctx context.Context, userID string) (*model.ScanRun, error) {
	query := `
	SELECT id, user_id, type, plan, status, started_at, finished_at, sources_checked, exposures_found
	FROM scan_runs WHERE user_id = ? AND status = 'IN_PROGRESS'
	`
	return s.scanRunRow(s.db.QueryRowContext(ctx, query, userID))
}

// CountScanRunsSince counts runs started at or after the cutoff, terminal
// or not. Used for monthly plan cap enforcement; a failed run still
// consumed a scan slot.
func (s *Store) CountScanRunsSince(ctx context.Context, userID string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM scan_runs WHERE user_id = ? AND started_at >= ?`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, formatTime(since)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count scan runs: %w", err)
	}
	return count, nil
}

// FailStaleScanRuns force-fails runs stuck IN_PROGRESS since before the
// cutoff and returns how many were failed. A run goes stale when its
// process died between creation and finalization; without recovery the
// partial unique index would lock the user out of scanning forever.
func (s *Store) FailStaleScanRuns(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `
	UPDATE scan_runs
	SET status = 'FAILED', finished_at = ?
	WHERE status = 'IN_PROGRESS' AND started_at < ?
	`

	result, err := s.db.ExecContext(ctx, query, formatTime(time.Now()), formatTime(olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to fail stale scan runs: %w", err)
	}
	return result.RowsAffected()
}

// ScanRunsByUser returns the user's runs, newest first.
func (s *Store) ScanRunsByUser(ctx context.Context, userID string) ([]*model.ScanRun, error) {
	query := `
	SELECT id, user_id, type, plan, status, started_at, finished_at, sources_checked, exposures_found
	FROM scan_runs WHERE user_id = ? ORDER BY started_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.ScanRun
	for rows.Next() {
		run, err := scanRunFromScanner(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanRunRow(row *sql.Row) (*model.ScanRun, error) {
	run, err := scanRunFromScanner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

func scanRunFromScanner(row rowScanner) (*model.ScanRun, error) {
	var (
		run        model.ScanRun
		runType    string
		plan       string
		status     string
		startedAt  string
		finishedAt sql.NullString
	)

	err := row.Scan(
		&run.ID,
		&run.UserID,
		&runType,
		&plan,
		&status,
		&startedAt,
		&finishedAt,
		&run.SourcesChecked,
		&run.ExposuresFound,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan scan run: %w", err)
	}

	run.Type = model.ScanType(runType)
	run.Plan = model.PlanTier(plan)
	run.Status = model.ScanStatus(status)
	run.StartedAt = parseTimestamp(startedAt)
	run.FinishedAt = parseNullableTimestamp(finishedAt)
	return &run, nil
}
