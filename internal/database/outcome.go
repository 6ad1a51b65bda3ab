package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// RecordOutcomes persists every scanner outcome of one run in a single
// transaction. Outcomes are immutable once recorded.
func (s *Store) RecordOutcomes(ctx context.Context, scanRunID int64, outcomes []model.ScannerOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	query := `
	INSERT INTO scanner_outcomes (scan_run_id, scanner_name, scanner_type, status,
		response_time_ms, result_count, http_status, error_detail, recorded_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := formatTime(time.Now())
	for _, out := range outcomes {
		var httpStatus any
		if out.HTTPStatus != 0 {
			httpStatus = out.HTTPStatus
		}

		if _, err := tx.ExecContext(ctx, query,
			scanRunID,
			out.ScannerName,
			string(out.ScannerType),
			string(out.Status),
			out.ResponseTime.Milliseconds(),
			out.ResultCount,
			httpStatus,
			out.ErrorDetail,
			now,
		); err != nil {
			return fmt.Errorf("failed to insert outcome for %s: %w", out.ScannerName, err)
		}
	}

	return tx.Commit()
}

// OutcomesForRun returns a run's recorded outcomes in insertion order.
func (s *Store) OutcomesForRun(ctx context.Context, scanRunID int64) ([]model.ScannerOutcome, error) {
	query := `
	SELECT scanner_name, scanner_type, status, response_time_ms, result_count, http_status, error_detail
	FROM scanner_outcomes WHERE scan_run_id = ? ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, scanRunID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []model.ScannerOutcome
	for rows.Next() {
		var (
			out         model.ScannerOutcome
			scannerType string
			status      string
			responseMS  int64
			httpStatus  sql.NullInt64
			errorDetail sql.NullString
		)

		if err := rows.Scan(
			&out.ScannerName,
			&scannerType,
			&status,
			&responseMS,
			&out.ResultCount,
			&httpStatus,
			&errorDetail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}

		out.ScannerType = model.ScannerType(scannerType)
		out.Status = model.OutcomeStatus(status)
		out.ResponseTime = time.Duration(responseMS) * time.Millisecond
		out.HTTPStatus = int(httpStatus.Int64)
		out.ErrorDetail = errorDetail.String
		outcomes = append(outcomes, out)
	}
	return outcomes, rows.Err()
}

// FailureRate returns the fraction of a scanner's invocations since the
// cutoff that failed (BLOCKED or ERROR). Returns 0 with no invocations.
// The health job uses this for trend alerts on degrading sources.
func (s *Store) FailureRate(ctx context.Context, scannerName string, since time.Time) (float64, error) {
	query := `
	SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN status IN ('BLOCKED', 'ERROR') THEN 1 ELSE 0 END), 0)
	FROM scanner_outcomes
	WHERE scanner_name = ? AND recorded_at >= ?
	`

	var total, failed int
	if err := s.db.QueryRowContext(ctx, query, scannerName, formatTime(since)).Scan(&total, &failed); err != nil {
		return 0, fmt.Errorf("failed to compute failure rate: %w", err)
	}
	if total == 0 {
		return 0, nil
	}
	return float64(failed) / float64(total), nil
}
