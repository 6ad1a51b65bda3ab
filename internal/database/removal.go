package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// CreateRemovalRequest inserts a new request and returns it with its
// assigned ID. The partial unique index rejects a second non-terminal
// request for the same exposure; that surfaces as ErrActiveRemovalExists.
func (s *Store) CreateRemovalRequest(ctx context.Context, r *model.RemovalRequest) (*model.RemovalRequest, error) {
	query := `
	INSERT INTO removal_requests (exposure_id, user_id, source, method, status,
		is_proactive, created_at, submitted_at, completed_at, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		r.ExposureID,
		r.UserID,
		r.Source,
		string(r.Method),
		string(r.Status),
		boolToInt(r.IsProactive),
		formatTime(r.CreatedAt),
		nullableTime(r.SubmittedAt),
		nullableTime(r.CompletedAt),
		r.Notes,
	)
	if err != nil {
		if isUniqueViolation(err, "idx_removal_requests_active") {
			return nil, ErrActiveRemovalExists
		}
		return nil, fmt.Errorf("failed to insert removal request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read removal request id: %w", err)
	}

	created := *r
	created.ID = id
	return &created, nil
}

// UpdateRemovalRequest persists a status transition with its timestamps
// and notes.
func (s *Store) UpdateRemovalRequest(ctx context.Context, r *model.RemovalRequest) error {
	query := `
	UPDATE removal_requests
	SET status = ?, submitted_at = ?, completed_at = ?, notes = ?
	WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		string(r.Status),
		nullableTime(r.SubmittedAt),
		nullableTime(r.CompletedAt),
		r.Notes,
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update removal request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetRemovalRequest retrieves a request by ID.
func (s *Store) GetRemovalRequest(ctx context.Context, id int64) (*model.RemovalRequest, error) {
	row := s.db.QueryRowContext(ctx, removalSelect+` WHERE id = ?`, id)
	r, err := removalFromScanner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// ActiveRemovalForExposure returns the exposure's non-terminal request,
// or ErrNotFound.
func (s *Store) ActiveRemovalForExposure(ctx context.Context, exposureID int64) (*model.RemovalRequest, error) {
	row := s.db.QueryRowContext(ctx,
		removalSelect+` WHERE exposure_id = ? AND status IN ('PENDING', 'SUBMITTED', 'IN_PROGRESS')`,
		exposureID,
	)
	r, err := removalFromScanner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// RemovalRequestsByUser returns the user's requests, newest first.
func (s *Store) RemovalRequestsByUser(ctx context.Context, userID string) ([]*model.RemovalRequest, error) {
	return s.queryRemovals(ctx,
		removalSelect+` WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
}

// CountSubmissionsSince counts requests submitted to a source at or after
// the cutoff. The submission path checks this against the per-source daily
// cap before sending.
func (s *Store) CountSubmissionsSince(ctx context.Context, source string, since time.Time) (int, error) {
	query := `
	SELECT COUNT(*) FROM removal_requests
	WHERE source = ? AND submitted_at IS NOT NULL AND submitted_at >= ?
	`

	var count int
	if err := s.db.QueryRowContext(ctx, query, source, formatTime(since)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

// StaleRemovalRequests returns non-terminal requests created before the
// cutoff. The recovery job escalates these rather than letting them sit
// SUBMITTED forever at an unresponsive source.
func (s *Store) StaleRemovalRequests(ctx context.Context, olderThan time.Time) ([]*model.RemovalRequest, error) {
	return s.queryRemovals(ctx,
		removalSelect+` WHERE status IN ('PENDING', 'SUBMITTED', 'IN_PROGRESS') AND created_at < ? ORDER BY created_at`,
		formatTime(olderThan),
	)
}

const removalSelect = `
	SELECT id, exposure_id, user_id, source, method, status, is_proactive,
		created_at, submitted_at, completed_at, notes
	FROM removal_requests`

func (s *Store) queryRemovals(ctx context.Context, query string, args ...any) ([]*model.RemovalRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query removal requests: %w", err)
	}
	defer rows.Close()

	var requests []*model.RemovalRequest
	for rows.Next() {
		r, err := removalFromScanner(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func removalFromScanner(row rowScanner) (*model.RemovalRequest, error) {
	var (
		r           model.RemovalRequest
		method      string
		status      string
		proactive   int
		createdAt   string
		submittedAt sql.NullString
		completedAt sql.NullString
		notes       sql.NullString
	)

	err := row.Scan(
		&r.ID,
		&r.ExposureID,
		&r.UserID,
		&r.Source,
		&method,
		&status,
		&proactive,
		&createdAt,
		&submittedAt,
		&completedAt,
		&notes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan removal request: %w", err)
	}

	r.Method = model.RemovalMethod(method)
	r.Status = model.RemovalStatus(status)
	r.IsProactive = proactive != 0
	r.CreatedAt = parseTimestamp(createdAt)
	r.SubmittedAt = parseNullableTimestamp(submittedAt)
	r.CompletedAt = parseNullableTimestamp(completedAt)
	r.Notes = notes.String
	return &r, nil
}
