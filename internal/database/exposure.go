package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// InsertExposure stores a newly promoted exposure and returns it with its
// assigned ID. The confidence verdict is stored as JSON alongside the
// scalar columns so factor-level reasoning survives for audits.
func (s *Store) InsertExposure(ctx context.Context, e *model.Exposure) (*model.Exposure, error) {
	confidenceJSON, err := json.Marshal(e.Confidence)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize confidence: %w", err)
	}

	query := `
	INSERT INTO exposures (user_id, source, source_name, url, data_type, data_preview,
		severity, status, requires_manual_action, confidence_json, first_seen_at, last_seen_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		e.UserID,
		e.Source,
		e.SourceName,
		e.URL,
		string(e.DataType),
		e.DataPreview,
		e.Severity.String(),
		string(e.Status),
		boolToInt(e.RequiresManualAction),
		string(confidenceJSON),
		formatTime(e.FirstSeenAt),
		formatTime(e.LastSeenAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert exposure: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read exposure id: %w", err)
	}

	created := *e
	created.ID = id
	return &created, nil
}

// UpdateExposureStatus transitions an exposure's lifecycle state.
func (s *Store) UpdateExposureStatus(ctx context.Context, id int64, status model.ExposureStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE exposures SET status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update exposure status: %w", err)
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

// TouchExposures refreshes last_seen_at for exposures re-sighted by a scan.
func (s *Store) TouchExposures(ctx context.Context, ids []int64, seenAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	// One statement per ID keeps this simple; refresh batches are small.
	for _, id := range ids {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE exposures SET last_seen_at = ? WHERE id = ?`,
			formatTime(seenAt), id,
		); err != nil {
			return fmt.Errorf("failed to touch exposure %d: %w", id, err)
		}
	}
	return nil
}

// GetExposure retrieves an exposure by ID.
func (s *Store) GetExposure(ctx context.Context, id int64) (*model.Exposure, error) {
	row := s.db.QueryRowContext(ctx, exposureSelect+` WHERE id = ?`, id)
	e, err := exposureFromScanner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// ExposuresByUser returns all of a user's exposures, newest first. This is
// the dedup history input, so it includes every status.
func (s *Store) ExposuresByUser(ctx context.Context, userID string) ([]*model.Exposure, error) {
	return s.queryExposures(ctx, exposureSelect+` WHERE user_id = ? ORDER BY first_seen_at DESC`, userID)
}

// ActiveExposuresByUser returns the user's ACTIVE exposures, the candidate
// set for removal actions.
func (s *Store) ActiveExposuresByUser(ctx context.Context, userID string) ([]*model.Exposure, error) {
	return s.queryExposures(ctx,
		exposureSelect+` WHERE user_id = ? AND status = 'ACTIVE' ORDER BY first_seen_at DESC`,
		userID,
	)
}

// MatchedSources returns the distinct sources where the user has ever had
// an exposure. MONITORING scans re-check exactly this set.
func (s *Store) MatchedSources(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT source FROM exposures WHERE user_id = ? ORDER BY source`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query matched sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

// CountExposuresByStatus returns the user's exposure counts grouped by
// status, for the dashboard summary.
func (s *Store) CountExposuresByStatus(ctx context.Context, userID string) (map[model.ExposureStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM exposures WHERE user_id = ? GROUP BY status`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count exposures: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.ExposureStatus]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[model.ExposureStatus(status)] = count
	}
	return counts, rows.Err()
}

const exposureSelect = `
	SELECT id, user_id, source, source_name, url, data_type, data_preview,
		severity, status, requires_manual_action, confidence_json, first_seen_at, last_seen_at
	FROM exposures`

func (s *Store) queryExposures(ctx context.Context, query string, args ...any) ([]*model.Exposure, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exposures: %w", err)
	}
	defer rows.Close()

	var exposures []*model.Exposure
	for rows.Next() {
		e, err := exposureFromScanner(rows)
		if err != nil {
			return nil, err
		}
		exposures = append(exposures, e)
	}
	return exposures, rows.Err()
}

func exposureFromScanner(row rowScanner) (*model.Exposure, error) {
	var (
		e              model.Exposure
		url            sql.NullString
		dataType       string
		severity       string
		status         string
		manual         int
		confidenceJSON string
		firstSeenAt    string
		lastSeenAt     string
	)

	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Source,
		&e.SourceName,
		&url,
		&dataType,
		&e.DataPreview,
		&severity,
		&status,
		&manual,
		&confidenceJSON,
		&firstSeenAt,
		&lastSeenAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan exposure: %w", err)
	}

	e.URL = url.String
	e.DataType = model.DataType(dataType)
	e.Severity = model.ParseSeverity(severity)
	e.Status = model.ExposureStatus(status)
	e.RequiresManualAction = manual != 0
	e.FirstSeenAt = parseTimestamp(firstSeenAt)
	e.LastSeenAt = parseTimestamp(lastSeenAt)

	if confidenceJSON != "" {
		if err := json.Unmarshal([]byte(confidenceJSON), &e.Confidence); err != nil {
			return nil, fmt.Errorf("failed to parse confidence: %w", err)
		}
	}
	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
