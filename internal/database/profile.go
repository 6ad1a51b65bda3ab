package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Rank127/datascrub-pro-sub004/internal/identity"
)

// SaveProfile upserts a user's encrypted identity profile. The stored
// document contains only ciphertexts (JSON base64-encodes the byte
// slices); plaintext identity never reaches the store.
func (s *Store) SaveProfile(ctx context.Context, profile identity.StoredProfile) error {
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}

	query := `
	INSERT INTO identity_profiles (user_id, profile_json, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		profile_json = excluded.profile_json,
		updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, profile.UserID, string(doc), formatTime(time.Now())); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// LoadProfile retrieves a user's encrypted profile, or ErrNotFound.
func (s *Store) LoadProfile(ctx context.Context, userID string) (identity.StoredProfile, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT profile_json FROM identity_profiles WHERE user_id = ?`,
		userID,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return identity.StoredProfile{}, ErrNotFound
	}
	if err != nil {
		return identity.StoredProfile{}, fmt.Errorf("failed to load profile: %w", err)
	}

	var profile identity.StoredProfile
	if err := json.Unmarshal([]byte(doc), &profile); err != nil {
		return identity.StoredProfile{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	return profile, nil
}
