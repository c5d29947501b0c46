package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetProfile returns the user's contact profile, or nil if none is stored.
func (db *DB) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var p Profile
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, location, email, phone, linkedin, github, created_at, updated_at
		 FROM user_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.Location, &p.Email, &p.Phone, &p.LinkedIn, &p.GitHub, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// UpsertProfile creates or replaces the user's contact profile.
func (db *DB) UpsertProfile(ctx context.Context, p *Profile) (*Profile, error) {
	var out Profile
	err := db.pool.QueryRow(ctx,
		`INSERT INTO user_profiles (user_id, location, email, phone, linkedin, github)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id) DO UPDATE SET
		   location = EXCLUDED.location,
		   email = EXCLUDED.email,
		   phone = EXCLUDED.phone,
		   linkedin = EXCLUDED.linkedin,
		   github = EXCLUDED.github,
		   updated_at = NOW()
		 RETURNING user_id, location, email, phone, linkedin, github, created_at, updated_at`,
		p.UserID, p.Location, p.Email, p.Phone, p.LinkedIn, p.GitHub,
	).Scan(&out.UserID, &out.Location, &out.Email, &out.Phone, &out.LinkedIn, &out.GitHub, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return &out, nil
}
