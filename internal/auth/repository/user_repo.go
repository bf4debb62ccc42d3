package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/skyon-community/skyon-backend/internal/auth/domain"
)

// ProfileRepository stores resident profiles.
type ProfileRepository interface {
	GetByFirebaseUID(ctx context.Context, uid string) (*domain.Profile, error)
	Upsert(ctx context.Context, p *domain.Profile) error
	UpdateLastLogin(ctx context.Context, uid string) error
}

// UserRepository keeps profiles in Postgres.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const profilesSchema = `
CREATE TABLE IF NOT EXISTS profiles (
  firebase_uid  TEXT PRIMARY KEY,
  email         TEXT NOT NULL DEFAULT '',
  display_name  TEXT NOT NULL DEFAULT '',
  block         TEXT,
  flat_number   TEXT,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  last_login_at TIMESTAMPTZ
)`

func (r *UserRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, profilesSchema)
	return err
}

// GetByFirebaseUID retrieves a profile by Firebase UID
func (r *UserRepository) GetByFirebaseUID(ctx context.Context, uid string) (*domain.Profile, error) {
	query := `
		SELECT firebase_uid, email, display_name, block, flat_number,
		       created_at, updated_at, last_login_at
		FROM profiles
		WHERE firebase_uid = $1
	`

	var p domain.Profile
	var block, flatNumber sql.NullString
	var lastLoginAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, uid).Scan(
		&p.FirebaseUID,
		&p.Email,
		&p.DisplayName,
		&block,
		&flatNumber,
		&p.CreatedAt,
		&p.UpdatedAt,
		&lastLoginAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Block = block.String
	p.FlatNumber = flatNumber.String
	if lastLoginAt.Valid {
		p.LastLoginAt = &lastLoginAt.Time
	}
	return &p, nil
}

// Upsert creates or replaces the profile. Empty block or flat number are stored as NULL.
func (r *UserRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (firebase_uid, email, display_name, block, flat_number)
		VALUES ($1, $2, $3, nullif($4, ''), nullif($5, ''))
		ON CONFLICT (firebase_uid) DO UPDATE
		SET email = EXCLUDED.email,
		    display_name = EXCLUDED.display_name,
		    block = EXCLUDED.block,
		    flat_number = EXCLUDED.flat_number,
		    updated_at = NOW()
		RETURNING created_at, updated_at
	`

	var createdAt, updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query,
		p.FirebaseUID,
		p.Email,
		p.DisplayName,
		p.Block,
		p.FlatNumber,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		return err
	}

	p.CreatedAt = createdAt
	p.UpdatedAt = updatedAt
	return nil
}

// UpdateLastLogin updates the last login timestamp
func (r *UserRepository) UpdateLastLogin(ctx context.Context, uid string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE profiles SET last_login_at = NOW() WHERE firebase_uid = $1`, uid)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
