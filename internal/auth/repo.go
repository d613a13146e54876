package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Profile is the shelf owner. The profile table holds at most one row;
// registration is refused once it exists.
type Profile struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	TokenVersion int
	CreatedAt    time.Time
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) CreateProfile(ctx context.Context, p Profile) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO profile (id, username, email, password_hash)
		VALUES (?, ?, ?, ?)
	`, p.ID, p.Username, p.Email, p.PasswordHash)

	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// GetProfile returns the singleton profile row, or nil when none exists.
func (r *Repo) GetProfile(ctx context.Context) (*Profile, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, token_version, created_at
		FROM profile
		LIMIT 1
	`)

	var p Profile
	if err := row.Scan(&p.ID, &p.Username, &p.Email, &p.PasswordHash, &p.TokenVersion, &p.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, token_version, created_at
		FROM profile
		WHERE LOWER(email) = ?
	`, email)

	var p Profile
	if err := row.Scan(&p.ID, &p.Username, &p.Email, &p.PasswordHash, &p.TokenVersion, &p.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get by email: %w", err)
	}
	return &p, nil
}

func (r *Repo) GetTokenVersion(ctx context.Context, id string) (int, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT token_version
		FROM profile
		WHERE id = ?
	`, id)

	var version int
	if err := row.Scan(&version); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("get token version: %w", err)
	}
	return version, nil
}

func (r *Repo) UpdatePasswordAndBumpTokenVersion(ctx context.Context, id string, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE profile
		SET password_hash = ?, token_version = token_version + 1
		WHERE id = ?
	`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update password: profile not found")
	}
	return nil
}

func (r *Repo) BumpTokenVersion(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE profile
		SET token_version = token_version + 1
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("bump token version: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bump token version rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bump token version: profile not found")
	}
	return nil
}
