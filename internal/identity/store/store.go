package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/projectlibrary/internal/database"
	"github.com/MrJamesThe3rd/projectlibrary/internal/identity"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectUserColumns = `id, username, email, first_name, last_name, password_hash, is_staff, created_at`

func scanUser(row *sql.Row) (*identity.User, error) {
	var u identity.User

	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.IsStaff, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identity.ErrNotFound
		}

		return nil, err
	}

	return &u, nil
}

// CreateUser inserts the account and its empty profile atomically.
func (s *Store) CreateUser(ctx context.Context, u *identity.User) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	userQuery := `
		INSERT INTO users (username, email, first_name, last_name, password_hash, is_staff, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err = dbTx.QueryRowContext(ctx, userQuery,
		u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.IsStaff,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err, "users_username_key"):
			return identity.ErrUsernameTaken
		case database.IsUniqueViolation(err, "users_email_key"):
			return identity.ErrEmailTaken
		}

		return fmt.Errorf("creating user: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, `INSERT INTO profiles (user_id, created_at) VALUES ($1, NOW())`, u.ID); err != nil {
		return fmt.Errorf("creating profile: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+selectUserColumns+` FROM users WHERE id = $1`, id))
	if err != nil && !errors.Is(err, identity.ErrNotFound) {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	return u, err
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*identity.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+selectUserColumns+` FROM users WHERE username = $1`, username))
	if err != nil && !errors.Is(err, identity.ErrNotFound) {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}

	return u, err
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool

	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}

	return exists, nil
}

func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*identity.Profile, error) {
	query := `SELECT user_id, phone, institution, course, created_at FROM profiles WHERE user_id = $1`

	var p identity.Profile

	err := s.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.Phone, &p.Institution, &p.Course, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identity.ErrNotFound
		}

		return nil, fmt.Errorf("getting profile: %w", err)
	}

	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, p *identity.Profile) error {
	query := `
		UPDATE profiles
		SET phone = $1, institution = $2, course = $3
		WHERE user_id = $4
	`

	res, err := s.db.ExecContext(ctx, query, p.Phone, p.Institution, p.Course, p.UserID)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return identity.ErrNotFound
	}

	return nil
}

// SetStaff grants or revokes access to the staff-only API surface.
func (s *Store) SetStaff(ctx context.Context, username string, staff bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET is_staff = $1 WHERE username = $2`, staff, username)
	if err != nil {
		return fmt.Errorf("updating staff flag: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return identity.ErrNotFound
	}

	return nil
}
