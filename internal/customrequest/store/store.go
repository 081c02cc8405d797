package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/projectlibrary/internal/customrequest"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectRequestColumns = `
	id, name, email, phone, project_type, deadline, description, budget,
	status, user_id, admin_notes, created_at
`

func scanRequest(s scanner) (*customrequest.Request, error) {
	var (
		r           customrequest.Request
		projectType string
		status      string
		userID      uuid.NullUUID
	)

	if err := s.Scan(
		&r.ID, &r.Name, &r.Email, &r.Phone, &projectType, &r.Deadline, &r.Description, &r.Budget,
		&status, &userID, &r.AdminNotes, &r.CreatedAt,
	); err != nil {
		return nil, err
	}

	r.ProjectType = customrequest.ProjectType(projectType)
	r.Status = customrequest.Status(status)

	if userID.Valid {
		r.UserID = &userID.UUID
	}

	return &r, nil
}

func (s *Store) CreateRequest(ctx context.Context, r *customrequest.Request) error {
	query := `
		INSERT INTO custom_project_requests
			(name, email, phone, project_type, deadline, description, budget, status, user_id, admin_notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		r.Name,
		r.Email,
		r.Phone,
		r.ProjectType,
		r.Deadline,
		r.Description,
		r.Budget,
		r.Status,
		r.UserID,
		r.AdminNotes,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating custom request: %w", err)
	}

	return nil
}

func (s *Store) GetRequest(ctx context.Context, id uuid.UUID) (*customrequest.Request, error) {
	query := `SELECT ` + selectRequestColumns + ` FROM custom_project_requests WHERE id = $1`

	r, err := scanRequest(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customrequest.ErrNotFound
		}

		return nil, fmt.Errorf("getting custom request: %w", err)
	}

	return r, nil
}

func (s *Store) ListRequests(ctx context.Context, status *customrequest.Status) ([]*customrequest.Request, error) {
	query := `SELECT ` + selectRequestColumns + ` FROM custom_project_requests`

	var args []any

	if status != nil {
		query += ` WHERE status = $1`

		args = append(args, *status)
	}

	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing custom requests: %w", err)
	}
	defer rows.Close()

	var requests []*customrequest.Request

	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning custom request: %w", err)
		}

		requests = append(requests, r)
	}

	return requests, rows.Err()
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, from, to customrequest.Status, notes string) error {
	query := `
		UPDATE custom_project_requests
		SET status = $1, admin_notes = $2
		WHERE id = $3 AND status = $4
	`

	res, err := s.db.ExecContext(ctx, query, to, notes, id, from)
	if err != nil {
		return fmt.Errorf("updating custom request: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("%w: request is no longer %s", customrequest.ErrInvalidTransition, from)
	}

	return nil
}
