package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/projectlibrary/internal/catalog"
	"github.com/MrJamesThe3rd/projectlibrary/internal/database"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectProjectColumns = `
	p.id, p.title, p.slug, p.short_description, p.long_description, p.technology, p.price,
	p.image, p.demo_video_url, p.project_file, p.is_active, p.featured, p.downloads,
	p.created_at, p.updated_at
`

// scanProject reads a row in selectProjectColumns order.
func scanProject(s scanner) (*catalog.Project, error) {
	var p catalog.Project

	var tech string

	var demo sql.NullString

	if err := s.Scan(
		&p.ID, &p.Title, &p.Slug, &p.ShortDescription, &p.LongDescription, &tech, &p.Price,
		&p.Image, &demo, &p.File, &p.IsActive, &p.Featured, &p.Downloads,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Technology = catalog.Technology(tech)

	if demo.Valid {
		p.DemoVideoURL = &demo.String
	}

	return &p, nil
}

func (s *Store) CreateProject(ctx context.Context, p *catalog.Project) error {
	query := `
		INSERT INTO projects (title, slug, short_description, long_description, technology, price,
			image, demo_video_url, project_file, is_active, featured, downloads, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, NOW(), NOW())
		RETURNING id, downloads, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.Title,
		p.Slug,
		p.ShortDescription,
		p.LongDescription,
		p.Technology,
		p.Price,
		p.Image,
		p.DemoVideoURL,
		p.File,
		p.IsActive,
		p.Featured,
	).Scan(&p.ID, &p.Downloads, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "projects_slug_key") {
			return catalog.ErrSlugTaken
		}

		return fmt.Errorf("creating project: %w", err)
	}

	return nil
}

func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*catalog.Project, error) {
	query := `SELECT ` + selectProjectColumns + ` FROM projects p WHERE p.id = $1`

	p, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}

		return nil, fmt.Errorf("getting project: %w", err)
	}

	return p, nil
}

func (s *Store) GetProjectBySlug(ctx context.Context, slug string) (*catalog.Project, error) {
	query := `SELECT ` + selectProjectColumns + ` FROM projects p WHERE p.slug = $1`

	p, err := scanProject(s.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}

		return nil, fmt.Errorf("getting project by slug: %w", err)
	}

	return p, nil
}

func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool

	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking slug: %w", err)
	}

	return exists, nil
}

func (s *Store) ListProjects(ctx context.Context, filter catalog.ListFilter) ([]*catalog.Project, int, error) {
	where := []string{"p.is_active"}

	var args []any

	argIdx := 1

	if filter.Technology != nil {
		where = append(where, fmt.Sprintf("p.technology = $%d", argIdx))

		args = append(args, *filter.Technology)
		argIdx++
	}

	if filter.Search != "" {
		where = append(where, fmt.Sprintf(
			"(p.title ILIKE $%[1]d OR p.short_description ILIKE $%[1]d OR p.technology ILIKE $%[1]d)", argIdx))

		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	if filter.Featured != nil {
		where = append(where, fmt.Sprintf("p.featured = $%d", argIdx))

		args = append(args, *filter.Featured)
		argIdx++
	}

	if filter.ExcludeID != nil {
		where = append(where, fmt.Sprintf("p.id <> $%d", argIdx))

		args = append(args, *filter.ExcludeID)
		argIdx++
	}

	clause := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects p`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting projects: %w", err)
	}

	query := `SELECT ` + selectProjectColumns + ` FROM projects p` + clause + ` ORDER BY p.created_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)

		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*catalog.Project

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning project: %w", err)
		}

		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating project rows: %w", err)
	}

	return projects, total, nil
}
