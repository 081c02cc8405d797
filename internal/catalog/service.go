package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/projectlibrary/internal/validation"
)

const (
	PageSize     = 12
	featuredSize = 6
	recentSize   = 8
	relatedSize  = 4

	// createAttempts bounds retries when a concurrent insert claims the probed slug.
	createAttempts = 3
)

// ErrSlugTaken is returned by the repository when the slug unique constraint fires.
var ErrSlugTaken = errors.New("slug already taken")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=catalog
type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id uuid.UUID) (*Project, error)
	GetProjectBySlug(ctx context.Context, slug string) (*Project, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListProjects(ctx context.Context, filter ListFilter) ([]*Project, int, error)
}

// ListFilter narrows a catalog query. Only active projects are ever listed.
type ListFilter struct {
	Technology *Technology
	Search     string
	Featured   *bool
	ExcludeID  *uuid.UUID
	Limit      int
	Offset     int
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Title            string
	Slug             string
	ShortDescription string
	LongDescription  string
	Technology       Technology
	Price            decimal.Decimal
	Image            string
	DemoVideoURL     *string
	File             string
	Featured         bool
	Inactive         bool
}

func (p CreateParams) validate() error {
	fields := map[string]string{}

	if strings.TrimSpace(p.Title) == "" {
		fields["title"] = "this field is required"
	} else if len(p.Title) > 200 {
		fields["title"] = "ensure this value has at most 200 characters"
	}

	if len(p.ShortDescription) > 300 {
		fields["short_description"] = "ensure this value has at most 300 characters"
	}

	if !p.Technology.Valid() {
		fields["technology"] = "select a valid choice"
	}

	if p.Price.IsNegative() {
		fields["price"] = "ensure this value is greater than or equal to 0"
	}

	if strings.TrimSpace(p.File) == "" {
		fields["file"] = "this field is required"
	}

	if len(fields) > 0 {
		return &validation.Error{Fields: fields}
	}

	return nil
}

// Create stores a new project, deriving a unique slug from the title when none is given.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Project, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	p := &Project{
		Title:            strings.TrimSpace(params.Title),
		Slug:             params.Slug,
		ShortDescription: params.ShortDescription,
		LongDescription:  params.LongDescription,
		Technology:       params.Technology,
		Price:            params.Price.Round(2),
		Image:            params.Image,
		DemoVideoURL:     params.DemoVideoURL,
		File:             params.File,
		IsActive:         !params.Inactive,
		Featured:         params.Featured,
	}

	generated := p.Slug == ""

	for attempt := 1; ; attempt++ {
		if generated {
			slug, err := s.uniqueSlug(ctx, p.Title)
			if err != nil {
				return nil, err
			}

			p.Slug = slug
		}

		err := s.repo.CreateProject(ctx, p)
		if err == nil {
			return p, nil
		}

		if !errors.Is(err, ErrSlugTaken) || !generated || attempt == createAttempts {
			return nil, err
		}
	}
}

// uniqueSlug probes base, base-1, base-2, ... until the repository reports a free slug.
func (s *Service) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "project"
	}

	candidate := base

	for counter := 1; ; counter++ {
		taken, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking slug %q: %w", candidate, err)
		}

		if !taken {
			return candidate, nil
		}

		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.repo.GetProject(ctx, id)
}

// GetBySlug returns an active project.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Project, error) {
	p, err := s.repo.GetProjectBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if !p.IsActive {
		return nil, ErrNotFound
	}

	return p, nil
}

type ListParams struct {
	Technology string
	Search     string
	Page       int
}

type Page struct {
	Projects   []*Project
	Number     int
	TotalPages int
	Total      int
}

// List returns one page of active projects, newest first. Out of range page numbers
// are clamped to the nearest valid page.
func (s *Service) List(ctx context.Context, params ListParams) (*Page, error) {
	filter := ListFilter{
		Search: strings.TrimSpace(params.Search),
		Limit:  PageSize,
	}

	if params.Technology != "" {
		tech := Technology(params.Technology)
		if !tech.Valid() {
			return nil, validation.Field("technology", "select a valid choice")
		}

		filter.Technology = &tech
	}

	page := max(params.Page, 1)
	filter.Offset = (page - 1) * PageSize

	projects, total, err := s.repo.ListProjects(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	totalPages := max((total+PageSize-1)/PageSize, 1)

	if page > totalPages {
		page = totalPages
		filter.Offset = (page - 1) * PageSize

		projects, total, err = s.repo.ListProjects(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("listing projects: %w", err)
		}
	}

	return &Page{
		Projects:   projects,
		Number:     page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

// Home returns the featured and most recent projects shown on the landing page.
func (s *Service) Home(ctx context.Context) (featured, recent []*Project, err error) {
	featuredOnly := true

	featured, _, err = s.repo.ListProjects(ctx, ListFilter{Featured: &featuredOnly, Limit: featuredSize})
	if err != nil {
		return nil, nil, fmt.Errorf("listing featured projects: %w", err)
	}

	recent, _, err = s.repo.ListProjects(ctx, ListFilter{Limit: recentSize})
	if err != nil {
		return nil, nil, fmt.Errorf("listing recent projects: %w", err)
	}

	return featured, recent, nil
}

// Related returns other active projects sharing p's technology.
func (s *Service) Related(ctx context.Context, p *Project) ([]*Project, error) {
	tech := p.Technology

	related, _, err := s.repo.ListProjects(ctx, ListFilter{
		Technology: &tech,
		ExcludeID:  &p.ID,
		Limit:      relatedSize,
	})
	if err != nil {
		return nil, fmt.Errorf("listing related projects: %w", err)
	}

	return related, nil
}
