package customrequest

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/projectlibrary/internal/notify"
	"github.com/MrJamesThe3rd/projectlibrary/internal/validation"
)

// maxBudget mirrors NUMERIC(10, 2).
var maxBudget = decimal.RequireFromString("99999999.99")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=customrequest
type Repository interface {
	CreateRequest(ctx context.Context, r *Request) error
	GetRequest(ctx context.Context, id uuid.UUID) (*Request, error)
	ListRequests(ctx context.Context, status *Status) ([]*Request, error)
	// UpdateStatus applies the change only if the request still holds from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, notes string) error
}

type Notifier interface {
	CustomRequestReceived(ctx context.Context, r notify.CustomRequest) error
}

type Service struct {
	repo     Repository
	validate *validation.Validator
	notifier Notifier
}

func NewService(repo Repository, v *validation.Validator, n Notifier) *Service {
	return &Service{repo: repo, validate: v, notifier: n}
}

type SubmitParams struct {
	Name        string `json:"name" validate:"required,max=200"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Phone       string `json:"phone" validate:"required,max=15"`
	ProjectType string `json:"project_type" validate:"required"`
	Deadline    string `json:"deadline" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"required"`
	Budget      string `json:"budget" validate:"required"`

	UserID *uuid.UUID `json:"-"`
}

func (s *Service) parse(params SubmitParams) (*Request, error) {
	fields := map[string]string{}

	if err := s.validate.Struct(params); err != nil {
		verr, ok := validation.AsError(err)
		if !ok {
			return nil, err
		}

		maps.Copy(fields, verr.Fields)
	}

	r := &Request{
		Name:        strings.TrimSpace(params.Name),
		Email:       strings.ToLower(strings.TrimSpace(params.Email)),
		Phone:       strings.TrimSpace(params.Phone),
		ProjectType: ProjectType(params.ProjectType),
		Description: strings.TrimSpace(params.Description),
		Status:      StatusPending,
		UserID:      params.UserID,
	}

	if _, ok := fields["project_type"]; !ok && !r.ProjectType.Valid() {
		fields["project_type"] = "select a valid choice"
	}

	if _, ok := fields["deadline"]; !ok {
		r.Deadline, _ = time.Parse(time.DateOnly, params.Deadline)
	}

	if _, ok := fields["budget"]; !ok {
		budget, err := decimal.NewFromString(strings.TrimSpace(params.Budget))

		switch {
		case err != nil:
			fields["budget"] = "enter a number"
		case budget.IsNegative():
			fields["budget"] = "ensure this value is greater than or equal to 0"
		case budget.GreaterThan(maxBudget) || budget.Exponent() < -2:
			fields["budget"] = "ensure there are no more than 10 digits in total and 2 decimal places"
		default:
			r.Budget = budget
		}
	}

	if len(fields) > 0 {
		return nil, &validation.Error{Fields: fields}
	}

	return r, nil
}

// Submit stores the request and alerts the admins. A failed alert is logged
// and does not fail the submission.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (*Request, error) {
	r, err := s.parse(params)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateRequest(ctx, r); err != nil {
		return nil, fmt.Errorf("creating custom request: %w", err)
	}

	if s.notifier != nil {
		err := s.notifier.CustomRequestReceived(ctx, notify.CustomRequest{
			ID:          r.ID,
			Name:        r.Name,
			Email:       r.Email,
			Phone:       r.Phone,
			ProjectType: string(r.ProjectType),
			Deadline:    r.Deadline,
			Budget:      r.Budget,
			Description: r.Description,
		})
		if err != nil {
			slog.Warn("failed to send custom request alert", "request_id", r.ID, "error", err)
		}
	}

	return r, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.repo.GetRequest(ctx, id)
}

// List returns requests newest first, optionally narrowed to one status.
func (s *Service) List(ctx context.Context, status *Status) ([]*Request, error) {
	if status != nil && !status.Valid() {
		return nil, validation.Field("status", "select a valid choice")
	}

	return s.repo.ListRequests(ctx, status)
}

// Transition moves a request through the admin workflow. Empty notes keep the
// existing admin notes.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to Status, notes string) (*Request, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}

	r, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(r.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
	}

	if notes = strings.TrimSpace(notes); notes == "" {
		notes = r.AdminNotes
	}

	if err := s.repo.UpdateStatus(ctx, r.ID, r.Status, to, notes); err != nil {
		return nil, err
	}

	r.Status = to
	r.AdminNotes = notes

	return r, nil
}
