package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/projectlibrary/internal/catalog"
	"github.com/MrJamesThe3rd/projectlibrary/internal/identity"
	"github.com/MrJamesThe3rd/projectlibrary/internal/notify"
	"github.com/MrJamesThe3rd/projectlibrary/internal/validation"
)

const (
	paymentMethod     = "razorpay"
	transactionStatus = "success"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=order
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	HasCompletedOrder(ctx context.Context, userID, projectID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status Status) ([]*Order, error)
	// UpdateStatus moves the order from one status to another only if it still holds from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error

	BeginVerification(ctx context.Context) (VerificationTx, error)
}

// VerificationTx groups the writes of one payment verification into a single
// database transaction.
type VerificationTx interface {
	LockByRemoteOrderID(ctx context.Context, remoteOrderID string) (*Order, error)
	// Complete performs pending -> completed and returns ErrAlreadyProcessed when
	// the order is no longer pending.
	Complete(ctx context.Context, id uuid.UUID, paymentID, signature string) error
	AppendTransaction(ctx context.Context, t *TransactionLog) error
	IncrementDownloads(ctx context.Context, projectID uuid.UUID) error
	Commit() error
	Rollback() error
}

type Projects interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Project, error)
}

type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

type Accounts interface {
	GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

type Notifier interface {
	PurchaseConfirmed(ctx context.Context, p notify.Purchase) error
}

// ReplayGuard records which remote order a verified payment id settled. The
// database stays authoritative; the guard only short-circuits obvious replays.
// Lookup returns an empty string for a payment id it has not seen.
type ReplayGuard interface {
	Lookup(ctx context.Context, paymentID string) (string, error)
	Remember(ctx context.Context, paymentID, remoteOrderID string) error
}

type Service struct {
	repo     Repository
	projects Projects
	gateway  Gateway
	validate *validation.Validator
	currency string

	accounts Accounts
	notifier Notifier
	replay   ReplayGuard
}

func NewService(repo Repository, projects Projects, gw Gateway, v *validation.Validator, currency string) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		gateway:  gw,
		validate: v,
		currency: currency,
	}
}

// WithNotifier enables purchase confirmation mails.
func (s *Service) WithNotifier(n Notifier, accounts Accounts) *Service {
	s.notifier = n
	s.accounts = accounts

	return s
}

func (s *Service) WithReplayGuard(g ReplayGuard) *Service {
	s.replay = g
	return s
}

func (s *Service) Currency() string {
	return s.currency
}

// Checkout is what the client-side payment widget needs to collect a payment.
type Checkout struct {
	Order        *Order
	Amount       int64
	Currency     string
	ProjectTitle string
	KeyID        string
}

// Create opens a remote order at the gateway and records a pending local order.
// Nothing is stored when the gateway call fails.
func (s *Service) Create(ctx context.Context, userID, projectID uuid.UUID) (*Checkout, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrProjectUnavailable
		}

		return nil, fmt.Errorf("getting project: %w", err)
	}

	if !project.IsActive {
		return nil, ErrProjectUnavailable
	}

	purchased, err := s.repo.HasCompletedOrder(ctx, userID, projectID)
	if err != nil {
		return nil, fmt.Errorf("checking purchases: %w", err)
	}

	if purchased {
		return nil, ErrDuplicatePurchase
	}

	o := &Order{
		UserID:    userID,
		ProjectID: project.ID,
		Amount:    project.Price,
		Status:    StatusPending,
		Project: &ProjectSummary{
			ID:    project.ID,
			Title: project.Title,
			Slug:  project.Slug,
			Image: project.Image,
			File:  project.File,
		},
	}
	o.AssignID()

	amount := MinorUnits(project.Price)

	remoteID, err := s.gateway.CreateOrder(ctx, amount, s.currency, o.OrderID)
	if err != nil {
		slog.Error("gateway order failed", "order_id", o.OrderID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	o.RemoteOrderID = remoteID

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}

	return &Checkout{
		Order:        o,
		Amount:       amount,
		Currency:     s.currency,
		ProjectTitle: project.Title,
		KeyID:        s.gateway.KeyID(),
	}, nil
}

// VerifyParams is the checkout callback posted by the client after payment.
type VerifyParams struct {
	RemoteOrderID   string `json:"razorpay_order_id" validate:"required"`
	RemotePaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature       string `json:"razorpay_signature" validate:"required"`

	// Payload is the raw callback body, stored verbatim with the transaction.
	Payload json.RawMessage `json:"-"`
}

func (p VerifyParams) payload() json.RawMessage {
	if len(p.Payload) > 0 && json.Valid(p.Payload) {
		return p.Payload
	}

	raw, _ := json.Marshal(map[string]string{
		"razorpay_order_id":   p.RemoteOrderID,
		"razorpay_payment_id": p.RemotePaymentID,
		"razorpay_signature":  p.Signature,
	})

	return raw
}

// Verify checks the callback signature and completes the order exactly once.
// The status change, the transaction log entry and the download counter are
// committed together. A replay of an already completed order returns
// ErrAlreadyProcessed without repeating any effect.
func (s *Service) Verify(ctx context.Context, params VerifyParams) (*Order, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, err
	}

	if !s.gateway.VerifySignature(params.RemoteOrderID, params.RemotePaymentID, params.Signature) {
		slog.Warn("payment signature mismatch", "remote_order_id", params.RemoteOrderID)
		return nil, ErrSignatureInvalid
	}

	if s.replay != nil {
		settled, err := s.replay.Lookup(ctx, params.RemotePaymentID)
		switch {
		case err != nil:
			slog.Warn("replay guard unavailable", "error", err)
		case settled == params.RemoteOrderID:
			return nil, ErrAlreadyProcessed
		case settled != "":
			slog.Warn("payment replayed against another order",
				"payment_id", params.RemotePaymentID,
				"settled_order", settled,
				"remote_order_id", params.RemoteOrderID,
			)
			return nil, ErrDuplicateTransaction
		}
	}

	o, err := s.complete(ctx, params)
	if err != nil {
		return nil, err
	}

	if s.replay != nil {
		if err := s.replay.Remember(ctx, params.RemotePaymentID, params.RemoteOrderID); err != nil {
			slog.Warn("failed to remember verified payment", "order_id", o.OrderID, "error", err)
		}
	}

	s.notifyPurchase(ctx, o)

	return o, nil
}

func (s *Service) complete(ctx context.Context, params VerifyParams) (*Order, error) {
	vtx, err := s.repo.BeginVerification(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning verification: %w", err)
	}
	defer vtx.Rollback()

	o, err := vtx.LockByRemoteOrderID(ctx, params.RemoteOrderID)
	if err != nil {
		return nil, err
	}

	switch {
	case o.Status == StatusCompleted:
		return nil, ErrAlreadyProcessed
	case !CanTransition(o.Status, StatusCompleted):
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, StatusCompleted)
	}

	if err := vtx.Complete(ctx, o.ID, params.RemotePaymentID, params.Signature); err != nil {
		return nil, err
	}

	err = vtx.AppendTransaction(ctx, &TransactionLog{
		TransactionID: params.RemotePaymentID,
		OrderID:       o.ID,
		Amount:        o.Amount,
		Currency:      s.currency,
		PaymentMethod: paymentMethod,
		Status:        transactionStatus,
		RawResponse:   params.payload(),
	})
	if err != nil {
		return nil, err
	}

	if err := vtx.IncrementDownloads(ctx, o.ProjectID); err != nil {
		return nil, fmt.Errorf("incrementing downloads: %w", err)
	}

	if err := vtx.Commit(); err != nil {
		return nil, fmt.Errorf("committing verification: %w", err)
	}

	o.Status = StatusCompleted
	o.RemotePaymentID = params.RemotePaymentID
	o.RemoteSignature = params.Signature

	return o, nil
}

// notifyPurchase never fails the caller; the payment is already committed.
func (s *Service) notifyPurchase(ctx context.Context, o *Order) {
	if s.notifier == nil || s.accounts == nil {
		return
	}

	u, err := s.accounts.GetUser(ctx, o.UserID)
	if err != nil {
		slog.Warn("skipping purchase confirmation", "order_id", o.OrderID, "error", err)
		return
	}

	p := notify.Purchase{
		OrderID:       o.OrderID,
		CustomerName:  u.DisplayName(),
		CustomerEmail: u.Email,
		Amount:        o.Amount,
		Currency:      s.currency,
	}
	if o.Project != nil {
		p.ProjectTitle = o.Project.Title
	}

	if err := s.notifier.PurchaseConfirmed(ctx, p); err != nil {
		slog.Warn("failed to send purchase confirmation", "order_id", o.OrderID, "error", err)
	}
}

// Get returns the order only to its owner. Other users see ErrOrderNotFound.
func (s *Service) Get(ctx context.Context, orderID string, userID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}

	return o, nil
}

// Dashboard lists the user's completed purchases, newest first.
func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID, StatusCompleted)
}

func (s *Service) HasPurchased(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	return s.repo.HasCompletedOrder(ctx, userID, projectID)
}

// SetStatus is the administrative status change. Completion is reserved for
// verified payments and cannot be set by hand.
func (s *Service) SetStatus(ctx context.Context, orderID string, to Status) (*Order, error) {
	if !to.Valid() || to == StatusCompleted {
		return nil, fmt.Errorf("%w: cannot set %q", ErrInvalidTransition, to)
	}

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(o.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}

	if err := s.repo.UpdateStatus(ctx, o.ID, o.Status, to); err != nil {
		return nil, err
	}

	o.Status = to

	return o, nil
}
