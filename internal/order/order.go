package order

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicatePurchase    = errors.New("project already purchased")
	ErrProjectUnavailable   = errors.New("project not available")
	ErrGateway              = errors.New("payment gateway error")
	ErrSignatureInvalid     = errors.New("signature verification failed")
	ErrDuplicateTransaction = errors.New("payment already recorded")
	ErrAlreadyProcessed     = errors.New("order already processed")
	ErrInvalidTransition    = errors.New("invalid status transition")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusCompleted: true, StatusFailed: true, StatusRefunded: true},
	StatusCompleted: {},
	StatusFailed:    {},
	StatusRefunded:  {},
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

const idPrefix = "ORD-"

// NewOrderID returns "ORD-" followed by 12 upper-case hex characters.
func NewOrderID() string {
	u := uuid.New()
	return idPrefix + strings.ToUpper(strings.ReplaceAll(u.String(), "-", "")[:12])
}

// ProjectSummary is the slice of a catalog project shown alongside an order.
type ProjectSummary struct {
	ID    uuid.UUID
	Title string
	Slug  string
	Image string
	File  string
}

// Order is one purchase attempt of a project by a user.
type Order struct {
	ID              uuid.UUID
	OrderID         string
	UserID          uuid.UUID
	ProjectID       uuid.UUID
	Amount          decimal.Decimal
	Status          Status
	RemoteOrderID   string
	RemotePaymentID string
	RemoteSignature string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Project *ProjectSummary
}

// AssignID sets the public order id once. Later calls keep the existing value.
func (o *Order) AssignID() {
	if o.OrderID == "" {
		o.OrderID = NewOrderID()
	}
}

// MinorUnits converts a decimal amount to the smallest currency unit, rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// TransactionLog is the append-only audit entry written for each verified payment.
type TransactionLog struct {
	ID            uuid.UUID
	TransactionID string
	OrderID       uuid.UUID
	Amount        decimal.Decimal
	Currency      string
	PaymentMethod string
	Status        string
	RawResponse   json.RawMessage
	CreatedAt     time.Time
}
