package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Email is a plain-text message handed to a Sender.
type Email struct {
	To      []string
	Subject string
	Body    string
}

//go:generate mockgen -source=notify.go -destination=sender_mock.go -package=notify
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// Purchase describes a verified order for the confirmation mail.
type Purchase struct {
	OrderID       string          `json:"order_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	ProjectTitle  string          `json:"project_title"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
}

// CustomRequest describes a submitted custom project request for the admin alert.
type CustomRequest struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	ProjectType string          `json:"project_type"`
	Deadline    time.Time       `json:"deadline"`
	Budget      decimal.Decimal `json:"budget"`
	Description string          `json:"description"`
}

// LogSender writes mails to the log instead of delivering them. Used when no
// SMTP host is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, e Email) error {
	slog.Info("email not delivered, smtp disabled", "to", e.To, "subject", e.Subject)
	return nil
}
