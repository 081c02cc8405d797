package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/projectlibrary/internal/database"
	"github.com/MrJamesThe3rd/projectlibrary/internal/order"
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

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectOrderColumns = `
	o.id, o.order_id, o.user_id, o.project_id, o.amount, o.status,
	o.remote_order_id, o.remote_payment_id, o.remote_signature, o.created_at, o.updated_at,
	p.title, p.slug, p.image, p.project_file
`

const fromOrders = `
	FROM orders o
	JOIN projects p ON p.id = o.project_id
`

func scanOrder(s scanner) (*order.Order, error) {
	var (
		o      order.Order
		status string
		p      order.ProjectSummary
	)

	if err := s.Scan(
		&o.ID, &o.OrderID, &o.UserID, &o.ProjectID, &o.Amount, &status,
		&o.RemoteOrderID, &o.RemotePaymentID, &o.RemoteSignature, &o.CreatedAt, &o.UpdatedAt,
		&p.Title, &p.Slug, &p.Image, &p.File,
	); err != nil {
		return nil, err
	}

	o.Status = order.Status(status)
	p.ID = o.ProjectID
	o.Project = &p

	return &o, nil
}

func getOrder(ctx context.Context, q queryer, where string, arg any) (*order.Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx, `SELECT `+selectOrderColumns+fromOrders+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}

		return nil, fmt.Errorf("getting order: %w", err)
	}

	return o, nil
}

func (s *Store) CreateOrder(ctx context.Context, o *order.Order) error {
	query := `
		INSERT INTO orders (order_id, user_id, project_id, amount, status, remote_order_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		o.OrderID,
		o.UserID,
		o.ProjectID,
		o.Amount,
		o.Status,
		o.RemoteOrderID,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}

	return nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*order.Order, error) {
	return getOrder(ctx, s.db, `WHERE o.order_id = $1`, orderID)
}

func (s *Store) HasCompletedOrder(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE user_id = $1 AND project_id = $2 AND status = $3
		)
	`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, userID, projectID, order.StatusCompleted).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking completed order: %w", err)
	}

	return exists, nil
}

func (s *Store) ListByUser(ctx context.Context, userID uuid.UUID, status order.Status) ([]*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + fromOrders + `
		WHERE o.user_id = $1 AND o.status = $2
		ORDER BY o.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID, status)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}

		orders = append(orders, o)
	}

	return orders, rows.Err()
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, from, to order.Status) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	res, err := s.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("%w: order is no longer %s", order.ErrInvalidTransition, from)
	}

	return nil
}

type verificationTx struct {
	tx *sql.Tx
}

func (s *Store) BeginVerification(ctx context.Context) (order.VerificationTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning verification tx: %w", err)
	}

	return &verificationTx{tx: dbTx}, nil
}

// LockByRemoteOrderID holds the order row until commit so concurrent callbacks
// for the same remote order are serialised.
func (v *verificationTx) LockByRemoteOrderID(ctx context.Context, remoteOrderID string) (*order.Order, error) {
	return getOrder(ctx, v.tx, `WHERE o.remote_order_id = $1 FOR UPDATE OF o`, remoteOrderID)
}

func (v *verificationTx) Complete(ctx context.Context, id uuid.UUID, paymentID, signature string) error {
	query := `
		UPDATE orders
		SET remote_payment_id = $1, remote_signature = $2, status = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
	`

	res, err := v.tx.ExecContext(ctx, query, paymentID, signature, order.StatusCompleted, id, order.StatusPending)
	if err != nil {
		return fmt.Errorf("completing order: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n == 0 {
		return order.ErrAlreadyProcessed
	}

	return nil
}

func (v *verificationTx) AppendTransaction(ctx context.Context, t *order.TransactionLog) error {
	query := `
		INSERT INTO payment_transactions (transaction_id, order_id, amount, currency, payment_method, status, raw_response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err := v.tx.QueryRowContext(ctx, query,
		t.TransactionID,
		t.OrderID,
		t.Amount,
		t.Currency,
		t.PaymentMethod,
		t.Status,
		string(t.RawResponse),
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "payment_transactions_transaction_id_key") {
			return order.ErrDuplicateTransaction
		}

		return fmt.Errorf("appending transaction: %w", err)
	}

	return nil
}

func (v *verificationTx) IncrementDownloads(ctx context.Context, projectID uuid.UUID) error {
	_, err := v.tx.ExecContext(ctx, `UPDATE projects SET downloads = downloads + 1 WHERE id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("incrementing downloads: %w", err)
	}

	return nil
}

func (v *verificationTx) Commit() error {
	return v.tx.Commit()
}

func (v *verificationTx) Rollback() error {
	return v.tx.Rollback()
}
