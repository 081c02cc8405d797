package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/projectlibrary/internal/order"
)

// sniffLen matches the header size mimetype inspects by default.
const sniffLen = 3072

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=download
type Repository interface {
	RecordDownload(ctx context.Context, r *Record) error
}

type Orders interface {
	GetOrder(ctx context.Context, orderID string) (*order.Order, error)
}

type Files interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Stat(ctx context.Context, path string) (int64, error)
}

type Service struct {
	repo   Repository
	orders Orders
	files  Files
}

func NewService(repo Repository, orders Orders, files Files) *Service {
	return &Service{repo: repo, orders: orders, files: files}
}

type Request struct {
	OrderID   string
	UserID    uuid.UUID
	IPAddress string
}

func (s *Service) entitled(ctx context.Context, req Request) (*order.Order, error) {
	o, err := s.orders.GetOrder(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, ErrUnknownOrder
		}

		return nil, fmt.Errorf("getting order: %w", err)
	}

	if o.UserID != req.UserID {
		return nil, ErrWrongOwner
	}

	if o.Status != order.StatusCompleted {
		return nil, ErrNotPaid
	}

	return o, nil
}

// Release authorizes the request, opens the project file and records the
// download. No record is written unless the file could be opened.
func (s *Service) Release(ctx context.Context, req Request) (*Asset, error) {
	o, err := s.entitled(ctx, req)
	if err != nil {
		slog.Info("download refused", "order_id", req.OrderID, "user_id", req.UserID, "reason", err)
		return nil, err
	}

	if o.Project == nil || o.Project.File == "" {
		return nil, fmt.Errorf("order %s has no project file", o.OrderID)
	}

	asset, err := s.open(ctx, o.Project.File)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		UserID:    req.UserID,
		ProjectID: o.ProjectID,
		OrderID:   o.ID,
		IPAddress: req.IPAddress,
	}

	if err := s.repo.RecordDownload(ctx, rec); err != nil {
		asset.Body.Close()
		return nil, fmt.Errorf("recording download: %w", err)
	}

	return asset, nil
}

type sniffedBody struct {
	io.Reader
	io.Closer
}

func (s *Service) open(ctx context.Context, file string) (*Asset, error) {
	rc, err := s.files.Open(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("opening project file: %w", err)
	}

	head := make([]byte, sniffLen)

	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		rc.Close()
		return nil, fmt.Errorf("reading project file: %w", err)
	}

	head = head[:n]

	size, err := s.files.Stat(ctx, file)
	if err != nil {
		size = -1
	}

	return &Asset{
		Body:        sniffedBody{Reader: io.MultiReader(bytes.NewReader(head), rc), Closer: rc},
		Name:        path.Base(file),
		ContentType: mimetype.Detect(head).String(),
		Size:        size,
	}, nil
}
