package download

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrNotEntitled is the only outcome callers outside the service should act on.
// The wrapped variants exist for logs and tests.
var ErrNotEntitled = errors.New("not entitled to download")

var (
	ErrUnknownOrder = fmt.Errorf("%w: unknown order", ErrNotEntitled)
	ErrWrongOwner   = fmt.Errorf("%w: order belongs to another user", ErrNotEntitled)
	ErrNotPaid      = fmt.Errorf("%w: order is not completed", ErrNotEntitled)
)

// Record is the audit entry written for every released file.
type Record struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	ProjectID    uuid.UUID
	OrderID      uuid.UUID
	IPAddress    string
	DownloadedAt time.Time
}

// Asset is an opened project file ready to be streamed. Callers must close Body.
type Asset struct {
	Body        io.ReadCloser
	Name        string
	ContentType string
	Size        int64
}
