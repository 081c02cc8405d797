package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/netip"

	"github.com/MrJamesThe3rd/projectlibrary/internal/download"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// RecordDownload appends an audit row. Unparseable addresses are stored as NULL.
func (s *Store) RecordDownload(ctx context.Context, r *download.Record) error {
	query := `
		INSERT INTO downloads (user_id, project_id, order_id, ip_address, downloaded_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, downloaded_at
	`

	var ip sql.NullString
	if addr, err := netip.ParseAddr(r.IPAddress); err == nil {
		ip = sql.NullString{String: addr.String(), Valid: true}
	}

	err := s.db.QueryRowContext(ctx, query, r.UserID, r.ProjectID, r.OrderID, ip).Scan(&r.ID, &r.DownloadedAt)
	if err != nil {
		return fmt.Errorf("recording download: %w", err)
	}

	return nil
}
