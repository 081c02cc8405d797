package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/MrJamesThe3rd/projectlibrary/internal/catalog"
	"github.com/MrJamesThe3rd/projectlibrary/internal/validation"
)

//go:generate mockgen -source=service.go -destination=catalog_mock.go -package=importer
type Catalog interface {
	Create(ctx context.Context, params catalog.CreateParams) (*catalog.Project, error)
}

// Assets receives the project files and images referenced by imported rows.
type Assets interface {
	Save(ctx context.Context, path string, r io.Reader) error
}

var ErrAssetMissing = errors.New("asset not found")

type Service struct {
	catalog Catalog

	src    fs.FS
	assets Assets
}

func NewService(c Catalog) *Service {
	return &Service{catalog: c}
}

// WithAssets makes Import copy each row's file and image from src into dst
// under the same relative path. Rows whose assets are missing from src are
// reported and skipped.
func (s *Service) WithAssets(src fs.FS, dst Assets) *Service {
	s.src = src
	s.assets = dst

	return s
}

// Report summarises one import run.
type Report struct {
	Parsed  int
	Created []*catalog.Project
	Errors  []RowError
}

// Import loads projects from a catalog CSV. Rows that fail parsing or validation
// are collected in the report; any other failure aborts the run and returns the
// partial report alongside the error. With dryRun set nothing is written.
func (s *Service) Import(ctx context.Context, r io.Reader, dryRun bool) (*Report, error) {
	rows, rowErrs, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	report := &Report{Parsed: len(rows), Errors: rowErrs}

	if s.src != nil {
		rows = s.checkAssets(rows, report)
	}

	if dryRun {
		return report, nil
	}

	for _, row := range rows {
		if s.src != nil {
			if err := s.copyAssets(ctx, row); err != nil {
				return report, fmt.Errorf("line %d: %w", row.Line, err)
			}
		}

		p, err := s.catalog.Create(ctx, row.Params)
		if err != nil {
			if _, ok := validation.AsError(err); ok {
				report.Errors = append(report.Errors, RowError{Line: row.Line, Err: err})
				continue
			}

			return report, fmt.Errorf("line %d: creating project: %w", row.Line, err)
		}

		slog.Info("imported project", "line", row.Line, "slug", p.Slug)
		report.Created = append(report.Created, p)
	}

	return report, nil
}

func assetPaths(p catalog.CreateParams) []string {
	var paths []string
	for _, path := range []string{p.File, p.Image} {
		if path != "" {
			paths = append(paths, path)
		}
	}

	return paths
}

// checkAssets drops rows referencing an asset that src does not hold.
func (s *Service) checkAssets(rows []Row, report *Report) []Row {
	kept := rows[:0:0]

	for _, row := range rows {
		var missing error

		for _, path := range assetPaths(row.Params) {
			if !fs.ValidPath(path) {
				missing = fmt.Errorf("%w: invalid path %q", ErrAssetMissing, path)
				break
			}

			if _, err := fs.Stat(s.src, path); err != nil {
				missing = fmt.Errorf("%w: %s", ErrAssetMissing, path)
				break
			}
		}

		if missing != nil {
			report.Errors = append(report.Errors, RowError{Line: row.Line, Err: missing})
			continue
		}

		kept = append(kept, row)
	}

	return kept
}

func (s *Service) copyAssets(ctx context.Context, row Row) error {
	for _, path := range assetPaths(row.Params) {
		if err := s.copyAsset(ctx, path); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) copyAsset(ctx context.Context, path string) error {
	f, err := s.src.Open(path)
	if err != nil {
		return fmt.Errorf("opening asset: %w", err)
	}
	defer f.Close()

	if err := s.assets.Save(ctx, path, f); err != nil {
		return fmt.Errorf("saving asset %s: %w", path, err)
	}

	slog.Debug("copied asset", "path", path)

	return nil
}
