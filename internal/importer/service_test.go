package importer_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/projectlibrary/internal/catalog"
	"github.com/MrJamesThe3rd/projectlibrary/internal/importer"
	"github.com/MrJamesThe3rd/projectlibrary/internal/storage"
	"github.com/MrJamesThe3rd/projectlibrary/internal/validation"
)

const catalogCSV = header +
	"Attendance System,Short,Long,Python,499,a.zip,,,\n" +
	"Duplicate,Short,Long,Java,299,,,,\n" +
	"Unknown,Short,Long,Fortran,10,c.zip,,,\n"

func TestService_Import(t *testing.T) {
	type testCase struct {
		name        string
		dryRun      bool
		setupMock   func(m *importer.MockCatalog)
		wantErr     bool
		wantCreated int
		wantErrors  int
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *importer.MockCatalog) {
				m.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p catalog.CreateParams) (*catalog.Project, error) {
						return &catalog.Project{Title: p.Title, Slug: "attendance-system"}, nil
					})
				m.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(nil, validation.Field("file", "this field is required"))
			},
			wantCreated: 1,
			wantErrors:  2,
		},
		{
			name:       "DryRun",
			dryRun:     true,
			setupMock:  func(m *importer.MockCatalog) {},
			wantErrors: 1,
		},
		{
			name: "RepositoryFailure",
			setupMock: func(m *importer.MockCatalog) {
				m.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
			},
			wantErr:    true,
			wantErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			cat := importer.NewMockCatalog(ctrl)
			tt.setupMock(cat)

			report, err := importer.NewService(cat).Import(context.Background(), strings.NewReader(catalogCSV), tt.dryRun)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			require.NotNil(t, report)
			assert.Equal(t, 2, report.Parsed)
			assert.Len(t, report.Created, tt.wantCreated)
			assert.Len(t, report.Errors, tt.wantErrors)
		})
	}
}

const assetCSV = header +
	"Attendance System,Short,Long,Python,499,project_files/attendance.zip,project_images/attendance.png,,\n" +
	"Billing System,Short,Long,Java,299,project_files/billing.zip,,,\n"

func TestService_Import_Assets(t *testing.T) {
	type testCase struct {
		name        string
		dryRun      bool
		src         fstest.MapFS
		setupMock   func(c *importer.MockCatalog, a *importer.MockAssets)
		wantErr     bool
		wantCreated int
		wantErrors  int
	}

	allAssets := fstest.MapFS{
		"project_files/attendance.zip":  {Data: []byte("attendance")},
		"project_images/attendance.png": {Data: []byte("png")},
		"project_files/billing.zip":     {Data: []byte("billing")},
	}

	created := func(_ context.Context, p catalog.CreateParams) (*catalog.Project, error) {
		return &catalog.Project{Title: p.Title, Slug: catalog.Slugify(p.Title)}, nil
	}

	tests := []testCase{
		{
			name: "CopiesFileAndImage",
			src:  allAssets,
			setupMock: func(c *importer.MockCatalog, a *importer.MockAssets) {
				saved := map[string]string{}
				record := func(_ context.Context, path string, r io.Reader) error {
					b, err := io.ReadAll(r)
					saved[path] = string(b)
					return err
				}

				gomock.InOrder(
					a.EXPECT().Save(gomock.Any(), "project_files/attendance.zip", gomock.Any()).DoAndReturn(record),
					a.EXPECT().Save(gomock.Any(), "project_images/attendance.png", gomock.Any()).DoAndReturn(record),
					c.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(created),
					a.EXPECT().Save(gomock.Any(), "project_files/billing.zip", gomock.Any()).
						DoAndReturn(func(ctx context.Context, path string, r io.Reader) error {
							err := record(ctx, path, r)
							assert.Equal(t, map[string]string{
								"project_files/attendance.zip":  "attendance",
								"project_images/attendance.png": "png",
								"project_files/billing.zip":     "billing",
							}, saved)
							return err
						}),
					c.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(created),
				)
			},
			wantCreated: 2,
		},
		{
			name: "MissingAssetSkipsRow",
			src: fstest.MapFS{
				"project_files/billing.zip": {Data: []byte("billing")},
			},
			setupMock: func(c *importer.MockCatalog, a *importer.MockAssets) {
				a.EXPECT().Save(gomock.Any(), "project_files/billing.zip", gomock.Any()).Return(nil)
				c.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(created)
			},
			wantCreated: 1,
			wantErrors:  1,
		},
		{
			name:       "DryRunReportsMissingAssets",
			dryRun:     true,
			src:        fstest.MapFS{},
			setupMock:  func(c *importer.MockCatalog, a *importer.MockAssets) {},
			wantErrors: 2,
		},
		{
			name: "SaveFailureAborts",
			src:  allAssets,
			setupMock: func(c *importer.MockCatalog, a *importer.MockAssets) {
				a.EXPECT().Save(gomock.Any(), "project_files/attendance.zip", gomock.Any()).Return(errors.New("disk full"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			cat := importer.NewMockCatalog(ctrl)
			assets := importer.NewMockAssets(ctrl)
			tt.setupMock(cat, assets)

			svc := importer.NewService(cat).WithAssets(tt.src, assets)

			report, err := svc.Import(context.Background(), strings.NewReader(assetCSV), tt.dryRun)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			require.NotNil(t, report)
			assert.Equal(t, 2, report.Parsed)
			assert.Len(t, report.Created, tt.wantCreated)
			assert.Len(t, report.Errors, tt.wantErrors)

			for _, rowErr := range report.Errors {
				assert.ErrorIs(t, rowErr.Err, importer.ErrAssetMissing)
			}
		})
	}
}

func TestService_Import_AssetOutsideSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	input := header + "Escape,Short,Long,Python,499,../secrets.zip,,,\n"

	report, err := importer.NewService(importer.NewMockCatalog(ctrl)).
		WithAssets(fstest.MapFS{}, importer.NewMockAssets(ctrl)).
		Import(context.Background(), strings.NewReader(input), false)
	require.NoError(t, err)

	require.Len(t, report.Errors, 1)
	assert.ErrorIs(t, report.Errors[0].Err, importer.ErrAssetMissing)
	assert.Empty(t, report.Created)
}

func TestService_Import_IntoLocalStorage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	files, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	cat := importer.NewMockCatalog(ctrl)
	cat.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&catalog.Project{Slug: "attendance-system"}, nil).Times(2)

	src := fstest.MapFS{
		"project_files/attendance.zip":  {Data: []byte("attendance")},
		"project_images/attendance.png": {Data: []byte("png")},
		"project_files/billing.zip":     {Data: []byte("billing")},
	}

	_, err = importer.NewService(cat).WithAssets(src, files).
		Import(context.Background(), strings.NewReader(assetCSV), false)
	require.NoError(t, err)

	size, err := files.Stat(context.Background(), "project_files/attendance.zip")
	require.NoError(t, err)
	assert.Equal(t, int64(len("attendance")), size)

	rc, err := files.Open(context.Background(), "project_images/attendance.png")
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png", string(b))
}
