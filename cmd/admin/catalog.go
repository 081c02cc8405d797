package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/projectlibrary/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/projectlibrary/internal/catalog/store"
	"github.com/MrJamesThe3rd/projectlibrary/internal/importer"
	"github.com/MrJamesThe3rd/projectlibrary/internal/storage"
)

func importCatalogCmd(e *env) *cobra.Command {
	var (
		dryRun    bool
		assetsDir string
	)

	cmd := &cobra.Command{
		Use:   "import-catalog [csv-file]",
		Short: "Create catalog projects from a CSV file",
		Long: `Create catalog projects from a CSV file.

The header row must contain title, short_description, long_description,
technology, price and file. image, featured and demo_video_url are optional.
Semicolon or comma separators and Latin-1/Windows-1252 files are accepted.

With --assets, the file and image paths of each row are read from that
directory and copied into STORAGE_PATH. Rows whose assets are missing are
skipped.

Examples:
  admin import-catalog projects.csv
  admin import-catalog projects.csv --dry-run
  admin import-catalog projects.csv --assets ./upload`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc := importer.NewService(catalog.NewService(catalogStore.New(e.db)))

			if assetsDir != "" {
				files, err := storage.NewLocal(e.cfg.Storage.Path)
				if err != nil {
					return err
				}

				svc.WithAssets(os.DirFS(assetsDir), files)
			}

			report, err := svc.Import(cmd.Context(), f, dryRun)

			if report != nil {
				out := cmd.OutOrStdout()

				for _, rowErr := range report.Errors {
					fmt.Fprintln(out, "skipped", rowErr.Error())
				}

				for _, p := range report.Created {
					fmt.Fprintf(out, "created %s (%s)\n", p.Slug, p.Technology)
				}

				fmt.Fprintf(out, "%d rows parsed, %d created, %d skipped\n",
					report.Parsed, len(report.Created), len(report.Errors))
			}

			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and report without creating projects")
	cmd.Flags().StringVar(&assetsDir, "assets", "", "directory holding the files and images named in the CSV")

	return cmd
}
