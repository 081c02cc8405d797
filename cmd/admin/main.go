package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/projectlibrary/internal/config"
	"github.com/MrJamesThe3rd/projectlibrary/internal/database"
	"github.com/MrJamesThe3rd/projectlibrary/internal/logger"
)

// env is opened once by the root command and shared by every subcommand.
type env struct {
	cfg *config.Config
	db  *sql.DB
}

func main() {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:           "admin",
		Short:         "Maintenance tasks for the project library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger.Init(cfg.App.Env)

			db, err := database.New(cfg.ConnectionString())
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}

			e.cfg, e.db = cfg, db

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.db != nil {
				e.db.Close()
			}
		},
	}

	rootCmd.AddCommand(migrateCmd(e))
	rootCmd.AddCommand(importCatalogCmd(e))
	rootCmd.AddCommand(requestsCmd(e))
	rootCmd.AddCommand(orderStatusCmd(e))
	rootCmd.AddCommand(staffCmd(e))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(cmd.Context(), e.db); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")

			return nil
		},
	}
}
