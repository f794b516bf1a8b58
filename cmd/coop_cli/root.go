package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/coop_backoffice/internal/middleware"
	"github.com/SscSPs/coop_backoffice/internal/platform/bootstrap"
	"github.com/SscSPs/coop_backoffice/internal/platform/config"
	"github.com/SscSPs/coop_backoffice/internal/platform/store"
	"github.com/spf13/cobra"
)

var (
	userID         string
	membersFile    string
	migrationsPath string
	verbose        bool
)

var rootCmd = &cobra.Command{
	Use:   "coop_cli",
	Short: "Cooperative back office: import member payments and check the ledger",
	Long: `coop_cli drives the same services as the HTTP API against the configured ledger store
(STORE_DRIVER, PGSQL_URL and the other environment variables the server reads).

With the in-memory store nothing survives the process, so pass --members to load the
member register before importing.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&userID, "user", "cli", "User id recorded on transactions and audit records")
	rootCmd.PersistentFlags().StringVar(&membersFile, "members", "", "Member register CSV to load before running the command")
	rootCmd.PersistentFlags().StringVar(&migrationsPath, "migrations", store.DefaultMigrationsPath, "Migration source for the postgres store")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(templateCmd, importCmd, checkCmd, membersCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openApp loads config, wires the application and returns a context carrying the CLI user and logger.
func openApp(ctx context.Context) (context.Context, *bootstrap.App, error) {
	logger := newLogger()
	cfg, err := config.LoadConfig()
	if err != nil {
		return ctx, nil, err
	}
	if membersFile != "" {
		cfg.MembersFile = membersFile
	}

	ctx = middleware.WithUserID(ctx, userID)
	ctx = middleware.WithLogger(ctx, logger.With(slog.String("user_id", userID)))

	app, err := bootstrap.New(ctx, cfg, migrationsPath, logger)
	if err != nil {
		return ctx, nil, err
	}
	return ctx, app, nil
}
