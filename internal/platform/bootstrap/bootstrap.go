// Package bootstrap assembles the ledger, services and optional member register shared by the
// server and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/SscSPs/coop_backoffice/internal/core/services"
	"github.com/SscSPs/coop_backoffice/internal/middleware"
	"github.com/SscSPs/coop_backoffice/internal/parser"
	"github.com/SscSPs/coop_backoffice/internal/platform/config"
	"github.com/SscSPs/coop_backoffice/internal/platform/store"
	"github.com/SscSPs/coop_backoffice/internal/repositories/ledger"
	"github.com/SscSPs/coop_backoffice/internal/utils"
)

// App holds the wired application.
type App struct {
	Config   *config.Config
	Repo     *ledger.Repository
	Services *portssvc.ServiceContainer
	Posthog  *utils.PosthogClientWrapper
	closers  []func()
}

// New opens the configured store and wires every service on top of it.
func New(ctx context.Context, cfg *config.Config, migrationsPath string, logger *slog.Logger) (*App, error) {
	ledgerStore, closeStore, err := store.Open(ctx, cfg, migrationsPath, logger)
	if err != nil {
		return nil, err
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	repo := ledger.NewRepository(ledgerStore)
	app := &App{
		Config:   cfg,
		Repo:     repo,
		Services: services.NewServiceContainer(cfg, repo, parser.NewFileParser(cfg.Import.MaxRows), posthogClient),
		Posthog:  posthogClient,
		closers:  []func(){closeStore, posthogClient.Close},
	}

	if cfg.MembersFile != "" {
		if _, err := app.LoadMembers(middleware.WithLogger(ctx, logger), cfg.MembersFile); err != nil {
			app.Close()
			return nil, err
		}
	}
	return app, nil
}

// LoadMembers registers the members listed in a member register CSV.
func (a *App) LoadMembers(ctx context.Context, path string) (*portssvc.MemberLoadResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read member file %s: %w", path, err)
	}
	members, err := parser.ParseMembers(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("member file %s: %w", path, err)
	}
	return a.Services.Members.RegisterMembers(ctx, members)
}

// Close releases the store and flushes PostHog, in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
