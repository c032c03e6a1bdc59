package app

import (
	"database/sql"
	"log/slog"
	"slices"

	"github.com/thenoetrevino/boardsync/internal/access"
	"github.com/thenoetrevino/boardsync/internal/database"
	"github.com/thenoetrevino/boardsync/internal/events"
	"github.com/thenoetrevino/boardsync/internal/registry"
	boardservice "github.com/thenoetrevino/boardsync/internal/services/board"
	cardservice "github.com/thenoetrevino/boardsync/internal/services/card"
	columnservice "github.com/thenoetrevino/boardsync/internal/services/column"
	commentservice "github.com/thenoetrevino/boardsync/internal/services/comment"
)

// hubs lists the hub names in a stable order.
var hubs = []string{events.HubBoards, events.HubColumns, events.HubCards, events.HubComments, events.HubAccess}

// App holds all application services and provides dependency injection.
// This is the main application container that manages service lifecycles.
type App struct {
	// Repository layer (direct database access)
	repo *database.Repository

	// One connection registry per realtime hub
	registries map[string]*registry.Registry

	// Service layer (business logic)
	ColumnService  columnservice.Service
	CardService    cardservice.Service
	CommentService commentservice.Service
	BoardService   boardservice.Service
}

// New creates a new App with all services initialized.
// Column, card and comment changes are routed through the registry of their
// hub, access changes through the access hub. Board-wide changes reach every
// hub whose connections follow boards.
func New(db *sql.DB, opts ...Option) *App {
	cfg := appConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	repo := database.NewRepository(db)
	var resolver access.Resolver = repo.Boards
	if cfg.resolver != nil {
		resolver = cfg.resolver
	}

	registries := make(map[string]*registry.Registry, len(hubs))
	for _, hub := range hubs {
		registries[hub] = registry.New(hub, registry.WithLogger(cfg.logger))
	}
	presence := registry.Set{
		registries[events.HubBoards],
		registries[events.HubColumns],
		registries[events.HubCards],
		registries[events.HubComments],
	}

	return &App{
		repo:           repo,
		registries:     registries,
		ColumnService:  columnservice.NewService(repo.Columns, resolver, registries[events.HubColumns], cfg.logger),
		CardService:    cardservice.NewService(repo.Cards, repo.Columns, resolver, registries[events.HubCards], cfg.logger),
		CommentService: commentservice.NewService(repo.Comments, repo.Cards, resolver, registries[events.HubComments], cfg.logger),
		BoardService:   boardservice.NewService(repo.Boards, registries[events.HubAccess], presence, cfg.logger),
	}
}

// Repo returns the underlying repository for direct database access.
func (a *App) Repo() *database.Repository {
	return a.repo
}

// Registry returns the connection registry of a hub, nil for unknown hubs.
func (a *App) Registry(hub string) *registry.Registry {
	return a.registries[hub]
}

// Hubs lists the hub names in a stable order.
func (a *App) Hubs() []string {
	return slices.Clone(hubs)
}

// Close tears down the registries. The database is owned by the caller.
func (a *App) Close() error {
	for _, r := range a.registries {
		r.Close()
	}
	return nil
}
