// Package app assembles the workspace services over a storage backend.
package app

import (
	"log/slog"
	"time"

	"github.com/valislegal/valis/internal/dispatch"
	"github.com/valislegal/valis/internal/domain/activity"
	"github.com/valislegal/valis/internal/domain/collection"
	"github.com/valislegal/valis/internal/domain/conversation"
	"github.com/valislegal/valis/internal/domain/document"
	"github.com/valislegal/valis/internal/domain/project"
	"github.com/valislegal/valis/internal/export"
	"github.com/valislegal/valis/internal/mcp"
	"github.com/valislegal/valis/internal/memstore"
	"github.com/valislegal/valis/internal/metrics"
	"github.com/valislegal/valis/internal/sqlite"
)

// Repositories is one storage backend.
type Repositories struct {
	Projects    project.Repository
	Collections collection.Repository
	Documents   document.Repository
	Activity    activity.Repository
	Messages    conversation.MessageRepository
	Drafts      conversation.DraftRepository
}

// SQLiteRepositories returns the repositories of a migrated database.
func SQLiteRepositories(db *sqlite.DB) Repositories {
	return Repositories{
		Projects:    sqlite.NewProjectRepository(db),
		Collections: sqlite.NewCollectionRepository(db),
		Documents:   sqlite.NewDocumentRepository(db),
		Activity:    sqlite.NewActivityRepository(db),
		Messages:    sqlite.NewMessageRepository(db),
		Drafts:      sqlite.NewDraftRepository(db),
	}
}

// MemoryRepositories returns the repositories of an in-memory store.
func MemoryRepositories(store *memstore.Store) Repositories {
	r := store.Repositories()
	return Repositories{
		Projects:    r.Projects,
		Collections: r.Collections,
		Documents:   r.Documents,
		Activity:    r.Activity,
		Messages:    r.Messages,
		Drafts:      r.Drafts,
	}
}

// Config configures New. ExportCache and Metrics are optional.
type Config struct {
	Repositories  Repositories
	Agents        []conversation.Agent
	DispatchDelay time.Duration
	Responder     dispatch.Responder
	ExportCache   export.Cache
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
}

// App holds the wired services.
type App struct {
	Projects     *project.Service
	Collections  *collection.Service
	Documents    *document.Service
	Activity     *activity.Service
	Conversation *conversation.Service
	Dispatcher   *dispatch.Dispatcher
	Export       *export.Service
}

// New wires every service over cfg.Repositories.
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	repos := cfg.Repositories

	a := &App{
		Projects:     project.NewService(repos.Projects, repos.Activity, logger),
		Collections:  collection.NewService(repos.Collections, repos.Activity, logger),
		Documents:    document.NewService(repos.Documents, repos.Projects, repos.Activity, logger),
		Activity:     activity.NewService(repos.Activity, logger),
		Conversation: conversation.NewService(cfg.Agents, repos.Messages, repos.Drafts, logger),
	}

	exportCfg := export.Config{Cache: cfg.ExportCache, Logger: logger}
	dispatchCfg := dispatch.Config{
		Conversation: a.Conversation,
		Documents:    a.Documents,
		Activity:     a.Activity,
		Responder:    cfg.Responder,
		Delay:        cfg.DispatchDelay,
		Logger:       logger,
	}
	if cfg.Metrics != nil {
		exportCfg.Metrics = cfg.Metrics
		dispatchCfg.Metrics = cfg.Metrics
	}
	a.Export = export.NewService(a.Documents, export.NewExporter(exportCfg), repos.Activity, logger)
	a.Dispatcher = dispatch.New(dispatchCfg)
	return a
}

// Services returns the MCP and JSON-RPC view of the app.
func (a *App) Services() mcp.Services {
	return mcp.Services{
		Projects:     a.Projects,
		Collections:  a.Collections,
		Documents:    a.Documents,
		Activity:     a.Activity,
		Conversation: a.Conversation,
		Dispatcher:   a.Dispatcher,
		Export:       a.Export,
	}
}

// Close stops in-flight agent tasks.
func (a *App) Close() error {
	return a.Dispatcher.Close()
}
