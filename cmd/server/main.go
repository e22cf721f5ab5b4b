package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valislegal/valis/internal/app"
	"github.com/valislegal/valis/internal/auth"
	"github.com/valislegal/valis/internal/config"
	"github.com/valislegal/valis/internal/export"
	"github.com/valislegal/valis/internal/inbox"
	"github.com/valislegal/valis/internal/mcp"
	"github.com/valislegal/valis/internal/memstore"
	"github.com/valislegal/valis/internal/metrics"
	"github.com/valislegal/valis/internal/redis"
	"github.com/valislegal/valis/internal/sqlite"
	"github.com/valislegal/valis/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == config.ModeStdio {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openRepositories(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var cache export.Cache
	if cfg.Redis.Addr != "" {
		client, err := redis.NewClient(ctx, cfg.Redis.Addr)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		cache = redis.NewExportCache(client, cfg.Export.CacheTTL)
		logger.Info("export cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Export.CacheTTL)
	}

	m := metrics.New()
	a := app.New(app.Config{
		Repositories:  repos,
		Agents:        cfg.Agents,
		DispatchDelay: cfg.Dispatch.Delay,
		ExportCache:   cache,
		Metrics:       m,
		Logger:        logger,
	})
	defer a.Close()

	resolver := auth.NewJWTResolver(cfg.Auth.JWTSecret)
	mcpServer := mcp.NewServer(mcp.Config{
		Services:      a.Services(),
		Resolver:      resolver,
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: cfg.Transport.Mode,
		Logger:        logger,
	})

	if cfg.Inbox.Dir != "" {
		watcher, err := inbox.New(inbox.Config{
			Dir:      cfg.Inbox.Dir,
			TenantID: cfg.Inbox.TenantID,
			Uploader: a.Documents,
			Metrics:  m,
			Logger:   logger,
		})
		if err != nil {
			return fmt.Errorf("inbox: %w", err)
		}
		wait := watcher.Start(ctx)
		// Runs before a.Close and closeStore so an in-flight import finishes
		// against an open store.
		defer func() {
			stop()
			if err := wait(); err != nil {
				logger.Error("inbox watcher stopped", "error", err)
			}
		}()
	}

	if cfg.Transport.Mode == config.ModeStdio {
		return runStdioMode(ctx, logger, mcpServer)
	}

	var authMW func(http.Handler) http.Handler
	if cfg.Auth.Enabled {
		authMW = transport.AuthMiddleware(resolver)
	}
	handler := transport.NewServer(transport.Options{
		Handler:  mcp.NewHandler(a.Services()),
		Exporter: a.Export,
		Uploader: a.Documents,
		Auth:     authMW,
		MCP:      newMCPHandler(mcpServer),
		Metrics:  m.Handler(),
		Recorder: m,
		Logger:   logger,
	})
	return runHTTPMode(ctx, logger, handler, cfg.Server.Host, cfg.Server.Port)
}

func openRepositories(cfg config.Config, logger *slog.Logger) (app.Repositories, func(), error) {
	if cfg.DB.Driver == config.DriverMemory {
		logger.Info("using in-memory store")
		return app.MemoryRepositories(memstore.New()), func() {}, nil
	}

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return app.Repositories{}, nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return app.Repositories{}, nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return app.Repositories{}, nil, err
	}
	logger.Info("database ready", "path", cfg.DB.Path)
	return app.SQLiteRepositories(db), func() { db.Close() }, nil
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	// Run blocks until stdin closes or the context is canceled.
	err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func newMCPHandler(mcpServer *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, handler http.Handler, host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
