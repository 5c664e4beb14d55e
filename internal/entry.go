// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/ooker777/breadcrumbs/internal/api"
	"github.com/ooker777/breadcrumbs/internal/index"
	"github.com/ooker777/breadcrumbs/internal/indexservice"
	"github.com/ooker777/breadcrumbs/internal/mcpserver"
	"github.com/ooker777/breadcrumbs/internal/sink"
	"github.com/ooker777/breadcrumbs/internal/sse"
	"github.com/ooker777/breadcrumbs/internal/storage"
)

// workspace is an opened and synced vault.
type workspace struct {
	store *storage.FS
	db    *index.DB
	svc   *indexservice.Service
}

func (w *workspace) Close() error {
	return w.db.Close()
}

// open prepares storage and the index, then brings the index up to date.
func (a *application) open() (*workspace, error) {
	if a.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := a.config
	if a.logger == nil {
		a.logger = NewJSONLogger(os.Stdout, cfg.App.LogLevel)
	}

	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	if err := index.Sync(db, store, cfg.Hierarchy.Fields(), a.logger); err != nil {
		a.logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return &workspace{
		store: store,
		db:    db,
		svc:   indexservice.New(db, cfg.Index.MaxSteps, a.logger),
	}, nil
}

func (a *application) watcher(ws *workspace, onChange index.ChangeFunc) *index.Watcher {
	return &index.Watcher{
		DB:       ws.db,
		Store:    ws.store,
		Root:     ws.store.Root(),
		Fields:   a.config.Hierarchy.Fields(),
		Logger:   a.logger,
		OnChange: onChange,
	}
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	ws, err := app.open()
	if err != nil {
		return err
	}
	defer ws.Close()

	cfg := app.config
	logger := app.logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()),
		slog.Bool("auth_enabled", cfg.Auth.AuthEnabled()))

	broker := sse.NewBroker(500 * time.Millisecond)
	defer broker.Close()

	apiRouter := api.NewRouter(ws.svc, ws.db, cfg.Index.Options(), cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health and metrics endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := ws.db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watcher changes reach SSE clients as hierarchy events.
	g.Go(func() error {
		return app.watcher(ws, broker.NoteChanged).Run(gCtx)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Shutdown does not wait for streaming handlers; closing the broker ends them.
		broker.Close()
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// LocalIndex builds the index below note and delivers it to sinkName, or to
// the configured sink when sinkName is empty.
func LocalIndex(ctx context.Context, note, sinkName string, opts ...Option) error {
	app := newApplication(opts)
	ws, err := app.open()
	if err != nil {
		return err
	}
	defer ws.Close()

	res, err := ws.svc.LocalIndex(ctx, note, app.config.Index.Options())
	if err != nil {
		return err
	}
	return app.deliver(ctx, ws, sinkName, res)
}

// GlobalIndex builds the index of every top-level note and delivers it.
func GlobalIndex(ctx context.Context, sinkName string, opts ...Option) error {
	app := newApplication(opts)
	ws, err := app.open()
	if err != nil {
		return err
	}
	defer ws.Close()

	res, err := ws.svc.GlobalIndex(ctx, app.config.Index.Options())
	if err != nil {
		return err
	}
	return app.deliver(ctx, ws, sinkName, res)
}

func (a *application) deliver(ctx context.Context, ws *workspace, sinkName string, res *indexservice.Result) error {
	if sinkName == "" {
		sinkName = a.config.Output.Sink
	}
	s, err := sink.New(sinkName, a.config.Output.File, ws.store, a.out)
	if err != nil {
		return err
	}
	if res.Truncated {
		a.logger.Warn("index truncated; raise index.max_steps for the full outline",
			slog.String("build_id", res.BuildID))
	}
	if err := s.Deliver(ctx, res.Text); err != nil {
		return err
	}
	a.logger.Debug("index delivered", slog.String("build_id", res.BuildID), slog.String("sink", sinkName))
	return nil
}

// ServeMCP serves the MCP tools over stdio while the watcher keeps the index current.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	ws, err := app.open()
	if err != nil {
		return err
	}
	defer ws.Close()

	srv := mcpserver.New(ws.svc, ws.db, app.config.Index.Options(), app.version)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.watcher(ws, nil).Run(gCtx)
	})
	g.Go(func() error {
		defer cancel()
		return srv.ServeStdio()
	})
	return g.Wait()
}
