// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/quire/internal/api"
	"github.com/starford/quire/internal/kv"
	"github.com/starford/quire/internal/mcpserver"
	"github.com/starford/quire/internal/metrics"
	"github.com/starford/quire/internal/notestore"
	"github.com/starford/quire/internal/persistence"
	"github.com/starford/quire/internal/sse"
	"github.com/starford/quire/internal/storage"
	"github.com/starford/quire/internal/watcher"
)

const (
	shutdownTimeout = 10 * time.Second
	graphThrottle   = 2 * time.Second
)

// runtime is the wired object graph shared by every entry point.
type runtime struct {
	cfg     *Config
	logger  *slog.Logger
	files   *storage.FS
	desktop *persistence.DesktopBridge
	kv      kv.Store
	metrics *metrics.Collector
	store   *notestore.Store
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(level slog.Level, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// build wires storage, persistence and the store, then loads saved state.
// observers receive every store event.
func build(ctx context.Context, cfg *Config, logger *slog.Logger, observers ...func(notestore.Event)) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logger, metrics: metrics.New("quire")}

	files, err := storage.NewFS(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	rt.files = files

	var bridge persistence.HostBridge
	if cfg.Storage.UsesBridge() {
		rt.desktop = persistence.NewDesktopBridge(files, cfg.Storage.FileName, logger)
		bridge = rt.desktop
	} else {
		rt.kv, err = kv.Open(cfg.Storage.KV.Driver, cfg.Storage.KVPath())
		if err != nil {
			return nil, fmt.Errorf("init kv: %w", err)
		}
	}

	gw, err := persistence.NewGateway(bridge, rt.kv,
		persistence.WithLogger(logger),
		persistence.WithMetrics(rt.metrics),
	)
	if err != nil {
		rt.closeKV()
		return nil, fmt.Errorf("init persistence: %w", err)
	}

	storeOpts := []notestore.Option{
		notestore.WithLogger(logger),
		notestore.WithWriter(persistence.NewWriter(gw, logger)),
		notestore.WithObserver(func(e notestore.Event) { rt.metrics.ObserveEvent(e.Kind) }),
	}
	if cfg.Store.Seed {
		storeOpts = append(storeOpts, notestore.WithSeed())
	}
	for _, fn := range observers {
		storeOpts = append(storeOpts, notestore.WithObserver(fn))
	}
	rt.store = notestore.New(storeOpts...)

	if err := rt.store.Load(ctx); err != nil {
		logger.Warn("saved state not loaded, keeping defaults", slog.String("error", err.Error()))
	}
	return rt, nil
}

// close flushes pending saves and releases the key-value store.
func (rt *runtime) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := rt.store.Close(ctx); err != nil {
		rt.logger.Error("final save failed", slog.String("error", err.Error()))
	}
	rt.closeKV()
}

func (rt *runtime) closeKV() {
	if rt.kv == nil {
		return
	}
	if err := rt.kv.Close(); err != nil {
		rt.logger.Error("kv close failed", slog.String("error", err.Error()))
	}
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg.App.LogLevel, app.logOutput)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("backend", cfg.Storage.Backend),
		slog.String("data_dir", cfg.Storage.DataDir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(graphThrottle)
	defer broker.Close()

	rt, err := build(ctx, cfg, logger, func(e notestore.Event) {
		broker.PublishChange(e.Kind, e.ID)
	})
	if err != nil {
		return err
	}
	defer rt.close()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           rt.router(broker, app.version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload when the data file is edited outside this process.
	if rt.desktop != nil && cfg.Storage.Watch {
		g.Go(func() error {
			if err := watcher.Watch(gCtx, rt.desktop, rt.store.Reload, logger); err != nil {
				logger.Warn("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// router builds the top-level HTTP handler.
func (rt *runtime) router(broker *sse.Broker, version string) http.Handler {
	cfg := rt.cfg

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.HTTP.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","version":%q}`, version)
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","backend":%q}`, cfg.Storage.Backend)
	})
	r.Handle("/metrics", rt.metrics.Handler())

	// Attachments are referenced from note content by absolute URL.
	r.Get("/attachments/{filename}", api.NewAttachmentHandler(rt.store, rt.files).ServeFile)

	r.Mount("/api", api.NewRouter(rt.store, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, rt.files))
	return r
}

// RunMCP serves the MCP tools on stdin/stdout until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := newLogger(app.config.App.LogLevel, app.logOutput)

	rt, err := build(ctx, app.config, logger)
	if err != nil {
		return err
	}
	defer rt.close()

	logger.Info("MCP server starting", slog.String("backend", app.config.Storage.Backend))
	return mcpserver.New(rt.store, rt.files, app.version).ServeStdio()
}

// Export writes the persisted state to path.
func Export(ctx context.Context, path string, opts ...Option) error {
	return withStore(ctx, opts, func(store *notestore.Store) error {
		return store.Export(ctx, path)
	})
}

// Import appends the notes and folders stored at path and saves the result.
func Import(ctx context.Context, path string, opts ...Option) (notestore.ImportSummary, error) {
	var sum notestore.ImportSummary
	err := withStore(ctx, opts, func(store *notestore.Store) error {
		var err error
		sum, err = store.Import(ctx, path)
		if err != nil {
			return err
		}
		return store.Save(ctx)
	})
	return sum, err
}

func withStore(ctx context.Context, opts []Option, fn func(*notestore.Store) error) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := newLogger(app.config.App.LogLevel, app.logOutput)

	rt, err := build(ctx, app.config, logger)
	if err != nil {
		return err
	}
	defer rt.close()
	return fn(rt.store)
}
