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
	"golang.org/x/sync/errgroup"

	"github.com/starford/chordanalyzr/internal/api"
	"github.com/starford/chordanalyzr/internal/catalog"
	"github.com/starford/chordanalyzr/internal/chordservice"
	"github.com/starford/chordanalyzr/internal/export"
	"github.com/starford/chordanalyzr/internal/index"
	"github.com/starford/chordanalyzr/internal/mcpserver"
	"github.com/starford/chordanalyzr/internal/metrics"
	"github.com/starford/chordanalyzr/internal/relation"
	"github.com/starford/chordanalyzr/internal/storage"
	"github.com/starford/chordanalyzr/internal/theory"
)

// deps holds the components shared by every command.
type deps struct {
	cfg     *Config
	logger  *slog.Logger
	catalog *catalog.Catalog
	metrics *metrics.Metrics
	svc     *chordservice.Service
	close   func() error
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// setup loads the catalog and builds the relation source selected by the
// configuration.
func setup(ctx context.Context, app *application) (*deps, error) {
	cfg := app.config
	logger := newLogger(app.logOutput, cfg.App.LogLevel)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("catalog_path", cfg.Catalog.Path),
		slog.String("strategy", cfg.Relations.Strategy),
		slog.String("log_level", cfg.App.LogLevel.String()))

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	m := metrics.New()
	src, closeSrc, err := newSource(ctx, cfg, cat, m, logger)
	if err != nil {
		return nil, err
	}

	return &deps{
		cfg:     cfg,
		logger:  logger,
		catalog: cat,
		metrics: m,
		svc:     chordservice.NewService(relation.NewEngine(cat, src)),
		close:   closeSrc,
	}, nil
}

// newSource builds the relation source for cfg.Relations.Strategy and
// reports its size to m.
func newSource(ctx context.Context, cfg *Config, cat *catalog.Catalog, m *metrics.Metrics, logger *slog.Logger) (relation.Source, func() error, error) {
	noop := func() error { return nil }
	strategy := cfg.Relations.Strategy

	switch strategy {
	case StrategyCompute:
		m.SetRelations(strategy, 0)
		return relation.NewComputed(cat), noop, nil

	case StrategyLazy:
		m.SetRelations(strategy, 0)
		return relation.NewLazyCache(cat), noop, nil

	case StrategySQLite:
		db, err := index.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init index: %w", err)
		}
		if _, err := index.Sync(ctx, db, cat, logger); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("sync index: %w", err)
		}
		n, err := db.Count(ctx)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		m.SetRelations(strategy, n)
		return db, db.Close, nil

	case StrategyEager, "":
		c, err := relation.NewEagerCache(ctx, cat, logger)
		if err != nil {
			return nil, nil, err
		}
		m.SetRelations(StrategyEager, c.Len())
		return c, noop, nil
	}
	return nil, nil, fmt.Errorf("unknown relation strategy %q", strategy)
}

// newHTTPHandler mounts health checks, metrics and the API on one router.
func newHTTPHandler(rt *deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(rt.metrics.Middleware)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","catalog":%q}`, rt.catalog.Fingerprint())
	})
	r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(rt.svc, rt.cfg.Auth.AuthEnabled(), rt.cfg.Auth.Token, rt.metrics))
	return r
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := setup(ctx, app)
	if err != nil {
		return err
	}
	defer rt.close()

	cfg, logger := rt.cfg, rt.logger
	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHTTPHandler(rt),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr unless
// another writer is configured.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	rt, err := setup(ctx, app)
	if err != nil {
		return err
	}
	defer rt.close()

	rt.logger.Info("MCP server starting on stdio")
	return mcpserver.New(rt.svc, rt.metrics).ServeStdio()
}

// RunExport writes the static JSON data set into cfg.Export.Dir.
func RunExport(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := setup(ctx, app)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := os.MkdirAll(rt.cfg.Export.Dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	store, err := storage.NewFS(rt.cfg.Export.Dir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	if _, err := export.New(rt.svc, store, rt.logger).Run(ctx); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// RunMaterialize rebuilds the SQLite relation store unconditionally.
func RunMaterialize(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(app.logOutput, cfg.App.LogLevel)

	if err := cfg.SQLite.Validate(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	start := time.Now()
	rels := relation.BuildRelations(cat.ListModes(), theory.All(), cat.ListChordTypes(), theory.All())
	if err := db.Materialize(ctx, cat, rels); err != nil {
		return err
	}
	logger.Info("Relation store materialized",
		slog.String("path", cfg.SQLite.Path),
		slog.Int("relations", len(rels)),
		slog.Duration("duration", time.Since(start)))
	return nil
}
