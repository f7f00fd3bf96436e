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
	"golang.org/x/sync/errgroup"

	"github.com/starford/mealprep/internal/api"
	"github.com/starford/mealprep/internal/auth"
	"github.com/starford/mealprep/internal/catalog"
	"github.com/starford/mealprep/internal/mealservice"
	"github.com/starford/mealprep/internal/parser"
	"github.com/starford/mealprep/internal/sse"
	"github.com/starford/mealprep/internal/storage"
	"github.com/starford/mealprep/internal/store"
)

const calendarThrottle = 2 * time.Second

var errConfigRequired = errors.New("config is required")

// components are the long-lived pieces shared by the server and the CLI commands.
type components struct {
	logger  *slog.Logger
	db      *store.DB
	broker  *sse.Broker
	svc     *mealservice.Service
	catalog *catalog.Catalog
	issuer  *auth.Issuer
}

func (c *components) Close() {
	if c.broker != nil {
		c.broker.Close()
	}
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close database", slog.String("error", err.Error()))
	}
}

func (a *application) newLogger() *slog.Logger {
	out := a.logOutput
	if out == nil {
		out = os.Stdout
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// setup opens the store, builds the service and seeds the default household.
// withEvents attaches the SSE broker; CLI commands run without one.
func (a *application) setup(ctx context.Context, withEvents bool) (*components, error) {
	cfg := a.config
	c := &components{logger: a.newLogger()}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	c.db = db

	opts := []mealservice.Option{
		mealservice.WithDefaults(mealservice.Defaults{
			Timezone:   cfg.Household.Timezone,
			DinnerTime: cfg.Household.DinnerTime,
		}),
	}
	if cfg.Auth.Mode == api.AuthModeJWT {
		c.issuer = auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		opts = append(opts, mealservice.WithIssuer(c.issuer))
	}
	if withEvents {
		c.broker = sse.NewBroker(calendarThrottle)
		opts = append(opts, mealservice.WithPublisher(c.broker))
	}
	c.svc = mealservice.NewService(db, opts...)

	if _, err := c.svc.EnsureHousehold(ctx, cfg.Auth.DefaultHousehold, "Default household"); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create default household: %w", err)
	}

	if cfg.Catalog.Enabled() {
		src, err := storage.NewFS(cfg.Catalog.Path, parser.Supported)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		c.catalog = catalog.New(c.svc, db, src, cfg.Auth.DefaultHousehold, c.logger)
		if err := c.catalog.Sync(ctx, c.catalogEvent); err != nil {
			c.Close()
			return nil, fmt.Errorf("catalog sync: %w", err)
		}
	}

	return c, nil
}

func (c *components) catalogEvent(kind, path string) {
	c.logger.Info("Catalog document "+kind, slog.String("path", path))
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	c, err := app.setup(ctx, true)
	if err != nil {
		return err
	}
	defer c.Close()
	logger := c.logger

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           c.router(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("auth_mode", cfg.Auth.Mode),
	)

	g, gCtx := errgroup.WithContext(ctx)

	if c.catalog != nil && cfg.Catalog.Watch {
		g.Go(func() error {
			if err := c.catalog.Watch(gCtx, c.catalogEvent); err != nil {
				logger.Error("Catalog watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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

// router mounts the API under /api next to the unauthenticated health checks.
func (c *components) router(cfg *Config) http.Handler {
	apiRouter := api.NewRouter(c.svc, api.AuthConfig{
		Mode:             cfg.Auth.Mode,
		Token:            cfg.Auth.Token,
		DefaultHousehold: cfg.Auth.DefaultHousehold,
		Issuer:           c.issuer,
	}, c.broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		if err := c.db.PingContext(req.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	r.Mount("/api", apiRouter)
	return r
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, status)
}
