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

	"github.com/starford/memocurve/internal/api"
	"github.com/starford/memocurve/internal/cardservice"
	"github.com/starford/memocurve/internal/deck"
	"github.com/starford/memocurve/internal/enrich"
	"github.com/starford/memocurve/internal/mcpserver"
	"github.com/starford/memocurve/internal/models"
	"github.com/starford/memocurve/internal/notify"
	"github.com/starford/memocurve/internal/progress"
	"github.com/starford/memocurve/internal/review"
	"github.com/starford/memocurve/internal/sse"
	"github.com/starford/memocurve/internal/storage"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("deck_backend", cfg.Deck.Backend),
		slog.String("deck_path", cfg.Deck.Path),
		slog.String("enrich_provider", cfg.Enrich.Provider),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize the storage provider. The file backend keeps its typed
	// handle around so the watcher can resolve blob paths.
	var provider storage.Provider
	var watchFS *storage.FS
	switch cfg.Deck.Backend {
	case DeckBackendSQLite:
		db, err := storage.OpenSQLite(cfg.Deck.Path)
		if err != nil {
			return fmt.Errorf("open deck database: %w", err)
		}
		provider = db
	default:
		if err := os.MkdirAll(cfg.Deck.Path, 0o755); err != nil {
			return fmt.Errorf("create deck dir: %w", err)
		}
		fs, err := storage.NewFS(cfg.Deck.Path)
		if err != nil {
			return fmt.Errorf("init deck storage: %w", err)
		}
		provider = fs
		watchFS = fs
	}
	defer provider.Close()

	// Load the deck.
	store := deck.Open(provider, logger)

	// Question generator.
	enricher := app.enricher
	if enricher == nil {
		if cfg.Enrich.Provider == EnrichProviderGemini {
			g, err := enrich.NewGemini(ctx, cfg.Enrich.APIKey, cfg.Enrich.Model, logger)
			if err != nil {
				return fmt.Errorf("init gemini: %w", err)
			}
			enricher = g
		} else {
			enricher = enrich.Static{}
		}
	}

	// Progress editing funnel shared by HTTP and MCP surfaces.
	editor := progress.NewEditor(store, logger)

	// MCP stdio mode runs without the HTTP stack.
	if app.mcp {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(store, editor).ServeStdio()
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Review sessions publish their lifecycle over SSE.
	reviews := review.NewManager(store, enricher, logger, func(event string, card models.Card) {
		broker.Publish(sse.Event{Type: event, Data: map[string]string{"id": card.ID}})
	})
	defer reviews.Stop()

	// Dashboard card mutations fan out as card.* events too.
	cards := cardservice.NewService(store, logger, broker.PublishCardEvent)

	// Build API router.
	apiRouter := api.NewRouter(cards, editor, reviews, store, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the deck directory for edits made outside the app.
	if watchFS != nil && cfg.Deck.Watch {
		g.Go(func() error {
			err := deck.Watch(gCtx, store, watchFS, logger, func() {
				broker.Publish(sse.Event{Type: "deck.reloaded", Data: map[string]string{}})
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("deck watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Remind connected clients about due cards.
	poller := notify.NewPoller(store, broker, time.Duration(cfg.Notify.IntervalSeconds)*time.Second, logger)
	g.Go(func() error {
		if err := poller.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

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
