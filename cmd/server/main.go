package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"bizplan/internal/config"
	"bizplan/internal/handlers/backup"
	"bizplan/internal/handlers/dashboard"
	"bizplan/internal/handlers/insights"
	planhandlers "bizplan/internal/handlers/plan"
	"bizplan/internal/handlers/pricing"
	"bizplan/internal/handlers/scenarios"
	"bizplan/internal/handlers/statements"
	"bizplan/internal/handlers/tracking"
	"bizplan/internal/handlers/whatif"
	httpx "bizplan/internal/http"
	"bizplan/internal/log"
	"bizplan/internal/services/access"
	"bizplan/internal/services/events"
	"bizplan/internal/services/narrative"
	"bizplan/internal/services/planstore"
	"bizplan/internal/services/storage"
	"bizplan/internal/templates"
	"bizplan/internal/version"
)

const shutdownTimeout = 10 * time.Second

var (
	cfg       *config.Config
	logger    *log.Logger
	store     *storage.Storage
	manager   *planstore.Manager
	publisher events.Publisher
	narrator  *narrative.Service
	renderer  *templates.Renderer
	gate      *access.Gate
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		os.Exit(1)
	}

	if err := SetupDependencies(cfg); err != nil {
		logger.Error("startup failed", log.FieldOperation, log.OpStartup, log.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		logger.Error("server stopped", log.FieldError, err)
		os.Exit(1)
	}
}

// run serves until ctx is cancelled, then drains requests and flushes the plan
func run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "addr", cfg.ListenAddr, "store", manager.Backend())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// the manager flushes the plan and closes the publisher
		return errors.Join(srv.Shutdown(shutdownCtx), manager.Close(shutdownCtx))
	})
	return g.Wait()
}

func newLogger(c *config.Config) *log.Logger {
	lc := log.DefaultConfig()
	lc.Format = c.LogFormat
	if c.Debug {
		lc.Level = log.ParseLevel("debug")
	}
	return log.New(lc)
}

// SetupDependencies builds the logger, storage, plan store and services and
// hands them to the handler packages
func SetupDependencies(c *config.Config) error {
	cfg = c
	logger = newLogger(c)
	log.SetDefault(logger)
	ctx := context.Background()

	var err error
	store, err = storage.New(c.DataDirectory)
	if err != nil {
		return fmt.Errorf("open data directory: %w", err)
	}
	if st := store.Status(); st.Encrypted && !st.Unlocked {
		if c.Password == "" {
			return fmt.Errorf("data directory is encrypted, set PLANNER_PASSWORD: %w", storage.ErrLocked)
		}
		if err := store.Unlock(c.Password); err != nil {
			return fmt.Errorf("unlock data directory: %w", err)
		}
		logger.Info("data directory unlocked")
	}

	publisher = events.Noop{}
	if c.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(c.AMQPURL, c.AMQPExchange, logger)
		if err != nil {
			return fmt.Errorf("connect change events: %w", err)
		}
		publisher = p
	}

	backend, err := planstore.OpenBackend(ctx, c.StoreOptions(), store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", c.Store, err)
	}
	manager, err = planstore.Open(ctx, backend, planstore.ManagerOptions{
		Publisher: publisher,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	var provider narrative.Provider
	if c.GeminiAPIKey != "" {
		gp, err := narrative.NewGemini(ctx, c.GeminiAPIKey, c.GeminiModel)
		if err != nil {
			return fmt.Errorf("narrative provider: %w", err)
		}
		provider = gp
	} else {
		logger.Warn("GEMINI_API_KEY not set, narrative generation disabled")
	}
	catalogue := narrative.DefaultCatalogue()
	if c.PromptsFile != "" {
		if catalogue, err = narrative.LoadCatalogue(c.PromptsFile); err != nil {
			return fmt.Errorf("prompt catalogue: %w", err)
		}
	}
	narrator = narrative.NewService(provider, catalogue, narrative.Retry{
		MaxAttempts: c.AIMaxAttempts,
		BaseDelay:   c.AIRetryBase,
		MaxDelay:    c.AIRetryMax,
		Timeout:     c.AIRequestTimeout,
	}, logger)

	renderer, err = templates.New(logger)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	gate = access.NewGate(c.AccessState)

	backup.Initialize(c, store, manager)
	planhandlers.Initialize(manager)
	scenarios.Initialize(manager)
	tracking.Initialize(manager)
	statements.Initialize(manager)
	whatif.Initialize(manager)
	pricing.Initialize(manager)
	insights.Initialize(manager, narrator, c.AIRequestTimeout)
	dashboard.Initialize(manager, renderer)

	if w := version.Get().Warning(); w != "" {
		logger.Warn(w)
	}
	return nil
}

// SetupRouter creates and configures the chi router
func SetupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/report", http.StatusTemporaryRedirect)
	})

	// Probes, backups, storage and the subscription state stay reachable
	// while the gate is closed
	backup.RegisterRoutes(r)
	r.Get("/api/access", handleAccess)
	r.With(access.RequireToken(cfg.AccessToken)).Put("/api/access", handleSetAccess)

	r.Group(func(r chi.Router) {
		r.Use(gate.Middleware)
		planhandlers.RegisterRoutes(r)
		scenarios.RegisterRoutes(r)
		tracking.RegisterRoutes(r)
		statements.RegisterRoutes(r)
		whatif.RegisterRoutes(r)
		pricing.RegisterRoutes(r)
		insights.RegisterRoutes(r)
		dashboard.RegisterRoutes(r)
	})

	return r
}

type accessResponse struct {
	State   access.State `json:"state"`
	Allowed bool         `json:"allowed"`
}

func handleAccess(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, accessResponse{State: gate.State(), Allowed: gate.Allowed()})
}

// handleSetAccess lets the billing side push the subscription state
func handleSetAccess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		State access.State `json:"state"`
	}
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if !req.State.Valid() {
		httpx.ErrorResponse(w, "unknown subscription state", http.StatusBadRequest)
		return
	}
	gate.Set(req.State)
	log.FromContext(r.Context()).WithComponent(log.ComponentAccess).Info("subscription state changed", "state", req.State)
	handleAccess(w, r)
}
