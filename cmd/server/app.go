package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/rcavanagh/taskboard-api/internal/api"
	apimiddleware "github.com/rcavanagh/taskboard-api/internal/api/middleware"
	"github.com/rcavanagh/taskboard-api/internal/api/shared"
	"github.com/rcavanagh/taskboard-api/internal/config"
	"github.com/rcavanagh/taskboard-api/internal/platform/postgres"
	"github.com/rcavanagh/taskboard-api/internal/service/auth"
	"github.com/rcavanagh/taskboard-api/internal/service/task"
	"github.com/rcavanagh/taskboard-api/internal/store"
)

// shutdownTimeout bounds how long in-flight requests get to finish once a
// termination signal arrives.
const shutdownTimeout = 10 * time.Second

// application holds the fully wired server: configuration, the database
// pool and the HTTP router. Built once in newApplication and torn down by
// cleanup.
type application struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	tokens store.TokenStore
	router http.Handler
}

// newApplication connects to the database, applies pending migrations and
// wires stores, services and handlers into a router.
func newApplication(cfg *config.Config) (*application, error) {
	logger := slog.Default().With(slog.String("component", "server"))

	db, err := setupDatabase(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			logger.Error("error closing database after migration failure", "error", closeErr)
		}
		return nil, err
	}

	hasher := auth.NewBcryptHasher()

	userStore := postgres.NewPostgresUserStore(db, hasher, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	tokenStore := postgres.NewPostgresTokenStore(db, logger)

	tokenService, err := auth.NewTokenService(cfg.Auth, tokenStore)
	if err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			logger.Error("error closing database after token service failure", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	authorizer := task.NewAuthorizer(task.MutationScope(cfg.Task.MutationScope))
	taskService := task.NewService(taskStore, userStore, authorizer, logger)

	authHandler := api.NewAuthHandler(userStore, tokenService, hasher)
	taskHandler := api.NewTaskHandler(taskService)
	authMiddleware := apimiddleware.NewAuthMiddleware(tokenService)

	app := &application{
		cfg:    cfg,
		logger: logger,
		db:     db,
		tokens: tokenStore,
	}
	app.router = app.setupRouter(authHandler, taskHandler, authMiddleware, cfg.Server.AllowedOrigins)

	return app, nil
}

// setupRouter assembles the chi router with middleware and all routes.
func (app *application) setupRouter(
	authHandler *api.AuthHandler,
	taskHandler *api.TaskHandler,
	authMiddleware *apimiddleware.AuthMiddleware,
	allowedOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.Trace)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}).Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/logout", authHandler.Logout)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Get("/{id}", taskHandler.Get)
				r.Put("/{id}", taskHandler.Update)
				r.Delete("/{id}", taskHandler.Delete)
				r.Post("/{id}/assign", taskHandler.Assign)
			})
		})
	})

	return r
}

// run starts the HTTP server and blocks until the context is cancelled or a
// termination signal arrives, then drains in-flight requests.
func (app *application) run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go sweepExpiredTokens(sweepCtx, app.db, app.tokens, app.logger)

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", "port", app.cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		app.logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		app.logger.Info("Context cancelled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	app.logger.Info("Server stopped")
	return nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
}
