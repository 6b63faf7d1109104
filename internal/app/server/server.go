package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/audit"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/directory"
	"hrms/internal/domain/roster"
	"hrms/internal/platform/config"
	"hrms/internal/platform/db"
	"hrms/internal/transport/http/api"
	audithandler "hrms/internal/transport/http/handlers/audit"
	authhandler "hrms/internal/transport/http/handlers/auth"
	directoryhandler "hrms/internal/transport/http/handlers/directory"
	rosterhandler "hrms/internal/transport/http/handlers/roster"
	"hrms/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed database: %w", err)
		}
	}

	authStore := auth.NewStore(pool)
	auditSvc := audit.New(pool)
	directorySvc := directory.NewService(directory.NewStore(pool))
	rosterSvc := roster.NewService(roster.NewStore(pool), directorySvc)
	idemStore := middleware.NewIdempotencyStore(pool)

	authH := authhandler.NewHandler(authStore, cfg.JWTSecret, cfg.TokenTTL)
	directoryH := directoryhandler.NewHandler(directorySvc, authStore, auditSvc)
	rosterH := rosterhandler.NewHandler(rosterSvc, authStore, auditSvc, idemStore)
	auditH := audithandler.NewHandler(auditSvc, authStore)

	isProd := cfg.Environment == "production"

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecureHeaders(isProd))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	r.Use(middleware.Auth(cfg.JWTSecret))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		api.Success(w, map[string]string{"status": "ok"}, middleware.GetRequestID(req.Context()))
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if err := pool.Ping(req.Context()); err != nil {
			api.Fail(w, http.StatusServiceUnavailable, "not_ready", "database unreachable", middleware.GetRequestID(req.Context()))
			return
		}
		api.Success(w, map[string]string{"status": "ready"}, middleware.GetRequestID(req.Context()))
	})

	r.Route("/api/v1", func(r chi.Router) {
		authH.RegisterRoutes(r)
		directoryH.RegisterRoutes(r)
		rosterH.RegisterRoutes(r)
		auditH.RegisterRoutes(r)
	})

	return &App{Config: cfg, DB: pool, Router: r}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	app, err := New(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	return srv.ListenAndServe()
}
