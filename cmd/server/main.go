package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/bondhedge/hedge-engine/internal/config"
	"github.com/bondhedge/hedge-engine/internal/desk"
	"github.com/bondhedge/hedge-engine/internal/metrics"
	"github.com/bondhedge/hedge-engine/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	defaults, err := cfg.HedgeDefaults()
	if err != nil {
		slog.Error("invalid hedge defaults", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()

	if cfg.Database.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)

		pg := store.NewPostgresStore(pool)
		if cfg.Database.Migrate {
			if err := pg.Migrate(ctx); err != nil {
				slog.Error("schema migration failed", "err", err)
				os.Exit(1)
			}
		}
		st = pg
		slog.Info("connected to PostgreSQL")

		// Wrap with Redis read-through cache if configured.
		if cfg.Redis.URL != "" {
			opt, err := redis.ParseURL(cfg.Redis.URL)
			if err != nil {
				slog.Error("invalid redis.url", "err", err)
				os.Exit(1)
			}
			rdb := redis.NewClient(opt)
			cleanup = append(cleanup, func() { rdb.Close() })
			st = store.NewCachedStore(st, rdb, cfg.Redis.TTL)
			slog.Info("Redis cache enabled", "ttl", cfg.Redis.TTL.String())
		}
	} else {
		slog.Warn("database.url not set, using in-memory store (data will not persist)")
		st = store.NewMemoryStore()
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- WebSocket hub ---
	wsHub := desk.NewWSHub()
	go wsHub.Run(ctx)

	// --- Desk service ---
	deskSvc := desk.NewService(st, defaults, desk.Options{
		Workers:   cfg.Sweep.Workers,
		MaxPoints: cfg.Sweep.MaxPoints,
	}, wsHub)

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"hedge-engine"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", deskSvc.Routes)

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("hedge-engine listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	slog.Info("shutting down hedge-engine...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("hedge-engine stopped")
}
