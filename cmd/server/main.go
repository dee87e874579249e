package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/citycast/internal/api"
	"github.com/neexbeast/citycast/internal/config"
	"github.com/neexbeast/citycast/internal/history"
	"github.com/neexbeast/citycast/internal/results"
	"github.com/neexbeast/citycast/internal/weather"
	"github.com/neexbeast/citycast/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading configuration", "err", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, pinger, closeBackend, err := openBackend(ctx, cfg.History, log)
	if err != nil {
		return err
	}
	defer closeBackend()

	// Wire dependencies.
	client := weather.NewClient(cfg.OpenWeather.APIKey,
		weather.WithBaseURL(cfg.OpenWeather.BaseURL),
		weather.WithRateLimit(cfg.OpenWeather.RPS, cfg.OpenWeather.Burst),
	)
	store := history.NewStore(backend, log)
	screen := results.NewScreen(client, store, log)
	handlers := api.NewHandlers(screen, store, log)

	router := api.NewRouter(handlers, pinger, api.RouterConfig{
		APIToken:           cfg.HTTP.APIToken,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
		CookieSecure:       cfg.HTTP.CookieSecure,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server starting", "port", cfg.Port, "history_backend", cfg.History.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening: %w", err)
		}
		return nil
	})

	// Graceful shutdown on SIGINT / SIGTERM, or when the listener fails.
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("server shut down cleanly")
	return nil
}

// openBackend connects the configured history backend. The returned closer
// is always safe to call.
func openBackend(ctx context.Context, cfg config.HistoryConfig, log *slog.Logger) (history.Backend, api.Pinger, func(), error) {
	switch cfg.Backend {
	case config.BackendRedis:
		backend, err := history.ConnectRedis(ctx, cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return backend, backend, func() { _ = backend.Close() }, nil

	case config.BackendPostgres:
		pool, err := history.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting to database: %w", err)
		}

		var schema fs.FS = migrations.FS
		if cfg.MigrationsDir != "" {
			schema = os.DirFS(cfg.MigrationsDir)
		}
		if err := history.RunMigrations(ctx, pool, schema); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("migrations applied")

		return history.NewPostgresBackend(pool), &pgxPoolPinger{pool: pool}, pool.Close, nil

	default:
		backend := history.NewMemoryBackend()
		return backend, backend, func() {}, nil
	}
}

// pgxPoolPinger adapts pgxpool.Pool to the api.Pinger interface.
type pgxPoolPinger struct {
	pool interface {
		Ping(ctx context.Context) error
	}
}

func (p *pgxPoolPinger) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
