package main

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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/weather-cache/internal/api"
	"github.com/neexbeast/weather-cache/internal/cache"
	"github.com/neexbeast/weather-cache/internal/config"
	"github.com/neexbeast/weather-cache/internal/observability"
	"github.com/neexbeast/weather-cache/internal/openweather"
	"github.com/neexbeast/weather-cache/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

// store is what both cache backends offer to the service and the health check.
type store interface {
	weather.Store
	api.Pinger
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Pick the cache backend. Redis when configured, in-process otherwise.
	var backend store
	if cfg.RedisURL != "" {
		redisStore, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = redisStore.Close() }()
		backend = redisStore
		log.Info("using redis cache")
	} else {
		backend = cache.NewMemoryStore(nil)
		log.Info("REDIS_URL not set, using in-memory cache")
	}

	// Wire dependencies.
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	client := openweather.NewClient(cfg.OpenWeatherAPIKey,
		openweather.WithBaseURL(cfg.OpenWeatherBaseURL),
		openweather.WithUnits(cfg.Units),
		openweather.WithTimeout(cfg.HTTPTimeout),
	)
	svc := weather.NewService(backend, client, metrics, log)
	handlers := api.NewHandlers(svc, cfg.TimeZone, log)
	router := api.NewRouter(handlers, backend, promhttp.Handler(), cfg.CORSOrigins, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening: %w", err)
		}
		return nil
	})

	// Graceful shutdown on SIGINT / SIGTERM, or when the listener fails.
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
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
