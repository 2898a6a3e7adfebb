package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/acrawford/weather-dashboard/internal/config"
	"github.com/acrawford/weather-dashboard/internal/gateway"
	httphandler "github.com/acrawford/weather-dashboard/internal/http"
	"github.com/acrawford/weather-dashboard/internal/lifecycle"
	"github.com/acrawford/weather-dashboard/internal/observability"
	"github.com/acrawford/weather-dashboard/internal/provider"
	"github.com/acrawford/weather-dashboard/internal/store"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()
	if err := store.InitializeSchema(db); err != nil {
		logger.Fatal("initialize schema", zap.Error(err))
	}
	logger.Info("database ready", zap.String("path", cfg.DatabasePath))

	upstream, err := provider.NewOpenWeatherProvider(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.GeocodingAPIURL, cfg.UpstreamTimeout)
	if err != nil {
		logger.Fatal("weather provider", zap.Error(err))
	}

	cacheStore := store.NewCacheStore(db)
	cityRepo := store.NewCityRepository(db)
	usageRepo := store.NewUsageRepository(db)

	weatherGateway := gateway.NewWeatherGateway(upstream, cacheStore, cfg.CurrentCacheTTL, cfg.ForecastCacheTTL)

	sweeper := store.NewSweeper(cacheStore, cfg.SweepInterval, logger)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("cache sweeper", zap.Error(err))
	}
	logger.Info("cache sweeper started", zap.Duration("interval", cfg.SweepInterval))

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	handler := httphandler.NewHandler(weatherGateway, cityRepo, upstream, cacheStore.Ping, logger)
	router := httphandler.NewRouter(handler, usageRepo, logger, limiter, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.BeginDrain()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	sweeper.Stop()
	logger.Info("shutdown complete")
}
