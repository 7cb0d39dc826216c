package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"beatsbook/api/routes"
	"beatsbook/internal/notifications"
	"beatsbook/internal/shared/config"
	"beatsbook/internal/shared/database"
	"beatsbook/pkg/cache"
	"beatsbook/pkg/clock"
	"beatsbook/pkg/logger"
	"beatsbook/pkg/ratelimit"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.New()
	logger.SetDefault(log)

	if err := database.Connect(cfg); err != nil {
		log.WithError(err).Error("failed to connect to database")
		os.Exit(1)
	}
	if err := database.ConnectRedis(cfg); err != nil {
		log.WithError(err).Error("failed to connect to redis")
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.WithError(err).Error("failed to close connections")
		}
	}()

	if err := database.Migrate(); err != nil {
		log.WithError(err).Error("failed to run migrations")
		os.Exit(1)
	}

	producer, err := notifications.NewProducer(cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to create kafka producer")
		os.Exit(1)
	}
	if producer != nil {
		defer func() {
			if err := producer.Close(); err != nil {
				log.WithError(err).Error("failed to close kafka producer")
			}
		}()
	}

	var limiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewRateLimiter(database.GetRedisClient(), &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			PublicRequests:  cfg.RateLimit.PublicRequests,
			AuthRequests:    cfg.RateLimit.AuthRequests,
			BookingRequests: cfg.RateLimit.BookingRequests,
			HealthRequests:  cfg.RateLimit.HealthRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		})
	}

	router := routes.SetupRouter(&routes.Dependencies{
		Config:   cfg,
		Clock:    clock.NewSystem(),
		Logger:   log,
		Cache:    cache.NewService(database.GetRedisClient()),
		Producer: producer,
		Limiter:  limiter,
	})

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info("server starting", "addr", srv.Addr, "mode", cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	log.Info("server stopped")
}
