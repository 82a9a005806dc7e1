package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/peermarket/backend/internal/config"
	"github.com/peermarket/backend/internal/db"
	"github.com/peermarket/backend/internal/events"
	"github.com/peermarket/backend/internal/repositories"
	"github.com/peermarket/backend/internal/services"
)

// The worker owns the read-side projections: it periodically rebuilds the
// redis top-products cache from the analytics event log so API reads stay
// cheap.
func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	analyticsRepo := repositories.NewAnalyticsRepo(pool)
	publisher := events.NewRedisPublisher(rdb, log)
	analyticsService := services.NewAnalyticsService(analyticsRepo, rdb, publisher, cfg, log)

	// Log event traffic for operational visibility.
	subscriber := events.NewRedisSubscriber(rdb, log)
	for _, stream := range []string{"events:negotiation", "events:deal", "events:analytics"} {
		stream := stream
		if err := subscriber.Subscribe(ctx, stream, func(e events.Event) {
			log.Debug("event", zap.String("stream", stream), zap.String("type", e.Type))
		}); err != nil {
			log.Warn("subscribe failed", zap.String("stream", stream), zap.Error(err))
		}
	}

	log.Info("worker started", zap.Duration("refresh_interval", cfg.AnalyticsRefreshInterval))

	refreshTicker := time.NewTicker(cfg.AnalyticsRefreshInterval)
	defer refreshTicker.Stop()

	// Warm the cache once at startup.
	if err := analyticsService.RefreshTopProducts(ctx); err != nil {
		log.Warn("initial top products refresh failed", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-refreshTicker.C:
			if err := analyticsService.RefreshTopProducts(ctx); err != nil {
				log.Warn("top products refresh failed", zap.Error(err))
			}
		case <-sigCh:
			log.Info("shutting down...")
			cancel()
			return
		}
	}
}
