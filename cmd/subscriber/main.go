// Subscriber tails the live swap feed from Redis and mirrors every event
// into ClickHouse for indexers and analytics.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/openamm/pool-engine/internal/config"
	"github.com/openamm/pool-engine/internal/events"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file found, using system environment variables")
	}
	cfg := config.Load()
	if cfg.RedisAddr == "" {
		logger.Fatal("REDIS_ADDR is required for the subscriber")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	re, err := events.NewRedisEvents(ctx, rclient, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}
	defer re.Close()

	store, err := events.NewClickHouseStore(ctx, events.ClickHouseConfig{
		Addr:     cfg.ClickHouseAddr,
		Database: cfg.ClickHouseDatabase,
		Username: cfg.ClickHouseUsername,
		Password: cfg.ClickHousePassword,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to ClickHouse")
	}
	defer store.Close()

	swaps, err := re.SubscribeSwaps(ctx)
	if err != nil {
		logger.WithError(err).Fatal("failed to subscribe to swaps")
	}

	logger.Info("swap subscriber running")

	go func() {
		for ev := range swaps {
			if err := store.InsertSwap(ctx, ev); err != nil {
				logger.WithError(err).WithField("id", ev.ID).Error("failed to persist swap")
				continue
			}
			logger.WithFields(logrus.Fields{
				"id":         ev.ID,
				"pair":       ev.Pair,
				"amount_in":  ev.AmountIn,
				"amount_out": ev.AmountOut,
			}).Info("swap persisted")
		}
	}()

	<-sigCh
	logger.Info("shutting down subscriber")
}
