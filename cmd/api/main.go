package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/openamm/pool-engine/internal/access"
	"github.com/openamm/pool-engine/internal/config"
	"github.com/openamm/pool-engine/internal/events"
	"github.com/openamm/pool-engine/internal/pool"
	"github.com/openamm/pool-engine/internal/server"
	"github.com/openamm/pool-engine/internal/storage"
	"github.com/openamm/pool-engine/internal/token"
)

// loadEnv reads .env from the project root before anything reads os.Getenv.
func loadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Event sinks: structured log always; Redis mirror when configured.
	sinks := []pool.Emitter{events.NewLogEmitter(logger)}
	var cache storage.EventCache
	if cfg.RedisAddr != "" {
		rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		re, err := events.NewRedisEvents(ctx, rclient, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to Redis")
		}
		defer re.Close()
		cache = re
		sinks = append(sinks, re)
	}

	// In-process collaborators: asset ledger, share token, role registry.
	ledger := token.NewLedger(pool.Account(cfg.CustodyAccount))
	shares := token.NewShares()
	registry := access.NewRegistry()

	admin := pool.Account(cfg.AdminAccount)
	if cfg.SeedAmountA > 0 {
		if err := ledger.Mint(pool.Asset(cfg.AssetA), admin, cfg.SeedAmountA); err != nil {
			logger.WithError(err).Fatal("failed to seed asset A")
		}
	}
	if cfg.SeedAmountB > 0 {
		if err := ledger.Mint(pool.Asset(cfg.AssetB), admin, cfg.SeedAmountB); err != nil {
			logger.WithError(err).Fatal("failed to seed asset B")
		}
	}

	p := pool.New(pool.Deps{
		Assets: ledger,
		Shares: shares,
		Access: registry,
		Events: events.NewMultiEmitter(sinks...),
		Logger: logger,
	})
	if err := p.Initialize(ctx, admin, pool.Asset(cfg.AssetA), pool.Asset(cfg.AssetB), cfg.FeeRateBps); err != nil {
		logger.WithError(err).Fatal("failed to initialize pool")
	}

	h := &server.Handlers{
		Pool:    p,
		Cache:   cache,
		DevMode: cfg.DevMode,
		Logger:  logger,
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr,
			DevMode: cfg.DevMode,
			APIKey:  cfg.APIKey,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
		_ = srv.Shutdown(context.Background())
	}()

	logger.WithField("addr", cfg.APIAddr).Info("amm pool api starting")
	if err := srv.Start(); err != nil {
		if err.Error() == "http: Server closed" {
			return
		}
		logger.WithError(err).Fatal("api server failed")
	}

	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
