package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cafescout/cafescout/internal/cache"
	"github.com/cafescout/cafescout/internal/cache/memstore"
	"github.com/cafescout/cafescout/internal/cache/redisstore"
	"github.com/cafescout/cafescout/internal/config"
	"github.com/cafescout/cafescout/internal/health"
	"github.com/cafescout/cafescout/internal/httpclient"
	"github.com/cafescout/cafescout/internal/invalidation/kafkaconsumer"
	"github.com/cafescout/cafescout/internal/logger"
	"github.com/cafescout/cafescout/internal/observability"
	"github.com/cafescout/cafescout/internal/provider"
	"github.com/cafescout/cafescout/internal/search"
	"github.com/cafescout/cafescout/internal/server"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// .env is a developer convenience; absence is fine.
	_ = godotenv.Load()

	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		Component: "server",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting cafescout",
		"addr", cfg.Addr,
		"version", Version,
		"cache_driver", cfg.CacheDriver,
		"places_configured", cfg.PlacesAPIKey != "")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store cache.Interface
	switch cfg.CacheDriver {
	case "redis":
		rs, err := redisstore.New(ctx, cfg.RedisAddr, cfg.CacheTTL, appLog)
		if err != nil {
			appLog.Error("redis cache setup failed", "err", err)
			return 1
		}
		defer func() { _ = rs.Close() }()
		store = rs
	default:
		store = memstore.New(cfg.CacheTTL, cfg.CacheMaxEntries)
	}

	places := provider.New(appLog, httpclient.NewOutbound(), cfg.PlacesAPIKey,
		provider.WithBaseURL(cfg.PlacesBaseURL),
		provider.WithTimeout(cfg.ProviderTimeout))

	engine := search.New(appLog, store, places)

	ready := &health.State{}
	if cfg.Invalidation.Enabled {
		consumer := kafkaconsumer.New(
			kafkaconsumer.DefaultConfig(cfg.Invalidation.Brokers, cfg.Invalidation.Topic, cfg.Invalidation.GroupID),
			appLog, store, ready)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				appLog.Error("invalidation consumer exited", "err", err)
			}
		}()
	}

	if err := server.Run(ctx, cfg, appLog, engine, ready); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
