package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/leadgrid/workflow-bridge/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting workflow bridge",
		"addr", cfg.HTTP.Addr,
		"result_key", cfg.Workflow.ResultKey,
		"result_ttl", cfg.Workflow.ResultTTL.String(),
		"redis_configured", cfg.Redis.IsConfigured())

	var redisClient *redis.Client
	if cfg.Redis.IsConfigured() {
		redisClient, err = bootstrap.ConnectRedis(cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	} else if !cfg.IsDev {
		return errors.New("REDIS_ADDR is required outside dev mode")
	}

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:      &cfg,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.RunWithShutdown(&bootstrap.RunConfig{
		Config:   &cfg,
		Services: services,
		Logger:   logger,
	})
}
