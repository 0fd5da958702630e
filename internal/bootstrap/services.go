package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/leadgrid/workflow-bridge/config"
	"github.com/leadgrid/workflow-bridge/internal/core"
	"github.com/leadgrid/workflow-bridge/internal/data"
	"github.com/leadgrid/workflow-bridge/internal/observability/statsd"
	"github.com/leadgrid/workflow-bridge/internal/service"
)

// ServiceContainer holds the wired application services.
type ServiceContainer struct {
	Gateway     *service.NotificationGateway
	Broadcaster *service.Broadcaster
	Slot        *service.ResultSlotService
	Cache       core.CacheRepository
	Metrics     *statsd.Client
}

// ServiceDeps contains dependencies for service construction.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient *redis.Client // nil selects the in-process memory store
	Logger      *slog.Logger
}

// NewServices wires the result slot, broadcaster, and gateway.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cache core.CacheRepository
	if deps.RedisClient != nil {
		cache = data.NewRedisCacheRepo(deps.RedisClient)
	} else {
		logger.Warn("no redis configured, result slot is process-local and lost on restart")
		cache = data.NewMemoryCacheRepo()
	}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: deps.Config.Observability.Metrics.IsEnabled(),
		Address: deps.Config.Observability.Metrics.StatsdAddress,
		Prefix:  deps.Config.Observability.Metrics.StatsdPrefix,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init statsd client: %w", err)
	}

	slot, err := service.NewResultSlotService(service.ResultSlotOptions{
		Cache: cache,
		Config: service.ResultSlotConfig{
			Key: deps.Config.Workflow.ResultKey,
			TTL: deps.Config.Workflow.ResultTTL,
		},
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init result slot: %w", err)
	}

	broadcaster := service.NewBroadcaster(logger)

	gateway, err := service.NewNotificationGateway(service.GatewayOptions{
		Slot:        slot,
		Broadcaster: broadcaster,
		Logger:      logger,
		Metrics:     metrics,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init gateway: %w", err)
	}

	return ServiceContainer{
		Gateway:     gateway,
		Broadcaster: broadcaster,
		Slot:        slot,
		Cache:       cache,
		Metrics:     metrics,
	}, nil
}

// RunConfig contains dependencies for running the bridge until shutdown.
type RunConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunWithShutdown starts the HTTP server and blocks until SIGINT/SIGTERM or
// a server failure, then drains connections gracefully.
func RunWithShutdown(cfg *RunConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("run config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	server := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
		ErrCh:    errCh,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		return gracefulStop(cfg, server, logger)
	case err := <-errCh:
		logger.Error("http server failed", "error", err)
		if stopErr := gracefulStop(cfg, server, logger); stopErr != nil {
			logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

func gracefulStop(cfg *RunConfig, server *http.Server, logger *slog.Logger) error {
	// Closing subscriber channels first ends open SSE handlers so Shutdown
	// does not wait out its full timeout on them.
	cfg.Services.Broadcaster.StopAll()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Config.HTTP.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)

	if cfg.Services.Metrics != nil {
		if cerr := cfg.Services.Metrics.Close(); cerr != nil {
			logger.Error("close statsd client failed", "error", cerr)
		}
	}

	if err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info("bridge stopped")
	return nil
}
