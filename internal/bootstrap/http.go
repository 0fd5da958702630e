package bootstrap

import (
	"log/slog"
	"net/http"

	"github.com/leadgrid/workflow-bridge/config"
	httpx "github.com/leadgrid/workflow-bridge/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
	ErrCh    chan<- error // receives a fatal listen error, if any
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Gateway:           cfg.Services.Gateway,
		HeartbeatInterval: appCfg.Workflow.HeartbeatInterval,
		Logger:            logger,
	}

	// Order: Recover -> Logging -> Router
	handler := httpx.Logging(logger)(httpx.NewRouter(services))
	handler = httpx.Recover(logger)(handler)

	return startServer(logger, handler, appCfg.HTTP, cfg.ErrCh)
}

func startServer(logger *slog.Logger, handler http.Handler, cfg config.HTTPConfig, errCh chan<- error) *http.Server {
	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}

	// No ReadTimeout/WriteTimeout: SSE connections stay open far longer than
	// any sane global deadline. ReadHeaderTimeout still bounds slow clients.
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			if errCh != nil {
				errCh <- err
			}
		}
	}()

	return server
}
