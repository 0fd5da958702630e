package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/leadgrid/workflow-bridge/internal/service"
)

// RouterServices holds the dependencies of the HTTP router.
type RouterServices struct {
	Gateway           *service.NotificationGateway
	HeartbeatInterval time.Duration // SSE keep-alive interval; 0 means default
	Logger            *slog.Logger
}

// NewRouter wires the bridge endpoints:
//
//	POST   /webhook/status   workflow engine callback ingress
//	GET    /events           push subscription (SSE)
//	GET    /api/status       pull query (pending sentinel or delivered result)
//	DELETE /api/status       pull invalidate before a new submission
//	GET    /healthz          liveness
//
// Method patterns mean any other verb on these routes gets 405 from the mux
// rather than a silent no-op.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	callback := &CallbackHandlers{Gateway: services.Gateway, Logger: services.Logger}
	status := &StatusHandlers{Gateway: services.Gateway, Logger: services.Logger}
	events := &EventHandlers{
		Gateway:           services.Gateway,
		HeartbeatInterval: services.HeartbeatInterval,
		Logger:            services.Logger,
	}

	mux.Handle("POST /webhook/status", http.HandlerFunc(callback.SubmitStatus))
	mux.Handle("GET /events", http.HandlerFunc(events.Stream))
	mux.Handle("GET /api/status", http.HandlerFunc(status.PollStatus))
	mux.Handle("DELETE /api/status", http.HandlerFunc(status.ClearStatus))
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return mux
}
