package httpx

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/leadgrid/workflow-bridge/internal/service"
)

// DefaultHeartbeatInterval is how often an SSE connection gets a keep-alive
// comment so idle intermediaries do not time it out.
const DefaultHeartbeatInterval = 30 * time.Second

// EventHandlers serves the push-mode SSE subscription endpoint.
type EventHandlers struct {
	Gateway           *service.NotificationGateway
	HeartbeatInterval time.Duration
	Logger            *slog.Logger
}

// Stream upgrades the request to a server-sent-events stream. Each completed
// job produces one `data:` frame carrying the verbatim callback payload;
// `: ping` comment lines are keep-alives, never results. The subscription is
// released as soon as the client disconnects or a write fails.
func (h *EventHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "streaming_unsupported",
			Err:     fmt.Errorf("response writer does not support flushing"),
		})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	unsub, events := h.Gateway.Subscribe()
	defer unsub()

	interval := h.HeartbeatInterval
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	heartbeat := time.NewTicker(interval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case result, open := <-events:
			if !open {
				// Broadcaster dropped us (shutdown or backpressure).
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", result.Payload); err != nil {
				// Half-closed connection: the deferred unsub removes this
				// subscriber without disturbing the others.
				if h.Logger != nil {
					h.Logger.Debug("sse write failed, dropping subscriber", "error", err)
				}
				return
			}
			flusher.Flush()
		}
	}
}
