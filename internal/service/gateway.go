package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leadgrid/workflow-bridge/internal/core"
	"github.com/leadgrid/workflow-bridge/internal/observability/statsd"
)

// GatewayOptions groups dependencies for NotificationGateway.
type GatewayOptions struct {
	Slot        *ResultSlotService // Required
	Broadcaster *Broadcaster       // Required
	Logger      *slog.Logger       // Optional
	Metrics     statsd.Sink        // Optional
}

// NotificationGateway is the boundary component between the workflow engine's
// completion callback and the two delivery paths: broadcast push to connected
// subscribers and the durable pull slot for consumers that arrive later.
type NotificationGateway struct {
	slot        *ResultSlotService
	broadcaster *Broadcaster
	logger      *slog.Logger
	metrics     statsd.Sink
}

// NewNotificationGateway constructs a NotificationGateway.
func NewNotificationGateway(opts GatewayOptions) (*NotificationGateway, error) {
	if opts.Slot == nil {
		return nil, errors.New("ResultSlotService is required")
	}
	if opts.Broadcaster == nil {
		return nil, errors.New("Broadcaster is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "gateway")
	}

	// The broadcaster owns the subscriber gauge so drops it initiates
	// (full buffers, StopAll) are counted too.
	if opts.Metrics != nil {
		opts.Broadcaster.SetMetrics(opts.Metrics)
	}

	return &NotificationGateway{
		slot:        opts.Slot,
		broadcaster: opts.Broadcaster,
		logger:      logger,
		metrics:     opts.Metrics,
	}, nil
}

// MustNewNotificationGateway constructs a NotificationGateway and panics on error.
func MustNewNotificationGateway(opts GatewayOptions) *NotificationGateway {
	gw, err := NewNotificationGateway(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create NotificationGateway: %v", err))
	}
	return gw
}

// SubmitResult routes one completed-job callback: fan out to connected push
// subscribers, then store in the slot for pull consumers. Fan-out is
// fire-and-forget and never blocks on consumer availability; only a slot
// store failure (backend unavailable) is returned to the engine.
func (g *NotificationGateway) SubmitResult(ctx context.Context, result core.JobResult) error {
	delivered := g.broadcaster.Publish(result)

	outcome := "failure"
	if result.Succeeded() {
		outcome = "success"
	}
	g.count("callback.received", map[string]string{"outcome": outcome})

	if err := g.slot.Store(ctx, result); err != nil {
		if g.logger != nil {
			g.logger.ErrorContext(ctx, "result store failed after fan-out",
				"delivered", delivered, "error", err)
		}
		g.count("callback.store_failed", nil)
		return fmt.Errorf("submit result: %w", err)
	}

	if g.logger != nil {
		g.logger.InfoContext(ctx, "callback accepted",
			"status", result.Status, "delivered", delivered)
	}
	return nil
}

// BeginSubmission invalidates any stale leftover result before a new job is
// triggered, closing the race where a consumer reads the previous job's
// result as the new one.
func (g *NotificationGateway) BeginSubmission(ctx context.Context) error {
	if err := g.slot.Clear(ctx); err != nil {
		g.count("slot.clear_failed", nil)
		return fmt.Errorf("begin submission: %w", err)
	}

	g.count("slot.cleared", nil)
	if g.logger != nil {
		g.logger.InfoContext(ctx, "slot cleared for new submission")
	}
	return nil
}

// PollResult returns the stored result, consuming it, or nil when nothing has
// arrived yet. Callers must treat nil as "pending", never as an error; store
// outages surface as a distinct unavailable error.
func (g *NotificationGateway) PollResult(ctx context.Context) (*core.JobResult, error) {
	result, err := g.slot.Fetch(ctx)
	if err != nil {
		g.count("poll.error", nil)
		return nil, fmt.Errorf("poll result: %w", err)
	}

	if result == nil {
		g.count("poll.pending", nil)
		return nil, nil
	}

	g.count("poll.delivered", nil)
	if g.logger != nil {
		g.logger.InfoContext(ctx, "result delivered via pull", "status", result.Status)
	}
	return result, nil
}

// Subscribe registers a push subscriber; see Broadcaster.Subscribe.
func (g *NotificationGateway) Subscribe() (func(), <-chan core.JobResult) {
	return g.broadcaster.Subscribe()
}

// Health reports backing store reachability.
func (g *NotificationGateway) Health(ctx context.Context) error {
	return g.slot.Health(ctx)
}

func (g *NotificationGateway) count(name string, tags map[string]string) {
	if g.metrics != nil {
		g.metrics.Count(name, 1, tags)
	}
}
