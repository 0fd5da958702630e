package service

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/leadgrid/workflow-bridge/internal/core"
	"github.com/leadgrid/workflow-bridge/internal/observability/statsd"
)

// subscriberBuffer is the per-subscriber channel capacity. Results arrive at
// most once per workflow run, so a small buffer only has to absorb the window
// between publish and the transport writing the frame out.
const subscriberBuffer = 4

// Broadcaster owns the set of connected push subscribers and fans a result
// out to all of them. Membership is a set with no ordering or priority.
//
// Publish never blocks: a subscriber that cannot accept the event (its buffer
// is full because the transport stopped draining it) is removed and closed,
// isolated from delivery to the others. Failures at the transport level
// (half-closed connections) are handled by the SSE handler, which calls the
// subscription's unsub func on any write error.
type Broadcaster struct {
	logger  *slog.Logger
	metrics statsd.Sink

	mu     sync.Mutex
	subs   map[string]chan core.JobResult
	closed bool
}

// NewBroadcaster constructs an empty broadcaster.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger != nil {
		logger = logger.With("component", "broadcaster")
	}
	return &Broadcaster{
		logger: logger,
		subs:   make(map[string]chan core.JobResult),
	}
}

// SetMetrics attaches a metrics sink. The broadcaster owns the subscriber
// gauge: every membership change, including drops it initiates itself, is
// reflected. Call during wiring, before subscribers connect.
func (b *Broadcaster) SetMetrics(sink statsd.Sink) {
	b.metrics = sink
}

// gauge reports the subscriber count. Safe under b.mu: the sink never calls
// back into the broadcaster.
func (b *Broadcaster) gauge(count int) {
	if b.metrics != nil {
		b.metrics.Gauge("events.subscribers", float64(count), nil)
	}
}

// Subscribe registers a new subscriber and returns its event channel plus an
// unsubscribe func. The channel is closed when the subscriber is removed, by
// unsub, by a failed publish, or by StopAll. unsub is idempotent.
func (b *Broadcaster) Subscribe() (func(), <-chan core.JobResult) {
	ch := make(chan core.JobResult, subscriberBuffer)
	id := uuid.NewString()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return func() {}, ch
	}
	b.subs[id] = ch
	count := len(b.subs)
	b.gauge(count)
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.Debug("subscriber added", "subscriber_id", id, "subscribers", count)
	}

	unsub := func() {
		b.remove(id)
	}
	return unsub, ch
}

// Publish delivers result to every subscriber registered at call time and
// returns the number of deliveries. Subscribers registered afterward never
// receive this event; there is no replay (pull mode covers that gap).
func (b *Broadcaster) Publish(result core.JobResult) int {
	// The mutex is held across the fan-out so an unsubscribe cannot close a
	// channel mid-send. Sends are non-blocking, so the critical section stays
	// short regardless of subscriber behaviour.
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0
	}

	delivered := 0
	dropped := 0
	for id, ch := range b.subs {
		select {
		case ch <- result:
			delivered++
		default:
			// Buffer full: the transport stopped draining. Drop this
			// subscriber rather than stall the rest.
			if b.logger != nil {
				b.logger.Warn("dropping unresponsive subscriber", "subscriber_id", id)
			}
			delete(b.subs, id)
			close(ch)
			dropped++
		}
	}
	if dropped > 0 {
		b.gauge(len(b.subs))
	}

	if b.logger != nil {
		b.logger.Debug("result published", "delivered", delivered, "status", result.Status)
	}
	return delivered
}

// Len returns the current number of subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// StopAll removes and closes every subscriber. Used on shutdown. Subsequent
// Subscribe calls return an already-closed channel.
func (b *Broadcaster) StopAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
	b.gauge(0)
}

// remove unregisters and closes a subscriber. Safe to call repeatedly.
func (b *Broadcaster) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(ch)
	b.gauge(len(b.subs))
}
