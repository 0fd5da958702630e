package client

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Terminal session errors.
var (
	// ErrTimedOut means the session's overall deadline passed with no result.
	ErrTimedOut = errors.New("poll session timed out")
	// ErrCanceled means the session was cancelled before a result arrived.
	ErrCanceled = errors.New("poll session canceled")
)

// SessionState is the lifecycle state of a PollSession.
type SessionState int32

const (
	StatePolling SessionState = iota
	StateResolved
	StateTimedOut
	StateCanceled
)

func (s SessionState) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StateResolved:
		return "resolved"
	case StateTimedOut:
		return "timed_out"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Outcome is the single terminal value of a session: a result, or one of the
// terminal errors.
type Outcome struct {
	Result *Result
	Err    error
}

// PollSession drives the ticker loop for one submission. It terminates on
// the first of: result delivered, deadline passed, Cancel called.
type PollSession struct {
	client    *PollClient
	startTime time.Time

	ctx    context.Context
	cancel context.CancelFunc

	outcome chan Outcome
	done    sync.Once

	mu    sync.Mutex
	state SessionState
}

func newPollSession(c *PollClient) *PollSession {
	ctx, cancel := context.WithCancel(context.Background())
	return &PollSession{
		client:    c,
		startTime: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
		outcome:   make(chan Outcome, 1),
		state:     StatePolling,
	}
}

// Result returns the channel carrying the session's single Outcome.
func (s *PollSession) Result() <-chan Outcome {
	return s.outcome
}

// Cancel terminates the session. Idempotent; the ticker stops even if a poll
// request is in flight. Calling Cancel after the session already resolved is
// a no-op.
func (s *PollSession) Cancel() {
	s.cancel()
}

// State reports the current lifecycle state.
func (s *PollSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *PollSession) run() {
	ticker := time.NewTicker(s.client.interval)
	defer ticker.Stop()

	deadline := s.startTime.Add(s.client.timeout)

	for {
		select {
		case <-s.ctx.Done():
			s.finish(StateCanceled, Outcome{Err: ErrCanceled})
			return
		case <-ticker.C:
			if time.Since(s.startTime) > s.client.timeout {
				s.finish(StateTimedOut, Outcome{Err: ErrTimedOut})
				return
			}

			// Each request is capped at the remaining session window so a
			// server that accepts but never answers cannot stall the loop
			// past the overall deadline.
			pollCtx, cancel := context.WithDeadline(s.ctx, deadline)
			result, err := s.client.Poll(pollCtx)
			cancel()
			if err != nil {
				if s.ctx.Err() != nil {
					s.finish(StateCanceled, Outcome{Err: ErrCanceled})
					return
				}
				if pollCtx.Err() != nil {
					s.finish(StateTimedOut, Outcome{Err: ErrTimedOut})
					return
				}
				// Transient transport failure: retry on the next tick.
				s.client.logger.Debug("poll failed, retrying", "error", err)
				continue
			}
			if result == nil {
				continue
			}

			s.finish(StateResolved, Outcome{Result: result})
			return
		}
	}
}

// finish records the terminal state and delivers the single Outcome. The
// context is cancelled so a concurrent Cancel and a natural termination can
// never both win.
func (s *PollSession) finish(state SessionState, outcome Outcome) {
	s.done.Do(func() {
		s.mu.Lock()
		s.state = state
		s.mu.Unlock()

		s.cancel()
		s.outcome <- outcome
	})
}
