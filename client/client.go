// Package client is the consumer-side library for the workflow bridge. It
// wraps the pull endpoints: one-shot polls, slot invalidation before a new
// submission, and ticker-driven poll sessions that run until a result
// arrives, the deadline passes, or the caller cancels.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/leadgrid/workflow-bridge/internal/core"
)

const statusPath = "/api/status"

// maxResponseBody caps how much of a status response is read.
const maxResponseBody = 1 << 20

// PollClient queries a bridge for the current workflow result. Safe for
// concurrent use; at most one poll session is active at a time and starting
// a new one cancels its predecessor.
type PollClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	interval   time.Duration
	timeout    time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	session *PollSession
}

// NewPollClient builds a client against the bridge at baseURL.
func NewPollClient(baseURL string, options ...Option) (*PollClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	opts := NewOptions(options...)
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &PollClient{
		baseURL:    parsed,
		httpClient: opts.HTTPClient,
		interval:   opts.Interval,
		timeout:    opts.Timeout,
		logger:     logger.With("component", "poll_client"),
	}, nil
}

// Poll issues one status query. A nil result with a nil error means the
// bridge has nothing yet (pending). A non-nil error covers transport
// failures and non-OK responses; callers running a session loop treat those
// as transient.
func (c *PollClient) Poll(ctx context.Context) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(), nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll status: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read status response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poll status: bridge returned %d", resp.StatusCode)
	}

	result, err := core.ParseJobResult(body)
	if err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	if strings.EqualFold(result.Status, "pending") {
		return nil, nil
	}
	return newResult(result), nil
}

// Invalidate clears any stale stored result. Call it before triggering a new
// workflow run so the next poll cannot observe the previous job's outcome.
func (c *PollClient) Invalidate(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint(), nil)
	if err != nil {
		return fmt.Errorf("build clear request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("clear status: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("clear status: bridge returned %d", resp.StatusCode)
	}
	return nil
}

// Start begins a poll session, cancelling any session already running. The
// returned session delivers exactly one Outcome on Result().
func (c *PollClient) Start() *PollSession {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		c.session.Cancel()
	}

	session := newPollSession(c)
	c.session = session
	go session.run()
	return session
}

func (c *PollClient) endpoint() string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + statusPath
	return u.String()
}
