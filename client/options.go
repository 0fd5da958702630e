package client

import (
	"log/slog"
	"net/http"
	"time"
)

// Options controls the polling cadence and transport of a PollClient.
type Options struct {
	// Interval is how often an active session queries the status endpoint.
	Interval time.Duration

	// Timeout bounds how long a session keeps polling before giving up.
	Timeout time.Duration

	// HTTPClient issues the requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Logger receives debug lines for swallowed transport errors.
	Logger *slog.Logger
}

// Option mutates Options.
type Option func(o *Options)

// NewOptions returns Options with defaults applied, then the given overrides.
func NewOptions(options ...Option) *Options {
	config := &Options{
		Interval:   2 * time.Second,
		Timeout:    5 * time.Minute,
		HTTPClient: http.DefaultClient,
	}

	for _, option := range options {
		option(config)
	}

	return config
}

// WithInterval overrides the poll cadence.
func WithInterval(d time.Duration) Option {
	return func(o *Options) {
		o.Interval = d
	}
}

// WithTimeout overrides the overall session deadline.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithHTTPClient overrides the transport.
func WithHTTPClient(h *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = h
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}
