package config

import (
	"strings"
	"time"
)

// WorkflowConfig controls the callback result slot and consumer polling cadence.
type WorkflowConfig struct {
	// ResultKey is the store key holding the latest workflow result. A single
	// key: a new callback always replaces the previous one.
	ResultKey string `env:"WORKFLOW_RESULT_KEY" envDefault:"workflow_status"`

	// ResultTTL bounds how long an unconsumed result stays retrievable.
	ResultTTL time.Duration `env:"WORKFLOW_RESULT_TTL" envDefault:"600s"`

	// HeartbeatInterval is the SSE keep-alive comment cadence.
	HeartbeatInterval time.Duration `env:"WORKFLOW_HEARTBEAT_INTERVAL" envDefault:"30s"`

	// PollInterval is the default cadence the bundled poll client queries
	// the status endpoint with.
	PollInterval time.Duration `env:"WORKFLOW_POLL_INTERVAL" envDefault:"2s"`

	// PollTimeout is how long the bundled poll client waits for a result
	// before giving up.
	PollTimeout time.Duration `env:"WORKFLOW_POLL_TIMEOUT" envDefault:"5m"`
}

// Sanitize applies guardrails to workflow configuration values.
func (c *WorkflowConfig) Sanitize() {
	c.ResultKey = strings.TrimSpace(c.ResultKey)
	if c.ResultKey == "" {
		c.ResultKey = "workflow_status"
	}
	if c.ResultTTL <= 0 {
		c.ResultTTL = 600 * time.Second
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.PollTimeout < c.PollInterval {
		c.PollTimeout = 5 * time.Minute
	}
}
