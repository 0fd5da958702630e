package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestDefaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	cfg.Sanitize()

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Workflow.ResultKey != "workflow_status" {
		t.Errorf("Workflow.ResultKey = %q, want workflow_status", cfg.Workflow.ResultKey)
	}
	if cfg.Workflow.ResultTTL != 600*time.Second {
		t.Errorf("Workflow.ResultTTL = %v, want 600s", cfg.Workflow.ResultTTL)
	}
	if cfg.Workflow.HeartbeatInterval != 30*time.Second {
		t.Errorf("Workflow.HeartbeatInterval = %v, want 30s", cfg.Workflow.HeartbeatInterval)
	}
	if cfg.Workflow.PollInterval != 2*time.Second {
		t.Errorf("Workflow.PollInterval = %v, want 2s", cfg.Workflow.PollInterval)
	}
	if cfg.Workflow.PollTimeout != 5*time.Minute {
		t.Errorf("Workflow.PollTimeout = %v, want 5m", cfg.Workflow.PollTimeout)
	}
	if cfg.Redis.IsConfigured() {
		t.Error("Redis should not be configured by default")
	}
	if cfg.Observability.Metrics.IsEnabled() {
		t.Error("metrics should be disabled by default")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("WORKFLOW_RESULT_KEY", "deploy_status")
	t.Setenv("WORKFLOW_RESULT_TTL", "120s")
	t.Setenv("OBSERVABILITY_METRICS_ENABLED", "true")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	cfg.Sanitize()

	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("HTTP.Addr = %q, want :9090", cfg.HTTP.Addr)
	}
	if !cfg.Redis.IsConfigured() || cfg.Redis.Addr != "redis:6379" {
		t.Errorf("Redis.Addr = %q, want redis:6379", cfg.Redis.Addr)
	}
	if cfg.Workflow.ResultKey != "deploy_status" {
		t.Errorf("Workflow.ResultKey = %q, want deploy_status", cfg.Workflow.ResultKey)
	}
	if cfg.Workflow.ResultTTL != 2*time.Minute {
		t.Errorf("Workflow.ResultTTL = %v, want 2m", cfg.Workflow.ResultTTL)
	}
	if !cfg.Observability.Metrics.IsEnabled() {
		t.Error("metrics should be enabled")
	}
}

func TestSanitizeGuardrails(t *testing.T) {
	cfg := AppConfig{
		Workflow: WorkflowConfig{
			ResultKey:         "   ",
			ResultTTL:         -1,
			HeartbeatInterval: 0,
			PollInterval:      0,
			PollTimeout:       time.Second, // below poll interval once defaulted
		},
		Observability: ObservabilityConfig{
			Metrics: ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "  "},
		},
	}
	cfg.Sanitize()

	if cfg.Workflow.ResultKey != "workflow_status" {
		t.Errorf("ResultKey = %q, want workflow_status", cfg.Workflow.ResultKey)
	}
	if cfg.Workflow.ResultTTL != 600*time.Second {
		t.Errorf("ResultTTL = %v, want 600s", cfg.Workflow.ResultTTL)
	}
	if cfg.Workflow.HeartbeatInterval != 30*time.Second {
		t.Errorf("HeartbeatInterval = %v, want 30s", cfg.Workflow.HeartbeatInterval)
	}
	if cfg.Workflow.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %v, want 2s", cfg.Workflow.PollInterval)
	}
	if cfg.Workflow.PollTimeout != 5*time.Minute {
		t.Errorf("PollTimeout = %v, want 5m", cfg.Workflow.PollTimeout)
	}
	if cfg.Observability.Metrics.IsEnabled() {
		t.Error("metrics with blank statsd address must be disabled")
	}
}

func TestDetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	cfg.Sanitize()

	if !cfg.IsDev {
		t.Error("NODE_ENV=development should enable dev mode")
	}
}
