// Package service implements the callback bridge business logic: the expiring
// result slot, the push broadcaster, and the notification gateway that ties
// them to the workflow engine's callback.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leadgrid/workflow-bridge/internal/core"
	apperrors "github.com/leadgrid/workflow-bridge/internal/errors"
)

const (
	// DefaultResultKey is the fixed slot key. The bridge assumes one logical
	// job in flight system-wide; see ResultSlotConfig.Key.
	DefaultResultKey = "workflow_status"

	// DefaultResultTTL bounds how long an unread result stays retrievable.
	DefaultResultTTL = 600 * time.Second
)

// ResultSlotConfig groups configuration for the result slot.
type ResultSlotConfig struct {
	// Key is the store key holding the current result. A single fixed key
	// means a second submitter's clear wipes the first submitter's pending
	// result; acceptable for a single-operator deployment.
	Key string
	// TTL is how long a stored result stays retrievable before it is
	// implicitly empty.
	TTL time.Duration
}

// DefaultResultSlotConfig returns the slot defaults.
func DefaultResultSlotConfig() ResultSlotConfig {
	return ResultSlotConfig{Key: DefaultResultKey, TTL: DefaultResultTTL}
}

// ResultSlotOptions groups dependencies for ResultSlotService.
type ResultSlotOptions struct {
	Cache  core.CacheRepository // Required: backing key-value store
	Config ResultSlotConfig     // Key/TTL; zero values take defaults
	Logger *slog.Logger         // Optional
}

// ResultSlotService is the single-item, expiring, at-most-once-readable
// container for the most recent workflow result.
//
// Atomicity of the read-and-clear lives in the repository (Redis GETDEL or
// the memory repo's critical section), so concurrent fetches across processes
// sharing one Redis are still at-most-once.
type ResultSlotService struct {
	cache  core.CacheRepository
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

// NewResultSlotService constructs a ResultSlotService.
func NewResultSlotService(opts ResultSlotOptions) (*ResultSlotService, error) {
	if opts.Cache == nil {
		return nil, errors.New("CacheRepository is required")
	}

	cfg := opts.Config
	if cfg.Key == "" {
		cfg.Key = DefaultResultKey
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultResultTTL
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "result_slot")
	}

	return &ResultSlotService{
		cache:  opts.Cache,
		key:    cfg.Key,
		ttl:    cfg.TTL,
		logger: logger,
	}, nil
}

// MustNewResultSlotService constructs a ResultSlotService and panics on error.
func MustNewResultSlotService(opts ResultSlotOptions) *ResultSlotService {
	svc, err := NewResultSlotService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create ResultSlotService: %v", err))
	}
	return svc
}

// Store overwrites the slot with the result's verbatim payload and restarts
// the TTL. Last writer wins.
func (s *ResultSlotService) Store(ctx context.Context, result core.JobResult) error {
	if len(result.Payload) == 0 {
		return apperrors.Validation("result payload is empty")
	}

	if err := s.cache.Set(ctx, s.key, result.Payload, s.ttl); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "store result")
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "result stored", "status", result.Status, "ttl", s.ttl)
	}
	return nil
}

// Fetch returns the stored result and empties the slot in the same atomic
// step. A nil result means the slot is empty or expired ("pending", not an
// error).
func (s *ResultSlotService) Fetch(ctx context.Context) (*core.JobResult, error) {
	payload, err := s.cache.GetDelete(ctx, s.key)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "fetch result")
	}
	if payload == nil {
		return nil, nil
	}

	result, err := core.ParseJobResult(payload)
	if err != nil {
		// The slot only ever holds bodies that parsed on the way in; a
		// corrupt value is better dropped than served forever.
		if s.logger != nil {
			s.logger.WarnContext(ctx, "discarding unparseable stored result", "error", err)
		}
		return nil, nil
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "result consumed", "status", result.Status)
	}
	return &result, nil
}

// Clear unconditionally empties the slot, discarding any unconsumed result.
// Issued by a submitter before a new run so a consumer cannot mistake the
// previous job's leftover result for the new one.
func (s *ResultSlotService) Clear(ctx context.Context) error {
	if _, err := s.cache.Delete(ctx, s.key); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "clear result")
	}
	return nil
}

// Health reports whether the backing store is reachable.
func (s *ResultSlotService) Health(ctx context.Context) error {
	return s.cache.Health(ctx)
}
