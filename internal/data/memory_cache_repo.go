package data

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MemoryCacheRepo is an in-process core.CacheRepository. It backs the result
// slot when no Redis address is configured and serves as the unit-test
// implementation.
//
// Expiry is passive: entries are checked against their deadline at read time
// rather than swept by a background goroutine. The slot holds a single tiny
// value, so a stale entry costs nothing until the next read.
type MemoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// NewMemoryCacheRepo creates an empty in-memory repository.
func NewMemoryCacheRepo() *MemoryCacheRepo {
	return &MemoryCacheRepo{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// SetTimeFunc overrides the clock, letting tests exercise TTL expiry without
// sleeping.
func (m *MemoryCacheRepo) SetTimeFunc(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Set stores a value with the given TTL, overwriting any previous value.
func (m *MemoryCacheRepo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = entry
	return nil
}

// Get retrieves a value by key. Returns nil when absent or expired.
func (m *MemoryCacheRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("key cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.liveEntry(key)
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), entry.value...), nil
}

// GetDelete retrieves and removes a value in one critical section.
func (m *MemoryCacheRepo) GetDelete(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("key cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.liveEntry(key)
	if !ok {
		return nil, nil
	}
	delete(m.entries, key)
	return entry.value, nil
}

// Delete removes a key. Returns true if a live value was removed.
func (m *MemoryCacheRepo) Delete(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("key cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.liveEntry(key)
	delete(m.entries, key)
	return ok, nil
}

// Health always succeeds for the in-memory repository.
func (m *MemoryCacheRepo) Health(ctx context.Context) error {
	return nil
}

// liveEntry returns the entry for key if present and unexpired, dropping it
// lazily when the deadline has passed. Callers must hold mu.
func (m *MemoryCacheRepo) liveEntry(key string) (memoryEntry, bool) {
	entry, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}
