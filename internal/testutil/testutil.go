// Package testutil provides testing utilities for the workflow bridge.
package testutil

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// TestingTB covers both *testing.T and *testing.B.
type TestingTB interface {
	Helper()
	Skip(args ...interface{})
	Skipf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
	Cleanup(func())
}

// GetTestRedisAddr returns the Redis address for integration tests and whether
// Redis answers there. TEST_REDIS_ADDR takes priority; common local/CI
// addresses are probed as fallbacks.
func GetTestRedisAddr(t TestingTB) (string, bool) {
	t.Helper()

	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		return testRedisConnection(t, addr)
	}

	candidates := []string{
		"redis:6379",     // docker compose service name in CI
		"localhost:6379", // local redis
	}
	for _, candidate := range candidates {
		if addr, ok := testRedisConnection(t, candidate); ok {
			return addr, true
		}
	}

	return testRedisConnection(t, "localhost:56379")
}

// testRedisConnection pings Redis at the given address.
func testRedisConnection(t TestingTB, addr string) (string, bool) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer func() {
		if err := client.Close(); err != nil {
			t.Logf("warning: failed to close redis client: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Logf("Redis not available at %s: %v", addr, err)
		return addr, false
	}

	return addr, true
}

// SetupTestRedis creates a Redis client for integration tests, skipping the
// test when Redis is not reachable (or failing when TEST_REQUIRE_REDIS is
// set, so CI never silently skips).
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr, ok := GetTestRedisAddr(t)
	if !ok {
		if requireRedis() {
			t.Fatal("Redis not available for testing")
		}
		t.Skip("Redis not available for testing")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: testRedisDB()})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			t.Logf("warning: failed to close redis client after ping error: %v", cerr)
		}
		if requireRedis() {
			t.Fatalf("Redis not available for testing at %s: %v", addr, err)
		}
		t.Skipf("Redis not available for testing at %s: %v", addr, err)
	}

	client.FlushDB(ctx)

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("warning: failed to close redis client: %v", err)
		}
	})

	return client
}

// testRedisDB picks a non-default DB index so test FlushDB calls cannot touch
// data a local Redis may hold in DB 0.
func testRedisDB() int {
	if v := os.Getenv("TEST_REDIS_DB"); v == "0" {
		return 0
	}
	return 9
}

func requireRedis() bool {
	v := strings.ToLower(os.Getenv("TEST_REQUIRE_REDIS"))
	return v == "1" || v == "true" || v == "yes"
}

// FixedTimeFunc returns a clock function that always reports t.
func FixedTimeFunc(t time.Time) func() time.Time {
	return func() time.Time {
		return t
	}
}

// TestTime returns a fixed reference time for tests.
func TestTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}
