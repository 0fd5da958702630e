package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadgrid/workflow-bridge/internal/testutil"
)

func TestRedisCacheRepoSetGetDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	repo := NewRedisCacheRepo(client)
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		key := "bridge:test:1"
		value := []byte(`{"status":"Success"}`)
		ttl := 5 * time.Minute

		err := repo.Set(ctx, key, value, ttl)
		require.NoError(t, err)

		result, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, value, result)

		actualTTL := client.TTL(ctx, key).Val()
		assert.True(t, actualTTL > 0 && actualTTL <= ttl)
	})

	t.Run("get non-existent key", func(t *testing.T) {
		result, err := repo.Get(ctx, "bridge:test:missing")
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("delete existing key", func(t *testing.T) {
		key := "bridge:test:2"
		require.NoError(t, repo.Set(ctx, key, []byte("stale"), time.Minute))

		deleted, err := repo.Delete(ctx, key)
		require.NoError(t, err)
		assert.True(t, deleted)

		result, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("delete non-existent key", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, "bridge:test:missing")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		assert.Error(t, repo.Set(ctx, "", []byte("v"), 0))
		_, err := repo.Get(ctx, "")
		assert.Error(t, err)
		_, err = repo.GetDelete(ctx, "")
		assert.Error(t, err)
	})
}

func TestRedisCacheRepoGetDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	repo := NewRedisCacheRepo(client)
	ctx := context.Background()

	t.Run("consumes the value", func(t *testing.T) {
		key := "bridge:test:getdel"
		value := []byte(`{"status":"error","message":"boom"}`)
		require.NoError(t, repo.Set(ctx, key, value, time.Minute))

		result, err := repo.GetDelete(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, value, result)

		result, err = repo.GetDelete(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("missing key is nil not error", func(t *testing.T) {
		result, err := repo.GetDelete(ctx, "bridge:test:getdel:missing")
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestRedisCacheRepoHealth(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	repo := NewRedisCacheRepo(client)

	assert.NoError(t, repo.Health(context.Background()))
}
