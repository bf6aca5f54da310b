//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/c4gt/bounce/internal/database/dbtest"
	"github.com/c4gt/bounce/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisOTPStore(t *testing.T) {
	client := dbtest.SetupTestRedis(t)
	store := NewRedisOTPStore(client, "test:otp:", time.Hour)
	ctx := context.Background()

	t.Run("missing record", func(t *testing.T) {
		_, err := store.Get(ctx, "nobody@x.com")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("put get delete", func(t *testing.T) {
		expires := time.Now().Add(10 * time.Minute).UTC().Truncate(time.Millisecond)
		require.NoError(t, store.Put(ctx, &models.OTPRecord{Identifier: "a@x.com", Code: "123456", ExpiresAt: expires}))

		rec, err := store.Get(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", rec.Identifier)
		assert.Equal(t, "123456", rec.Code)
		assert.True(t, rec.ExpiresAt.Equal(expires))

		ttl, err := client.TTL(ctx, "test:otp:a@x.com").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Hour, "key should outlive the code by the retention period")

		deleted, err := store.Delete(ctx, rec)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = store.Delete(ctx, rec)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("delete keeps reissued code", func(t *testing.T) {
		expires := time.Now().Add(10 * time.Minute)
		require.NoError(t, store.Put(ctx, &models.OTPRecord{Identifier: "c@x.com", Code: "111111", ExpiresAt: expires}))
		old, err := store.Get(ctx, "c@x.com")
		require.NoError(t, err)

		require.NoError(t, store.Put(ctx, &models.OTPRecord{Identifier: "c@x.com", Code: "222222", ExpiresAt: expires}))

		deleted, err := store.Delete(ctx, old)
		require.NoError(t, err)
		assert.False(t, deleted)

		rec, err := store.Get(ctx, "c@x.com")
		require.NoError(t, err)
		assert.Equal(t, "222222", rec.Code)
	})

	t.Run("expired record is still readable during retention", func(t *testing.T) {
		past := time.Now().Add(-time.Minute)
		require.NoError(t, store.Put(ctx, &models.OTPRecord{Identifier: "old@x.com", Code: "654321", ExpiresAt: past}))

		rec, err := store.Get(ctx, "old@x.com")
		require.NoError(t, err)
		assert.True(t, rec.IsExpiredAt(time.Now()))
	})

	t.Run("overwrite", func(t *testing.T) {
		expires := time.Now().Add(time.Minute)
		require.NoError(t, store.Put(ctx, &models.OTPRecord{Identifier: "b@x.com", Code: "111111", ExpiresAt: expires}))
		require.NoError(t, store.Put(ctx, &models.OTPRecord{Identifier: "b@x.com", Code: "222222", ExpiresAt: expires}))

		rec, err := store.Get(ctx, "b@x.com")
		require.NoError(t, err)
		assert.Equal(t, "222222", rec.Code)
	})
}
