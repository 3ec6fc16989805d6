package tokenstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenExpiring(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := gojwt.RegisteredClaims{Subject: "user1", ExpiresAt: gojwt.NewNumericDate(exp)}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return token
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, store.Set(ctx, "s1", "opaque-token"))
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", got)

	require.NoError(t, store.Invalidate(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestMemoryStore_ExpiredTokenIsAbsent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "s1", tokenExpiring(t, now.Add(-time.Second))))
	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNoToken)

	fresh := tokenExpiring(t, now.Add(time.Hour))
	require.NoError(t, store.Set(ctx, "s2", fresh))
	got, err := store.Get(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
}

func TestMemoryStore_EmptyTokenInvalidates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "s1", "abc"))
	require.NoError(t, store.Set(ctx, "s1", ""))
	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestNew_WithoutRedisUsesMemory(t *testing.T) {
	_, ok := New(nil, time.Hour).(*MemoryStore)
	assert.True(t, ok)
}

func newRedisStore(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client, ttl)
}

func TestRedisStore_OpaqueTokenUsesConfiguredTTL(t *testing.T) {
	ctx := context.Background()
	mr, store := newRedisStore(t, 2*time.Hour)

	require.NoError(t, store.Set(ctx, "s1", "opaque-token"))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", got)
	assert.Equal(t, 2*time.Hour, mr.TTL(keyPrefix+"s1"))

	mr.FastForward(2*time.Hour + time.Second)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestRedisStore_TTLFollowsTokenExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	mr, store := newRedisStore(t, 2*time.Hour)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "s1", tokenExpiring(t, now.Add(10*time.Minute))))
	assert.Equal(t, 10*time.Minute, mr.TTL(keyPrefix+"s1"))

	require.NoError(t, store.Set(ctx, "s2", tokenExpiring(t, now.Add(-time.Minute))))
	assert.False(t, mr.Exists(keyPrefix+"s2"))
	_, err := store.Get(ctx, "s2")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestRedisStore_ExpiredTokenIsAbsentAndRemoved(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	mr, store := newRedisStore(t, 2*time.Hour)
	store.now = func() time.Time { return now }
	require.NoError(t, store.Set(ctx, "s1", tokenExpiring(t, now.Add(time.Minute))))

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err := store.Get(ctx, "s1")

	assert.ErrorIs(t, err, ErrNoToken)
	assert.False(t, mr.Exists(keyPrefix+"s1"))
}

func TestRedisStore_InvalidateAndEmptyToken(t *testing.T) {
	ctx := context.Background()
	_, store := newRedisStore(t, time.Hour)

	require.NoError(t, store.Set(ctx, "s1", "abc"))
	require.NoError(t, store.Invalidate(ctx, "s1"))
	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, store.Set(ctx, "s2", "abc"))
	require.NoError(t, store.Set(ctx, "s2", ""))
	_, err = store.Get(ctx, "s2")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestNew_WithRedisUsesRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	_, ok := New(client, time.Hour).(*RedisStore)
	assert.True(t, ok)
}
