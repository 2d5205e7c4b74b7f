package tokenstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-system/pkg/config"
)

func TestMemoryBlacklist_RevokeAndExpire(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := NewMemory()
	b.now = func() time.Time { return now }
	ctx := context.Background()

	revoked, err := b.IsRevoked(ctx, "a.b.c")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, b.Revoke(ctx, "a.b.c", time.Hour))
	revoked, err = b.IsRevoked(ctx, "a.b.c")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(time.Hour)
	revoked, err = b.IsRevoked(ctx, "a.b.c")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryBlacklist_IgnoresExpiredTokens(t *testing.T) {
	b := NewMemory()
	require.NoError(t, b.Revoke(context.Background(), "old", 0))

	revoked, err := b.IsRevoked(context.Background(), "old")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestNew_FallsBackToMemory(t *testing.T) {
	b, err := New(context.Background(), config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, &MemoryBlacklist{}, b)
	assert.NoError(t, b.Close())
}

func TestJWTKey(t *testing.T) {
	assert.Equal(t, "booking.jwt.xyz", jwtKey("xyz"))
}
