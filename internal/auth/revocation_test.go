package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRevocationStore(t *testing.T) (*RevocationStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewRevocationStore(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestRevocationStore(t *testing.T) {
	ctx := context.Background()
	s, mr := newRevocationStore(t)

	revoked, err := s.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "tok-1", time.Minute))

	revoked, err = s.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = s.IsRevoked(ctx, "tok-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	// Raw tokens are never used as keys.
	for _, key := range mr.Keys() {
		assert.NotContains(t, key, "tok-1")
	}

	mr.FastForward(2 * time.Minute)
	revoked, err = s.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationStore_ExpiredTTLIsNoop(t *testing.T) {
	ctx := context.Background()
	s, mr := newRevocationStore(t)

	require.NoError(t, s.Revoke(ctx, "tok", -time.Second))
	assert.Empty(t, mr.Keys())
}

func TestRevocationStore_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := newRevocationStore(t)

	require.NoError(t, s.Revoke(ctx, "tok", 0))
	mr.FastForward(24 * 365 * time.Hour)

	revoked, err := s.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)
}
