package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemLimiter_AllowsUpToLimit(t *testing.T) {
	l := NewInMemLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d should be allowed", i)
	}

	res, err := l.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed, "the 4th request within the window should be rejected")
}

func TestInMemLimiter_RefillsOverTime(t *testing.T) {
	l := NewInMemLimiter()
	ctx := context.Background()

	res, err := l.Allow(ctx, "k", 1, 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = l.Allow(ctx, "k", 1, 10*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	time.Sleep(20 * time.Millisecond)

	res, err = l.Allow(ctx, "k", 1, 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "the bucket should have refilled after the period elapsed")
}

func TestInMemLimiter_KeysAreIndependent(t *testing.T) {
	l := NewInMemLimiter()
	ctx := context.Background()

	res, err := l.Allow(ctx, "a", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = l.Allow(ctx, "b", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "a separate key must have its own budget")
}
