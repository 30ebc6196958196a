package pool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// No broker is dialed in this package's unit tests: every Acquire against an
// unreachable URL fails at the dial step, which is enough to exercise the
// pool's bookkeeping (semaphore release on failure, idle list, Close) without
// a live RabbitMQ.

func TestPool_Close_Empty(t *testing.T) {
	p := New(Config{URL: "amqp://127.0.0.1:1"})
	assert.NoError(t, p.Close())
}

func TestPool_Acquire_DialFailureReleasesSlot(t *testing.T) {
	p := New(Config{URL: "amqp://127.0.0.1:1", Capacity: 1})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := p.Acquire(ctx)
	require.Error(t, err)

	// The failed acquire must have released its semaphore slot; a second
	// acquire should fail the same way (dial error), not block on a
	// still-held slot until the context deadline.
	_, err2 := p.Acquire(ctx)
	require.Error(t, err2)
	assert.NotErrorIs(t, err2, context.DeadlineExceeded)
}

func TestPool_Healthy_FalseWhenUnreachable(t *testing.T) {
	p := New(Config{URL: "amqp://127.0.0.1:1", Capacity: 1})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.False(t, p.Healthy(ctx))
}

func TestPool_New_DefaultsCapacity(t *testing.T) {
	p := New(Config{URL: "amqp://127.0.0.1:1", Capacity: 0})
	require.NotNil(t, p.sem)
	assert.True(t, p.sem.TryAcquire(5), "a zero capacity defaults to 5 slots")
	assert.False(t, p.sem.TryAcquire(1))
}
