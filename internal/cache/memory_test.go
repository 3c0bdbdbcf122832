package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCounter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCounter()
	c.now = func() time.Time { return now }

	n, err := c.Incr(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, err := c.Expire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	n, _ = c.Incr(ctx, "k")
	assert.Equal(t, int64(2), n)

	now = now.Add(time.Minute)
	n, _ = c.Incr(ctx, "k")
	assert.Equal(t, int64(1), n, "counter restarts after expiry")

	ok, _ = c.Expire(ctx, "missing", time.Minute)
	assert.False(t, ok)
}
