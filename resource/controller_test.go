package resource

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Workers(t *testing.T) {
	c := NewController(Config{Workers: 2})
	assert.Equal(t, 2, c.Workers())

	ctx := context.Background()
	require.NoError(t, c.AcquireWorker(ctx))
	require.NoError(t, c.AcquireWorker(ctx))
	assert.False(t, c.TryAcquireWorker())

	timeout, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireWorker(timeout), context.DeadlineExceeded)

	c.ReleaseWorker()
	assert.True(t, c.TryAcquireWorker())
}

func TestController_DefaultsToOneWorker(t *testing.T) {
	c := NewController(Config{})
	assert.Equal(t, 1, c.Workers())
	assert.True(t, c.TryAcquireWorker())
	assert.False(t, c.TryAcquireWorker())
}

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})
	ctx := context.Background()

	got, err := c.AcquireMemory(ctx, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(60), got)

	timeout, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = c.AcquireMemory(timeout, 50)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(60), c.MemoryUsage())

	c.ReleaseMemory(got)
	assert.Zero(t, c.MemoryUsage())

	got, err = c.AcquireMemory(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got)
	c.ReleaseMemory(got)
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})
	got, err := c.AcquireMemory(context.Background(), 1<<30)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<30), c.MemoryUsage())
	c.ReleaseMemory(got)
	assert.Zero(t, c.MemoryUsage())
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	ctx := context.Background()

	assert.Equal(t, 1, c.Workers())
	require.NoError(t, c.AcquireWorker(ctx))
	assert.True(t, c.TryAcquireWorker())
	c.ReleaseWorker()

	got, err := c.AcquireMemory(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, got)
	require.NoError(t, c.AcquireIO(ctx, 1<<20))
}

func TestRateLimitedWriter(t *testing.T) {
	c := NewController(Config{OutputBytesPerSec: 1000})
	var buf bytes.Buffer
	w := NewRateLimitedWriter(context.Background(), &buf, c)

	// The first burst is free; 500 more bytes need about half a second.
	start := time.Now()
	n, err := w.Write(make([]byte, 1500))
	require.NoError(t, err)
	assert.Equal(t, 1500, n)
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
	assert.Equal(t, 1500, buf.Len())
}

func TestRateLimitedWriter_Cancelled(t *testing.T) {
	c := NewController(Config{OutputBytesPerSec: 10})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewRateLimitedWriter(ctx, &bytes.Buffer{}, c)
	_, err := w.Write(make([]byte, 100))
	assert.Error(t, err)
}
