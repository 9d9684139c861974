package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// Workers is the number of events processed concurrently.
	// If 0, defaults to 1.
	Workers int64

	// MemoryLimitBytes bounds the estimated size of events held in flight.
	// If 0, usage is tracked but not limited.
	MemoryLimitBytes int64

	// OutputBytesPerSec limits publish throughput. If 0, unlimited.
	OutputBytesPerSec int64
}

// Controller hands out worker slots, memory and output bandwidth.
type Controller struct {
	cfg Config

	workers *semaphore.Weighted

	memSem  *semaphore.Weighted
	memUsed atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a controller for cfg.
func NewController(cfg Config) *Controller {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	c := &Controller{
		cfg:     cfg,
		workers: semaphore.NewWeighted(cfg.Workers),
	}
	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.OutputBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.OutputBytesPerSec), int(cfg.OutputBytesPerSec))
	}
	return c
}

// Workers returns the number of worker slots.
func (c *Controller) Workers() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.Workers)
}

// AcquireWorker blocks until a worker slot is free or ctx is done.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return ctx.Err()
	}
	return c.workers.Acquire(ctx, 1)
}

// TryAcquireWorker takes a worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	return c.workers.TryAcquire(1)
}

// ReleaseWorker returns a slot taken by AcquireWorker.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.workers.Release(1)
}

// AcquireMemory reserves bytes, blocking while the budget is exhausted.
// Requests larger than the whole budget are clamped to it so that a single
// oversized batch can still run alone.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) (int64, error) {
	if c == nil || bytes <= 0 {
		return 0, nil
	}
	if c.memSem != nil {
		bytes = min(bytes, c.cfg.MemoryLimitBytes)
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return 0, err
		}
	}
	c.memUsed.Add(bytes)
	return bytes, nil
}

// ReleaseMemory returns bytes reserved by AcquireMemory. Pass the amount
// AcquireMemory returned.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the reserved bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireIO waits until n output bytes may be written.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := c.ioLimiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
