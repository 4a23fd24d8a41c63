// Package resource bounds the concurrency of saturation workers and throttles
// progress reporting. A Controller can be shared between reasoners so that
// several classifications running at once never exceed one worker budget.
package resource

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxWorkers is the maximum number of saturation workers running at once
	// across all reasoners using this controller.
	// If 0, defaults to GOMAXPROCS.
	MaxWorkers int64

	// ProgressInterval is the minimum time between two progress reports.
	// If 0, progress is reported at most ten times per second.
	ProgressInterval time.Duration
}

// Controller manages worker slots and the progress reporting rate.
type Controller struct {
	cfg Config

	workerSem *semaphore.Weighted
	active    atomic.Int64

	progress *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = int64(runtime.GOMAXPROCS(0))
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 100 * time.Millisecond
	}

	return &Controller{
		cfg:       cfg,
		workerSem: semaphore.NewWeighted(cfg.MaxWorkers),
		progress:  rate.NewLimiter(rate.Every(cfg.ProgressInterval), 1),
	}
}

// MaxWorkers returns the configured worker budget.
func (c *Controller) MaxWorkers() int64 {
	if c == nil {
		return int64(runtime.GOMAXPROCS(0))
	}
	return c.cfg.MaxWorkers
}

// AcquireWorker reserves a worker slot.
// Blocks until a slot is free or ctx is canceled.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.workerSem.Acquire(ctx, 1); err != nil {
		return err
	}
	c.active.Add(1)
	return nil
}

// TryAcquireWorker attempts to reserve a worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	if !c.workerSem.TryAcquire(1) {
		return false
	}
	c.active.Add(1)
	return true
}

// ReleaseWorker releases a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.active.Add(-1)
	c.workerSem.Release(1)
}

// ActiveWorkers returns the number of reserved worker slots.
func (c *Controller) ActiveWorkers() int64 {
	if c == nil {
		return 0
	}
	return c.active.Load()
}

// AllowProgress reports whether a progress report may be emitted now.
func (c *Controller) AllowProgress() bool {
	if c == nil {
		return true
	}
	return c.progress.Allow()
}
