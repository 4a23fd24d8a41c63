package resource

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Workers(t *testing.T) {
	c := NewController(Config{MaxWorkers: 2})
	assert.Equal(t, int64(2), c.MaxWorkers())

	// Acquire 2
	require.NoError(t, c.AcquireWorker(context.Background()))
	require.NoError(t, c.AcquireWorker(context.Background()))
	assert.Equal(t, int64(2), c.ActiveWorkers())

	// Try 3rd
	assert.False(t, c.TryAcquireWorker())

	// Blocking acquire times out
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireWorker(ctx), context.DeadlineExceeded)

	// Release 1
	c.ReleaseWorker()
	assert.Equal(t, int64(1), c.ActiveWorkers())

	// Try 3rd again
	assert.True(t, c.TryAcquireWorker())
}

func TestController_WorkersBlockUntilRelease(t *testing.T) {
	c := NewController(Config{MaxWorkers: 1})
	require.NoError(t, c.AcquireWorker(context.Background()))

	var wg sync.WaitGroup
	wg.Add(1)
	acquired := make(chan struct{})
	go func() {
		defer wg.Done()
		if err := c.AcquireWorker(context.Background()); err == nil {
			close(acquired)
		}
	}()

	select {
	case <-acquired:
		t.Fatal("acquired while slot was held")
	case <-time.After(20 * time.Millisecond):
	}

	c.ReleaseWorker()
	wg.Wait()
	<-acquired
	c.ReleaseWorker()
}

func TestController_Progress(t *testing.T) {
	c := NewController(Config{ProgressInterval: time.Hour})

	assert.True(t, c.AllowProgress())
	assert.False(t, c.AllowProgress())
}

func TestController_NilChecks(t *testing.T) {
	var c *Controller
	assert.NoError(t, c.AcquireWorker(context.Background()))
	assert.True(t, c.TryAcquireWorker())
	assert.True(t, c.AllowProgress())
	assert.Zero(t, c.ActiveWorkers())
	assert.Positive(t, c.MaxWorkers())
	c.ReleaseWorker() // Should not panic
}
