package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AssetCarePlatform/pkg/logger"
)

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.NewLogger("development", "error", "worker-test")
	require.NoError(t, err)
	return log
}

func TestNewPool(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		pool, err := NewPool(nil, testLogger(t))
		require.NoError(t, err)
		assert.Equal(t, 8, pool.config.WorkerCount)
	})

	t.Run("invalid config is rejected", func(t *testing.T) {
		_, err := NewPool(&Config{WorkerCount: 0}, testLogger(t))
		assert.Error(t, err)
	})
}

func TestExecuteBatch(t *testing.T) {
	t.Run("runs all jobs", func(t *testing.T) {
		pool, err := NewPool(&Config{WorkerCount: 4}, testLogger(t))
		require.NoError(t, err)

		var executed int64
		jobs := make([]*Job, 20)
		for i := range jobs {
			jobs[i] = &Job{
				ID: fmt.Sprintf("job-%d", i),
				Run: func(ctx context.Context) error {
					atomic.AddInt64(&executed, 1)
					return nil
				},
			}
		}

		results := pool.ExecuteBatch(context.Background(), jobs)

		require.Len(t, results, 20)
		assert.Equal(t, int64(20), atomic.LoadInt64(&executed))
		for i, result := range results {
			assert.Equal(t, fmt.Sprintf("job-%d", i), result.JobID)
			assert.NoError(t, result.Err)
		}
	})

	t.Run("failures are isolated per job", func(t *testing.T) {
		pool, err := NewPool(&Config{WorkerCount: 2}, testLogger(t))
		require.NoError(t, err)

		failure := fmt.Errorf("storage unavailable")
		jobs := []*Job{
			{ID: "ok-1", Run: func(ctx context.Context) error { return nil }},
			{ID: "bad", Run: func(ctx context.Context) error { return failure }},
			{ID: "ok-2", Run: func(ctx context.Context) error { return nil }},
		}

		results := pool.ExecuteBatch(context.Background(), jobs)

		require.Len(t, results, 3)
		assert.NoError(t, results[0].Err)
		assert.Equal(t, failure, results[1].Err)
		assert.NoError(t, results[2].Err)
	})

	t.Run("empty batch returns nil", func(t *testing.T) {
		pool, err := NewPool(nil, testLogger(t))
		require.NoError(t, err)

		assert.Nil(t, pool.ExecuteBatch(context.Background(), nil))
	})

	t.Run("concurrency is bounded by worker count", func(t *testing.T) {
		pool, err := NewPool(&Config{WorkerCount: 2}, testLogger(t))
		require.NoError(t, err)

		var current, peak int64
		var mu sync.Mutex

		jobs := make([]*Job, 10)
		for i := range jobs {
			jobs[i] = &Job{
				ID: fmt.Sprintf("job-%d", i),
				Run: func(ctx context.Context) error {
					n := atomic.AddInt64(&current, 1)
					mu.Lock()
					if n > peak {
						peak = n
					}
					mu.Unlock()
					time.Sleep(10 * time.Millisecond)
					atomic.AddInt64(&current, -1)
					return nil
				},
			}
		}

		pool.ExecuteBatch(context.Background(), jobs)

		mu.Lock()
		defer mu.Unlock()
		assert.LessOrEqual(t, peak, int64(2))
	})

	t.Run("cancelled context fails remaining jobs", func(t *testing.T) {
		pool, err := NewPool(&Config{WorkerCount: 1}, testLogger(t))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())

		jobs := []*Job{
			{ID: "first", Run: func(jobCtx context.Context) error {
				cancel()
				return nil
			}},
			{ID: "second", Run: func(jobCtx context.Context) error { return nil }},
		}

		results := pool.ExecuteBatch(ctx, jobs)

		require.Len(t, results, 2)
		assert.NoError(t, results[0].Err)
		assert.ErrorIs(t, results[1].Err, context.Canceled)
	})
}

func TestPoolStats(t *testing.T) {
	pool, err := NewPool(&Config{WorkerCount: 2}, testLogger(t))
	require.NoError(t, err)

	jobs := []*Job{
		{ID: "ok", Run: func(ctx context.Context) error { return nil }},
		{ID: "bad", Run: func(ctx context.Context) error { return fmt.Errorf("boom") }},
	}

	pool.ExecuteBatch(context.Background(), jobs)

	stats := pool.GetStats()
	assert.Equal(t, int64(2), stats.JobsExecuted)
	assert.Equal(t, int64(1), stats.JobsSucceeded)
	assert.Equal(t, int64(1), stats.JobsFailed)
}
