package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"announcements/pkg/logger"
)

func TestWorkerRunsTasks(t *testing.T) {
	w := NewWorker(10, logger.NewNop())
	w.Start(2)

	var count int32
	var ids []string
	for i := 0; i < 5; i++ {
		id, err := w.AddTask("count", func(ctx context.Context) error {
			atomic.AddInt32(&count, 1)
			return nil
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	w.Stop()

	assert.Equal(t, int32(5), atomic.LoadInt32(&count))
	for _, id := range ids {
		res, ok := w.GetResult(id)
		require.True(t, ok)
		assert.True(t, res.Completed)
	}
}

func TestWorkerRetries(t *testing.T) {
	w := NewWorker(1, logger.NewNop())
	w.retryDelay = time.Millisecond
	w.Start(1)

	var attempts int32
	id, err := w.Submit(Task{
		Name:     "flaky",
		RetryMax: 2,
		Handler: func(ctx context.Context) error {
			if atomic.AddInt32(&attempts, 1) < 3 {
				return errors.New("temporary")
			}
			return nil
		},
	})
	require.NoError(t, err)
	w.Stop()

	res, ok := w.GetResult(id)
	require.True(t, ok)
	assert.True(t, res.Completed)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestWorkerSubmitAfterStop(t *testing.T) {
	w := NewWorker(1, logger.NewNop())
	w.Start(1)
	w.Stop()
	w.Stop()

	_, err := w.AddTask("late", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrWorkerStopped)
}

func TestWorkerKeepsRecentResultsOnly(t *testing.T) {
	w := NewWorker(100, logger.NewNop())
	w.maxResults = 10
	w.Start(1)

	var ids []string
	for i := 0; i < 500; i++ {
		id, err := w.AddTask("noop", func(ctx context.Context) error { return nil })
		require.NoError(t, err)
		ids = append(ids, id)
	}
	w.Stop()

	w.mu.RLock()
	assert.Len(t, w.results, 10)
	assert.Len(t, w.resultOrder, 10)
	w.mu.RUnlock()

	// 单个协程按提交顺序执行，只有最后10个结果保留
	_, ok := w.GetResult(ids[0])
	assert.False(t, ok)
	res, ok := w.GetResult(ids[len(ids)-1])
	require.True(t, ok)
	assert.True(t, res.Completed)
}
