package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"announcements/internal/model"
	"announcements/pkg/logger"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) RefreshSystemStatus(ctx context.Context) (*model.SystemStatus, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return &model.SystemStatus{}, nil
}

func TestStatusSchedulerRefreshesPeriodically(t *testing.T) {
	r := &countingRefresher{}
	s := NewStatusScheduler(r, 10*time.Millisecond, logger.NewNop())

	s.Start()
	assert.Eventually(t, func() bool { return r.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := r.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, r.calls.Load())
}

func TestStatusSchedulerKeepsRunningOnError(t *testing.T) {
	r := &countingRefresher{err: errors.New("db down")}
	s := NewStatusScheduler(r, 10*time.Millisecond, logger.NewNop())

	s.Start()
	defer s.Stop()
	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}
