package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"announcements/internal/model"
	"announcements/pkg/logger"
)

type countingStatusReader struct {
	calls  int
	status model.SystemStatus
}

func (r *countingStatusReader) GetSystemStatus(ctx context.Context) (*model.SystemStatus, error) {
	r.calls++
	status := r.status
	return &status, nil
}

func TestSystemStatusCached(t *testing.T) {
	_, client := newRedis(t)
	reader := &countingStatusReader{status: model.SystemStatus{
		TotalAnnouncements: 4,
		OpenAnnouncements:  3,
		TotalConfirmations: 8,
		ConfirmedCount:     2,
	}}
	svc := NewSystemService(reader, client, logger.NewNop())
	ctx := context.Background()

	status, err := svc.GetSystemStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(25), status.ConfirmedPercent)

	status, err = svc.GetSystemStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), status.TotalAnnouncements)
	assert.Equal(t, float64(25), status.ConfirmedPercent)
	assert.Equal(t, 1, reader.calls)
}
