package confirmation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"announcements/internal/model"
)

func TestCalculate(t *testing.T) {
	stats := Calculate([]model.AnnouncementUser{
		record(1, 1, true),
		record(2, 2, false),
		record(3, 3, false),
		record(4, 4),
	})

	assert.Equal(t, model.Statistics{Confirmed: 1, Unconfirmed: 2, Total: 4, Percent: 25}, stats)
}

func TestCalculateEmpty(t *testing.T) {
	stats := Calculate(nil)

	assert.Equal(t, model.Statistics{}, stats)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(0, 0))
	assert.Equal(t, 100.0, Percent(3, 3))
	assert.InDelta(t, 33.333, Percent(1, 3), 0.001)
}
