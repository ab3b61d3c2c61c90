package performance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOperationAndComplete(t *testing.T) {
	tracker := NewTracker()

	marker := tracker.StartOperation("render_page_request", "proj")
	marker.Complete()

	assert.True(t, marker.Completed)
	assert.True(t, marker.Success)
	assert.GreaterOrEqual(t, marker.Duration, time.Duration(0))
}

func TestSetError(t *testing.T) {
	tracker := NewTracker()

	marker := tracker.StartOperation("render_page_request", "proj")
	marker.SetError(errors.New("boom"))
	marker.Complete()

	assert.False(t, marker.Success)
	assert.Equal(t, "boom", marker.Error)
}

func TestRecentMetricsFiltersByProject(t *testing.T) {
	tracker := NewTracker()

	tracker.StartOperation("op", "a").Complete()
	tracker.StartOperation("op", "b").Complete()

	metrics := tracker.RecentMetrics("a", time.Minute)
	require.Len(t, metrics, 1)
	assert.Equal(t, "a", metrics[0].ProjectID)
}

func TestOverallStats(t *testing.T) {
	tracker := NewTracker()
	tracker.StartOperation("op", "a").Complete()

	stats := tracker.OverallStats()
	assert.NotEmpty(t, stats)
}
