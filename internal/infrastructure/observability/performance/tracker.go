// Package performance provides lightweight operation timing for request
// handlers, with per-project aggregation.
package performance

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// Marker tracks one operation from start to completion.
type Marker struct {
	Operation string         `json:"operation"`
	ProjectID string         `json:"projectId"`
	StartTime time.Time      `json:"startTime"`
	EndTime   time.Time      `json:"endTime"`
	Duration  time.Duration  `json:"duration"`
	Success   bool           `json:"success"`
	Completed bool           `json:"completed"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Complete finalizes the marker and records its duration.
func (m *Marker) Complete() {
	if m.Completed {
		return
	}
	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true
}

// SetSuccess records whether the operation succeeded.
func (m *Marker) SetSuccess(success bool) {
	m.Success = success
}

// SetError marks the operation failed with the given error.
func (m *Marker) SetError(err error) {
	m.Success = false
	if err != nil {
		m.Error = err.Error()
	}
}

// Tracker collects performance markers across requests.
type Tracker struct {
	markers    map[string]*Marker
	mu         sync.RWMutex
	started    time.Time
	maxMarkers int
}

// NewTracker creates a performance tracker.
func NewTracker() *Tracker {
	return &Tracker{
		markers:    make(map[string]*Marker),
		started:    time.Now(),
		maxMarkers: 10000,
	}
}

// StartOperation creates and tracks a new marker for an operation.
func (t *Tracker) StartOperation(operation, projectID string) *Marker {
	marker := &Marker{
		Operation: operation,
		ProjectID: projectID,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true,
	}

	markerID := fmt.Sprintf("%s_%s_%d", projectID, operation, time.Now().UnixNano())

	t.mu.Lock()
	t.markers[markerID] = marker
	t.mu.Unlock()

	return marker
}

// RecentMetrics returns markers completed within the given window for a project.
func (t *Tracker) RecentMetrics(projectID string, within time.Duration) []Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cutoff := time.Now().Add(-within)
	var metrics []Marker
	for _, marker := range t.markers {
		if marker.ProjectID == projectID && marker.Completed && marker.EndTime.After(cutoff) {
			metrics = append(metrics, *marker)
		}
	}
	return metrics
}

// Cleanup removes completed markers older than an hour and enforces the
// retention cap.
func (t *Tracker) Cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-time.Hour)
	for id, marker := range t.markers {
		if marker.Completed && marker.EndTime.Before(cutoff) {
			delete(t.markers, id)
		}
	}

	if len(t.markers) > t.maxMarkers {
		for id, marker := range t.markers {
			if marker.Completed {
				delete(t.markers, id)
			}
			if len(t.markers) <= t.maxMarkers/2 {
				break
			}
		}
	}
}

// OverallStats returns tracker-wide statistics.
func (t *Tracker) OverallStats() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	activeCount := 0
	completedCount := 0
	for _, marker := range t.markers {
		if marker.Completed {
			completedCount++
		} else {
			activeCount++
		}
	}

	return map[string]any{
		"trackerUptime":       time.Since(t.started).String(),
		"totalMarkers":        len(t.markers),
		"activeOperations":    activeCount,
		"completedOperations": completedCount,
		"memoryUsageMB":       memStats.Alloc / (1024 * 1024),
	}
}
