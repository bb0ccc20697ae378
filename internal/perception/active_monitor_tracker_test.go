package perception

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestActiveMonitorTracker_ActiveIndex(t *testing.T) {
	tr := NewActiveMonitorTracker(30 * time.Second)
	tr.SetMonitors([]MonitorInfo{
		{Index: 0, Bounds: Rect{X: 0, Y: 0, W: 1920, H: 1080}, Primary: true},
		{Index: 1, Bounds: Rect{X: 1920, Y: 0, W: 1920, H: 1080}},
	})

	tr.RecordMove(100, 100, time.Now())
	require.Equal(t, 0, tr.ActiveIndex())

	tr.RecordMove(2000, 100, time.Now())
	require.Equal(t, 1, tr.ActiveIndex())
}

func TestActiveMonitorTracker_DefaultsToPrimaryWhenOutOfBounds(t *testing.T) {
	tr := NewActiveMonitorTracker(30 * time.Second)
	tr.SetMonitors([]MonitorInfo{
		{Index: 0, Bounds: Rect{X: 0, Y: 0, W: 1920, H: 1080}, Primary: true},
	})
	tr.RecordMove(-100, -100, time.Now())
	require.Equal(t, 0, tr.ActiveIndex())
}

func TestActiveMonitorTracker_ShouldCaptureAll(t *testing.T) {
	tr := NewActiveMonitorTracker(30 * time.Second)
	now := time.Now()
	tr.RecordMove(0, 0, now)

	require.False(t, tr.ShouldCaptureAll(now.Add(10*time.Second)))
	require.True(t, tr.ShouldCaptureAll(now.Add(31*time.Second)))
}
