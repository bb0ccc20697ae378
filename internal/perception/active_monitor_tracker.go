package perception

import (
	"sync"
	"time"
)

// ActiveMonitorTracker holds the monitor list and the last known mouse
// position, and answers the screenshot driver's two questions: which
// monitor is active, and whether the user has been idle long enough that
// all monitors should be captured instead of just one (spec §4.1).
type ActiveMonitorTracker struct {
	mu           sync.Mutex
	monitors     []MonitorInfo
	lastX, lastY int
	lastMoveAt   time.Time
	idleTimeout  time.Duration
}

// NewActiveMonitorTracker builds a tracker with the given idle timeout
// (default 30s per spec §4.1).
func NewActiveMonitorTracker(idleTimeout time.Duration) *ActiveMonitorTracker {
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Second
	}
	return &ActiveMonitorTracker{idleTimeout: idleTimeout, lastMoveAt: time.Now()}
}

// SetMonitors replaces the known monitor list.
func (t *ActiveMonitorTracker) SetMonitors(monitors []MonitorInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.monitors = monitors
}

// RecordMove updates the last mouse position and timestamp. Called for
// every mouse "move" action, which is otherwise never emitted upstream.
func (t *ActiveMonitorTracker) RecordMove(x, y int, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastX, t.lastY = x, y
	t.lastMoveAt = at
}

// ActiveIndex returns the index of the monitor containing the last mouse
// position, defaulting to the primary monitor (or 0) if none contains it.
func (t *ActiveMonitorTracker) ActiveIndex() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, m := range t.monitors {
		if t.lastX >= m.Bounds.X && t.lastX < m.Bounds.X+m.Bounds.W &&
			t.lastY >= m.Bounds.Y && t.lastY < m.Bounds.Y+m.Bounds.H {
			return m.Index
		}
	}
	for _, m := range t.monitors {
		if m.Primary {
			return m.Index
		}
	}
	return 0
}

// ShouldCaptureAll reports whether the mouse has been idle longer than the
// configured timeout, in which case the screenshot driver captures every
// monitor rather than just the active one.
func (t *ActiveMonitorTracker) ShouldCaptureAll(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return now.Sub(t.lastMoveAt) > t.idleTimeout
}
