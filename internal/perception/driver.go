// Package perception implements the platform-abstracted capture layer:
// keyboard, mouse, and screenshot drivers feeding a unified RawRecord stream,
// active-window and screen-lock interfaces, plus the active-monitor tracker that decides which
// monitor a screenshot tick should capture.
package perception

import (
	"context"

	"github.com/texasoct/idod/internal/models"
)

// Sink receives RawRecords as drivers produce them. Implementations must not
// block; the Coordinator wires a Sink backed by the bounded queue (§5).
type Sink func(models.RawRecord)

// Driver is satisfied by the record-producing capturers: keyboard, mouse,
// and screenshot. The active-window reader and the lock observer have their
// own interfaces (ActiveWindowDriver, LockObserver).
type Driver interface {
	// Start begins producing records into sink until ctx is cancelled.
	// Returns when the driver has fully stopped.
	Start(ctx context.Context, sink Sink) error
	// Name identifies the driver for logging.
	Name() string
}

// ActiveWindowInfo is the active-window driver's on-request snapshot.
type ActiveWindowInfo struct {
	AppName              string
	AppBundleID          string
	AppProcessID         int
	WindowTitle          string
	WindowID             string
	WindowBounds         *Rect
	MonitorIndex         *int
	MonitorRelativeBounds *Rect
	MonitorInfo          *MonitorInfo
}

// Rect is a screen-space rectangle in (x, y, width, height) form.
type Rect struct {
	X, Y, W, H int
}

// MonitorInfo describes one display in the monitor list.
type MonitorInfo struct {
	Index   int
	Bounds  Rect
	Primary bool
}

// ActiveWindowDriver is queried on demand, unlike the push-style Driver.
type ActiveWindowDriver interface {
	ActiveWindow(ctx context.Context) (ActiveWindowInfo, error)
	Monitors(ctx context.Context) ([]MonitorInfo, error)
}

// LockObserver is satisfied by the screen-lock driver: OnLock/OnUnlock fire
// exactly once per transition. The Coordinator maps these to pause/resume.
type LockObserver interface {
	Start(ctx context.Context, onLock, onUnlock func()) error
}
