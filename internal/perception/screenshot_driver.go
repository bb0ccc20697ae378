package perception

import (
	"context"
	"time"

	"github.com/texasoct/idod/internal/models"
)

// ScreenCapturer grabs the raw bytes of one monitor's current frame. Wired
// per-platform; the driver here only owns cadence and active-monitor
// selection (spec §4.1).
type ScreenCapturer interface {
	Capture(ctx context.Context, monitorIndex int) ([]byte, error)
	MonitorCount(ctx context.Context) (int, error)
}

// ScreenshotDriver fires on a fixed cadence, capturing the active monitor or
// every monitor when the user has been idle past the tracker's timeout.
type ScreenshotDriver struct {
	capturer ScreenCapturer
	tracker  *ActiveMonitorTracker
	interval time.Duration
}

// NewScreenshotDriver builds a driver capturing at the given interval
// (spec default ~1Hz order).
func NewScreenshotDriver(capturer ScreenCapturer, tracker *ActiveMonitorTracker, interval time.Duration) *ScreenshotDriver {
	if interval <= 0 {
		interval = time.Second
	}
	return &ScreenshotDriver{capturer: capturer, tracker: tracker, interval: interval}
}

func (d *ScreenshotDriver) Name() string { return "screenshot" }

func (d *ScreenshotDriver) Start(ctx context.Context, sink Sink) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			d.tick(ctx, sink, now)
		}
	}
}

func (d *ScreenshotDriver) tick(ctx context.Context, sink Sink, now time.Time) {
	if d.tracker.ShouldCaptureAll(now) {
		count, err := d.capturer.MonitorCount(ctx)
		if err != nil {
			return
		}
		for i := 0; i < count; i++ {
			d.captureOne(ctx, sink, i, now)
		}
		return
	}
	d.captureOne(ctx, sink, d.tracker.ActiveIndex(), now)
}

func (d *ScreenshotDriver) captureOne(ctx context.Context, sink Sink, monitorIndex int, now time.Time) {
	bytes, err := d.capturer.Capture(ctx, monitorIndex)
	if err != nil || len(bytes) == 0 {
		return
	}
	sink(models.ScreenshotRecord{
		Timestamp:    now,
		ImageBytes:   bytes,
		MonitorIndex: monitorIndex,
	})
}
