package perception

import (
	"context"
	"time"

	"github.com/texasoct/idod/internal/models"
)

// HookSource is the low-level event feed a platform hook implementation
// pushes into. KeyboardDriver and MouseDriver translate hook events into
// RawRecords and apply the active-monitor bookkeeping described in §4.1.
type HookSource interface {
	// Subscribe registers fn to be called for every raw hook event until
	// ctx is cancelled. Implementations are platform-specific (see the
	// os-tagged factory files).
	Subscribe(ctx context.Context, fn func(Event)) error
}

// Event is a single low-level input event as reported by a platform hook.
type Event struct {
	Kind      models.RecordKind
	Key       string
	KeyType   string
	KeyAction models.KeyboardAction
	Modifiers []string

	MouseAction models.MouseAction
	Button      string
	X, Y        float64
	DX, DY      float64
}

// KeyboardDriver adapts a HookSource's keyboard events to the Driver
// interface. Every key event is significant; no filtering happens here
// (Record Filter applies type-selection downstream).
type KeyboardDriver struct {
	source HookSource
}

func NewKeyboardDriver(source HookSource) *KeyboardDriver { return &KeyboardDriver{source: source} }

func (d *KeyboardDriver) Name() string { return "keyboard" }

func (d *KeyboardDriver) Start(ctx context.Context, sink Sink) error {
	return d.source.Subscribe(ctx, func(e Event) {
		if e.Kind != models.KindKeyboard {
			return
		}
		sink(models.KeyboardRecord{
			Timestamp: nowFunc(),
			Key:       e.Key,
			KeyType:   e.KeyType,
			Action:    e.KeyAction,
			Modifiers: e.Modifiers,
		})
	})
}

// MouseDriver adapts a HookSource's mouse events to the Driver interface,
// additionally feeding every event's position into the ActiveMonitorTracker
// so move events influence monitor selection even though they are never
// forwarded to the sink.
type MouseDriver struct {
	source  HookSource
	tracker *ActiveMonitorTracker
}

func NewMouseDriver(source HookSource, tracker *ActiveMonitorTracker) *MouseDriver {
	return &MouseDriver{source: source, tracker: tracker}
}

func (d *MouseDriver) Name() string { return "mouse" }

func (d *MouseDriver) Start(ctx context.Context, sink Sink) error {
	return d.source.Subscribe(ctx, func(e Event) {
		if e.Kind != models.KindMouse {
			return
		}
		now := nowFunc()
		d.tracker.RecordMove(int(e.X), int(e.Y), now)
		if e.MouseAction == models.MouseMove {
			return
		}
		sink(models.MouseRecord{
			Timestamp: now,
			Action:    e.MouseAction,
			Button:    e.Button,
			X:         e.X,
			Y:         e.Y,
			DX:        e.DX,
			DY:        e.DY,
		})
	})
}

// nowFunc is a seam for tests; production code always observes wall-clock
// time at the moment a hook event is translated.
var nowFunc = time.Now
