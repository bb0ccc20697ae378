// Package models defines the data model shared across idod's packages:
// the transient RawRecord sum type produced by perception drivers, and the
// persisted Action/Event/Activity/SessionPreference/Setting entities.
package models

import "time"

// RecordKind tags a RawRecord's concrete payload type.
type RecordKind string

const (
	KindKeyboard   RecordKind = "keyboard"
	KindMouse      RecordKind = "mouse"
	KindScreenshot RecordKind = "screenshot"
)

// RawRecord is the sum type `Keyboard | Mouse | Screenshot` described by the
// design notes: dynamically-typed record kinds in the source become a
// pattern-matched Go interface, with Kind() as the discriminator consumers
// switch on instead of doing attribute probing.
type RawRecord interface {
	Kind() RecordKind
	Time() time.Time
}

// KeyboardAction is the action a keyboard record reports.
type KeyboardAction string

const (
	KeyPress   KeyboardAction = "press"
	KeyRelease KeyboardAction = "release"
)

// KeyboardRecord is emitted per key event. The core treats all keys as
// significant; no key-content logging of free text is mandated by this
// repository — Key holds a logical key identifier, not typed text.
type KeyboardRecord struct {
	Timestamp time.Time
	Key       string
	KeyType   string
	Action    KeyboardAction
	Modifiers []string
}

func (r KeyboardRecord) Kind() RecordKind { return KindKeyboard }
func (r KeyboardRecord) Time() time.Time  { return r.Timestamp }

// MouseAction enumerates the actions a mouse driver can report. Only
// Press, Release, Drag, DragEnd, and Scroll are "important" per the Record
// Filter's type-selection rule; Move is used solely to update the
// active-monitor tracker and is never emitted upstream of the driver.
type MouseAction string

const (
	MousePress   MouseAction = "press"
	MouseRelease MouseAction = "release"
	MouseDrag    MouseAction = "drag"
	MouseDragEnd MouseAction = "drag_end"
	MouseScroll  MouseAction = "scroll"
	MouseMove    MouseAction = "move"
)

// ImportantMouseActions is the set of MouseAction values the Record Filter
// lets through; Move is intentionally excluded.
var ImportantMouseActions = map[MouseAction]bool{
	MousePress:   true,
	MouseRelease: true,
	MouseDrag:    true,
	MouseDragEnd: true,
	MouseScroll:  true,
}

// MouseRecord is emitted per mouse event.
type MouseRecord struct {
	Timestamp time.Time
	Action    MouseAction
	Button    string
	X, Y      float64
	DX, DY    float64
}

func (r MouseRecord) Kind() RecordKind { return KindMouse }
func (r MouseRecord) Time() time.Time  { return r.Timestamp }

// ScreenshotRecord is emitted per captured frame. ImageBytes carries the raw
// capture; ImagePath is set when the driver wrote the frame directly to
// disk instead of handing back bytes in-process.
type ScreenshotRecord struct {
	Timestamp time.Time
	ImageBytes []byte
	ImagePath  string
	MonitorIndex int
}

func (r ScreenshotRecord) Kind() RecordKind { return KindScreenshot }
func (r ScreenshotRecord) Time() time.Time  { return r.Timestamp }
