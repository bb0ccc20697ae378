package perception

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/texasoct/idod/internal/models"
)

type fakeHookSource struct {
	events []Event
}

func (f fakeHookSource) Subscribe(ctx context.Context, fn func(Event)) error {
	for _, e := range f.events {
		fn(e)
	}
	return nil
}

func TestKeyboardDriver_ForwardsKeyEventsOnly(t *testing.T) {
	source := fakeHookSource{events: []Event{
		{Kind: models.KindKeyboard, Key: "a", KeyType: "char", KeyAction: models.KeyPress},
		{Kind: models.KindMouse, MouseAction: models.MouseMove, X: 5, Y: 5},
		{Kind: models.KindKeyboard, Key: "enter", KeyType: "special", KeyAction: models.KeyRelease},
	}}
	driver := NewKeyboardDriver(source)

	var got []models.RawRecord
	err := driver.Start(context.Background(), func(r models.RawRecord) { got = append(got, r) })
	require.NoError(t, err)
	require.Len(t, got, 2)

	first, ok := got[0].(models.KeyboardRecord)
	require.True(t, ok)
	require.Equal(t, "a", first.Key)
	require.Equal(t, models.KeyPress, first.Action)

	second, ok := got[1].(models.KeyboardRecord)
	require.True(t, ok)
	require.Equal(t, "enter", second.Key)
}

func TestMouseDriver_MoveUpdatesTrackerButIsNotForwarded(t *testing.T) {
	source := fakeHookSource{events: []Event{
		{Kind: models.KindMouse, MouseAction: models.MouseMove, X: 42, Y: 7},
		{Kind: models.KindMouse, MouseAction: models.MousePress, Button: "left", X: 42, Y: 7},
		{Kind: models.KindKeyboard, Key: "x", KeyAction: models.KeyPress},
	}}
	tracker := NewActiveMonitorTracker(30 * time.Second)
	tracker.SetMonitors([]MonitorInfo{{Index: 0, Bounds: Rect{X: 0, Y: 0, W: 100, H: 100}, Primary: true}})
	driver := NewMouseDriver(source, tracker)

	var got []models.RawRecord
	err := driver.Start(context.Background(), func(r models.RawRecord) { got = append(got, r) })
	require.NoError(t, err)

	require.Len(t, got, 1)
	click, ok := got[0].(models.MouseRecord)
	require.True(t, ok)
	require.Equal(t, models.MousePress, click.Action)
	require.Equal(t, "left", click.Button)

	require.Equal(t, 0, tracker.ActiveIndex())
}
