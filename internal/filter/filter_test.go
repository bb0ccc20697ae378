package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/texasoct/idod/internal/models"
)

func TestFilterAll_KeyboardPassesVerbatim(t *testing.T) {
	f := New(2)
	now := time.Now()
	records := []models.RawRecord{
		models.KeyboardRecord{Timestamp: now, Key: "a", Action: models.KeyPress},
	}
	out := f.FilterAll(records)
	require.Len(t, out, 1)
	require.Equal(t, models.KindKeyboard, out[0].Kind)
	require.Equal(t, "a", out[0].Key)
}

func TestFilterAll_MouseMoveIsDropped(t *testing.T) {
	f := New(2)
	now := time.Now()
	records := []models.RawRecord{
		models.MouseRecord{Timestamp: now, Action: models.MouseMove, X: 1, Y: 1},
	}
	out := f.FilterAll(records)
	require.Empty(t, out)
}

func TestFilterAll_MousePressIsKept(t *testing.T) {
	f := New(2)
	now := time.Now()
	records := []models.RawRecord{
		models.MouseRecord{Timestamp: now, Action: models.MousePress, Button: "left"},
	}
	out := f.FilterAll(records)
	require.Len(t, out, 1)
}

func TestFilterScreenshots_CapsPerWindow(t *testing.T) {
	f := New(2)
	base := time.Now()
	records := []models.RawRecord{
		models.ScreenshotRecord{Timestamp: base},
		models.ScreenshotRecord{Timestamp: base.Add(100 * time.Millisecond)},
		models.ScreenshotRecord{Timestamp: base.Add(200 * time.Millisecond)},
	}
	out := f.filterScreenshots(records)
	require.Len(t, out, 2)
}

func TestFilterScreenshots_ResetsAfterWindow(t *testing.T) {
	f := New(1)
	base := time.Now()
	records := []models.RawRecord{
		models.ScreenshotRecord{Timestamp: base},
		models.ScreenshotRecord{Timestamp: base.Add(2 * time.Second)},
	}
	out := f.filterScreenshots(records)
	require.Len(t, out, 2)
}

func TestFilterAll_OutputSortedByTimestamp(t *testing.T) {
	f := New(2)
	base := time.Now()
	records := []models.RawRecord{
		models.KeyboardRecord{Timestamp: base.Add(2 * time.Second), Key: "b", Action: models.KeyPress},
		models.MouseRecord{Timestamp: base, Action: models.MousePress, Button: "left"},
	}
	out := f.FilterAll(records)
	require.Len(t, out, 2)
	require.True(t, out[0].StartTime.Before(out[1].StartTime))
}
