package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/texasoct/idod/internal/models"
)

func TestMergeConsecutive_KeyboardSameKeyWithinWindow(t *testing.T) {
	base := time.Now()
	records := []models.RawRecord{
		models.KeyboardRecord{Timestamp: base, Key: "a", Action: models.KeyPress},
		models.KeyboardRecord{Timestamp: base.Add(50 * time.Millisecond), Key: "a", Action: models.KeyPress},
	}
	out := mergeConsecutive(records)
	require.Len(t, out, 1)
	require.True(t, out[0].Merged)
	require.Equal(t, 2, out[0].Count)
	require.Equal(t, "sequence", out[0].Action)
}

func TestMergeConsecutive_KeyboardDifferentKeyDoesNotMerge(t *testing.T) {
	base := time.Now()
	records := []models.RawRecord{
		models.KeyboardRecord{Timestamp: base, Key: "a", Action: models.KeyPress},
		models.KeyboardRecord{Timestamp: base.Add(50 * time.Millisecond), Key: "b", Action: models.KeyPress},
	}
	out := mergeConsecutive(records)
	require.Len(t, out, 2)
}

func TestMergeConsecutive_MousePressReleaseBecomesClick(t *testing.T) {
	base := time.Now()
	records := []models.RawRecord{
		models.MouseRecord{Timestamp: base, Action: models.MousePress, Button: "left", X: 1, Y: 1},
		models.MouseRecord{Timestamp: base.Add(200 * time.Millisecond), Action: models.MouseRelease, Button: "left", X: 5, Y: 5},
	}
	out := mergeConsecutive(records)
	require.Len(t, out, 1)
	require.Equal(t, "click", out[0].Action)
	require.Equal(t, 1.0, out[0].StartX)
	require.Equal(t, 5.0, out[0].EndX)
}

func TestMergeConsecutive_ScrollSumsDeltas(t *testing.T) {
	base := time.Now()
	records := []models.RawRecord{
		models.MouseRecord{Timestamp: base, Action: models.MouseScroll, DY: 10},
		models.MouseRecord{Timestamp: base.Add(10 * time.Millisecond), Action: models.MouseScroll, DY: 15},
	}
	out := mergeConsecutive(records)
	require.Len(t, out, 1)
	require.Equal(t, "scroll", out[0].Action)
	require.Equal(t, 25.0, out[0].TotalDY)
}

func TestMergeConsecutive_ScreenshotRunKeepsLatestImage(t *testing.T) {
	base := time.Now()
	records := []models.RawRecord{
		models.ScreenshotRecord{Timestamp: base, ImageBytes: []byte("first")},
		models.ScreenshotRecord{Timestamp: base.Add(300 * time.Millisecond), ImageBytes: []byte("second")},
	}
	out := mergeConsecutive(records)
	require.Len(t, out, 1)
	require.Equal(t, []byte("second"), out[0].ImageBytes)
	require.Equal(t, 2, out[0].Count)
}

func TestMergeConsecutive_SingleRecordPassesThroughUnmerged(t *testing.T) {
	records := []models.RawRecord{
		models.KeyboardRecord{Timestamp: time.Now(), Key: "x", Action: models.KeyPress},
	}
	out := mergeConsecutive(records)
	require.Len(t, out, 1)
	require.False(t, out[0].Merged)
	require.Equal(t, 1, out[0].Count)
}
