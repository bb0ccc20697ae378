package imaging

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeduplicator_SameImageIsDuplicate(t *testing.T) {
	d := NewDeduplicator(10, 0.92, false)

	frame := solidJPEG(64, 64, color.RGBA{R: 50, G: 60, B: 70, A: 255})
	isDup, _, err := d.IsDuplicate(frame)
	require.NoError(t, err)
	require.False(t, isDup, "first frame is never a duplicate")

	isDup, sim, err := d.IsDuplicate(frame)
	require.NoError(t, err)
	require.True(t, isDup)
	require.Greater(t, sim, 0.98)
}

func TestDeduplicator_DifferentImagesAreNotDuplicates(t *testing.T) {
	d := NewDeduplicator(10, 0.92, false)

	_, _, err := d.IsDuplicate(noisyJPEG(64, 64, 1))
	require.NoError(t, err)

	isDup, _, err := d.IsDuplicate(noisyJPEG(64, 64, 2))
	require.NoError(t, err)
	require.False(t, isDup)
}

func TestDeduplicator_ResetClearsCache(t *testing.T) {
	d := NewDeduplicator(10, 0.92, false)
	frame := solidJPEG(64, 64, color.RGBA{R: 5, G: 5, B: 5, A: 255})

	_, _, err := d.IsDuplicate(frame)
	require.NoError(t, err)
	d.Reset()

	isDup, _, err := d.IsDuplicate(frame)
	require.NoError(t, err)
	require.False(t, isDup, "cache was reset, so this looks like the first frame again")
}
