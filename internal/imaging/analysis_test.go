package imaging

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContentAnalyzer_SolidImageIsLowContent(t *testing.T) {
	a := NewContentAnalyzer()
	imgBytes := solidJPEG(128, 128, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	ok, reason := a.HasSignificantContent(imgBytes)
	require.False(t, ok)
	require.NotEmpty(t, reason)
}

func TestContentAnalyzer_NoisyImageHasSignificantContent(t *testing.T) {
	a := NewContentAnalyzer()
	imgBytes := noisyJPEG(128, 128, 42)
	ok, _ := a.HasSignificantContent(imgBytes)
	require.True(t, ok)
}
