package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"
)

// Thresholds for flagging a frame as low-content. original_source's
// processing/image/analysis.py was not present in the filtered source pack
// (image_filter.py and processing.py both import it but its body was not
// retrievable), so this analyzer implements the documented behavior named
// at the call site — "skip static/blank screens" — via luminance variance,
// the standard cheap proxy for on-screen content density.
const (
	minStdDev       = 3.0
	sampleGridSize  = 32
)

// ContentAnalyzer flags frames with too little visual variation to be worth
// persisting — solid-color screens, screensavers, blank documents.
type ContentAnalyzer struct{}

func NewContentAnalyzer() *ContentAnalyzer { return &ContentAnalyzer{} }

// HasSignificantContent reports whether imgBytes has enough luminance
// variance to be considered meaningful, downsampling to a small grid first
// so the check stays cheap regardless of source resolution.
func (a *ContentAnalyzer) HasSignificantContent(imgBytes []byte) (bool, string) {
	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return true, fmt.Sprintf("decode failed, admitting by default: %v", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return false, "empty image"
	}

	var sum, sumSq float64
	n := 0
	stepX := maxInt(1, w/sampleGridSize)
	stepY := maxInt(1, h/sampleGridSize)

	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			lum := luminance(img.At(x, y))
			sum += lum
			sumSq += lum * lum
			n++
		}
	}
	if n == 0 {
		return false, "no samples"
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	stdDev := math.Sqrt(variance)

	if stdDev < minStdDev {
		return false, fmt.Sprintf("low content variance (stddev=%.2f)", stdDev)
	}
	return true, "passed content check"
}

func luminance(c color.Color) float64 {
	gray := color.GrayModel.Convert(c).(color.Gray)
	return float64(gray.Y)
}
