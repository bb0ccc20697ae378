package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	xdraw "golang.org/x/image/draw"
)

const compressQuality = 85

var (
	res4K    = [2]int{3840, 2160}
	res2K    = [2]int{2560, 1440}
	res1080p = [2]int{1920, 1080}
)

// CompressionResult reports the outcome of Compress for logging/statistics.
type CompressionResult struct {
	OriginalSize   int
	CompressedSize int
	OriginalW      int
	OriginalH      int
	FinalW         int
	FinalH         int
}

// Compress applies the never-upscale, aspect-preserving, portrait-aware
// resolution ladder (4K->2K, 2K/1080p-class->1080p, below 1080p unchanged)
// and re-encodes as JPEG at quality 85.
func Compress(imgBytes []byte) ([]byte, CompressionResult, error) {
	src, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, CompressionResult{}, fmt.Errorf("imaging: decode for compression: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	targetW, targetH := targetResolution(w, h)

	dst := src
	if targetW != w || targetH != h {
		scaled := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, bounds, draw.Over, nil)
		dst = scaled
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: compressQuality}); err != nil {
		return nil, CompressionResult{}, fmt.Errorf("imaging: encode compressed: %w", err)
	}

	return out.Bytes(), CompressionResult{
		OriginalSize:   len(imgBytes),
		CompressedSize: out.Len(),
		OriginalW:      w,
		OriginalH:      h,
		FinalW:         targetW,
		FinalH:         targetH,
	}, nil
}

func targetResolution(w, h int) (int, int) {
	totalPixels := w * h
	pixels4K := res4K[0] * res4K[1]
	pixels2K := res2K[0] * res2K[1]
	pixels1080p := res1080p[0] * res1080p[1]

	var base [2]int
	switch {
	case totalPixels >= pixels4K:
		base = res2K
	case totalPixels >= pixels2K:
		base = res1080p
	case totalPixels > pixels1080p:
		base = res1080p
	default:
		return w, h
	}

	target := base
	if h > w {
		target = [2]int{base[1], base[0]}
	}
	return fitToResolution(w, h, target)
}

func fitToResolution(w, h int, target [2]int) (int, int) {
	maxW, maxH := target[0], target[1]
	aspect := float64(w) / float64(h)
	targetAspect := float64(maxW) / float64(maxH)

	if aspect > targetAspect {
		return maxW, maxInt(1, int(float64(maxW)/aspect))
	}
	return maxInt(1, int(float64(maxH)*aspect)), maxH
}
