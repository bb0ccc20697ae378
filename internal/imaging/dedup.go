package imaging

import (
	"bytes"
	"fmt"
	"image"

	"github.com/corona10/goimagehash"
)

// sceneType classifies a frame pair by similarity, letting the deduplicator
// apply a lower duplicate threshold to nearly-static screens and a higher one
// to video playback, matching the weighted multi-hash scheme described for
// screenshot filtering.
type sceneType int

const (
	sceneNormal sceneType = iota
	sceneVideo
	sceneStatic
)

const (
	weightPHash    = 0.5
	weightDHash    = 0.3
	weightAvgHash  = 0.2
	hashBits       = 64
	staticSimilar  = 0.99
	videoSimilar   = 0.95
	staticThresh   = 0.85
	videoThresh    = 0.98
)

// multiHash bundles the three weighted perceptual hashes computed for one
// frame.
type multiHash struct {
	phash   *goimagehash.ImageHash
	dhash   *goimagehash.ImageHash
	avghash *goimagehash.ImageHash
}

func computeMultiHash(img image.Image) (multiHash, error) {
	ph, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return multiHash{}, fmt.Errorf("imaging: phash: %w", err)
	}
	dh, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return multiHash{}, fmt.Errorf("imaging: dhash: %w", err)
	}
	ah, err := goimagehash.AverageHash(img)
	if err != nil {
		return multiHash{}, fmt.Errorf("imaging: average hash: %w", err)
	}
	return multiHash{phash: ph, dhash: dh, avghash: ah}, nil
}

// similarity computes the weighted Hamming-distance similarity between two
// multi-hashes, in [0, 1].
func similarity(a, b multiHash) (float64, error) {
	pd, err := a.phash.Distance(b.phash)
	if err != nil {
		return 0, err
	}
	dd, err := a.dhash.Distance(b.dhash)
	if err != nil {
		return 0, err
	}
	ad, err := a.avghash.Distance(b.avghash)
	if err != nil {
		return 0, err
	}

	sim := weightPHash*(1-float64(pd)/hashBits) +
		weightDHash*(1-float64(dd)/hashBits) +
		weightAvgHash*(1-float64(ad)/hashBits)
	return sim, nil
}

func detectScene(sim float64) sceneType {
	switch {
	case sim >= staticSimilar:
		return sceneStatic
	case sim >= videoSimilar:
		return sceneVideo
	default:
		return sceneNormal
	}
}

func adaptiveThreshold(scene sceneType, configured float64, adaptive bool) float64 {
	if !adaptive {
		return configured
	}
	switch scene {
	case sceneStatic:
		return staticThresh
	case sceneVideo:
		return videoThresh
	default:
		return configured
	}
}

// Deduplicator holds a small FIFO cache of recent frame hashes and answers
// whether a new frame is a near-duplicate of anything in the window, using
// an adaptive threshold keyed on the detected scene type.
type Deduplicator struct {
	cache             []multiHash
	cacheSize         int
	similarityThresh  float64
	adaptiveThreshold bool
}

// NewDeduplicator builds a deduplicator with a FIFO cache of cacheSize
// recent frames (default 10) and the configured similarity threshold
// (default 0.92).
func NewDeduplicator(cacheSize int, similarityThresh float64, adaptive bool) *Deduplicator {
	if cacheSize <= 0 {
		cacheSize = 10
	}
	if similarityThresh <= 0 {
		similarityThresh = 0.92
	}
	return &Deduplicator{cacheSize: cacheSize, similarityThresh: similarityThresh, adaptiveThreshold: adaptive}
}

// IsDuplicate decodes imgBytes, compares it against the cache, and reports
// whether it should be treated as a duplicate of something already seen. A
// non-duplicate frame is admitted into the cache.
func (d *Deduplicator) IsDuplicate(imgBytes []byte) (bool, float64, error) {
	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return false, 0, fmt.Errorf("imaging: decode for dedup: %w", err)
	}
	mh, err := computeMultiHash(img)
	if err != nil {
		return false, 0, err
	}

	var maxSim float64
	for _, cached := range d.cache {
		sim, err := similarity(mh, cached)
		if err != nil {
			continue
		}
		if sim > maxSim {
			maxSim = sim
		}
	}

	if len(d.cache) > 0 {
		scene := detectScene(maxSim)
		threshold := adaptiveThreshold(scene, d.similarityThresh, d.adaptiveThreshold)
		if maxSim >= threshold {
			return true, maxSim, nil
		}
	}

	d.cache = append(d.cache, mh)
	if len(d.cache) > d.cacheSize {
		d.cache = d.cache[1:]
	}
	return false, maxSim, nil
}

// Reset clears the FIFO cache, used when an activity boundary ends a
// deduplication window.
func (d *Deduplicator) Reset() {
	d.cache = nil
}
