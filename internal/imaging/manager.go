// Package imaging implements the Image Manager (thumbnail cache, hash-
// addressed blob store, orphan GC) and the Image Processor (perceptual-hash
// deduplication, content analysis, resolution-based compression, time/
// quantity sampling) described for the processing pipeline.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png" // decode PNG screenshot sources alongside JPEG
	"os"
	"path/filepath"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/texasoct/idod/pkg/memory"
)

const (
	scaleThreshold   = 1440
	scaleFactor      = 0.75
	thumbnailQuality = 75
	thumbnailScope   = "thumbnail"
)

// Manager owns the on-disk thumbnail store and an optional in-memory LRU
// cache of base64-encoded thumbnail bytes in front of it, mirroring the
// base_dir-resolution and move-to-front cache semantics of the Python
// predecessor's ImageManager.
type Manager struct {
	baseDir       string
	thumbnailsDir string
	cache         memory.Store
	maxAgeHours   int
}

// NewManager resolves baseDir (creating it and its thumbnails/ subdirectory
// if needed) and wires an LRU cache of cacheSize entries in front of it.
func NewManager(baseDir string, cacheSize int, maxAgeHours int) (*Manager, error) {
	if cacheSize <= 0 {
		cacheSize = 500
	}
	if maxAgeHours <= 0 {
		maxAgeHours = 24
	}
	thumbDir := filepath.Join(baseDir, "thumbnails")
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		return nil, fmt.Errorf("imaging: create thumbnails dir: %w", err)
	}
	return &Manager{
		baseDir:       baseDir,
		thumbnailsDir: thumbDir,
		cache:         memory.NewLRU(cacheSize),
		maxAgeHours:   maxAgeHours,
	}, nil
}

func (m *Manager) thumbnailPath(hash string) string {
	return filepath.Join(m.thumbnailsDir, hash+".jpg")
}

// GetFromCache returns the base64-encoded thumbnail if it is in the memory
// cache, moving it to the front of the LRU.
func (m *Manager) GetFromCache(hash string) (string, bool) {
	entry, ok := m.cache.Get(thumbnailScope, "", hash)
	if !ok {
		return "", false
	}
	return entry.Value, true
}

// LoadThumbnailBase64 reads the on-disk thumbnail for hash, returning false
// if no thumbnail exists.
func (m *Manager) LoadThumbnailBase64(hash string) (string, bool) {
	b, err := os.ReadFile(m.thumbnailPath(hash))
	if err != nil {
		return "", false
	}
	return base64.StdEncoding.EncodeToString(b), true
}

// ProcessImageForCache decodes imgBytes, builds the scaled-down thumbnail,
// writes it to disk, and primes the memory cache with its base64 form.
func (m *Manager) ProcessImageForCache(hash string, imgBytes []byte) error {
	thumb, err := m.createThumbnail(imgBytes)
	if err != nil {
		thumb = imgBytes
	}
	if err := os.WriteFile(m.thumbnailPath(hash), thumb, 0o644); err != nil {
		return fmt.Errorf("imaging: write thumbnail: %w", err)
	}
	_ = m.cache.Set(thumbnailScope, "", hash, base64.StdEncoding.EncodeToString(thumb))
	return nil
}

// createThumbnail decodes, scales by scaleFactor whenever either side
// exceeds scaleThreshold, and re-encodes as JPEG at thumbnailQuality —
// the same scale-by-0.75-if->1440px rule as the Python predecessor.
func (m *Manager) createThumbnail(imgBytes []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	targetW, targetH := w, h
	if w > scaleThreshold || h > scaleThreshold {
		targetW = maxInt(1, int(float64(w)*scaleFactor))
		targetH = maxInt(1, int(float64(h)*scaleFactor))
	}

	dst := src
	if targetW != w || targetH != h {
		scaled := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, bounds, draw.Over, nil)
		dst = scaled
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, fmt.Errorf("imaging: encode thumbnail: %w", err)
	}
	return out.Bytes(), nil
}

// CleanupOldFiles removes thumbnails older than maxAgeHours (or the
// Manager's default when maxAgeHours <= 0), returning the count removed.
func (m *Manager) CleanupOldFiles(maxAgeHours int) (int, error) {
	if maxAgeHours <= 0 {
		maxAgeHours = m.maxAgeHours
	}
	cutoff := time.Now().Add(-time.Duration(maxAgeHours) * time.Hour)

	entries, err := os.ReadDir(m.thumbnailsDir)
	if err != nil {
		return 0, fmt.Errorf("imaging: read thumbnails dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(m.thumbnailsDir, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// CleanupOrphanedImages deletes thumbnails older than safetyWindow that are
// not present in referencedHashes — the store's authoritative set of hashes
// still referenced by action_images rows.
func (m *Manager) CleanupOrphanedImages(referencedHashes map[string]bool, safetyWindow time.Duration) (int, error) {
	cutoff := time.Now().Add(-safetyWindow)

	entries, err := os.ReadDir(m.thumbnailsDir)
	if err != nil {
		return 0, fmt.Errorf("imaging: read thumbnails dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".jpg" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		hash := e.Name()[:len(e.Name())-len(".jpg")]
		if referencedHashes[hash] {
			continue
		}
		if err := os.Remove(filepath.Join(m.thumbnailsDir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Stats summarizes the disk and memory cache footprint, mirroring
// get_stats/get_cache_stats.
type Stats struct {
	MemoryCacheCount int
	MemoryCacheLimit int
	DiskThumbCount   int
	DiskTotalBytes   int64
}

func (m *Manager) Stats() Stats {
	stats := Stats{MemoryCacheCount: m.cache.Len()}

	entries, err := os.ReadDir(m.thumbnailsDir)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if info, err := e.Info(); err == nil {
				stats.DiskThumbCount++
				stats.DiskTotalBytes += info.Size()
			}
		}
	}
	return stats
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
