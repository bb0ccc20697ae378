// Package cleanup implements the Cleanup Agent: a periodic sweep that
// purges soft-deleted records past their retention window and removes
// orphaned screenshot images. Grounded on
// original_source/backend/agents/cleanup_agent.py.
package cleanup

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/texasoct/idod/internal/app"
	"github.com/texasoct/idod/internal/imaging"
	"github.com/texasoct/idod/internal/store"
)

// Stats mirrors the Python agent's get_stats() snapshot.
type Stats struct {
	TotalCleanups              int64
	LastCleanupTime            time.Time
	LastCleanupCounts          map[string]int64
	TotalOrphanedImagesCleaned int64
	LastOrphanedImagesCount    int
}

// Agent runs the retention sweep and orphan-image GC on a fixed interval.
// A single bad cycle is logged and never brings the agent down, matching
// the Python agent's blanket try/except around _cleanup_old_data.
type Agent struct {
	db     *sql.DB
	images *imaging.Manager

	paused atomic.Bool

	statsMu sync.Mutex
	stats   Stats
}

// NewAgent builds a Cleanup Agent. images may be nil, in which case the
// orphaned-image sweep is skipped entirely (matching the Python agent's
// `if self.image_manager:` guard).
func NewAgent(db *sql.DB, images *imaging.Manager) *Agent {
	return &Agent{db: db, images: images}
}

// Pause skips cleanup cycles until Resume is called.
func (a *Agent) Pause() { a.paused.Store(true) }

// Resume re-enables cleanup cycles.
func (a *Agent) Resume() { a.paused.Store(false) }

// Start runs the periodic cleanup loop until ctx is cancelled.
func (a *Agent) Start(ctx context.Context) error {
	eff, err := app.CurrentSnapshot()
	if err != nil {
		return err
	}

	interval := time.Duration(eff.CleanupInterval) * time.Second
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if a.paused.Load() {
				continue
			}
			a.runCycle()
		}
	}
}

func (a *Agent) runCycle() {
	eff, err := app.CurrentSnapshot()
	if err != nil {
		slog.Error("cleanup: reading settings snapshot failed", "error", err)
		return
	}

	now := time.Now()
	cutoff := now.AddDate(0, 0, -eff.RetentionDays)
	cutoffISO := cutoff.UTC().Format(time.RFC3339)
	cutoffDate := cutoff.Format("2006-01-02")

	slog.Info("cleanup: starting retention sweep", "cutoff_date", cutoffDate)

	counts, err := store.DeleteOldData(a.db, cutoffISO, cutoffDate)
	if err != nil {
		slog.Error("cleanup: retention sweep failed", "error", err)
		return
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	slog.Info("cleanup: retention sweep completed", "total_removed", total, "counts", counts)

	a.statsMu.Lock()
	a.stats.TotalCleanups++
	a.stats.LastCleanupTime = now
	a.stats.LastCleanupCounts = counts
	a.statsMu.Unlock()

	if a.images == nil {
		return
	}

	slog.Info("cleanup: starting orphaned image sweep")
	referenced, err := store.GetAllReferencedImageHashes(a.db)
	if err != nil {
		slog.Error("cleanup: failed to list referenced image hashes", "error", err)
		return
	}

	safetyWindow := time.Duration(eff.ImageCleanupSafetyWindowMinutes) * time.Minute
	cleaned, err := a.images.CleanupOrphanedImages(referenced, safetyWindow)
	if err != nil {
		slog.Error("cleanup: orphaned image sweep failed", "error", err)
		return
	}

	if cleaned > 0 {
		slog.Info("cleanup: orphaned image sweep completed", "images_removed", cleaned)
	}

	a.statsMu.Lock()
	a.stats.TotalOrphanedImagesCleaned += int64(cleaned)
	a.stats.LastOrphanedImagesCount = cleaned
	a.statsMu.Unlock()
}

// GetStats returns the cleanup statistics accumulated so far.
func (a *Agent) GetStats() Stats {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()
	return a.stats
}
