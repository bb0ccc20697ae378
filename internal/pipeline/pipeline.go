// Package pipeline implements the Processing Pipeline: it drains the
// bounded RawRecord queue fed by the perception drivers, runs each
// screenshot through the Image Processor, runs the whole batch through the
// Record Filter, splits the filtered batch into segments by a time-gap and
// max-size rule, and turns each segment into one persisted Action via the
// summariser collaborator. No original_source/backend/processing/pipeline.py
// file exists in the retained source pack (handlers/processing.py only
// references processing.pipeline.ProcessingPipeline as glue code, never
// defining it), so this package is grounded directly on spec.md/SPEC_FULL.md
// §4.8's prose description rather than a ported implementation; see
// DESIGN.md.
package pipeline

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/texasoct/idod/internal/app"
	"github.com/texasoct/idod/internal/filter"
	"github.com/texasoct/idod/internal/imaging"
	"github.com/texasoct/idod/internal/llm"
	"github.com/texasoct/idod/internal/models"
	"github.com/texasoct/idod/internal/store"
)

// tickInterval is how often the pipeline drains the queue. It is not a
// tunable in Settings: unlike the session/cleanup agents' intervals, the
// drain cadence only affects latency to persistence, not the segmentation
// semantics, so a fixed value keeps the tick loop simple.
const tickInterval = 30 * time.Second

// Pipeline owns the bounded queue and turns drained batches into Actions on
// a fixed tick.
type Pipeline struct {
	db      *sql.DB
	queue   *Queue
	filter  *filter.Filter
	images  *imaging.Processor
	manager *imaging.Manager
	collab  func() (llm.Collaborator, error)
	prompt  SummaryPrompt

	mu      sync.Mutex
	pending []filter.MergedRecord
}

// New builds a Pipeline. collab is invoked once per finalized segment to
// resolve the active LLM collaborator (mirroring session.Agent's lazy
// resolution, since the active model can change between segments via Settings).
func New(db *sql.DB, f *filter.Filter, images *imaging.Processor, manager *imaging.Manager, collab func() (llm.Collaborator, error)) *Pipeline {
	return &Pipeline{
		db:      db,
		queue:   NewQueue(0),
		filter:  f,
		images:  images,
		manager: manager,
		collab:  collab,
		prompt:  NewDefaultSummaryPrompt(),
	}
}

// Sink returns the perception.Sink the Coordinator wires capture drivers
// into. It is the Queue's Push method, kept unexported so callers only see
// the narrow function type they need.
func (p *Pipeline) Sink() func(models.RawRecord) { return p.queue.Push }

// Start runs the drain-and-summarize loop until ctx is cancelled.
func (p *Pipeline) Start(ctx context.Context) error {
	if _, err := app.CurrentSnapshot(); err != nil {
		return err
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick drains the queue, runs the Image Processor and Record Filter, and
// appends the result to the pending, not-yet-segmented backlog. Segments
// that are clearly complete (everything but a possibly-still-growing tail)
// are finalized immediately; the tail is held back for the next tick so a
// segment isn't cut short by an arbitrary tick boundary.
func (p *Pipeline) tick(ctx context.Context) {
	raw := p.queue.Drain()
	if len(raw) == 0 {
		return
	}

	eff, err := app.CurrentSnapshot()
	if err != nil {
		slog.Error("pipeline: reading settings snapshot failed", "error", err)
		return
	}

	filtered := p.runImageProcessor(raw, eff)
	merged := p.filter.FilterAll(filtered)

	p.mu.Lock()
	p.pending = append(p.pending, merged...)
	pending := p.pending
	p.mu.Unlock()

	gap := time.Duration(eff.SegmentGapSeconds) * time.Second
	segments := segmentBatch(pending, gap, eff.MaxSegmentRecords)
	if len(segments) == 0 {
		return
	}

	// Hold back the last segment: a later tick's records may still extend
	// it, since the gap rule can only be evaluated against what's arrived
	// so far.
	complete, tail := segments[:len(segments)-1], segments[len(segments)-1]

	p.mu.Lock()
	p.pending = tail
	p.mu.Unlock()

	for _, seg := range complete {
		p.finalizeSegment(ctx, seg)
	}
}

// ForceFinalizeActivity flushes whatever is currently held back as the
// growing tail segment, persisting it as an Action immediately rather than
// waiting for a gap or the next tick to close it out.
func (p *Pipeline) ForceFinalizeActivity(ctx context.Context) {
	p.mu.Lock()
	seg := p.pending
	p.pending = nil
	p.mu.Unlock()

	if len(seg) == 0 {
		return
	}
	p.finalizeSegment(ctx, seg)
}

// runImageProcessor runs every screenshot record in raw through the Image
// Processor, dropping the ones it rejects and replacing admitted bytes with
// the processor's (possibly compressed) output. Non-screenshot records pass
// through untouched.
func (p *Pipeline) runImageProcessor(raw []models.RawRecord, eff *app.EffectiveSettings) []models.RawRecord {
	out := make([]models.RawRecord, 0, len(raw))
	seenEvent := uuid.New() // one sampling window per drained batch
	first := true

	for _, r := range raw {
		shot, ok := r.(models.ScreenshotRecord)
		if !ok {
			out = append(out, r)
			continue
		}

		result := p.images.Process(shot.ImageBytes, seenEvent, shot.Time(), first)
		first = false
		if !result.Admitted {
			continue
		}

		if p.manager != nil && len(result.Bytes) > 0 {
			hash := contentHash(result.Bytes)
			if err := p.manager.ProcessImageForCache(hash, result.Bytes); err != nil {
				slog.Warn("pipeline: caching screenshot thumbnail failed", "error", err)
			}
			shot.ImageBytes = result.Bytes
			shot.ImagePath = hash
		} else {
			shot.ImageBytes = result.Bytes
		}
		out = append(out, shot)
	}
	return out
}

// finalizeSegment summarizes one segment, persists the resulting Action,
// and records one action_images row per distinct image hash the segment
// carried.
func (p *Pipeline) finalizeSegment(ctx context.Context, segment []filter.MergedRecord) {
	if len(segment) == 0 {
		return
	}

	collab, err := p.collab()
	if err != nil {
		slog.Error("pipeline: resolving active collaborator failed", "error", err)
		return
	}

	summary, err := summarizeSegment(ctx, collab, p.prompt, segment)
	if err != nil {
		slog.Error("pipeline: summarizing segment failed", "error", err)
		return
	}

	start, _ := segmentSpan(segment)

	action := &models.Action{
		ID:          uuid.New(),
		Title:       summary.Title,
		Description: summary.Description,
		Keywords:    summary.Keywords,
		Timestamp:   start,
	}

	if err := store.SaveAction(p.db, action); err != nil {
		slog.Error("pipeline: saving action failed", "error", err)
		return
	}

	hashes := distinctImageHashes(segment)
	for _, h := range hashes {
		if err := store.SaveActionImage(p.db, action.ID, h); err != nil {
			slog.Error("pipeline: saving action image failed", "error", err, "hash", h)
		}
	}
}

func distinctImageHashes(segment []filter.MergedRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range segment {
		if r.Kind != models.KindScreenshot || len(r.ImageBytes) == 0 {
			continue
		}
		h := r.ImagePath
		if h == "" {
			h = contentHash(r.ImageBytes)
		}
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

func contentHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
