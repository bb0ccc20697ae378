package imaging

import (
	"time"

	"github.com/google/uuid"
)

// ProcessorConfig mirrors the tunables in EffectiveSettings that the
// Processor needs; the coordinator constructs this from a settings snapshot
// rather than the Processor reaching into internal/app directly.
type ProcessorConfig struct {
	EnableDeduplication   bool
	SimilarityThreshold   float64
	HashCacheSize         int
	EnableAdaptiveThresh  bool
	EnableContentAnalysis bool
	EnableCompression     bool
	MinSampleInterval     time.Duration
	MaxImagesPerEvent     int
}

// Processor is the Image Processor: the single per-screenshot gate the
// Processing Pipeline calls before persisting an action's images. It
// combines deduplication, content analysis, compression, and sampling into
// one decision plus (when admitted) optimized bytes.
type Processor struct {
	dedup    *Deduplicator
	analyzer *ContentAnalyzer
	sampler  *Sampler
	cfg      ProcessorConfig
}

// NewProcessor builds a Processor from cfg, wiring only the stages cfg
// enables.
func NewProcessor(cfg ProcessorConfig) *Processor {
	p := &Processor{cfg: cfg}
	if cfg.EnableDeduplication {
		p.dedup = NewDeduplicator(cfg.HashCacheSize, cfg.SimilarityThreshold, cfg.EnableAdaptiveThresh)
	}
	if cfg.EnableContentAnalysis {
		p.analyzer = NewContentAnalyzer()
	}
	p.sampler = NewSampler(cfg.MinSampleInterval, cfg.MaxImagesPerEvent)
	return p
}

// Result reports what Process decided and, when admitted, the bytes to
// persist.
type Result struct {
	Admitted       bool
	Reason         string
	Bytes          []byte
	OriginalSize   int
	CompressedSize int
}

// Process runs the full gate for one screenshot belonging to eventID. Every
// screenshot, including the first of a batch, must survive deduplication
// and content analysis; "first" only bypasses the sampling interval, since
// a batch's opening screenshot should never be skipped just because it
// arrived too soon after the previous batch's last one.
func (p *Processor) Process(imgBytes []byte, eventID uuid.UUID, now time.Time, isFirst bool) Result {
	if p.dedup != nil {
		isDup, _, err := p.dedup.IsDuplicate(imgBytes)
		if err == nil && isDup {
			return Result{Admitted: false, Reason: "duplicate"}
		}
	}
	if p.analyzer != nil {
		ok, reason := p.analyzer.HasSignificantContent(imgBytes)
		if !ok {
			return Result{Admitted: false, Reason: reason}
		}
	}

	if ok, reason := p.sampler.ShouldSample(eventID, now, isFirst); !ok {
		return Result{Admitted: false, Reason: reason}
	}

	out := imgBytes
	result := Result{Admitted: true, Reason: "passed all filters", OriginalSize: len(imgBytes)}
	if p.cfg.EnableCompression {
		compressed, meta, err := Compress(imgBytes)
		if err == nil {
			out = compressed
			result.CompressedSize = meta.CompressedSize
		}
	}
	if result.CompressedSize == 0 {
		result.CompressedSize = len(out)
	}
	result.Bytes = out
	return result
}
