package imaging

import (
	"image/color"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func defaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		EnableDeduplication:   true,
		SimilarityThreshold:   0.92,
		HashCacheSize:         10,
		EnableAdaptiveThresh:  true,
		EnableContentAnalysis: true,
		EnableCompression:     true,
		MinSampleInterval:     2 * time.Second,
		MaxImagesPerEvent:     8,
	}
}

func TestProcessor_FirstImageStillRejectedWhenBlank(t *testing.T) {
	p := NewProcessor(defaultProcessorConfig())
	eventID := uuid.New()
	blank := solidJPEG(64, 64, color.RGBA{R: 5, G: 5, B: 5, A: 255})

	result := p.Process(blank, eventID, time.Now(), true)
	require.False(t, result.Admitted)
}

func TestProcessor_FirstImageBypassesSamplingIntervalOnly(t *testing.T) {
	p := NewProcessor(defaultProcessorConfig())
	eventID := uuid.New()
	now := time.Now()

	// Seed the sampler's last-sampled time, then immediately admit a
	// distinct "first" frame that would otherwise fail MinSampleInterval.
	seed := noisyJPEG(64, 64, 3)
	first := p.Process(seed, eventID, now, true)
	require.True(t, first.Admitted)

	immediate := noisyJPEG(64, 64, 17)
	result := p.Process(immediate, eventID, now, true)
	require.True(t, result.Admitted)
	require.NotEmpty(t, result.Bytes)
}

func TestProcessor_RejectsDuplicateAfterFirst(t *testing.T) {
	p := NewProcessor(defaultProcessorConfig())
	eventID := uuid.New()
	now := time.Now()
	frame := noisyJPEG(64, 64, 7)

	first := p.Process(frame, eventID, now, true)
	require.True(t, first.Admitted)

	second := p.Process(frame, eventID, now.Add(3*time.Second), false)
	require.False(t, second.Admitted)
	require.Equal(t, "duplicate", second.Reason)
}

func TestProcessor_RejectsDuplicateEvenWhenFirst(t *testing.T) {
	p := NewProcessor(defaultProcessorConfig())
	eventID := uuid.New()
	now := time.Now()
	frame := noisyJPEG(64, 64, 13)

	first := p.Process(frame, eventID, now, true)
	require.True(t, first.Admitted)

	// A later batch's "first" screenshot is still subject to dedup against
	// whatever the deduplicator's cache already holds.
	second := p.Process(frame, eventID, now.Add(time.Minute), true)
	require.False(t, second.Admitted)
	require.Equal(t, "duplicate", second.Reason)
}

func TestProcessor_RejectsLowContentAfterFirst(t *testing.T) {
	p := NewProcessor(defaultProcessorConfig())
	eventID := uuid.New()
	now := time.Now()

	first := p.Process(noisyJPEG(64, 64, 11), eventID, now, true)
	require.True(t, first.Admitted)

	blank := solidJPEG(64, 64, color.RGBA{R: 9, G: 9, B: 9, A: 255})
	second := p.Process(blank, eventID, now.Add(3*time.Second), false)
	require.False(t, second.Admitted)
}
