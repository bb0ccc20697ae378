package imaging

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sampler enforces a minimum time interval between admitted images and a
// maximum image count per event: the first image of an event is admitted
// (subject to the maximum); afterward admission requires that the minimum
// interval has elapsed. ShouldSample takes no significance input, so a
// significant visual change does not bypass the interval.
type Sampler struct {
	minInterval time.Duration
	maxImages   int

	mu       sync.Mutex
	lastSeen map[uuid.UUID]time.Time
	counts   map[uuid.UUID]int
}

// NewSampler builds a sampler with the given minimum interval (default 2s)
// and max images per event (default 8).
func NewSampler(minInterval time.Duration, maxImages int) *Sampler {
	if minInterval <= 0 {
		minInterval = 2 * time.Second
	}
	if maxImages <= 0 {
		maxImages = 8
	}
	return &Sampler{
		minInterval: minInterval,
		maxImages:   maxImages,
		lastSeen:    make(map[uuid.UUID]time.Time),
		counts:      make(map[uuid.UUID]int),
	}
}

// ShouldSample reports whether an image for eventID at "now" should be
// admitted, and why. The first image for an event (count 0) is always
// admitted regardless of interval.
func (s *Sampler) ShouldSample(eventID uuid.UUID, now time.Time, isFirst bool) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.counts[eventID]
	if count >= s.maxImages {
		return false, fmt.Sprintf("quota reached (%d)", s.maxImages)
	}

	if isFirst || count == 0 {
		s.lastSeen[eventID] = now
		s.counts[eventID] = count + 1
		return true, "first image"
	}

	elapsed := now.Sub(s.lastSeen[eventID])
	if elapsed >= s.minInterval {
		s.lastSeen[eventID] = now
		s.counts[eventID] = count + 1
		return true, fmt.Sprintf("interval elapsed (%s)", elapsed)
	}

	return false, fmt.Sprintf("interval too short (need %s)", s.minInterval)
}

// Reset clears per-event sampling state, used when an event finalizes.
func (s *Sampler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = make(map[uuid.UUID]time.Time)
	s.counts = make(map[uuid.UUID]int)
}
