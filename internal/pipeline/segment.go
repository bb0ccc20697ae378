package pipeline

import (
	"time"

	"github.com/texasoct/idod/internal/filter"
)

// segmentBatch splits a filtered, time-sorted record batch into segments,
// starting a new segment whenever the gap to the previous record exceeds
// gap or the running segment reaches maxSize records, per the time-gap and
// max-size rules named for the Processing Pipeline (spec §4.8). A zero or
// negative maxSize disables the size rule.
func segmentBatch(records []filter.MergedRecord, gap time.Duration, maxSize int) [][]filter.MergedRecord {
	if len(records) == 0 {
		return nil
	}

	var segments [][]filter.MergedRecord
	current := []filter.MergedRecord{records[0]}

	for i := 1; i < len(records); i++ {
		prev, curr := records[i-1], records[i]
		sizeExceeded := maxSize > 0 && len(current) >= maxSize
		if curr.StartTime.Sub(prev.EndTime) > gap || sizeExceeded {
			segments = append(segments, current)
			current = []filter.MergedRecord{curr}
			continue
		}
		current = append(current, curr)
	}
	segments = append(segments, current)

	return segments
}

func segmentSpan(segment []filter.MergedRecord) (time.Time, time.Time) {
	start := segment[0].StartTime
	end := segment[0].EndTime
	for _, r := range segment[1:] {
		if r.StartTime.Before(start) {
			start = r.StartTime
		}
		if r.EndTime.After(end) {
			end = r.EndTime
		}
	}
	return start, end
}
