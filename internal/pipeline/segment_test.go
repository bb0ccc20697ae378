package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/texasoct/idod/internal/filter"
	"github.com/texasoct/idod/internal/models"
)

func rec(start, end time.Time) filter.MergedRecord {
	return filter.MergedRecord{Kind: models.KindKeyboard, StartTime: start, EndTime: end}
}

func TestSegmentBatch_SplitsOnGap(t *testing.T) {
	base := time.Now()
	records := []filter.MergedRecord{
		rec(base, base.Add(time.Second)),
		rec(base.Add(2*time.Second), base.Add(3*time.Second)),
		rec(base.Add(10*time.Minute), base.Add(10*time.Minute+time.Second)),
	}

	segments := segmentBatch(records, 2*time.Minute, 0)
	require.Len(t, segments, 2)
	require.Len(t, segments[0], 2)
	require.Len(t, segments[1], 1)
}

func TestSegmentBatch_SplitsOnMaxSize(t *testing.T) {
	base := time.Now()
	records := []filter.MergedRecord{
		rec(base, base.Add(time.Second)),
		rec(base.Add(time.Second), base.Add(2*time.Second)),
		rec(base.Add(2*time.Second), base.Add(3*time.Second)),
	}

	segments := segmentBatch(records, time.Hour, 2)
	require.Len(t, segments, 2)
	require.Len(t, segments[0], 2)
	require.Len(t, segments[1], 1)
}

func TestSegmentBatch_EmptyInputReturnsNil(t *testing.T) {
	require.Nil(t, segmentBatch(nil, time.Minute, 10))
}

func TestSegmentSpan_CoversWidestBounds(t *testing.T) {
	base := time.Now()
	segment := []filter.MergedRecord{
		rec(base.Add(time.Second), base.Add(2*time.Second)),
		rec(base, base.Add(5*time.Second)),
	}
	start, end := segmentSpan(segment)
	require.True(t, start.Equal(base))
	require.True(t, end.Equal(base.Add(5*time.Second)))
}
