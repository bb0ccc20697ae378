package imaging

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSampler_FirstImageAlwaysAdmitted(t *testing.T) {
	s := NewSampler(2*time.Second, 8)
	eventID := uuid.New()
	ok, _ := s.ShouldSample(eventID, time.Now(), true)
	require.True(t, ok)
}

func TestSampler_ThrottlesWithinInterval(t *testing.T) {
	s := NewSampler(2*time.Second, 8)
	eventID := uuid.New()
	now := time.Now()

	ok, _ := s.ShouldSample(eventID, now, true)
	require.True(t, ok)

	ok, reason := s.ShouldSample(eventID, now.Add(500*time.Millisecond), false)
	require.False(t, ok)
	require.Contains(t, reason, "interval")

	ok, _ = s.ShouldSample(eventID, now.Add(3*time.Second), false)
	require.True(t, ok)
}

func TestSampler_EnforcesQuota(t *testing.T) {
	s := NewSampler(0, 2)
	eventID := uuid.New()
	now := time.Now()

	ok, _ := s.ShouldSample(eventID, now, true)
	require.True(t, ok)
	ok, _ = s.ShouldSample(eventID, now.Add(5*time.Second), false)
	require.True(t, ok)

	ok, reason := s.ShouldSample(eventID, now.Add(10*time.Second), false)
	require.False(t, ok)
	require.Contains(t, reason, "quota")
}
