package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity is the coarse session-level cluster of Events, created by the
// Session Agent. Invariants: SessionDurationMinutes == floor((EndTime -
// StartTime)/60s); SourceEventIDs is non-empty; StartTime/EndTime equal the
// min/max of referenced Events.
type Activity struct {
	ID                     uuid.UUID
	Title                  string
	Description            string
	StartTime              time.Time
	EndTime                time.Time
	SourceEventIDs         []uuid.UUID
	SessionDurationMinutes int
	TopicTags              []string
	UserMergedFromIDs      []uuid.UUID
	UserSplitIntoIDs       []uuid.UUID
	Deleted                bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// ComputeSessionDurationMinutes implements the invariant
// `floor((end - start) / 60s)`.
func ComputeSessionDurationMinutes(start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}
