package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a medium-grained cluster of Actions, created by the Session
// Agent. Invariants: StartTime <= EndTime; SourceActionIDs is non-empty;
// every referenced Action exists and is non-deleted at creation time;
// StartTime/EndTime equal the min/max of the referenced Actions' timestamps.
type Event struct {
	ID                      uuid.UUID
	Title                   string
	Description             string
	StartTime               time.Time
	EndTime                 time.Time
	SourceActionIDs         []uuid.UUID
	AggregatedIntoActivityID *uuid.UUID
	Version                 int
	Deleted                 bool
	CreatedAt               time.Time
}
