package models

import (
	"time"

	"github.com/google/uuid"
)

// Action is the finest-grained persisted record, created by the Processing
// Pipeline after LLM summarisation of a record batch. Immutable after
// creation except for AggregatedIntoEventID, the knowledge flags, and
// Deleted.
type Action struct {
	ID                   uuid.UUID
	Title                string
	Description          string
	Keywords             []string
	Timestamp            time.Time
	AggregatedIntoEventID *uuid.UUID
	ExtractKnowledge     bool
	KnowledgeExtracted   bool
	Deleted              bool
	CreatedAt            time.Time
}

// ActionImage is the join row between an Action and a content-addressed
// image hash. Many images may reference one action; the same hash may
// reference many actions.
type ActionImage struct {
	ActionID  uuid.UUID
	ImageHash string
	CreatedAt time.Time
}
