package models

import (
	"time"

	"github.com/google/uuid"
)

// PreferenceKind tags the three learned-preference shapes the Session Agent
// records from user merge/split operations.
type PreferenceKind string

const (
	PreferenceMergePattern  PreferenceKind = "merge_pattern"
	PreferenceSplitPattern  PreferenceKind = "split_pattern"
	PreferenceTimeThreshold PreferenceKind = "time_threshold"
)

// SessionPreference is learned from user merge/split actions; additive.
type SessionPreference struct {
	ID            uuid.UUID
	Kind          PreferenceKind
	Description   string
	Confidence    float64
	TimesObserved int
	LastObserved  time.Time
	CreatedAt     time.Time
}

// InitialConfidence is the confidence assigned to a freshly learned
// preference before any reinforcement.
const InitialConfidence = 0.6
