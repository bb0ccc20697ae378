package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/texasoct/idod/internal/models"
)

// ActivityUpdate is a change to apply to an existing, already-persisted
// Activity because a new candidate overlaps or is similar to it (§4.6.3).
type ActivityUpdate struct {
	ExistingID     uuid.UUID
	Title          string
	Description    string
	StartTime      time.Time
	EndTime        time.Time
	SourceEventIDs []uuid.UUID
	NewEventIDs    []uuid.UUID
	TopicTags      []string
}

// MergeWithExisting implements §4.6.3: for each new candidate, tests it
// against every existing activity that ended within the lookback window
// (already filtered by the caller via store.ListActivitiesEndingSince) using
// the same overlap/proximity rule as §4.6.1. Candidates matching no existing
// activity are returned as fresh candidates to insert; candidates that match
// are folded into an ActivityUpdate, with multiple matches against the same
// existing row folded together.
func MergeWithExisting(candidates []Candidate, existing []*models.Activity, gapTolerance time.Duration, simThreshold float64) (updates []ActivityUpdate, fresh []Candidate) {
	if gapTolerance <= 0 {
		gapTolerance = defaultMergeTimeGapTolerance
	}
	if simThreshold <= 0 {
		simThreshold = defaultMergeSimilarityThreshold
	}

	updatesByID := make(map[uuid.UUID]*ActivityUpdate)
	order := make([]uuid.UUID, 0, len(existing))

	for _, cand := range candidates {
		matchedID, matched := matchExisting(cand, existing, gapTolerance, simThreshold)
		if !matched {
			fresh = append(fresh, cand)
			continue
		}

		u, ok := updatesByID[matchedID]
		if !ok {
			for _, ex := range existing {
				if ex.ID == matchedID {
					u = &ActivityUpdate{
						ExistingID:     ex.ID,
						Title:          ex.Title,
						Description:    ex.Description,
						StartTime:      ex.StartTime,
						EndTime:        ex.EndTime,
						SourceEventIDs: append([]uuid.UUID(nil), ex.SourceEventIDs...),
						TopicTags:      append([]string(nil), ex.TopicTags...),
					}
					break
				}
			}
			updatesByID[matchedID] = u
			order = append(order, matchedID)
		}

		applyCandidateToUpdate(u, cand)
	}

	for _, id := range order {
		updates = append(updates, *updatesByID[id])
	}
	return updates, fresh
}

func matchExisting(cand Candidate, existing []*models.Activity, gapTolerance time.Duration, simThreshold float64) (uuid.UUID, bool) {
	for _, ex := range existing {
		exCand := Candidate{Title: ex.Title, TopicTags: ex.TopicTags, StartTime: ex.StartTime, EndTime: ex.EndTime}

		if cand.StartTime.Before(ex.EndTime) && ex.StartTime.Before(cand.EndTime) {
			return ex.ID, true
		}

		var gap time.Duration
		if cand.StartTime.After(ex.EndTime) {
			gap = cand.StartTime.Sub(ex.EndTime)
		} else {
			gap = ex.StartTime.Sub(cand.EndTime)
		}
		if gap >= 0 && gap <= gapTolerance && similarity(exCand, cand) >= simThreshold {
			return ex.ID, true
		}
	}
	return uuid.Nil, false
}

func applyCandidateToUpdate(u *ActivityUpdate, cand Candidate) {
	existingEventIDs := make(map[uuid.UUID]bool, len(u.SourceEventIDs))
	for _, id := range u.SourceEventIDs {
		existingEventIDs[id] = true
	}
	for _, id := range cand.SourceEventIDs {
		if !existingEventIDs[id] {
			u.NewEventIDs = append(u.NewEventIDs, id)
		}
	}

	u.SourceEventIDs = unionUUIDs(u.SourceEventIDs, cand.SourceEventIDs)
	u.TopicTags = unionStrings(u.TopicTags, cand.TopicTags)

	existingDuration := u.EndTime.Sub(u.StartTime)
	candDuration := cand.EndTime.Sub(cand.StartTime)

	if cand.StartTime.Before(u.StartTime) {
		u.StartTime = cand.StartTime
	}
	if cand.EndTime.After(u.EndTime) {
		u.EndTime = cand.EndTime
	}

	// Ties keep the existing activity's title, per §4.6.3.
	if candDuration > existingDuration {
		u.Title = cand.Title
		u.Description = cand.Description
	}
}
