package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/texasoct/idod/internal/models"
)

// Grouping an Action stream into Events has no algorithm spelled out beyond
// the Events->Activities stage, so this groups consecutive Actions by a
// fixed idle-gap threshold and a minimum group size, mirroring the
// time-window defaults (TimeWindowMin/TimeWindowMax) already used elsewhere
// in the pipeline's settings.
const (
	defaultEventGroupGap      = 10 * time.Minute
	defaultMinActionsPerEvent = 1
)

// GroupActionsIntoEvents splits a chronologically-sorted Action slice into
// Events: a new Event starts whenever the gap to the previous Action
// exceeds gap. Groups smaller than minActions are dropped (their Actions
// stay unaggregated and are reconsidered on the next cycle).
func GroupActionsIntoEvents(actions []*models.Action, gap time.Duration, minActions int) []*models.Event {
	if len(actions) == 0 {
		return nil
	}
	if gap <= 0 {
		gap = defaultEventGroupGap
	}
	if minActions <= 0 {
		minActions = defaultMinActionsPerEvent
	}

	var events []*models.Event
	group := []*models.Action{actions[0]}

	flush := func() {
		if len(group) < minActions {
			return
		}
		events = append(events, buildEvent(group))
	}

	for i := 1; i < len(actions); i++ {
		if actions[i].Timestamp.Sub(actions[i-1].Timestamp) > gap {
			flush()
			group = []*models.Action{actions[i]}
			continue
		}
		group = append(group, actions[i])
	}
	flush()

	return events
}

func buildEvent(group []*models.Action) *models.Event {
	first, last := group[0], group[len(group)-1]

	ids := make([]uuid.UUID, len(group))
	for i, a := range group {
		ids[i] = a.ID
	}

	now := time.Now().UTC()
	return &models.Event{
		ID:              uuid.New(),
		Title:           first.Title,
		Description:     first.Description,
		StartTime:       first.Timestamp,
		EndTime:         last.Timestamp,
		SourceActionIDs: ids,
		Version:         1,
		CreatedAt:       now,
	}
}
