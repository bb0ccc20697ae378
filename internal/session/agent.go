package session

import (
	"context"
	"database/sql"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/texasoct/idod/internal/app"
	"github.com/texasoct/idod/internal/llm"
	"github.com/texasoct/idod/internal/models"
	"github.com/texasoct/idod/internal/store"
)

// Agent periodically aggregates unaggregated Actions into Events, then
// unaggregated Events into Activities, on a fixed interval. Grounded on
// original_source/backend/agents/session_agent.py's SessionAgent class and
// its start/stop/pause/resume lifecycle.
type Agent struct {
	db     *sql.DB
	learn  LearningStore
	prompt PromptBuilder
	collab func() (llm.Collaborator, error)

	paused atomic.Bool
}

// NewAgent builds a Session Agent. collab is called fresh on each
// aggregation cycle so the active LLM model can change between cycles
// without restarting the agent.
func NewAgent(db *sql.DB, collab func() (llm.Collaborator, error)) *Agent {
	return &Agent{
		db:     db,
		learn:  NewLearningStore(db),
		prompt: NewDefaultPrompts(),
		collab: collab,
	}
}

// Pause stops new aggregation cycles from starting; any cycle already in
// flight runs to completion.
func (a *Agent) Pause() { a.paused.Store(true) }

// Resume re-enables aggregation cycles.
func (a *Agent) Resume() { a.paused.Store(false) }

// Start runs the periodic aggregation loop until ctx is cancelled.
func (a *Agent) Start(ctx context.Context) error {
	eff, err := app.CurrentSnapshot()
	if err != nil {
		return err
	}

	interval := time.Duration(eff.AggregationInterval) * time.Second
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if a.paused.Load() {
				continue
			}
			a.runCycle(ctx)
		}
	}
}

// runCycle executes one aggregation pass and logs (rather than propagates)
// any failure, so a single bad cycle never takes the agent down.
func (a *Agent) runCycle(ctx context.Context) {
	eff, err := app.CurrentSnapshot()
	if err != nil {
		slog.Error("session: reading settings snapshot failed", "error", err)
		return
	}

	if err := a.aggregateActionsIntoEvents(eff); err != nil {
		slog.Error("session: actions->events aggregation failed", "error", err)
	}

	if err := a.aggregateEventsIntoActivities(ctx, eff); err != nil {
		slog.Error("session: events->activities aggregation failed", "error", err)
	}
}

func (a *Agent) aggregateActionsIntoEvents(eff *app.EffectiveSettings) error {
	lookback := time.Duration(eff.TimeWindowMax) * time.Second
	if lookback <= 0 {
		lookback = 2 * time.Hour
	}
	since := time.Now().UTC().Add(-lookback)

	actions, err := store.ListUnaggregatedActionsSince(a.db, since)
	if err != nil {
		return err
	}
	if len(actions) == 0 {
		return nil
	}

	events := GroupActionsIntoEvents(actions, defaultEventGroupGap, eff.MinEventActions)

	for _, ev := range events {
		if err := store.SaveEvent(a.db, ev); err != nil {
			return err
		}
		if err := store.MarkActionsAggregated(a.db, ev.SourceActionIDs, ev.ID); err != nil {
			return err
		}
	}
	return nil
}

func (a *Agent) aggregateEventsIntoActivities(ctx context.Context, eff *app.EffectiveSettings) error {
	lookback := time.Duration(eff.TimeWindowMax) * time.Second
	if lookback <= 0 {
		lookback = 2 * time.Hour
	}
	since := time.Now().UTC().Add(-lookback)

	events, err := store.ListUnaggregatedEventsSince(a.db, since)
	if err != nil {
		return err
	}

	minDuration := time.Duration(eff.MinEventDurationSeconds) * time.Second
	qualified := filterQualifiedEvents(events, eff.MinEventActions, minDuration)
	if len(qualified) == 0 {
		return nil
	}

	collab, err := a.collab()
	if err != nil {
		return err
	}

	candidates, err := ClusterEventsToActivities(ctx, collab, a.prompt, qualified)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	gapTolerance := time.Duration(eff.MergeTimeGapTolerance) * time.Second
	candidates = MergeCandidatesByOverlap(candidates, gapTolerance, eff.MergeSimilarityThreshold)
	candidates = ReviseCandidates(ctx, collab, a.prompt, candidates)

	existing, err := store.ListActivitiesEndingSince(a.db, since)
	if err != nil {
		return err
	}

	updates, fresh := MergeWithExisting(candidates, existing, gapTolerance, eff.MergeSimilarityThreshold)

	return a.persist(updates, fresh)
}

// persist writes the fold-with-existing result: updates apply to already
// persisted Activities, fresh candidates become new ones. Every source
// Event referenced by either is marked aggregated against its activity.
func (a *Agent) persist(updates []ActivityUpdate, fresh []Candidate) error {
	now := time.Now().UTC()

	for _, u := range updates {
		activity := &models.Activity{
			ID:                     u.ExistingID,
			Title:                  u.Title,
			Description:            u.Description,
			StartTime:              u.StartTime,
			EndTime:                u.EndTime,
			SourceEventIDs:         u.SourceEventIDs,
			SessionDurationMinutes: models.ComputeSessionDurationMinutes(u.StartTime, u.EndTime),
			TopicTags:              u.TopicTags,
			UpdatedAt:              now,
		}
		if err := store.SaveActivity(a.db, activity); err != nil {
			return err
		}
		if err := store.MarkEventsAggregated(a.db, u.NewEventIDs, u.ExistingID); err != nil {
			return err
		}
	}

	for _, c := range fresh {
		activity := &models.Activity{
			ID:                     c.ID,
			Title:                  c.Title,
			Description:            c.Description,
			StartTime:              c.StartTime,
			EndTime:                c.EndTime,
			SourceEventIDs:         c.SourceEventIDs,
			SessionDurationMinutes: models.ComputeSessionDurationMinutes(c.StartTime, c.EndTime),
			TopicTags:              c.TopicTags,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		if err := store.SaveActivity(a.db, activity); err != nil {
			return err
		}
		if err := store.MarkEventsAggregated(a.db, c.SourceEventIDs, c.ID); err != nil {
			return err
		}
	}

	return nil
}

// filterQualifiedEvents drops events that are too short or too thin to be
// worth aggregating into an Activity (§4.6's quality filter).
func filterQualifiedEvents(events []*models.Event, minActions int, minDuration time.Duration) []*models.Event {
	out := make([]*models.Event, 0, len(events))
	for _, e := range events {
		if len(e.SourceActionIDs) < minActions {
			continue
		}
		if e.EndTime.Sub(e.StartTime) < minDuration {
			continue
		}
		out = append(out, e)
	}
	return out
}
