package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/texasoct/idod/internal/llm"
	"github.com/texasoct/idod/internal/models"
)

// PromptBuilder renders the prompts sent to the clustering and supervisor
// collaborator calls. Splitting it out of the agent keeps the LLM wording
// swappable (and testable) without touching the aggregation control flow.
type PromptBuilder interface {
	ClusterPrompt(events []*models.Event) string
	SupervisorPrompt(candidates []Candidate) string
	PatternExtractionPrompt(kind models.PreferenceKind, detail string) string
}

// defaultPrompts is the built-in PromptBuilder, grounded on the collaborator
// prompts described in original_source/backend/agents/session_agent.py.
type defaultPrompts struct{}

// NewDefaultPrompts returns the built-in PromptBuilder used by NewAgent.
func NewDefaultPrompts() PromptBuilder { return defaultPrompts{} }

func (defaultPrompts) ClusterPrompt(events []*models.Event) string {
	var b strings.Builder
	b.WriteString("You are grouping a user's desktop activity events into coherent work sessions.\n")
	b.WriteString("Each event below is one atomic unit of observed work, numbered starting at 1.\n")
	b.WriteString("Group events that belong to the same activity together, in any order. Reply with JSON:\n")
	b.WriteString(`{"activities": [{"source": [<event numbers>], "title": <activity title>, ` +
		`"description": <one sentence>, "topic_tags": [<short keyword>, ...]}, ...]}` + "\n\n")
	for i, e := range events {
		fmt.Fprintf(&b, "%d. [%s - %s] %s: %s\n", i+1, e.StartTime.Format(time.RFC3339), e.EndTime.Format(time.RFC3339), e.Title, e.Description)
	}
	return b.String()
}

func (defaultPrompts) SupervisorPrompt(candidates []Candidate) string {
	var b strings.Builder
	b.WriteString("Review the following proposed activities for quality and accuracy. Reply with JSON:\n")
	b.WriteString(`{"is_valid": <bool>, "issues": [...], "suggestions": [...], "revised_content": ` +
		`[{"title": ..., "description": ...}, ...] | null}` + "\n\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s (%s - %s): %s\n", i, c.Title, c.StartTime.Format(time.RFC3339), c.EndTime.Format(time.RFC3339), c.Description)
	}
	return b.String()
}

func (defaultPrompts) PatternExtractionPrompt(kind models.PreferenceKind, detail string) string {
	var action string
	switch kind {
	case models.PreferenceSplitPattern:
		action = "split one activity into several"
	default:
		action = "merge several activities into one"
	}
	return fmt.Sprintf(
		"A user just chose to %s. Details: %s\nState, in one sentence, the general rule this implies "+
			"about how future activities of this kind should be grouped.", action, detail)
}

// clusterReply is the clustering collaborator's full reply shape.
type clusterReply struct {
	Activities []clusterActivity `json:"activities"`
}

// clusterActivity is one proposed activity: a group of 1-based event
// numbers plus the title/description/topic_tags the collaborator assigned
// to the group as a whole.
type clusterActivity struct {
	Source      []int    `json:"source"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TopicTags   []string `json:"topic_tags"`
}

// normalizeSourceIndexes turns raw 1-based event numbers into a unique,
// order-preserving, in-range 0-based index list, dropping anything out of
// range or already seen.
func normalizeSourceIndexes(raw []int, total int) []int {
	if total <= 0 {
		return nil
	}
	seen := make(map[int]bool, len(raw))
	out := make([]int, 0, len(raw))
	for _, n := range raw {
		if n < 1 || n > total {
			slog.Warn("session: clustering reply referenced an out-of-range event number, dropping", "number", n)
			continue
		}
		idx := n - 1
		if seen[idx] {
			slog.Warn("session: clustering reply referenced a duplicate event number, dropping", "number", n)
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	return out
}

// ClusterEventsToActivities sends events to the collaborator and turns its
// reply into candidate Activities. Each candidate groups every event whose
// 1-based number appears in that activity's "source" list, with
// StartTime/EndTime taken as the min/max span across its source events and
// TopicTags carried through from the reply, per §4.6 steps 3/4.
func ClusterEventsToActivities(ctx context.Context, collab llm.Collaborator, prompt PromptBuilder, events []*models.Event) ([]Candidate, error) {
	if len(events) == 0 {
		return nil, nil
	}

	reply, err := collab.ChatCompletion(ctx, prompt.ClusterPrompt(events))
	if err != nil {
		return nil, fmt.Errorf("session: clustering call failed: %w", err)
	}

	raw, err := llm.ExtractJSON(reply)
	if err != nil {
		return nil, fmt.Errorf("session: clustering reply unparsable: %w", err)
	}

	var parsed clusterReply
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("session: decoding clustering reply: %w", err)
	}

	candidates := make([]Candidate, 0, len(parsed.Activities))

	for _, a := range parsed.Activities {
		indexes := normalizeSourceIndexes(a.Source, len(events))
		if len(indexes) == 0 {
			continue
		}

		sourceIDs := make([]uuid.UUID, 0, len(indexes))
		var start, end time.Time
		for _, idx := range indexes {
			ev := events[idx]
			sourceIDs = append(sourceIDs, ev.ID)
			if start.IsZero() || ev.StartTime.Before(start) {
				start = ev.StartTime
			}
			if end.IsZero() || ev.EndTime.After(end) {
				end = ev.EndTime
			}
		}

		title := strings.TrimSpace(a.Title)
		if title == "" {
			title = "Unnamed session"
		}

		candidates = append(candidates, Candidate{
			ID:             uuid.New(),
			Title:          title,
			Description:    strings.TrimSpace(a.Description),
			StartTime:      start,
			EndTime:        end,
			SourceEventIDs: sourceIDs,
			TopicTags:      a.TopicTags,
		})
	}

	return candidates, nil
}
