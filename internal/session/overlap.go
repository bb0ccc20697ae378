// Package session implements the Session Agent: the two-stage aggregation
// that turns unaggregated Actions into Events and unaggregated Events into
// Activities, using deterministic overlap/proximity rules plus an LLM
// clustering collaborator and a supervisor-revision loop. Grounded on
// original_source/backend/agents/session_agent.py.
package session

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Candidate is an in-progress Activity being assembled during one
// aggregation cycle, before it is persisted or merged with an existing row.
type Candidate struct {
	ID             uuid.UUID
	Title          string
	Description    string
	StartTime      time.Time
	EndTime        time.Time
	SourceEventIDs []uuid.UUID
	TopicTags      []string
}

const (
	defaultMergeTimeGapTolerance    = 5 * time.Minute
	defaultMergeSimilarityThreshold = 0.6
)

// MergeCandidatesByOverlap implements §4.6.1: sorts candidates by start
// time and merges adjacent pairs that overlap in time or are close in time
// and similar in content.
func MergeCandidatesByOverlap(candidates []Candidate, gapTolerance time.Duration, simThreshold float64) []Candidate {
	if len(candidates) == 0 {
		return nil
	}
	if gapTolerance <= 0 {
		gapTolerance = defaultMergeTimeGapTolerance
	}
	if simThreshold <= 0 {
		simThreshold = defaultMergeSimilarityThreshold
	}

	sorted := append([]Candidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartTime.Before(sorted[j].StartTime) })

	merged := []Candidate{sorted[0]}
	for _, next := range sorted[1:] {
		last := merged[len(merged)-1]

		if next.StartTime.Before(last.EndTime) {
			merged[len(merged)-1] = mergeCandidates(last, next)
			continue
		}

		gap := next.StartTime.Sub(last.EndTime)
		if gap >= 0 && gap <= gapTolerance && similarity(last, next) >= simThreshold {
			merged[len(merged)-1] = mergeCandidates(last, next)
			continue
		}

		merged = append(merged, next)
	}
	return merged
}

func mergeCandidates(a, b Candidate) Candidate {
	primary, secondary := a, b
	if b.EndTime.Sub(b.StartTime) > a.EndTime.Sub(a.StartTime) {
		primary, secondary = b, a
	}

	end := a.EndTime
	if b.EndTime.After(end) {
		end = b.EndTime
	}

	return Candidate{
		ID:             primary.ID,
		Title:          primary.Title,
		Description:    appendRelatedSection(primary.Description, secondary.Title),
		StartTime:      a.StartTime,
		EndTime:        end,
		SourceEventIDs: unionUUIDs(a.SourceEventIDs, b.SourceEventIDs),
		TopicTags:      unionStrings(a.TopicTags, b.TopicTags),
	}
}

func appendRelatedSection(description, relatedTitle string) string {
	if relatedTitle == "" {
		return description
	}
	return description + "\n\nRelated: " + relatedTitle
}

// similarity implements the weighted title/tag Jaccard score from §4.6.1:
// 0.7*title_jaccard + 0.3*tag_jaccard, with 1.0 for byte-equal lowercased
// titles and 0 for empty operands.
func similarity(a, b Candidate) float64 {
	titleA := strings.ToLower(strings.TrimSpace(a.Title))
	titleB := strings.ToLower(strings.TrimSpace(b.Title))
	if titleA == "" || titleB == "" {
		return 0
	}
	if titleA == titleB {
		return 1.0
	}

	titleSim := jaccard(strings.Fields(titleA), strings.Fields(titleB))
	tagSim := jaccard(a.TopicTags, b.TopicTags)
	return 0.7*titleSim + 0.3*tagSim
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, v := range a {
		setA[strings.ToLower(v)] = true
	}
	setB := make(map[string]bool, len(b))
	for _, v := range b {
		setB[strings.ToLower(v)] = true
	}

	intersection := 0
	union := make(map[string]bool, len(setA)+len(setB))
	for v := range setA {
		union[v] = true
		if setB[v] {
			intersection++
		}
	}
	for v := range setB {
		union[v] = true
	}
	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}

func unionUUIDs(a, b []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(a)+len(b))
	out := make([]uuid.UUID, 0, len(a)+len(b))
	for _, id := range append(append([]uuid.UUID(nil), a...), b...) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string(nil), a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
