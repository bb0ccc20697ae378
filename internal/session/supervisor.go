package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/texasoct/idod/internal/llm"
)

const maxSupervisorIterations = 3

// revisedActivity is one entry of the supervisor's optional revised_content
// list, matched back to the candidate list by index.
type revisedActivity struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// supervisorVerdict is the collaborator's reply contract for §4.6.2.
type supervisorVerdict struct {
	IsValid       bool               `json:"is_valid"`
	Issues        []string           `json:"issues"`
	Suggestions   []string           `json:"suggestions"`
	RevisedContent []revisedActivity `json:"revised_content"`
}

// ReviseCandidates runs the supervisor-revision loop from §4.6.2: the
// collaborator inspects the current candidate set and may propose a
// same-length list of title/description overwrites. The loop accepts as
// soon as the collaborator reports is_valid with no revision, rejects (and
// stops) if a proposal's length doesn't match the candidate count, and caps
// at maxSupervisorIterations rounds.
func ReviseCandidates(ctx context.Context, collab llm.Collaborator, prompt PromptBuilder, candidates []Candidate) []Candidate {
	current := append([]Candidate(nil), candidates...)

	for i := 0; i < maxSupervisorIterations; i++ {
		reply, err := collab.ChatCompletion(ctx, prompt.SupervisorPrompt(current))
		if err != nil {
			slog.Warn("session: supervisor call failed, keeping current candidates", "error", err, "iteration", i)
			return current
		}

		verdict, err := parseSupervisorVerdict(reply)
		if err != nil {
			slog.Warn("session: supervisor reply unparsable, keeping current candidates", "error", err, "iteration", i)
			return current
		}

		if len(verdict.RevisedContent) == 0 {
			return current
		}

		if len(verdict.RevisedContent) != len(current) {
			slog.Warn("session: supervisor proposed a revision of mismatched length, rejecting",
				"want", len(current), "got", len(verdict.RevisedContent), "iteration", i)
			return current
		}

		changed := false
		for idx, rev := range verdict.RevisedContent {
			if rev.Title != "" && rev.Title != current[idx].Title {
				current[idx].Title = rev.Title
				changed = true
			}
			if rev.Description != "" && rev.Description != current[idx].Description {
				current[idx].Description = rev.Description
				changed = true
			}
		}

		if !changed || verdict.IsValid {
			return current
		}
	}

	return current
}

func parseSupervisorVerdict(reply string) (supervisorVerdict, error) {
	raw, err := llm.ExtractJSON(reply)
	if err != nil {
		return supervisorVerdict{}, err
	}
	var v supervisorVerdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return supervisorVerdict{}, fmt.Errorf("session: decoding supervisor verdict: %w", err)
	}
	return v, nil
}
