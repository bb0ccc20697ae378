package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/texasoct/idod/internal/filter"
	"github.com/texasoct/idod/internal/llm"
	"github.com/texasoct/idod/internal/models"
)

// SummaryPrompt renders the prompt sent to the per-segment summariser call.
// Splitting it out of the pipeline keeps the wording swappable and testable
// without touching the batching control flow, mirroring session.PromptBuilder.
type SummaryPrompt interface {
	SummarizePrompt(segment []filter.MergedRecord) string
}

type defaultSummaryPrompt struct{}

// NewDefaultSummaryPrompt returns the built-in SummaryPrompt used by New.
func NewDefaultSummaryPrompt() SummaryPrompt { return defaultSummaryPrompt{} }

func (defaultSummaryPrompt) SummarizePrompt(segment []filter.MergedRecord) string {
	var b strings.Builder
	b.WriteString("You are summarizing a short burst of a user's desktop activity into a single action.\n")
	b.WriteString("Reply with JSON: {\"title\": <short title>, \"description\": <one or two sentences>, " +
		"\"keywords\": [<tag>, ...]}\n\n")
	for _, r := range segment {
		switch r.Kind {
		case models.KindKeyboard:
			fmt.Fprintf(&b, "- [%s] keyboard %s x%d\n", r.StartTime.Format(time.RFC3339), r.Action, r.Count)
		case models.KindMouse:
			fmt.Fprintf(&b, "- [%s] mouse %s x%d\n", r.StartTime.Format(time.RFC3339), r.Action, r.Count)
		case models.KindScreenshot:
			fmt.Fprintf(&b, "- [%s] screenshot captured\n", r.StartTime.Format(time.RFC3339))
		default:
			fmt.Fprintf(&b, "- [%s] %s\n", r.StartTime.Format(time.RFC3339), string(r.Kind))
		}
	}
	return b.String()
}

// summaryReply is the summariser collaborator's expected JSON shape.
type summaryReply struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

func summarizeSegment(ctx context.Context, collab llm.Collaborator, prompt SummaryPrompt, segment []filter.MergedRecord) (summaryReply, error) {
	reply, err := collab.ChatCompletion(ctx, prompt.SummarizePrompt(segment))
	if err != nil {
		return summaryReply{}, fmt.Errorf("pipeline: summarizer call failed: %w", err)
	}

	raw, err := llm.ExtractJSON(reply)
	if err != nil {
		return summaryReply{}, fmt.Errorf("pipeline: summarizer reply unparsable: %w", err)
	}

	var out summaryReply
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return summaryReply{}, fmt.Errorf("pipeline: decoding summarizer reply: %w", err)
	}

	out.Title = strings.TrimSpace(out.Title)
	if out.Title == "" {
		out.Title = "Untitled activity"
	}
	return out, nil
}
