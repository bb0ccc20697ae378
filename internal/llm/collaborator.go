package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/texasoct/idod/internal/models"
)

// Collaborator is the interface the Session Agent's supervisor-revision loop
// and the knowledge/todo extraction path call against. Runner satisfies it
// by shelling out to an external CLI; a future HTTP-backed implementation
// can satisfy it without touching callers.
type Collaborator interface {
	// ChatCompletion sends prompt to the model and returns its raw text reply.
	ChatCompletion(ctx context.Context, prompt string) (string, error)
	// GetActiveModelInfo reports the model identity this Collaborator talks
	// to, read from the llm_models table's Active row.
	GetActiveModelInfo() models.LLMModel
}

// cliCollaborator adapts Runner to Collaborator for a fixed active model.
type cliCollaborator struct {
	runner *Runner
	model  models.LLMModel
}

// NewCollaborator builds a Collaborator dispatching to the CLI tool
// associated with model.Provider (see resolveRunner).
func NewCollaborator(model models.LLMModel) (Collaborator, error) {
	r, err := NewRunner(model.Provider)
	if err != nil {
		return nil, err
	}
	return &cliCollaborator{runner: r, model: model}, nil
}

func (c *cliCollaborator) ChatCompletion(ctx context.Context, prompt string) (string, error) {
	return c.runner.Extract(ctx, prompt)
}

func (c *cliCollaborator) GetActiveModelInfo() models.LLMModel {
	return c.model
}

// ExtractJSON pulls a JSON value out of a model reply that may be wrapped in
// a markdown code fence (```json ... ``` or plain ``` ... ```) or padded with
// prose before/after the JSON itself. Returns the raw JSON text, unparsed,
// so callers can unmarshal into their own target type.
func ExtractJSON(reply string) (string, error) {
	s := strings.TrimSpace(reply)

	if strings.HasPrefix(s, "```") {
		lines := strings.SplitN(s, "\n", 2)
		if len(lines) == 2 {
			s = lines[1]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", fmt.Errorf("no JSON value found in reply")
	}
	end := strings.LastIndexAny(s, "}]")
	if end < start {
		return "", fmt.Errorf("no JSON value found in reply")
	}
	candidate := s[start : end+1]

	var probe json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return "", fmt.Errorf("extracted text is not valid JSON: %w", err)
	}
	return candidate, nil
}
