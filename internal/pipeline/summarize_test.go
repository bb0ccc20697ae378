package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/texasoct/idod/internal/filter"
	"github.com/texasoct/idod/internal/models"
)

type fakeCollaborator struct {
	reply string
	err   error
}

func (f fakeCollaborator) ChatCompletion(ctx context.Context, prompt string) (string, error) {
	return f.reply, f.err
}

func (f fakeCollaborator) GetActiveModelInfo() models.LLMModel { return models.LLMModel{} }

func TestSummarizeSegment_ParsesReply(t *testing.T) {
	collab := fakeCollaborator{reply: `{"title": "Reviewed PRs", "description": "Looked over diffs", "keywords": ["github"]}`}
	segment := []filter.MergedRecord{{Kind: models.KindKeyboard, StartTime: time.Now(), EndTime: time.Now(), Action: "press", Count: 3}}

	out, err := summarizeSegment(context.Background(), collab, NewDefaultSummaryPrompt(), segment)
	require.NoError(t, err)
	require.Equal(t, "Reviewed PRs", out.Title)
	require.Equal(t, []string{"github"}, out.Keywords)
}

func TestSummarizeSegment_BlankTitleFallsBack(t *testing.T) {
	collab := fakeCollaborator{reply: `{"title": "", "description": "something"}`}
	segment := []filter.MergedRecord{{Kind: models.KindScreenshot, StartTime: time.Now(), EndTime: time.Now()}}

	out, err := summarizeSegment(context.Background(), collab, NewDefaultSummaryPrompt(), segment)
	require.NoError(t, err)
	require.Equal(t, "Untitled activity", out.Title)
}

func TestSummarizeSegment_CollaboratorErrorPropagates(t *testing.T) {
	collab := fakeCollaborator{err: errors.New("boom")}
	_, err := summarizeSegment(context.Background(), collab, NewDefaultSummaryPrompt(), []filter.MergedRecord{{StartTime: time.Now(), EndTime: time.Now()}})
	require.Error(t, err)
}
