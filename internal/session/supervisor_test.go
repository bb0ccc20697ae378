package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/texasoct/idod/internal/models"
)

type fakeCollaborator struct {
	replies   []string
	callCount int
}

func (f *fakeCollaborator) ChatCompletion(ctx context.Context, prompt string) (string, error) {
	idx := f.callCount
	if idx >= len(f.replies) {
		idx = len(f.replies) - 1
	}
	f.callCount++
	return f.replies[idx], nil
}

func (f *fakeCollaborator) GetActiveModelInfo() models.LLMModel { return models.LLMModel{} }

func baseCandidates() []Candidate {
	now := time.Now()
	return []Candidate{
		{Title: "Writing code", Description: "working on the parser", StartTime: now, EndTime: now.Add(10 * time.Minute)},
		{Title: "Reading docs", Description: "looking up an API", StartTime: now.Add(10 * time.Minute), EndTime: now.Add(20 * time.Minute)},
	}
}

func TestReviseCandidates_NoRevisionAccepted(t *testing.T) {
	fc := &fakeCollaborator{replies: []string{`{"is_valid": true, "revised_content": null}`}}
	out := ReviseCandidates(context.Background(), fc, NewDefaultPrompts(), baseCandidates())
	require.Equal(t, "Writing code", out[0].Title)
	require.Equal(t, 1, fc.callCount)
}

func TestReviseCandidates_AppliesRevisionThenStops(t *testing.T) {
	fc := &fakeCollaborator{replies: []string{
		`{"is_valid": false, "revised_content": [{"title": "Parser development", "description": "working on the parser"}, {"title": "Reading docs", "description": "looking up an API"}]}`,
	}}
	out := ReviseCandidates(context.Background(), fc, NewDefaultPrompts(), baseCandidates())
	require.Equal(t, "Parser development", out[0].Title)
}

func TestReviseCandidates_MismatchedLengthRejectsAndStops(t *testing.T) {
	fc := &fakeCollaborator{replies: []string{
		`{"is_valid": false, "revised_content": [{"title": "Only one", "description": "d"}]}`,
	}}
	out := ReviseCandidates(context.Background(), fc, NewDefaultPrompts(), baseCandidates())
	require.Equal(t, "Writing code", out[0].Title)
	require.Equal(t, "Reading docs", out[1].Title)
}

func TestReviseCandidates_CapsAtMaxIterations(t *testing.T) {
	fc := &fakeCollaborator{replies: []string{
		`{"is_valid": false, "revised_content": [{"title": "Revision 1", "description": "d1"}, {"title": "Revision 1b", "description": "d2"}]}`,
		`{"is_valid": false, "revised_content": [{"title": "Revision 2", "description": "d1"}, {"title": "Revision 2b", "description": "d2"}]}`,
		`{"is_valid": false, "revised_content": [{"title": "Revision 3", "description": "d1"}, {"title": "Revision 3b", "description": "d2"}]}`,
	}}
	out := ReviseCandidates(context.Background(), fc, NewDefaultPrompts(), baseCandidates())
	require.Equal(t, maxSupervisorIterations, fc.callCount)
	require.Equal(t, "Revision 3", out[0].Title)
}
