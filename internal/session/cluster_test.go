package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/texasoct/idod/internal/models"
)

func sampleEvents() []*models.Event {
	now := time.Now()
	return []*models.Event{
		{ID: uuid.New(), Title: "Editing main.go", Description: "edits", StartTime: now, EndTime: now.Add(3 * time.Minute)},
		{ID: uuid.New(), Title: "Running tests", Description: "tests", StartTime: now.Add(3 * time.Minute), EndTime: now.Add(6 * time.Minute)},
		{ID: uuid.New(), Title: "Reading docs", Description: "docs", StartTime: now.Add(10 * time.Minute), EndTime: now.Add(12 * time.Minute)},
	}
}

func TestClusterEventsToActivities_GroupsMultipleEventsIntoOneActivity(t *testing.T) {
	events := sampleEvents()
	fc := &fakeCollaborator{replies: []string{
		`{"activities": [` +
			`{"source": [1, 2], "title": "Shipping a fix", "description": "edit then test", "topic_tags": ["go", "testing"]},` +
			`{"source": [3], "title": "Research", "description": "reading docs", "topic_tags": ["docs"]}` +
			`]}`,
	}}

	out, err := ClusterEventsToActivities(context.Background(), fc, NewDefaultPrompts(), events)
	require.NoError(t, err)
	require.Len(t, out, 2)

	require.Equal(t, "Shipping a fix", out[0].Title)
	require.ElementsMatch(t, []uuid.UUID{events[0].ID, events[1].ID}, out[0].SourceEventIDs)
	require.Equal(t, events[0].StartTime, out[0].StartTime)
	require.Equal(t, events[1].EndTime, out[0].EndTime)
	require.Equal(t, []string{"go", "testing"}, out[0].TopicTags)

	require.Equal(t, "Research", out[1].Title)
	require.ElementsMatch(t, []uuid.UUID{events[2].ID}, out[1].SourceEventIDs)
}

func TestClusterEventsToActivities_DropsOutOfRangeAndDuplicateNumbers(t *testing.T) {
	events := sampleEvents()
	fc := &fakeCollaborator{replies: []string{
		`{"activities": [` +
			`{"source": [1, 1, 99], "title": "Coding", "description": "d"},` +
			`{"source": [], "title": "Empty", "description": "d"}` +
			`]}`,
	}}

	out, err := ClusterEventsToActivities(context.Background(), fc, NewDefaultPrompts(), events)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "Coding", out[0].Title)
	require.ElementsMatch(t, []uuid.UUID{events[0].ID}, out[0].SourceEventIDs)
}

func TestClusterEventsToActivities_EmptyEventsReturnsNil(t *testing.T) {
	out, err := ClusterEventsToActivities(context.Background(), &fakeCollaborator{}, NewDefaultPrompts(), nil)
	require.NoError(t, err)
	require.Nil(t, out)
}
