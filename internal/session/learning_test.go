package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/texasoct/idod/internal/models"
)

type fakeLearningStore struct {
	saved []*models.SessionPreference
}

func (f *fakeLearningStore) SaveSessionPreference(p *models.SessionPreference) error {
	f.saved = append(f.saved, p)
	return nil
}

func TestRecordUserMerge_PersistsMergePattern(t *testing.T) {
	fc := &fakeCollaborator{replies: []string{"merge editor and terminal sessions within 5 minutes"}}
	learn := &fakeLearningStore{}

	pref, err := RecordUserMerge(context.Background(), fc, NewDefaultPrompts(), learn, "merged 'Coding' and 'Debugging'")
	require.NoError(t, err)
	require.Equal(t, models.PreferenceMergePattern, pref.Kind)
	require.Equal(t, models.InitialConfidence, pref.Confidence)
	require.Equal(t, 1, pref.TimesObserved)
	require.Len(t, learn.saved, 1)
}

func TestRecordUserSplit_PersistsSplitPattern(t *testing.T) {
	fc := &fakeCollaborator{replies: []string{"split long meetings from focused work"}}
	learn := &fakeLearningStore{}

	pref, err := RecordUserSplit(context.Background(), fc, NewDefaultPrompts(), learn, "split 'Afternoon work' into two")
	require.NoError(t, err)
	require.Equal(t, models.PreferenceSplitPattern, pref.Kind)
	require.Len(t, learn.saved, 1)
}
