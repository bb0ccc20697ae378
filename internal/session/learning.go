package session

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/texasoct/idod/internal/llm"
	"github.com/texasoct/idod/internal/models"
	"github.com/texasoct/idod/internal/store"
)

// LearningStore is the subset of internal/store the learning path needs, so
// tests can substitute a fake without a real *sql.DB.
type LearningStore interface {
	SaveSessionPreference(p *models.SessionPreference) error
}

type dbLearningStore struct{ db *sql.DB }

// NewLearningStore adapts a *sql.DB to LearningStore.
func NewLearningStore(db *sql.DB) LearningStore { return dbLearningStore{db: db} }

func (s dbLearningStore) SaveSessionPreference(p *models.SessionPreference) error {
	return store.SaveSessionPreference(s.db, p)
}

// RecordUserMerge implements §4.6.4: when a user manually merges activities,
// the collaborator is asked to state the general rule this implies, and the
// rule is persisted as a new SessionPreference of kind merge_pattern.
func RecordUserMerge(ctx context.Context, collab llm.Collaborator, prompt PromptBuilder, learn LearningStore, detail string) (*models.SessionPreference, error) {
	return recordPattern(ctx, collab, prompt, learn, models.PreferenceMergePattern, detail)
}

// RecordUserSplit is the split_pattern counterpart of RecordUserMerge.
func RecordUserSplit(ctx context.Context, collab llm.Collaborator, prompt PromptBuilder, learn LearningStore, detail string) (*models.SessionPreference, error) {
	return recordPattern(ctx, collab, prompt, learn, models.PreferenceSplitPattern, detail)
}

func recordPattern(ctx context.Context, collab llm.Collaborator, prompt PromptBuilder, learn LearningStore, kind models.PreferenceKind, detail string) (*models.SessionPreference, error) {
	reply, err := collab.ChatCompletion(ctx, prompt.PatternExtractionPrompt(kind, detail))
	if err != nil {
		return nil, fmt.Errorf("session: pattern extraction call failed: %w", err)
	}

	now := time.Now().UTC()
	pref := &models.SessionPreference{
		ID:            uuid.New(),
		Kind:          kind,
		Description:   strings.TrimSpace(reply),
		Confidence:    models.InitialConfidence,
		TimesObserved: 1,
		LastObserved:  now,
		CreatedAt:     now,
	}

	if err := learn.SaveSessionPreference(pref); err != nil {
		return nil, fmt.Errorf("session: saving learned preference: %w", err)
	}
	return pref, nil
}
