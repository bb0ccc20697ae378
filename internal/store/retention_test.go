package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/texasoct/idod/internal/models"
)

func TestDeleteOldData(t *testing.T) {
	db := openTestDB(t)

	cutoff := time.Now().Add(-30 * 24 * time.Hour)

	oldAction := &models.Action{ID: uuid.New(), Title: "old", Timestamp: cutoff.Add(-time.Hour)}
	newAction := &models.Action{ID: uuid.New(), Title: "new", Timestamp: cutoff.Add(time.Hour)}
	require.NoError(t, SaveAction(db, oldAction))
	require.NoError(t, SaveAction(db, newAction))

	oldEvent := &models.Event{ID: uuid.New(), Title: "old", StartTime: cutoff.Add(-time.Hour), EndTime: cutoff.Add(-time.Hour)}
	newEvent := &models.Event{ID: uuid.New(), Title: "new", StartTime: cutoff.Add(time.Hour), EndTime: cutoff.Add(time.Hour)}
	require.NoError(t, SaveEvent(db, oldEvent))
	require.NoError(t, SaveEvent(db, newEvent))

	oldActivity := &models.Activity{ID: uuid.New(), Title: "old", StartTime: cutoff.Add(-2 * time.Hour), EndTime: cutoff.Add(-time.Hour)}
	require.NoError(t, SaveActivity(db, oldActivity))

	oldDiary := &models.Diary{ID: uuid.NewString(), Date: "2020-01-01", Content: "ancient"}
	require.NoError(t, SaveDiary(db, oldDiary))

	counts, err := DeleteOldData(db, cutoff.Format(timeLayout), "2025-01-01")
	require.NoError(t, err)
	require.EqualValues(t, 1, counts["events"])
	require.EqualValues(t, 1, counts["actions"])
	require.EqualValues(t, 1, counts["activities"])
	require.EqualValues(t, 1, counts["diaries"])

	// Hard-deleted: gone entirely.
	_, err = GetEvent(db, oldEvent.ID)
	require.ErrorIs(t, err, sql.ErrNoRows)

	// Soft-deleted: still fetchable, but flagged.
	gotAction, err := GetAction(db, oldAction.ID)
	require.NoError(t, err)
	require.True(t, gotAction.Deleted)

	gotNewAction, err := GetAction(db, newAction.ID)
	require.NoError(t, err)
	require.False(t, gotNewAction.Deleted)

	// Running again is idempotent: no further rows transition 0 -> 1.
	counts2, err := DeleteOldData(db, cutoff.Format(timeLayout), "2025-01-01")
	require.NoError(t, err)
	require.EqualValues(t, 0, counts2["actions"])
}
