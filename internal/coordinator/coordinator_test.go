package coordinator

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/texasoct/idod/internal/app"
	"github.com/texasoct/idod/internal/store"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.InitDBWithPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testSnapshot(t *testing.T) {
	t.Helper()
	s := app.Settings{}
	s.Image.StoragePath = t.TempDir()
	app.SetSnapshot(app.Effective(s))
}

func TestNew_BuildsComponentGraph(t *testing.T) {
	testSnapshot(t)
	db := openTestDB(t)

	c, err := New(db)
	require.NoError(t, err)
	require.NotNil(t, c)
	require.Equal(t, ModeStopped, c.Mode())
	require.False(t, c.IsRunning())
}

func TestStart_NoActiveModelEntersRestrictedMode(t *testing.T) {
	testSnapshot(t)
	db := openTestDB(t)

	c, err := New(db)
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	require.Equal(t, ModeRequiresModel, c.Mode())
	require.NotEmpty(t, c.LastError())
	require.True(t, c.IsRunning())

	c.Stop(true)
	require.False(t, c.IsRunning())
	require.Equal(t, ModeStopped, c.Mode())
}

func TestStart_IsIdempotent(t *testing.T) {
	testSnapshot(t)
	db := openTestDB(t)

	c, err := New(db)
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Start(context.Background()))
	c.Stop(true)
}

func TestStopOnce_OnlyStopsOnce(t *testing.T) {
	testSnapshot(t)
	db := openTestDB(t)

	c, err := New(db)
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		c.StopOnce(true)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("StopOnce did not return")
	}

	c.StopOnce(true) // second call must be a no-op, not a second Stop
	require.False(t, c.IsRunning())
}
