package pipeline

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/texasoct/idod/internal/filter"
	"github.com/texasoct/idod/internal/imaging"
	"github.com/texasoct/idod/internal/llm"
	"github.com/texasoct/idod/internal/models"
	"github.com/texasoct/idod/internal/store"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.InitDBWithPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testProcessor() *imaging.Processor {
	return imaging.NewProcessor(imaging.ProcessorConfig{MaxImagesPerEvent: 100})
}

func TestPipeline_FinalizeSegmentPersistsActionAndImages(t *testing.T) {
	db := openTestDB(t)
	collab := func() (llm.Collaborator, error) {
		return fakeCollaborator{reply: `{"title": "Wrote code", "description": "Edited a file", "keywords": ["editing"]}`}, nil
	}

	p := New(db, filter.New(0), testProcessor(), nil, collab)

	now := time.Now()
	segment := []filter.MergedRecord{
		{Kind: models.KindScreenshot, StartTime: now, EndTime: now, ImageBytes: []byte("frame-1"), ImagePath: "hash-1"},
		{Kind: models.KindScreenshot, StartTime: now.Add(time.Second), EndTime: now.Add(time.Second), ImageBytes: []byte("frame-2"), ImagePath: "hash-2"},
		{Kind: models.KindScreenshot, StartTime: now.Add(2 * time.Second), EndTime: now.Add(2 * time.Second), ImageBytes: []byte("frame-1"), ImagePath: "hash-1"},
	}

	p.finalizeSegment(context.Background(), segment)

	hashes, err := store.GetAllReferencedImageHashes(db)
	require.NoError(t, err)
	require.Len(t, hashes, 2)
	require.True(t, hashes["hash-1"])
	require.True(t, hashes["hash-2"])
}

func TestPipeline_ForceFinalizeActivityFlushesPendingTail(t *testing.T) {
	db := openTestDB(t)
	collab := func() (llm.Collaborator, error) {
		return fakeCollaborator{reply: `{"title": "Browsed docs", "description": "Read API reference"}`}, nil
	}

	p := New(db, filter.New(0), testProcessor(), nil, collab)
	p.pending = []filter.MergedRecord{
		{Kind: models.KindKeyboard, StartTime: time.Now(), EndTime: time.Now(), Action: "sequence", Count: 5},
	}

	p.ForceFinalizeActivity(context.Background())
	require.Empty(t, p.pending)
}

func TestDistinctImageHashes_DedupesByHash(t *testing.T) {
	segment := []filter.MergedRecord{
		{Kind: models.KindScreenshot, ImageBytes: []byte("a"), ImagePath: "h1"},
		{Kind: models.KindScreenshot, ImageBytes: []byte("a"), ImagePath: "h1"},
		{Kind: models.KindKeyboard},
	}
	hashes := distinctImageHashes(segment)
	require.Equal(t, []string{"h1"}, hashes)
}
