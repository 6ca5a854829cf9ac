package chromem_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/meetingmind/contextd/internal/meeting"
	"github.com/meetingmind/contextd/internal/meeting/embedder/mock"
	chromemstore "github.com/meetingmind/contextd/internal/meeting/store/chromem"
)

func newTestStore(t *testing.T) *chromemstore.Store {
	t.Helper()

	store, err := chromemstore.New(t.TempDir(), mock.New())
	gt.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRecord(i int, text string) *meeting.Record {
	now := time.Date(2025, 1, 1, 0, 0, i, 0, time.UTC)
	hash := meeting.ContentHash(text)
	id := meeting.NewMeetingID(now, hash)
	return meeting.NewRecord(id, "u1", text, []meeting.Category{meeting.CategoryOther}, now)
}

func TestAddAndGetAll(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rec1 := testRecord(1, "first meeting about the api endpoint")
	rec2 := testRecord(2, "second meeting about the security audit")
	gt.NoError(t, store.Add(ctx, "u1", rec1))
	gt.NoError(t, store.Add(ctx, "u1", rec2))

	records, err := store.GetAll(ctx, "u1")
	gt.NoError(t, err)
	gt.Equal(t, len(records), 2)

	byID := map[string]*meeting.Record{}
	for _, rec := range records {
		byID[rec.ID] = rec
	}
	gt.Equal(t, byID[rec1.ID].Document, rec1.Document)
	gt.Equal(t, byID[rec2.ID].Metadata, rec2.Metadata)
}

func TestQueryRanksBySimilarity(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	related := testRecord(1, "api endpoint rest integration discussion")
	unrelated := testRecord(2, "gardening tulips and soil quality")
	gt.NoError(t, store.Add(ctx, "u1", related))
	gt.NoError(t, store.Add(ctx, "u1", unrelated))

	results, err := store.Query(ctx, "u1", "rest api endpoint follow-up", 2)
	gt.NoError(t, err)
	gt.Equal(t, len(results), 2)
	gt.Equal(t, results[0].Record.ID, related.ID)
	gt.True(t, results[0].Distance < results[1].Distance)
}

func TestQueryClampsTopN(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	gt.NoError(t, store.Add(ctx, "u1", testRecord(1, "the only meeting")))

	// Asking for more results than stored must not fail.
	results, err := store.Query(ctx, "u1", "meeting", 10)
	gt.NoError(t, err)
	gt.Equal(t, len(results), 1)
}

func TestQueryEmptyCollection(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	results, err := store.Query(ctx, "nobody", "anything", 3)
	gt.NoError(t, err)
	gt.Equal(t, len(results), 0)
}

func TestDeleteReportsExistence(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rec := testRecord(1, "meeting to delete")
	gt.NoError(t, store.Add(ctx, "u1", rec))

	found, err := store.Delete(ctx, "u1", rec.ID)
	gt.NoError(t, err)
	gt.True(t, found)

	found, err = store.Delete(ctx, "u1", rec.ID)
	gt.NoError(t, err)
	gt.False(t, found)

	n, err := store.Count(ctx, "u1")
	gt.NoError(t, err)
	gt.Equal(t, n, 0)
}

func TestCountPerUser(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		gt.NoError(t, store.Add(ctx, "u1", testRecord(i, fmt.Sprintf("meeting number %d", i))))
	}
	gt.NoError(t, store.Add(ctx, "u2", testRecord(9, "someone else's meeting")))

	n, err := store.Count(ctx, "u1")
	gt.NoError(t, err)
	gt.Equal(t, n, 3)

	n, err = store.Count(ctx, "u2")
	gt.NoError(t, err)
	gt.Equal(t, n, 1)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := chromemstore.New(dir, mock.New())
	gt.NoError(t, err)

	rec := testRecord(1, "a meeting that must survive a restart")
	gt.NoError(t, store.Add(ctx, "u1", rec))
	gt.NoError(t, store.Close())

	reopened, err := chromemstore.New(dir, mock.New())
	gt.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.GetAll(ctx, "u1")
	gt.NoError(t, err)
	gt.Equal(t, len(records), 1)
	gt.Equal(t, records[0].ID, rec.ID)

	results, err := reopened.Query(ctx, "u1", "survive a restart", 1)
	gt.NoError(t, err)
	gt.Equal(t, len(results), 1)
	gt.Equal(t, results[0].Record.ID, rec.ID)
}
