package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libapp/internal/client/api"
	"libapp/internal/client/models"
)

func ids(books []models.Book) []int64 {
	out := make([]int64, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

func books(idList ...int64) []models.Book {
	out := make([]models.Book, len(idList))
	for i, id := range idList {
		out[i] = models.Book{ID: id, Content: "book"}
	}
	return out
}

func TestFeed_LoadInitialThenOlder(t *testing.T) {
	c := newFakeClient()
	c.page = &models.BookPage{Content: books(10, 9), Last: false, Number: 0}
	f := NewFeed(c, "", testLogger())
	ctx := context.Background()

	require.False(t, f.Loaded())
	require.NoError(t, f.LoadInitial(ctx))
	require.True(t, f.Loaded())

	content, last := f.Snapshot()
	assert.Equal(t, []int64{10, 9}, ids(content))
	assert.False(t, last)

	c.before = &models.BookPage{Content: books(8), Last: true}
	require.NoError(t, f.LoadOlder(ctx))

	content, last = f.Snapshot()
	assert.Equal(t, []int64{10, 9, 8}, ids(content))
	assert.True(t, last)

	// last page reached
	require.ErrorIs(t, f.LoadOlder(ctx), ErrNoOlderBooks)
}

func TestFeed_LoadOlderRequiresLoad(t *testing.T) {
	f := NewFeed(newFakeClient(), "", testLogger())
	require.ErrorIs(t, f.LoadOlder(context.Background()), ErrFeedNotLoaded)
	require.ErrorIs(t, f.MergeNewer(context.Background()), ErrFeedNotLoaded)
	require.ErrorIs(t, f.Remove(context.Background(), 1), ErrFeedNotLoaded)
}

func TestFeed_LoadInitialCoalesced(t *testing.T) {
	c := newFakeClient()
	c.page = &models.BookPage{Content: books(5, 4), Last: true}
	c.pageEntered = make(chan struct{}, 2)
	c.pageBlock = make(chan struct{})
	f := NewFeed(c, "", testLogger())

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.LoadInitial(context.Background())
		}()
	}

	<-c.pageEntered                   // first call reached the server
	time.Sleep(50 * time.Millisecond) // let the second caller join the flight
	close(c.pageBlock)
	wg.Wait()

	c.mu.Lock()
	calls := c.pageCalls
	c.mu.Unlock()
	assert.Equal(t, 1, calls, "duplicate initial loads must be coalesced")

	content, _ := f.Snapshot()
	assert.Equal(t, []int64{5, 4}, ids(content))
}

func TestFeed_LoadOlderSingleFlight(t *testing.T) {
	c := newFakeClient()
	c.page = &models.BookPage{Content: books(10), Last: false}
	f := NewFeed(c, "", testLogger())
	require.NoError(t, f.LoadInitial(context.Background()))

	// Simulate an in-flight older load by toggling the guard the way the
	// operation itself does.
	f.mu.Lock()
	f.olderInFlight = true
	f.mu.Unlock()

	require.ErrorIs(t, f.LoadOlder(context.Background()), ErrLoadInProgress)
}

func TestFeed_LoadOlderIdempotentOnEmptyPage(t *testing.T) {
	c := newFakeClient()
	c.page = &models.BookPage{Content: books(10, 9), Last: false}
	f := NewFeed(c, "", testLogger())
	ctx := context.Background()
	require.NoError(t, f.LoadInitial(ctx))

	c.before = &models.BookPage{Content: nil, Last: true}
	require.NoError(t, f.LoadOlder(ctx))

	content, last := f.Snapshot()
	assert.Equal(t, []int64{10, 9}, ids(content), "content unchanged")
	assert.True(t, last, "last flag adopted")
}

func TestFeed_LoadOlderDropsDuplicates(t *testing.T) {
	c := newFakeClient()
	c.page = &models.BookPage{Content: books(10, 9), Last: false}
	f := NewFeed(c, "", testLogger())
	ctx := context.Background()
	require.NoError(t, f.LoadInitial(ctx))

	// server resends the current oldest alongside genuinely older books
	c.before = &models.BookPage{Content: books(9, 8, 7), Last: true}
	require.NoError(t, f.LoadOlder(ctx))

	content, _ := f.Snapshot()
	assert.Equal(t, []int64{10, 9, 8, 7}, ids(content))
}

func TestFeed_MergeNewerUsesServerResponse(t *testing.T) {
	c := newFakeClient()
	c.page = &models.BookPage{Content: books(10, 9), Last: true}
	f := NewFeed(c, "", testLogger())
	ctx := context.Background()
	require.NoError(t, f.LoadInitial(ctx))

	// poll saw two new books
	c.count = 2
	n, err := f.PollNewCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, int64(2), f.PendingNew())

	// a third arrived before the merge; the merge takes everything
	c.after = books(13, 12, 11)
	require.NoError(t, f.MergeNewer(ctx))

	content, _ := f.Snapshot()
	assert.Equal(t, []int64{13, 12, 11, 10, 9}, ids(content))
	assert.Equal(t, int64(0), f.PendingNew(), "pending count reset by merge")
}

func TestFeed_MergeNewerIdempotent(t *testing.T) {
	c := newFakeClient()
	c.page = &models.BookPage{Content: books(10, 9), Last: true}
	f := NewFeed(c, "", testLogger())
	ctx := context.Background()
	require.NoError(t, f.LoadInitial(ctx))

	c.after = nil
	require.NoError(t, f.MergeNewer(ctx))
	require.NoError(t, f.MergeNewer(ctx))

	content, _ := f.Snapshot()
	assert.Equal(t, []int64{10, 9}, ids(content))
	assert.Equal(t, int64(0), f.PendingNew())
}

func TestFeed_PollTracksNewestID(t *testing.T) {
	c := newFakeClient()
	c.page = &models.BookPage{Content: books(10, 9), Last: true}
	f := NewFeed(c, "", testLogger())
	ctx := context.Background()
	require.NoError(t, f.LoadInitial(ctx))

	_, err := f.PollNewCount(ctx)
	require.NoError(t, err)

	c.after = books(12, 11)
	require.NoError(t, f.MergeNewer(ctx))

	_, err = f.PollNewCount(ctx)
	require.NoError(t, err)

	assert.Equal(t, []int64{10, 12}, c.counted(), "poll must follow the newest id across merges")
}

func TestFeed_RemoveConfirmedDelete(t *testing.T) {
	c := newFakeClient()
	c.page = &models.BookPage{Content: books(10, 9, 8), Last: true}
	f := NewFeed(c, "", testLogger())
	ctx := context.Background()
	require.NoError(t, f.LoadInitial(ctx))

	require.NoError(t, f.Remove(ctx, 9))
	content, _ := f.Snapshot()
	assert.Equal(t, []int64{10, 8}, ids(content))
}

func TestFeed_RemoveFailureLeavesContent(t *testing.T) {
	c := newFakeClient()
	c.page = &models.BookPage{Content: books(10, 9), Last: true}
	f := NewFeed(c, "", testLogger())
	ctx := context.Background()
	require.NoError(t, f.LoadInitial(ctx))

	wantErr := errors.New("boom")
	c.deleteErr = wantErr
	err := f.Remove(ctx, 9)
	require.ErrorIs(t, err, wantErr)

	content, _ := f.Snapshot()
	assert.Equal(t, []int64{10, 9}, ids(content), "content untouched on failure")
}

func TestFeed_RemoveNotFoundIsSuccess(t *testing.T) {
	c := newFakeClient()
	c.page = &models.BookPage{Content: books(10, 9), Last: true}
	f := NewFeed(c, "", testLogger())
	ctx := context.Background()
	require.NoError(t, f.LoadInitial(ctx))

	c.deleteErr = api.ErrNotFound
	require.NoError(t, f.Remove(ctx, 9), "deleting an already-deleted book is success-equivalent")

	content, _ := f.Snapshot()
	assert.Equal(t, []int64{10}, ids(content))
}

func TestFeed_StrictlyDescendingAfterSequence(t *testing.T) {
	c := newFakeClient()
	c.page = &models.BookPage{Content: books(20, 18, 15), Last: false}
	f := NewFeed(c, "", testLogger())
	ctx := context.Background()
	require.NoError(t, f.LoadInitial(ctx))

	c.before = &models.BookPage{Content: books(14, 12), Last: false}
	require.NoError(t, f.LoadOlder(ctx))
	c.before = &models.BookPage{Content: books(11), Last: true}
	require.NoError(t, f.LoadOlder(ctx))

	content, last := f.Snapshot()
	require.True(t, last)

	got := ids(content)
	seen := map[int64]bool{}
	for i, id := range got {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
		if i > 0 {
			assert.Less(t, id, got[i-1], "ids must strictly decrease")
		}
	}
}
