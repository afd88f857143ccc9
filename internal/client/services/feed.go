package services

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"libapp/internal/client/api"
	"libapp/internal/client/models"
	"libapp/internal/logging"
)

var (
	// ErrFeedNotLoaded is returned by operations that require an initial
	// load to have completed.
	ErrFeedNotLoaded = errors.New("feed not loaded")

	// ErrNoOlderBooks is returned by LoadOlder once the last page was
	// reached.
	ErrNoOlderBooks = errors.New("no older books")

	// ErrLoadInProgress rejects a duplicate call while the same operation
	// kind is already in flight.
	ErrLoadInProgress = errors.New("load already in progress")
)

// Feed owns the in-memory, newest-first page of books for one filter
// (a username, or empty for the global feed) and coordinates the three
// load paths: initial, older, and newer.
//
// Content only changes after a completed server round-trip. Each operation
// kind is single-flight; different kinds may overlap, serialized on the
// feed mutex when they touch content. Ids strictly decrease through
// Content with no duplicates.
type Feed struct {
	client api.Client
	user   string
	log    logging.Logger

	initial singleflight.Group

	mu            sync.Mutex
	loaded        bool
	content       []models.Book
	last          bool
	pendingNew    int64
	olderInFlight  bool
	mergeInFlight  bool
	removeInFlight bool
}

// NewFeed builds a feed for the given filter. user empty means the global
// feed.
func NewFeed(client api.Client, user string, log logging.Logger) *Feed {
	return &Feed{
		client: client,
		user:   user,
		log:    log.With("component", "feed", "filter", user),
	}
}

// User returns the filter this feed is scoped to.
func (f *Feed) User() string {
	return f.user
}

// Loaded reports whether the initial load has completed.
func (f *Feed) Loaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

// Snapshot returns a copy of the current content and the last-page flag.
func (f *Feed) Snapshot() ([]models.Book, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	books := make([]models.Book, len(f.content))
	copy(books, f.content)
	return books, f.last
}

// PendingNew returns the number of newer books known from the last poll
// and not yet merged.
func (f *Feed) PendingNew() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pendingNew
}

func (f *Feed) newestIDLocked() int64 {
	if len(f.content) == 0 {
		return 0
	}
	return f.content[0].ID
}

func (f *Feed) oldestIDLocked() int64 {
	if len(f.content) == 0 {
		return 0
	}
	return f.content[len(f.content)-1].ID
}

// LoadInitial fetches page zero and replaces the content wholesale.
// Concurrent calls for the same feed are coalesced into one request.
func (f *Feed) LoadInitial(ctx context.Context) error {
	_, err, _ := f.initial.Do(f.user, func() (any, error) {
		page, err := f.client.GetBooks(ctx, f.user, 0)
		if err != nil {
			return nil, err
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		f.content = dedupeDescending(page.Content)
		f.last = page.Last
		f.loaded = true
		f.pendingNew = 0
		return nil, nil
	})
	return err
}

// LoadOlder fetches the page strictly older than the current oldest book
// and appends it. Valid only after the initial load and before the last
// page was reached; a call while another LoadOlder is in flight returns
// ErrLoadInProgress.
func (f *Feed) LoadOlder(ctx context.Context) error {
	f.mu.Lock()
	if !f.loaded {
		f.mu.Unlock()
		return ErrFeedNotLoaded
	}
	if f.last {
		f.mu.Unlock()
		return ErrNoOlderBooks
	}
	if f.olderInFlight {
		f.mu.Unlock()
		return ErrLoadInProgress
	}
	f.olderInFlight = true
	oldest := f.oldestIDLocked()
	f.mu.Unlock()

	page, err := f.client.GetBooksBefore(ctx, f.user, oldest)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.olderInFlight = false
	if err != nil {
		return err
	}

	// The oldest id may have moved if a remove completed meanwhile; append
	// only what is genuinely older than the content we hold now.
	boundary := f.oldestIDLocked()
	for _, b := range page.Content {
		if boundary == 0 || b.ID < boundary {
			f.content = append(f.content, b)
			boundary = b.ID
		}
	}
	f.last = page.Last
	return nil
}

// PollNewCount asks the server how many books are newer than the newest
// one currently held, and records the answer as the pending-new count.
// Content is not touched. A cancelled ctx suppresses recording, so a poll
// result never applies after its scheduler was stopped.
func (f *Feed) PollNewCount(ctx context.Context) (int64, error) {
	f.mu.Lock()
	newest := f.newestIDLocked()
	f.mu.Unlock()

	count, err := f.client.CountBooksAfter(ctx, f.user, newest)
	if err != nil {
		return 0, err
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingNew = count
	return count, nil
}

// MergeNewer fetches everything newer than the current newest book,
// prepends it, and zeroes the pending-new count. The merge trusts the
// response over the previously polled count: books created between poll
// and merge are included.
func (f *Feed) MergeNewer(ctx context.Context) error {
	f.mu.Lock()
	if !f.loaded {
		f.mu.Unlock()
		return ErrFeedNotLoaded
	}
	if f.mergeInFlight {
		f.mu.Unlock()
		return ErrLoadInProgress
	}
	f.mergeInFlight = true
	newest := f.newestIDLocked()
	f.mu.Unlock()

	books, err := f.client.GetBooksAfter(ctx, f.user, newest)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.mergeInFlight = false
	if err != nil {
		return err
	}

	boundary := f.newestIDLocked()
	fresh := make([]models.Book, 0, len(books))
	for _, b := range books {
		if b.ID > boundary {
			fresh = append(fresh, b)
		}
	}
	if len(fresh) > 0 {
		f.content = append(fresh, f.content...)
	}
	f.pendingNew = 0
	return nil
}

// Remove deletes a book server-side and, only once the server confirmed,
// drops it from the content. An already-deleted book (404) counts as
// success. On any other failure the content is untouched.
func (f *Feed) Remove(ctx context.Context, id int64) error {
	f.mu.Lock()
	if !f.loaded {
		f.mu.Unlock()
		return ErrFeedNotLoaded
	}
	if f.removeInFlight {
		f.mu.Unlock()
		return ErrLoadInProgress
	}
	f.removeInFlight = true
	f.mu.Unlock()

	err := f.client.DeleteBook(ctx, id)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeInFlight = false
	if err != nil && !errors.Is(err, api.ErrNotFound) {
		return err
	}

	kept := f.content[:0]
	for _, b := range f.content {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	f.content = kept
	return nil
}

// dedupeDescending keeps the first occurrence of each id and drops any
// book that does not strictly decrease the id sequence. Defensive against
// a misbehaving server; a well-formed page passes through unchanged.
func dedupeDescending(books []models.Book) []models.Book {
	out := make([]models.Book, 0, len(books))
	var boundary int64
	for i, b := range books {
		if i == 0 || b.ID < boundary {
			out = append(out, b)
			boundary = b.ID
		}
	}
	return out
}
