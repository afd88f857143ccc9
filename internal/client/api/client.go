// Package api implements the request gateway: the HTTP client for the
// libapp backend. It attaches the configured credential header to every
// request, tracks per-operation in-flight state, and maps transport and
// HTTP failures into the client error taxonomy.
package api

import (
	"context"

	"libapp/internal/client/models"
)

// Client is the remote API surface the rest of the client depends on.
// The concrete implementation is HTTPClient; tests substitute fakes.
type Client interface {
	// Login exchanges credentials for the authenticated identity and token.
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)

	// Register creates a new account. Field-level validation failures are
	// returned as *ValidationError.
	Register(ctx context.Context, username, password, passwordRepeat string) error

	// UpdateUser updates profile fields of the given user.
	UpdateUser(ctx context.Context, username string, update models.UserUpdate) (*models.User, error)

	// GetBooks fetches one page of the feed, newest-first. user narrows the
	// feed to a single author; empty means the global feed.
	GetBooks(ctx context.Context, user string, page int) (*models.BookPage, error)

	// GetBooksBefore fetches the page of books strictly older than id.
	GetBooksBefore(ctx context.Context, user string, id int64) (*models.BookPage, error)

	// GetBooksAfter fetches all books strictly newer than id, newest-first.
	GetBooksAfter(ctx context.Context, user string, id int64) ([]models.Book, error)

	// CountBooksAfter returns how many books are strictly newer than id,
	// without fetching them.
	CountBooksAfter(ctx context.Context, user string, id int64) (int64, error)

	// SubmitBook creates a new book.
	SubmitBook(ctx context.Context, submission models.BookSubmission) (*models.Book, error)

	// UploadAttachment stores a binary attachment and returns its reference.
	UploadAttachment(ctx context.Context, name string, data []byte) (*models.Attachment, error)

	// DeleteBook removes the book with the given id.
	DeleteBook(ctx context.Context, id int64) error

	// SetCredential configures the Authorization header value attached to
	// every subsequent request. An empty value removes the header.
	SetCredential(value string)

	// SetUnauthorizedHandler registers a callback invoked when an
	// authenticated request is rejected with a 401-class status.
	SetUnauthorizedHandler(fn func())

	// Progress exposes the per-operation in-flight tracker.
	Progress() *Progress
}
