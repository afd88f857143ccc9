// Package cli implements the terminal front end of the libapp client:
// a REPL driving authentication, feed browsing, and book submission.
// It is view glue; all state lives in the services layer.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	_ "modernc.org/sqlite"

	"libapp/internal/client/api"
	"libapp/internal/client/config"
	"libapp/internal/client/services"
	"libapp/internal/logging"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	client  api.Client
	session *services.SessionStore
	books   *services.BookService

	// feed and poller track the currently open feed view, nil when none.
	feed   *services.Feed
	poller *services.Poller

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := services.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("initializing local database: %w", err)
	}

	client := api.NewHTTPClient(c.ServerEndpointAddr)
	session := services.NewSessionStore(client, db, c.StoragePassphrase, log)
	books := services.NewBookService(client, log)

	return &App{
		config:  c,
		log:     log,
		db:      db,
		client:  client,
		session: session,
		books:   books,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run restores the persisted session and enters the REPL. Returns when
// the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.session.Initialize(ctx)
	if sess := a.session.Current(); sess.IsLoggedIn {
		fmt.Fprintf(a.out, "Welcome back, %s\n", sess.DisplayName)
	}

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

func (a *App) Close() {
	a.closeFeed()
	_ = a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.Current().IsLoggedIn
}

// status builds the prompt: username, feed filter, and the pending-new
// count of the open feed.
func (a *App) status() string {
	s := "anonymous"
	if sess := a.session.Current(); sess.IsLoggedIn {
		s = sess.Username
	}
	if a.feed != nil {
		filter := a.feed.User()
		if filter == "" {
			filter = "all"
		}
		s += " | feed:" + filter
		if n := a.feed.PendingNew(); n > 0 {
			s += fmt.Sprintf(" (%d new)", n)
		}
	}
	return s
}

// closeFeed tears the current feed view down. The poller is stopped
// synchronously before the feed is dropped, so no stale tick can land.
func (a *App) closeFeed() {
	if a.poller != nil {
		a.poller.Stop()
		a.poller = nil
	}
	a.feed = nil
}
