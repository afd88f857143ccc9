package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"libapp/internal/client/models"
	"libapp/internal/client/services"
)

// OpenFeed loads page zero of the feed for the given user (empty for the
// global feed), replacing any previously open feed view, and starts the
// background poll for new books.
func (a *App) OpenFeed(ctx context.Context, user string) error {
	a.closeFeed()

	feed := services.NewFeed(a.client, user, a.log)
	if err := feed.LoadInitial(ctx); err != nil {
		a.printError(err)
		return err
	}

	a.feed = feed
	a.poller = services.NewPoller(feed, a.config.PollInterval, a.log)
	a.poller.Start(ctx)

	a.printFeed()
	return nil
}

// Show reprints the currently loaded feed.
func (a *App) Show(ctx context.Context) error {
	if a.feed == nil {
		fmt.Fprintln(a.out, "No feed open, use: feed [user]")
		return nil
	}
	a.printFeed()
	return nil
}

// Older appends the next older page of the open feed.
func (a *App) Older(ctx context.Context) error {
	if a.feed == nil {
		fmt.Fprintln(a.out, "No feed open, use: feed [user]")
		return nil
	}

	err := a.feed.LoadOlder(ctx)
	switch {
	case errors.Is(err, services.ErrNoOlderBooks):
		fmt.Fprintln(a.out, "No older books")
		return nil
	case errors.Is(err, services.ErrLoadInProgress):
		fmt.Fprintln(a.out, "Already loading")
		return nil
	case err != nil:
		a.printError(err)
		return err
	}

	a.printFeed()
	return nil
}

// MergeNew prepends whatever newer books the server has.
func (a *App) MergeNew(ctx context.Context) error {
	if a.feed == nil {
		fmt.Fprintln(a.out, "No feed open, use: feed [user]")
		return nil
	}

	err := a.feed.MergeNewer(ctx)
	switch {
	case errors.Is(err, services.ErrLoadInProgress):
		fmt.Fprintln(a.out, "Already loading")
		return nil
	case err != nil:
		a.printError(err)
		return err
	}

	a.printFeed()
	return nil
}

// Delete removes a book after an explicit confirmation.
func (a *App) Delete(ctx context.Context, arg string) error {
	if a.feed == nil {
		fmt.Fprintln(a.out, "No feed open, use: feed [user]")
		return nil
	}

	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: delete <id>")
		return nil
	}

	confirm, err := GetSimpleText(a.reader, fmt.Sprintf("Delete book %d? (y/n)", id), a.out)
	if err != nil {
		return err
	}
	if confirm != "y" && confirm != "yes" {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.feed.Remove(ctx, id); err != nil {
		a.printError(err)
		return err
	}

	fmt.Fprintln(a.out, "Deleted")
	return nil
}

func (a *App) printFeed() {
	content, last := a.feed.Snapshot()
	if len(content) == 0 {
		fmt.Fprintln(a.out, "There are no books")
		return
	}
	for _, b := range content {
		a.printBook(b)
	}
	if !last {
		fmt.Fprintln(a.out, "-- type 'older' for older books --")
	}
}

func (a *App) printBook(b models.Book) {
	fmt.Fprintf(a.out, "#%d %s (@%s) %s\n", b.ID, b.User.DisplayName, b.User.Username,
		b.Timestamp.Format("2006-01-02 15:04"))
	fmt.Fprintf(a.out, "    %s\n", b.Content)
	if b.Attachment != nil {
		fmt.Fprintf(a.out, "    [attachment %d: %s]\n", b.Attachment.ID, b.Attachment.Name)
	}
}
