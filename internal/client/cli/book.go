package cli

import (
	"context"
	"fmt"
)

// Post submits a new book: content plus an optional local attachment file.
func (a *App) Post(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Log in first")
		return nil
	}

	content, err := GetSimpleText(a.reader, "Book content", a.out)
	if err != nil {
		return err
	}
	attachment, err := GetSimpleText(a.reader, "Attachment file (empty for none)", a.out)
	if err != nil {
		return err
	}

	book, err := a.books.Submit(ctx, content, attachment)
	if err != nil {
		a.printError(err)
		return err
	}

	fmt.Fprintf(a.out, "Posted book #%d\n", book.ID)
	return nil
}
