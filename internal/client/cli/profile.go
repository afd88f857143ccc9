package cli

import (
	"context"
	"fmt"

	"libapp/internal/client/models"
)

// Profile updates the display name and image of the current user.
func (a *App) Profile(ctx context.Context) error {
	sess := a.session.Current()
	if !sess.IsLoggedIn {
		fmt.Fprintln(a.out, "Log in first")
		return nil
	}

	fmt.Fprintf(a.out, "Display name: %s\n", sess.DisplayName)
	displayName, err := GetSimpleText(a.reader, "New display name (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if displayName == "" {
		displayName = sess.DisplayName
	}
	image, err := GetSimpleText(a.reader, "New image (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if image == "" {
		image = sess.Image
	}

	updated, err := a.session.UpdateProfile(ctx, models.UserUpdate{DisplayName: displayName, Image: image})
	if err != nil {
		a.printError(err)
		return err
	}

	fmt.Fprintf(a.out, "Profile updated: %s\n", updated.DisplayName)
	return nil
}
