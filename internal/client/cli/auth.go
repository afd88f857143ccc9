package cli

import (
	"context"
	"errors"
	"fmt"

	"libapp/internal/client/api"
	"libapp/internal/common"
)

// printError renders an error for the user, expanding field-level
// validation messages.
func (a *App) printError(err error) {
	var ve *api.ValidationError
	switch {
	case errors.As(err, &ve):
		fmt.Fprintln(a.out, ve.Message)
		for field, msg := range ve.Errors {
			fmt.Fprintf(a.out, "  %s: %s\n", field, msg)
		}
	case errors.Is(err, api.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	case errors.Is(err, api.ErrUnauthorized):
		fmt.Fprintln(a.out, "Invalid credentials")
	default:
		fmt.Fprintf(a.out, "Error: %s\n", err.Error())
	}
}

func (a *App) Register(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	repeat, err := GetPassword(a.out, "Repeat password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(repeat)

	if err := a.session.Register(ctx, username, string(password), string(repeat)); err != nil {
		a.printError(err)
		return err
	}

	fmt.Fprintln(a.out, "Registered, you can log in now")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.session.Login(ctx, username, string(password))
	if err != nil {
		a.printError(err)
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", sess.DisplayName)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
