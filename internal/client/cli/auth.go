package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for email, username and password and creates an account.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	err = a.authService.Signup(ctx, email, username, password)
	if errors.Is(err, common.ErrorAlreadyExists) {
		fmt.Fprintln(a.out, "An account with this email already exists.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account created. You can login now.")
	return nil
}

// Login prompts for credentials, stores the issued token and opens the
// diary on today.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	err = a.authService.Login(ctx, username, password)
	if errors.Is(err, common.ErrorUnauthorized) {
		a.log.Info(ctx, "login rejected", "username", username)
		fmt.Fprintln(a.out, "Incorrect username or password.")
		return nil
	}
	if err != nil {
		return err
	}

	a.log.Info(ctx, "logged in", "username", username)
	a.setMode(ctx, ModeOnline)
	fmt.Fprintf(a.out, "Welcome, %s!\n", username)

	a.resetController()
	a.startSession(ctx)
	return nil
}

// Logout forgets the credential and every cached entry.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.resetController()
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
