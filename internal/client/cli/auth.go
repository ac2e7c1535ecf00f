package cli

import (
	"bytes"
	"context"

	"github.com/mkalvans/cvadvisor/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for account details and creates the account through the
// session store. Passwords are read twice; a mismatch aborts locally before
// any network traffic. Successful registration does not log the user in.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter your email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Choose a password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := getPassword("Confirm the password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	if !bytes.Equal(password, confirmation) {
		a.println("Passwords do not match. Nothing was sent.")
		return nil
	}

	res := a.session.Register(ctx, username, password, email)
	if !res.OK {
		a.printf("Registration failed: %s\n", res.Err)
		return nil
	}

	a.println("Account created! Use 'login' to sign in.")
	return nil
}

// Login prompts for credentials and authenticates via the session store.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter your username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter your password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.session.Login(ctx, username, password)
	if !res.OK {
		a.printf("Login failed: %s\n", res.Err)
		return nil
	}

	a.printf("Welcome, %s!\n", username)
	return nil
}

// Logout clears the session. Safe to call when already logged out.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		a.printf("Logout problem: %s\n", err.Error())
		return err
	}
	a.println("Logged out.")
	return nil
}

// Whoami prints the current session state.
func (a *App) Whoami(_ context.Context) error {
	snap := a.session.Current()
	if !snap.Authenticated || snap.User == nil {
		a.println("Not logged in.")
		return nil
	}
	a.printf("Logged in as %s\n", snap.User.Username)
	return nil
}
