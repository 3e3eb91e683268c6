package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/api"
)

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, username and password and creates an account.
func (a *App) Register(ctx context.Context) error {
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
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	user, err := a.client.Register(ctx, email, username, password)
	if err != nil {
		fmt.Fprintln(a.out, "Registration failed:", err)
		return err
	}

	fmt.Fprintf(a.out, "%s (id=%s)\n", api.MessageAccountCreated, user.ID)
	return nil
}

// Login prompts for email and password and keeps the issued token.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	tok, err := a.client.Login(ctx, email, password)
	if err != nil {
		fmt.Fprintln(a.out, "Login failed:", err)
		return err
	}

	a.userEmail = email
	fmt.Fprintf(a.out, "Logged in, token valid for %s\n", time.Duration(tok.ExpiresIn)*time.Second)
	return nil
}

// Me prints the identity behind the current token.
func (a *App) Me(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	user, err := a.client.Me(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}

	fmt.Fprintf(a.out, "id:       %s\nemail:    %s\nusername: %s\ncreated:  %s\n",
		user.ID, user.Email, user.Username, user.CreatedAt.Format(time.RFC3339))
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		fmt.Fprintln(a.out, "Server unavailable:", err)
		return err
	}
	fmt.Fprintln(a.out, "Server is up")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.client.Logout()
	a.userEmail = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
