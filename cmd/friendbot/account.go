package main

import (
	"context"
	"fmt"

	"github.com/comigor/friendbot-go/internal/api"
	"github.com/comigor/friendbot-go/internal/session"
	"github.com/comigor/friendbot-go/internal/tui"
)

func (a *app) register(ctx context.Context) error {
	username, err := tui.Prompt("Username", false)
	if err != nil {
		return err
	}
	email, err := tui.Prompt("Email", false)
	if err != nil {
		return err
	}
	password, err := tui.Prompt("Password", true)
	if err != nil {
		return err
	}
	raw, err := tui.Prompt("Friend (neutral/male/female)", false)
	if err != nil {
		return err
	}
	pref := session.PreferenceNeutral
	if raw != "" {
		if pref, err = session.ParsePreference(raw); err != nil {
			return err
		}
	}

	req := api.RegisterRequest{Username: username, Email: email, Password: password, PreferredFriendGender: string(pref)}
	if err := a.client.Register(ctx, req); err != nil {
		return err
	}
	fmt.Println("Registered. Logging you in...")
	return a.authenticate(ctx, username, password)
}

func (a *app) login(ctx context.Context) error {
	username, err := tui.Prompt("Username", false)
	if err != nil {
		return err
	}
	password, err := tui.Prompt("Password", true)
	if err != nil {
		return err
	}
	return a.authenticate(ctx, username, password)
}

func (a *app) authenticate(ctx context.Context, username, password string) error {
	out, err := a.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := a.creds.Save(out.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Printf("Welcome back, %s!\n", out.User.Username)
	return nil
}

func (a *app) logout() error {
	if err := a.creds.Clear(); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	fmt.Println("Logged out. New chats run in guest mode.")
	return nil
}

func (a *app) clear(ctx context.Context) error {
	tok, err := a.token(ctx)
	if err != nil {
		return err
	}
	if err := a.client.ClearHistory(ctx, tok); err != nil {
		return err
	}
	fmt.Println("Chat history cleared.")
	return nil
}
