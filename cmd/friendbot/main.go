package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/comigor/friendbot-go/internal/chatclient"
	"github.com/comigor/friendbot-go/internal/config"
	"github.com/comigor/friendbot-go/internal/conversation"
	"github.com/comigor/friendbot-go/internal/credential"
	"github.com/comigor/friendbot-go/internal/logger"
	"github.com/comigor/friendbot-go/internal/persona"
	"github.com/comigor/friendbot-go/internal/session"
	"github.com/comigor/friendbot-go/internal/tui"
)

const usage = `friendbot - talk to your AI friend

Usage:
  friendbot [chat] [--guest]
  friendbot register
  friendbot login
  friendbot logout
  friendbot clear
  friendbot journal list [--page N] | add --title T --content C | search QUERY | rm ID
`

// app bundles what every subcommand needs.
type app struct {
	cfg    *config.Config
	creds  *credential.File
	client *chatclient.Client
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Log.Level)
	closeLog := setupLogOutput(cfg.Log.File)
	defer closeLog()

	creds, err := credential.NewFile(cfg.Client.TokenPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	a := &app{
		cfg:    cfg,
		creds:  creds,
		client: chatclient.New(cfg.Client.APIURL, &http.Client{}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd, args := "chat", os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "chat":
		err = a.chat(ctx, args)
	case "register":
		err = a.register(ctx)
	case "login":
		err = a.login(ctx)
	case "logout":
		err = a.logout()
	case "clear":
		err = a.clear(ctx)
	case "journal":
		err = a.journal(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

// setupLogOutput keeps JSON log lines off the terminal: they go to path, or nowhere.
func setupLogOutput(path string) func() {
	if path == "" {
		logger.Discard()
		return func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open log file %s: %v\n", path, err)
		logger.Discard()
		return func() {}
	}
	logger.SetOutput(f)
	return func() { f.Close() }
}

func (a *app) chat(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("chat", pflag.ContinueOnError)
	guest := fs.Bool("guest", false, "chat offline even when logged in")
	if err := fs.Parse(args); err != nil {
		return err
	}

	identity := conversation.IdentityOf(ctx, a.creds)
	if *guest {
		identity = session.IdentityGuest
	}
	queue := conversation.NewQueue()
	ctrl := conversation.New(identity, conversation.Deps{
		Credentials:  a.creds,
		Remote:       a.client,
		Persona:      persona.New(nil),
		OfflineDelay: a.cfg.Client.OfflineDelay,
	}, queue, conversation.WithTimeout(a.cfg.Client.RequestTimeout))
	logger.L.Info("starting chat session", "mode", ctrl.Mode())

	return tui.Run(ctrl, queue)
}

// token returns the stored credential or tells the user to log in.
func (a *app) token(ctx context.Context) (string, error) {
	tok, ok := a.creds.Credential(ctx)
	if !ok {
		return "", errors.New("not logged in; run `friendbot login` first")
	}
	return tok, nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, chatclient.ErrUnauthorized):
		return "your session has expired or the credentials are wrong; please log in again"
	case errors.Is(err, chatclient.ErrUnavailable):
		return "the friendbot service is unavailable; please try again later"
	}
	var apiErr *chatclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
