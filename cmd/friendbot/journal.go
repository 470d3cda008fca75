package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/comigor/friendbot-go/internal/api"
)

func (a *app) journal(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	tok, err := a.token(ctx)
	if err != nil {
		return err
	}

	sub, args := args[0], args[1:]
	switch sub {
	case "list":
		fs := pflag.NewFlagSet("journal list", pflag.ContinueOnError)
		page := fs.Int("page", 1, "page number")
		perPage := fs.Int("per-page", 10, "entries per page")
		if err := fs.Parse(args); err != nil {
			return err
		}
		out, err := a.client.ListJournal(ctx, tok, *page, *perPage)
		if err != nil {
			return err
		}
		printJournals(out.Journals)
		fmt.Printf("page %d of %d (%d entries)\n", out.CurrentPage, out.Pages, out.Total)

	case "add":
		fs := pflag.NewFlagSet("journal add", pflag.ContinueOnError)
		title := fs.String("title", "", "entry title")
		content := fs.String("content", "", "entry text")
		if err := fs.Parse(args); err != nil {
			return err
		}
		j, err := a.client.CreateJournal(ctx, tok, api.JournalRequest{Title: *title, Content: *content})
		if err != nil {
			return err
		}
		fmt.Printf("Saved entry #%d.\n", j.ID)

	case "search":
		q := strings.TrimSpace(strings.Join(args, " "))
		if q == "" {
			return errors.New("journal search needs a query")
		}
		found, err := a.client.SearchJournal(ctx, tok, q)
		if err != nil {
			return err
		}
		printJournals(found)

	case "rm":
		if len(args) != 1 {
			return errors.New("journal rm needs exactly one entry id")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
		}
		if err := a.client.DeleteJournal(ctx, tok, id); err != nil {
			return err
		}
		fmt.Printf("Deleted entry #%d.\n", id)

	default:
		return fmt.Errorf("unknown journal command %q", sub)
	}
	return nil
}

func printJournals(js []api.Journal) {
	if len(js) == 0 {
		fmt.Println("No journal entries.")
		return
	}
	for _, j := range js {
		fmt.Printf("#%d  %s  %s\n    %s\n", j.ID, j.UpdatedAt.Local().Format("2006-01-02 15:04"), j.Title, j.Content)
	}
}
