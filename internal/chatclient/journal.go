package chatclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/comigor/friendbot-go/internal/api"
)

// ListJournal returns one page of entries, most recently updated first.
func (c *Client) ListJournal(ctx context.Context, credential string, page, perPage int) (api.JournalListResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var out api.JournalListResponse
	if err := c.call(ctx, credential, http.MethodGet, "/api/journal?"+q.Encode(), nil, &out); err != nil {
		return api.JournalListResponse{}, fmt.Errorf("list journal: %w", err)
	}
	return out, nil
}

// SearchJournal returns every entry whose title or content contains query.
func (c *Client) SearchJournal(ctx context.Context, credential, query string) ([]api.Journal, error) {
	var out api.JournalListResponse
	path := "/api/journal/search?" + url.Values{"q": {query}}.Encode()
	if err := c.call(ctx, credential, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("search journal: %w", err)
	}
	return out.Journals, nil
}

func (c *Client) CreateJournal(ctx context.Context, credential string, req api.JournalRequest) (api.Journal, error) {
	var out api.JournalResponse
	if err := c.call(ctx, credential, http.MethodPost, "/api/journal", req, &out); err != nil {
		return api.Journal{}, fmt.Errorf("create journal: %w", err)
	}
	return out.Journal, nil
}

func (c *Client) UpdateJournal(ctx context.Context, credential string, id int64, req api.JournalRequest) (api.Journal, error) {
	var out api.JournalResponse
	if err := c.call(ctx, credential, http.MethodPut, "/api/journal/"+strconv.FormatInt(id, 10), req, &out); err != nil {
		return api.Journal{}, fmt.Errorf("update journal: %w", err)
	}
	return out.Journal, nil
}

func (c *Client) DeleteJournal(ctx context.Context, credential string, id int64) error {
	if err := c.call(ctx, credential, http.MethodDelete, "/api/journal/"+strconv.FormatInt(id, 10), nil, nil); err != nil {
		return fmt.Errorf("delete journal: %w", err)
	}
	return nil
}
