// Package chatclient is a thin wrapper over the friendbot REST service. Every call is a
// single attempt; retry policy belongs to the caller.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/comigor/friendbot-go/internal/api"
	"github.com/comigor/friendbot-go/internal/session"
)

var (
	// ErrUnauthorized means the credential is absent, expired or rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnavailable means the service could not be reached or failed to answer.
	ErrUnavailable = errors.New("service unavailable")
	// ErrRejected means the service refused the request body (4xx other than 401/403).
	ErrRejected = errors.New("request rejected")
)

// HistoryPageSize is how many recent messages FetchHistory asks for.
const HistoryPageSize = 50

// Reply is the outcome of SendMessage.
type Reply struct {
	// UserMessageID is the server id given to the message that was sent.
	UserMessageID string
	Message       session.Message
}

// Client talks to the REST service.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a Client for baseURL (e.g. http://localhost:5000). A nil httpClient uses
// a default one; timeouts are expected to come from the caller's context.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

// FetchHistory returns the most recent messages in chronological order.
func (c *Client) FetchHistory(ctx context.Context, credential string) ([]session.Message, error) {
	q := url.Values{}
	q.Set("page", "1")
	q.Set("per_page", strconv.Itoa(HistoryPageSize))

	var out api.HistoryResponse
	if err := c.call(ctx, credential, http.MethodGet, "/api/chat/history?"+q.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	msgs := make([]session.Message, 0, len(out.Chats))
	for _, chat := range out.Chats {
		origin := session.OriginAssistant
		if chat.IsFromUser {
			origin = session.OriginUser
		}
		msgs = append(msgs, session.Message{
			ID:     strconv.FormatInt(chat.ID, 10),
			Text:   chat.Text(),
			Origin: origin,
		})
	}
	return msgs, nil
}

// SendMessage posts text and returns the assistant reply.
func (c *Client) SendMessage(ctx context.Context, credential, text string) (Reply, error) {
	var out api.SendResponse
	if err := c.call(ctx, credential, http.MethodPost, "/api/chat/send", api.SendRequest{Message: text}, &out); err != nil {
		return Reply{}, fmt.Errorf("send message: %w", err)
	}
	return Reply{
		UserMessageID: strconv.FormatInt(out.ChatID, 10),
		Message: session.Message{
			ID:     strconv.FormatInt(out.ReplyID, 10),
			Text:   out.Response,
			Origin: session.OriginAssistant,
		},
	}, nil
}

// FetchPreference reads the preference stored in the user profile.
func (c *Client) FetchPreference(ctx context.Context, credential string) (session.Preference, error) {
	profile, err := c.Profile(ctx, credential)
	if err != nil {
		return "", err
	}
	p, err := session.ParsePreference(profile.PreferredFriendGender)
	if err != nil {
		return session.PreferenceNeutral, nil
	}
	return p, nil
}

// UpdatePreference mirrors p to the service.
func (c *Client) UpdatePreference(ctx context.Context, credential string, p session.Preference) error {
	body := api.PreferencesRequest{PreferredFriendGender: string(p)}
	if err := c.call(ctx, credential, http.MethodPut, "/api/chat/preferences", body, nil); err != nil {
		return fmt.Errorf("update preference: %w", err)
	}
	return nil
}

// ClearHistory deletes every stored chat of the user.
func (c *Client) ClearHistory(ctx context.Context, credential string) error {
	if err := c.call(ctx, credential, http.MethodDelete, "/api/chat/clear", nil, nil); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Profile returns the authenticated user.
func (c *Client) Profile(ctx context.Context, credential string) (api.User, error) {
	var out api.ProfileResponse
	if err := c.call(ctx, credential, http.MethodGet, "/api/auth/profile", nil, &out); err != nil {
		return api.User{}, fmt.Errorf("fetch profile: %w", err)
	}
	return out.User, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) error {
	if err := c.do(ctx, "", http.MethodPost, "/api/auth/register", req, nil); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Login exchanges username and password for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (api.LoginResponse, error) {
	var out api.LoginResponse
	req := api.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, "", http.MethodPost, "/api/auth/login", req, &out); err != nil {
		return api.LoginResponse{}, fmt.Errorf("login: %w", err)
	}
	return out, nil
}

// APIError is the decoded body of a failed call.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (status %d)", e.kind, e.Status)
	}
	return fmt.Sprintf("%v (status %d): %s", e.kind, e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.kind }

// call is do for endpoints that need a bearer credential.
func (c *Client) call(ctx context.Context, credential, method, path string, in, out any) error {
	if credential == "" {
		return ErrUnauthorized
	}
	return c.do(ctx, credential, method, path, in, out)
}

func (c *Client) do(ctx context.Context, credential, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e api.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil {
			apiErr.Message = e.Message
		}
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			apiErr.kind = ErrUnauthorized
		case resp.StatusCode >= 500:
			apiErr.kind = ErrUnavailable
		default:
			apiErr.kind = ErrRejected
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}
