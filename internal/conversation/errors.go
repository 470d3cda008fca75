package conversation

import (
	"errors"

	"github.com/comigor/friendbot-go/internal/chatclient"
	"github.com/comigor/friendbot-go/internal/session"
)

var (
	// ErrEmptyMessage is returned by Submit for blank input. Nothing changes.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrBusy is returned by Submit while a reply or the history is still pending.
	ErrBusy = errors.New("a reply is still pending")
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("conversation closed")
	// ErrPreferenceSync wraps a failed preference mirror. It is only ever logged and
	// shown as a warning.
	ErrPreferenceSync = errors.New("preference sync failed")
)

// User-visible texts recorded in the session store.
const (
	msgUnauthorized   = "Your session has expired. Please log in again."
	msgSendFailed     = "Failed to send message. Please try again."
	msgHistoryFailed  = "Failed to load chat history. Please try again."
	msgPreferenceSync = "Failed to update preferences. Your choice is kept on this device."
)

// failure is the argument of the reject trigger.
type failure struct {
	kind session.ErrorKind
	text string
	err  error
}

func classify(err error, unavailableText string) failure {
	if errors.Is(err, chatclient.ErrUnauthorized) {
		return failure{kind: session.ErrorKindUnauthorized, text: msgUnauthorized, err: err}
	}
	return failure{kind: session.ErrorKindUnavailable, text: unavailableText, err: err}
}
