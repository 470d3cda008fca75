package session

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Origin tells who authored a message.
type Origin string

const (
	OriginUser      Origin = "user"
	OriginAssistant Origin = "assistant"
)

// Message is a single entry of the conversation log. Messages are never mutated once
// appended, except for the one-time id reconciliation done by Store.ReplaceID.
type Message struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Origin Origin `json:"origin"`
}

// NewLocalID returns an id for a message that has not been confirmed by the server yet.
func NewLocalID() string {
	return "local-" + uuid.NewString()
}

// IsLocalID reports whether id was produced by NewLocalID.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, "local-")
}

// Identity is decided once when a session is created.
type Identity string

const (
	IdentityGuest         Identity = "guest"
	IdentityAuthenticated Identity = "authenticated"
)

// Preference selects the friend persona.
type Preference string

const (
	PreferenceNeutral Preference = "neutral"
	PreferenceMale    Preference = "male"
	PreferenceFemale  Preference = "female"
)

// Preferences lists the accepted values in display order.
var Preferences = []Preference{PreferenceNeutral, PreferenceMale, PreferenceFemale}

// ParsePreference validates a raw preference string.
func ParsePreference(s string) (Preference, error) {
	switch p := Preference(strings.ToLower(strings.TrimSpace(s))); p {
	case PreferenceNeutral, PreferenceMale, PreferenceFemale:
		return p, nil
	default:
		return "", fmt.Errorf("invalid preference %q: choose from neutral, male, female", s)
	}
}

// Next cycles through Preferences.
func (p Preference) Next() Preference {
	for i, v := range Preferences {
		if v == p {
			return Preferences[(i+1)%len(Preferences)]
		}
	}
	return PreferenceNeutral
}

// Status is the controller's lifecycle state as seen by the rendering layer.
type Status string

const (
	StatusIdle          Status = "idle"
	StatusLoading       Status = "loading"
	StatusAwaitingReply Status = "awaiting_reply"
	StatusError         Status = "error"
)

// ErrorKind classifies the failure recorded with StatusError.
type ErrorKind string

const (
	ErrorKindNone         ErrorKind = ""
	ErrorKindUnauthorized ErrorKind = "unauthorized"
	ErrorKindUnavailable  ErrorKind = "unavailable"
)
