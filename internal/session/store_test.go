package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendKeepsOrder(t *testing.T) {
	s := NewStore(IdentityGuest)
	var want []Message
	for i := 0; i < 50; i++ {
		origin := OriginUser
		if i%2 == 1 {
			origin = OriginAssistant
		}
		m := Message{ID: fmt.Sprintf("m%d", i), Text: fmt.Sprintf("text %d", i), Origin: origin}
		want = append(want, m)
		require.True(t, s.Append(m))
	}
	require.Equal(t, want, s.Messages())
	require.Equal(t, 50, s.Len())
}

func TestStore_AppendDropsDuplicateIDs(t *testing.T) {
	s := NewStore(IdentityAuthenticated)
	s.Append(Message{ID: "1", Text: "a"}, Message{ID: "1", Text: "b"})
	require.Len(t, s.Messages(), 1)
	require.Equal(t, "a", s.Messages()[0].Text)
}

func TestStore_MessagesIsACopy(t *testing.T) {
	s := NewStore(IdentityGuest)
	s.Append(Message{ID: "1", Text: "a"})
	got := s.Messages()
	got[0].Text = "changed"
	require.Equal(t, "a", s.Messages()[0].Text)
}

func TestStore_ReplaceIDOnce(t *testing.T) {
	s := NewStore(IdentityAuthenticated)
	local := NewLocalID()
	s.Append(Message{ID: local, Text: "hi", Origin: OriginUser}, Message{ID: "7", Text: "x"})

	require.False(t, s.ReplaceID(local, "7"), "new id already in use")
	require.True(t, s.ReplaceID(local, "42"))
	require.Equal(t, "42", s.Messages()[0].ID)
	require.False(t, s.ReplaceID("42", "43"), "server ids are final")
	require.False(t, s.ReplaceID("missing", "44"))
}

func TestStore_ObserversNotifiedSynchronously(t *testing.T) {
	s := NewStore(IdentityGuest)
	var seen []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) { seen = append(seen, snap) })

	s.Append(Message{ID: "1", Text: "a"})
	require.Len(t, seen, 1)
	require.Len(t, seen[0].Messages, 1)

	s.SetPreference(PreferenceFemale)
	require.Len(t, seen, 2)
	assert.Equal(t, PreferenceFemale, seen[1].Preference)

	unsubscribe()
	s.SetStatus(StatusAwaitingReply)
	require.Len(t, seen, 2)
}

func TestStore_LeavingErrorClearsIt(t *testing.T) {
	s := NewStore(IdentityAuthenticated)
	s.SetError(ErrorKindUnavailable, "boom")
	s.SetStatus(StatusError)
	snap := s.Snapshot()
	require.Equal(t, "boom", snap.LastError)
	require.Equal(t, ErrorKindUnavailable, snap.ErrorKind)

	s.SetStatus(StatusAwaitingReply)
	snap = s.Snapshot()
	require.Empty(t, snap.LastError)
	require.Equal(t, ErrorKindNone, snap.ErrorKind)
}

func TestStore_InertAfterClose(t *testing.T) {
	s := NewStore(IdentityGuest)
	calls := 0
	s.Subscribe(func(Snapshot) { calls++ })
	s.Append(Message{ID: "1"})
	s.Close()

	require.False(t, s.Append(Message{ID: "2"}))
	require.False(t, s.SetStatus(StatusError))
	require.False(t, s.SetPreference(PreferenceMale))
	require.Equal(t, 1, s.Len())
	require.Equal(t, 1, calls)
	require.True(t, s.Closed())
}

func TestParsePreference(t *testing.T) {
	p, err := ParsePreference(" Male ")
	require.NoError(t, err)
	require.Equal(t, PreferenceMale, p)

	_, err = ParsePreference("robot")
	require.Error(t, err)

	require.Equal(t, PreferenceMale, PreferenceNeutral.Next())
	require.Equal(t, PreferenceNeutral, PreferenceFemale.Next())
}
