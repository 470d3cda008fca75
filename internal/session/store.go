// Package session holds the in-memory state of one conversation: the ordered message
// log, the friend preference and the controller's status flags. The Store is the single
// source of truth for rendering.
package session

import (
	"sync"
)

// Snapshot is a read-only copy of the store handed to observers.
type Snapshot struct {
	Identity   Identity
	Messages   []Message
	Preference Preference
	Status     Status
	LastError  string
	ErrorKind  ErrorKind
	Warning    string
}

// Observer is notified synchronously after every mutation.
type Observer func(Snapshot)

// Store is an append-only message log plus preference and status. Only the conversation
// controller mutates it; the rendering layer reads snapshots.
type Store struct {
	mu sync.RWMutex

	identity   Identity
	messages   []Message
	index      map[string]int
	replaced   map[int]bool
	preference Preference
	status     Status
	lastError  string
	errorKind  ErrorKind
	warning    string

	observers map[int]Observer
	nextObs   int
	closed    bool
}

// NewStore creates an empty store for the given identity.
func NewStore(identity Identity) *Store {
	return &Store{
		identity:   identity,
		index:      make(map[string]int),
		replaced:   make(map[int]bool),
		preference: PreferenceNeutral,
		status:     StatusIdle,
		observers:  make(map[int]Observer),
	}
}

// Identity returns the identity fixed at creation.
func (s *Store) Identity() Identity { return s.identity }

// Subscribe registers an observer and returns a func that removes it.
func (s *Store) Subscribe(o Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Append adds messages to the end of the log. Messages whose id is already present are
// dropped. It returns false if the store is closed.
func (s *Store) Append(msgs ...Message) bool {
	return s.mutate(func() {
		for _, m := range msgs {
			if _, dup := s.index[m.ID]; dup {
				continue
			}
			s.index[m.ID] = len(s.messages)
			s.messages = append(s.messages, m)
		}
	})
}

// ReplaceID swaps the id of a locally stamped message for a server-confirmed one. Each
// message can be reconciled at most once and newID must not already be in use.
func (s *Store) ReplaceID(oldID, newID string) bool {
	ok := false
	s.mutate(func() {
		pos, found := s.index[oldID]
		if !found || s.replaced[pos] || !IsLocalID(oldID) {
			return
		}
		if _, taken := s.index[newID]; taken || newID == "" {
			return
		}
		m := s.messages[pos]
		m.ID = newID
		s.messages[pos] = m
		delete(s.index, oldID)
		s.index[newID] = pos
		s.replaced[pos] = true
		ok = true
	})
	return ok
}

// SetPreference replaces the current preference.
func (s *Store) SetPreference(p Preference) bool {
	return s.mutate(func() { s.preference = p })
}

// SetStatus records the controller status. Leaving StatusError clears the recorded error.
func (s *Store) SetStatus(st Status) bool {
	return s.mutate(func() {
		s.status = st
		if st != StatusError {
			s.lastError = ""
			s.errorKind = ErrorKindNone
		}
	})
}

// SetError records the failure shown next to the history.
func (s *Store) SetError(kind ErrorKind, msg string) bool {
	return s.mutate(func() {
		s.errorKind = kind
		s.lastError = msg
	})
}

// SetWarning records a non-blocking notice; an empty string clears it.
func (s *Store) SetWarning(msg string) bool {
	return s.mutate(func() { s.warning = msg })
}

// Messages returns a copy of the log in insertion order.
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Preference returns the current preference.
func (s *Store) Preference() Preference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preference
}

// Status returns the current status.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Close makes the store inert. Later mutations are ignored and observers are dropped.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.observers = make(map[int]Observer)
	s.mu.Unlock()
}

// Closed reports whether Close was called.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Store) mutate(fn func()) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	fn()
	snap := s.snapshotLocked()
	obs := make([]Observer, 0, len(s.observers))
	for i := 0; i < s.nextObs; i++ {
		if o, ok := s.observers[i]; ok {
			obs = append(obs, o)
		}
	}
	s.mu.Unlock()

	for _, o := range obs {
		o(snap)
	}
	return true
}

func (s *Store) snapshotLocked() Snapshot {
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	return Snapshot{
		Identity:   s.identity,
		Messages:   msgs,
		Preference: s.preference,
		Status:     s.status,
		LastError:  s.lastError,
		ErrorKind:  s.errorKind,
		Warning:    s.warning,
	}
}
