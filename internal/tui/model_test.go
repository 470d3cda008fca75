package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/comigor/friendbot-go/internal/conversation"
	"github.com/comigor/friendbot-go/internal/logger"
	"github.com/comigor/friendbot-go/internal/persona"
	"github.com/comigor/friendbot-go/internal/session"
)

func newGuestModel(t *testing.T) (*Model, *conversation.Queue) {
	t.Helper()
	logger.Discard()
	q := conversation.NewQueue()
	ctrl := conversation.New(session.IdentityGuest, conversation.Deps{
		Persona: persona.New(func(int) int { return 0 }),
	}, q)
	m := New(ctrl, q)
	t.Cleanup(m.quit)
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, q
}

// drain runs the next controller continuation through Update.
func drain(t *testing.T, m *Model, q *conversation.Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	fn, err := q.Next(ctx)
	require.NoError(t, err)
	m.Update(continuationMsg(fn))
}

func TestModel_GuestConversation(t *testing.T) {
	m, q := newGuestModel(t)
	require.Contains(t, m.View(), persona.Welcome)
	require.Contains(t, m.View(), "guest")

	m.input.SetValue("hello")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, 2, m.ctrl.Store().Len())
	require.Empty(t, m.input.Value())
	require.Contains(t, m.View(), "Your friend is typing...")

	m.input.SetValue("again")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, 2, m.ctrl.Store().Len())
	require.Equal(t, "again", m.input.Value())
	require.Contains(t, m.View(), busyNotice)

	drain(t, m, q)
	require.Equal(t, 3, m.ctrl.Store().Len())
	require.Equal(t, session.StatusIdle, m.ctrl.Store().Status())
	require.Contains(t, m.View(), "It's Jordan")
}

func TestModel_BlankInputIgnored(t *testing.T) {
	m, _ := newGuestModel(t)
	m.input.SetValue("   ")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, 1, m.ctrl.Store().Len())
	require.Empty(t, m.notice)
}

func TestModel_PreferenceKeyCycles(t *testing.T) {
	m, _ := newGuestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	require.Equal(t, session.PreferenceMale, m.ctrl.Store().Preference())
	require.Contains(t, m.View(), "Chatting with Alex")

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	require.Equal(t, session.PreferenceFemale, m.ctrl.Store().Preference())
}

func TestModel_QuitClosesSession(t *testing.T) {
	m, _ := newGuestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	require.True(t, m.ctrl.Store().Closed())
}

func TestPrompt_Model(t *testing.T) {
	m := newPrompt("Password", true)
	m.input.SetValue("hunter2")
	require.NotContains(t, m.View(), "hunter2")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.True(t, m.done)
	require.Equal(t, "hunter2", m.input.Value())

	c := newPrompt("Username", false)
	c.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.True(t, c.canceled)
}
