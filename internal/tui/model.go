// Package tui renders a conversation session in the terminal with Bubble Tea.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/comigor/friendbot-go/internal/conversation"
	"github.com/comigor/friendbot-go/internal/logger"
	"github.com/comigor/friendbot-go/internal/persona"
	"github.com/comigor/friendbot-go/internal/session"
)

const busyNotice = "Your friend is still typing..."

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	userStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	friendStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// continuationMsg carries a controller continuation into Update.
type continuationMsg func()

// Model is the chat screen. Every controller call and continuation runs inside Update.
type Model struct {
	ctrl  *conversation.Controller
	queue *conversation.Queue

	ctx    context.Context
	cancel context.CancelFunc

	input    textinput.Model
	spin     spinner.Model
	viewport viewport.Model
	help     help.Model
	keys     keyMap

	snap   session.Snapshot
	dirty  bool
	notice string
	width  int
	height int
	ready  bool
}

// New builds the screen for ctrl. The controller must dispatch its continuations to
// queue.
func New(ctrl *conversation.Controller, queue *conversation.Queue) *Model {
	in := textinput.New()
	in.Placeholder = "Type a message"
	in.Prompt = "You> "
	in.CharLimit = 2000
	in.Width = 60
	in.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = friendStyle

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		ctrl:     ctrl,
		queue:    queue,
		ctx:      ctx,
		cancel:   cancel,
		input:    in,
		spin:     s,
		viewport: viewport.New(60, 10),
		help:     help.New(),
		keys:     defaultKeyMap,
		dirty:    true,
	}
	ctrl.Store().Subscribe(func(snap session.Snapshot) {
		m.snap = snap
		m.dirty = true
	})
	m.snap = ctrl.Store().Snapshot()
	return m
}

func (m *Model) Init() tea.Cmd {
	m.ctrl.Start()
	return tea.Batch(textinput.Blink, m.spin.Tick, m.next())
}

// next waits for the controller's next continuation.
func (m *Model) next() tea.Cmd {
	return func() tea.Msg {
		fn, err := m.queue.Next(m.ctx)
		if err != nil {
			return nil
		}
		return continuationMsg(fn)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case continuationMsg:
		msg()
		if m.snap.Status != session.StatusAwaitingReply {
			m.notice = ""
		}
		cmds = append(cmds, m.next())

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quit()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Send):
			m.submit()
			m.sync()
			return m, nil
		case key.Matches(msg, m.keys.Preference):
			m.ctrl.ChangePreference(m.snap.Preference.Next())
			m.sync()
			return m, nil
		case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.sync()
	return m, tea.Batch(cmds...)
}

func (m *Model) submit() {
	err := m.ctrl.Submit(m.input.Value())
	switch {
	case err == nil:
		m.input.SetValue("")
		m.notice = ""
	case errors.Is(err, conversation.ErrEmptyMessage):
	case errors.Is(err, conversation.ErrBusy):
		m.notice = busyNotice
	default:
		logger.L.Warn("submit failed", "error", err)
		m.notice = err.Error()
	}
}

func (m *Model) quit() {
	m.ctrl.Close()
	m.cancel()
}

func (m *Model) layout() {
	w := max(m.width, 20)
	m.input.Width = w - len(m.input.Prompt) - 1
	m.help.Width = w
	m.viewport.Width = w
	// header, status line, input and help
	m.viewport.Height = max(m.height-5, 3)
	m.ready = true
	m.dirty = true
}

// sync re-renders the transcript after a store change and keeps the newest message in
// view.
func (m *Model) sync() {
	if !m.dirty {
		return
	}
	m.dirty = false
	m.viewport.SetContent(m.transcript(m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m *Model) transcript(width int) string {
	wrap := lipgloss.NewStyle().Width(max(width, 10))
	name := persona.Name(m.snap.Preference)
	if len(m.snap.Messages) == 0 {
		if m.snap.Status == session.StatusLoading {
			return dimStyle.Render("Loading your conversation...")
		}
		return wrap.Render(friendStyle.Render(name+":") + " " + persona.Welcome)
	}

	lines := make([]string, 0, len(m.snap.Messages))
	for _, msg := range m.snap.Messages {
		label := friendStyle.Render(name + ":")
		if msg.Origin == session.OriginUser {
			label = userStyle.Render("You:")
		}
		lines = append(lines, wrap.Render(label+" "+msg.Text))
	}
	return strings.Join(lines, "\n\n")
}

func (m *Model) status() string {
	switch {
	case m.snap.Status == session.StatusAwaitingReply:
		line := m.spin.View() + " Your friend is typing..."
		if m.notice != "" {
			line += "  " + dimStyle.Render(m.notice)
		}
		return line
	case m.snap.Status == session.StatusError && m.snap.LastError != "":
		return errorStyle.Render(m.snap.LastError)
	case m.snap.Warning != "":
		return warningStyle.Render(m.snap.Warning)
	case m.notice != "":
		return dimStyle.Render(m.notice)
	}
	return ""
}

func (m *Model) View() string {
	var b strings.Builder
	mode := "guest"
	if m.ctrl.Mode() == conversation.RemoteBacked {
		mode = "signed in"
	}
	b.WriteString(headerStyle.Render("Chatting with "+persona.Name(m.snap.Preference)) +
		dimStyle.Render(" ("+string(m.snap.Preference)+", "+mode+")") + "\n")
	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(m.status() + "\n")
	b.WriteString(m.input.View() + "\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Run starts the program and blocks until the user quits.
func Run(ctrl *conversation.Controller, queue *conversation.Queue) error {
	m := New(ctrl, queue)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	m.quit()
	return err
}
