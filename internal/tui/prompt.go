package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrPromptCanceled is returned when the user leaves a prompt with esc or ctrl+c.
var ErrPromptCanceled = errors.New("prompt canceled")

type promptModel struct {
	input    textinput.Model
	done     bool
	canceled bool
}

func newPrompt(label string, secret bool) *promptModel {
	in := textinput.New()
	in.Prompt = label + ": "
	in.Focus()
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return &promptModel{input: in}
}

func (m *promptModel) Init() tea.Cmd { return textinput.Blink }

func (m *promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.canceled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *promptModel) View() string {
	if m.done || m.canceled {
		return ""
	}
	return m.input.View() + "\n"
}

// Prompt reads one line from the terminal. Secret input is masked.
func Prompt(label string, secret bool) (string, error) {
	m := newPrompt(label, secret)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return "", err
	}
	if m.canceled {
		return "", ErrPromptCanceled
	}
	return m.input.Value(), nil
}
