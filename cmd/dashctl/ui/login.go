package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// LoginModel is a two-field credential prompt. The password field never
// echoes; the program quits once both fields are submitted or the user
// aborts.
type LoginModel struct {
	styles  Styles
	inputs  []textinput.Model
	focus   int
	done    bool
	aborted bool
}

// NewLogin builds the prompt. A non-empty username pre-fills the first field
// and focuses the password.
func NewLogin(username string) LoginModel {
	user := textinput.New()
	user.Placeholder = "username"
	user.CharLimit = 64
	user.SetValue(username)

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.CharLimit = 128
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	m := LoginModel{
		styles: DefaultStyles(),
		inputs: []textinput.Model{user, pass},
	}
	if username != "" {
		m.focus = 1
	}
	m.inputs[m.focus].Focus()
	return m
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
			m.inputs[m.focus].Blur()
			m.focus = (m.focus + 1) % len(m.inputs)
			m.inputs[m.focus].Focus()
			return m, nil
		case tea.KeyEnter:
			if m.focus == 0 {
				m.inputs[0].Blur()
				m.focus = 1
				m.inputs[1].Focus()
				return m, nil
			}
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m LoginModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("NDA Surveying dashboard login"))
	sb.WriteString("\n\n")
	for i, in := range m.inputs {
		sb.WriteString(in.View())
		if i < len(m.inputs)-1 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Muted.Render("enter to submit · esc to cancel"))
	sb.WriteString("\n")
	return sb.String()
}

// Credentials returns the entered username and password.
func (m LoginModel) Credentials() (username, password string) {
	return strings.TrimSpace(m.inputs[0].Value()), m.inputs[1].Value()
}

// Aborted reports whether the user cancelled the prompt.
func (m LoginModel) Aborted() bool {
	return m.aborted
}
