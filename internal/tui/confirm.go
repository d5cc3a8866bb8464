package tui

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/season-remux/internal/tui/theme"
	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel is a yes/no question. Yes is preselected.
type ConfirmModel struct {
	question string
	theme    theme.Theme
	yes      bool
	answered bool
	canceled bool
}

func NewConfirmModel(question string) *ConfirmModel {
	return &ConfirmModel{question: question, theme: theme.Default(), yes: true}
}

func (m *ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c":
		m.canceled = true
		return m, tea.Quit
	case "y", "Y":
		m.yes, m.answered = true, true
		return m, tea.Quit
	case "n", "N", "esc":
		m.yes, m.answered = false, true
		return m, tea.Quit
	case "left", "right", "h", "l", "tab":
		m.yes = !m.yes
	case "enter":
		m.answered = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *ConfirmModel) View() string {
	if m.answered || m.canceled {
		return ""
	}
	yes, no := "  Yes  ", "  No  "
	if m.yes {
		yes = m.theme.CursorStyle().Render("[ Yes ]")
	} else {
		no = m.theme.CursorStyle().Render("[ No ]")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s   %s\n", m.question, yes, no)
	b.WriteString(m.theme.HintStyle().Render("y/n | ←→ toggle | enter confirm"))
	return m.theme.FrameStyle().Render(b.String()) + "\n"
}

// Answer reports the choice; ok is false when the prompt was canceled.
func (m *ConfirmModel) Answer() (yes, ok bool) {
	return m.yes, m.answered && !m.canceled
}

// Confirm asks a yes/no question. Esc answers no; ctrl+c returns ErrCanceled.
func Confirm(question string) (bool, error) {
	final, err := runProgram(NewConfirmModel(question))
	if err != nil {
		return false, fmt.Errorf("confirm prompt: %w", err)
	}
	m, ok := final.(*ConfirmModel)
	if !ok {
		return false, ErrCanceled
	}
	yes, ok := m.Answer()
	if !ok {
		return false, ErrCanceled
	}
	return yes, nil
}
