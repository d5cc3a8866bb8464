package tui

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/season-remux/internal/log"
	"github.com/Digital-Shane/season-remux/internal/tui/theme"
	tea "github.com/charmbracelet/bubbletea"
)

var verbosityChoices = []struct {
	level log.Verbosity
	help  string
}{
	{log.Silent, "print nothing"},
	{log.Destination, "print where each file ends up"},
	{log.Normal, "print progress and problems"},
	{log.Verbose, "print every step"},
}

// VerbosityModel lists the console levels with Normal preselected.
type VerbosityModel struct {
	theme  theme.Theme
	cursor int
	chosen bool
}

func NewVerbosityModel() *VerbosityModel {
	return &VerbosityModel{theme: theme.Default(), cursor: int(log.Normal)}
}

func (m *VerbosityModel) Init() tea.Cmd {
	return nil
}

func (m *VerbosityModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch s := key.String(); s {
	case "ctrl+c", "esc", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(verbosityChoices)-1 {
			m.cursor++
		}
	case "enter":
		m.chosen = true
		return m, tea.Quit
	case "1", "2", "3", "4":
		m.cursor = int(s[0] - '1')
		m.chosen = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *VerbosityModel) View() string {
	if m.chosen {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.theme.TitleStyle().Render("Console output"))
	b.WriteString("\n\n")
	for i, c := range verbosityChoices {
		line := fmt.Sprintf("%d. %-12s %s", i+1, c.level, c.help)
		if i == m.cursor {
			b.WriteString(m.theme.CursorStyle().Render(m.theme.Icon("cursor") + " " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteByte('\n')
	}
	b.WriteString(m.theme.HintStyle().Render(m.theme.Icon("arrows") + " move | enter select | esc keep normal"))
	return b.String() + "\n"
}

// Level returns the chosen level, or Normal when nothing was chosen.
func (m *VerbosityModel) Level() log.Verbosity {
	if !m.chosen {
		return log.Normal
	}
	return verbosityChoices[m.cursor].level
}

// PickVerbosity asks for the console level. Closing the prompt yields Normal.
func PickVerbosity() log.Verbosity {
	final, err := runProgram(NewVerbosityModel())
	if err != nil {
		return log.Normal
	}
	m, ok := final.(*VerbosityModel)
	if !ok {
		return log.Normal
	}
	return m.Level()
}
