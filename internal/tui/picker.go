package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/season-remux/internal/tui/theme"
	"github.com/Digital-Shane/season-remux/internal/util"
	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
)

// PickerModel browses directories and returns the one the operator chooses
// with "s". Files are listed but cannot be chosen.
type PickerModel struct {
	picker   filepicker.Model
	title    string
	theme    theme.Theme
	width    int
	chosen   string
	canceled bool
}

// NewPickerModel starts browsing at start, falling back to the home
// directory when start is not a readable directory.
func NewPickerModel(title, start string) *PickerModel {
	fp := filepicker.New()
	fp.CurrentDirectory = startDirectory(start)
	fp.DirAllowed = false
	fp.FileAllowed = false
	fp.ShowHidden = false
	fp.ShowPermissions = false
	fp.AutoHeight = true

	return &PickerModel{picker: fp, title: title, theme: theme.Default(), width: 80}
}

func startDirectory(start string) string {
	candidates := []string{start}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, home)
	}
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(dir); err == nil {
				return abs
			}
			return dir
		}
	}
	return "."
}

func (m *PickerModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m *PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.canceled = true
			return m, tea.Quit
		case "s":
			m.chosen = m.picker.CurrentDirectory
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *PickerModel) View() string {
	var b strings.Builder
	b.WriteString(m.theme.TitleStyle().Render(m.title))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n\n", m.theme.Icon("folder"), util.ShortenPath(m.picker.CurrentDirectory, m.width-4))
	b.WriteString(m.picker.View())
	b.WriteByte('\n')
	b.WriteString(m.theme.HintStyle().Render(m.theme.Icon("arrows") + " move | enter/l open | h/esc up | s select this directory | q quit"))
	return b.String()
}

// Chosen returns the selected directory and whether one was selected.
func (m *PickerModel) Chosen() (string, bool) {
	return m.chosen, m.chosen != ""
}

// PickDirectory asks the operator for a directory. Closing the picker
// returns ErrCanceled.
func PickDirectory(title, start string) (string, error) {
	final, err := runProgram(NewPickerModel(title, start), tea.WithAltScreen())
	if err != nil {
		return "", fmt.Errorf("directory picker: %w", err)
	}
	m, ok := final.(*PickerModel)
	if !ok {
		return "", ErrCanceled
	}
	dir, ok := m.Chosen()
	if !ok {
		return "", ErrCanceled
	}
	return dir, nil
}
