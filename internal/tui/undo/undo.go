package undo

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/season-remux/internal/log"
	"github.com/Digital-Shane/season-remux/internal/tui/theme"
	"github.com/Digital-Shane/season-remux/internal/util"
	"github.com/Digital-Shane/treeview"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var undoSessionFn = log.UndoSession

// UndoCompleteMsg is emitted when a session has been reversed.
type UndoCompleteMsg struct{ successCount, errorCount int }

func (u UndoCompleteMsg) SuccessCount() int { return u.successCount }

func (u UndoCompleteMsg) ErrorCount() int { return u.errorCount }

// Model lists journal sessions and reverses the one the operator confirms.
type Model struct {
	*treeview.TuiTreeModel[log.SessionSummary]
	theme theme.Theme

	width, height int
	confirming    bool
	running       bool
	done          bool
	succeeded     int
	failed        int

	details        viewport.Model
	detailsFocused bool
}

// Option configures a Model during construction.
type Option func(*Model)

// WithTheme overrides the default theme.
func WithTheme(th theme.Theme) Option {
	return func(m *Model) {
		m.theme = th
	}
}

// BuildTree turns session summaries into a flat tree, newest first.
func BuildTree(summaries []log.SessionSummary) *treeview.Tree[log.SessionSummary] {
	nodes := make([]*treeview.Node[log.SessionSummary], 0, len(summaries))
	for _, s := range summaries {
		meta := s.Session.Metadata
		name := fmt.Sprintf("%s - %s (%d ops)", filepath.Base(meta.SourceRoot), s.RelativeTime, meta.TotalOps)
		nodes = append(nodes, treeview.NewNode(meta.SessionID, name, s))
	}
	return treeview.NewTree(nodes)
}

// New creates the session browser.
func New(tree *treeview.Tree[log.SessionSummary], opts ...Option) *Model {
	m := &Model{width: 80, height: 24, theme: theme.Default()}
	for _, opt := range opts {
		opt(m)
	}

	keyMap := treeview.DefaultKeyMap()
	keyMap.SearchStart = []string{}
	keyMap.Reset = []string{}

	m.TuiTreeModel = treeview.NewTuiTreeModel(tree,
		treeview.WithTuiWidth[log.SessionSummary](m.listWidth()),
		treeview.WithTuiHeight[log.SessionSummary](m.height-4),
		treeview.WithTuiAllowResize[log.SessionSummary](true),
		treeview.WithTuiDisableNavBar[log.SessionSummary](true),
		treeview.WithTuiKeyMap[log.SessionSummary](keyMap),
	)
	m.details = viewport.New(m.detailsWidth(), m.height-8)
	return m
}

func (m *Model) listWidth() int    { return m.width/2 - 2 }
func (m *Model) detailsWidth() int { return m.width - m.width/2 - 6 }

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		treeModel, cmd := m.TuiTreeModel.Update(tea.WindowSizeMsg{Width: m.listWidth(), Height: m.height - 4})
		m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[log.SessionSummary])
		m.details.Width = m.detailsWidth()
		m.details.Height = m.height - 8
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c", "q":
			if m.confirming {
				m.confirming = false
				return m, nil
			}
			return m, tea.Quit
		case "tab":
			m.detailsFocused = !m.detailsFocused
			return m, nil
		case "up", "down", "pgup", "pgdown":
			if m.detailsFocused {
				var cmd tea.Cmd
				m.details, cmd = m.details.Update(msg)
				return m, cmd
			}
		case "enter", "y":
			if m.confirming {
				if node := m.TuiTreeModel.Tree.GetFocusedNode(); node != nil {
					m.confirming = false
					m.running = true
					return m, m.performUndo(*node.Data())
				}
			} else if !m.running && !m.done {
				m.confirming = true
			}
			return m, nil
		case "n", "N":
			m.confirming = false
			return m, nil
		}

	case UndoCompleteMsg:
		m.running = false
		m.done = true
		m.succeeded = msg.successCount
		m.failed = msg.errorCount
		return m, nil
	}

	if !m.confirming && !m.running && !m.detailsFocused {
		treeModel, cmd := m.TuiTreeModel.Update(msg)
		m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[log.SessionSummary])
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.TitleStyle().Width(m.width).Render("Season Remux Undo"))
	b.WriteByte('\n')

	switch {
	case m.done:
		text := fmt.Sprintf("Undo completed: %d operations reversed", m.succeeded)
		tone := theme.ToneSuccess
		if m.failed > 0 {
			text = fmt.Sprintf("Undo completed: %d reversed, %d failed", m.succeeded, m.failed)
			tone = theme.ToneWarning
		}
		b.WriteString(m.theme.Badge(tone).Render(text))
		b.WriteByte('\n')
		b.WriteString(m.theme.HintStyle().Render("Press esc to exit"))
	case m.running:
		b.WriteString(m.theme.Badge(theme.ToneInfo).Render("Undoing operations..."))
	case m.confirming:
		if node := m.TuiTreeModel.Tree.GetFocusedNode(); node != nil {
			b.WriteString(m.renderConfirmation(*node.Data()))
		}
	default:
		b.WriteString(m.renderMain())
	}
	return b.String()
}

func (m *Model) renderMain() string {
	list := m.theme.FrameStyle().Width(m.listWidth()).Render(m.TuiTreeModel.View())

	if node := m.TuiTreeModel.Tree.GetFocusedNode(); node != nil {
		m.details.SetContent(m.formatDetails(*node.Data(), m.details.Width))
	} else {
		m.details.SetContent(m.theme.HintStyle().Render("Select a session to view details"))
	}
	details := m.theme.FrameStyle().Width(m.detailsWidth()).Render(m.details.View())

	hint := "Tab: details | " + m.theme.Icon("arrows") + " navigate | Enter: undo | Esc: quit"
	return lipgloss.JoinHorizontal(lipgloss.Top, list, details) + "\n" + m.theme.HintStyle().Render(hint)
}

func (m *Model) formatDetails(summary log.SessionSummary, width int) string {
	meta := summary.Session.Metadata
	label := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Palette().Frame)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", label.Render("Command:"), strings.Join(meta.CommandArgs, " "))
	fmt.Fprintf(&b, "%s %s (%s)\n", label.Render("Time:"), summary.RelativeTime, meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "%s %s\n\n", label.Render("Source:"), util.ShortenPath(meta.SourceRoot, width-8))
	fmt.Fprintf(&b, "%s %d total, %d ok, %d failed\n\n", label.Render("Operations:"), meta.TotalOps, meta.SuccessfulOps, meta.FailedOps)

	ops := summary.Session.Operations
	start := 0
	if len(ops) > 10 {
		start = len(ops) - 10
	}
	for _, op := range ops[start:] {
		b.WriteString(m.operationIcon(op))
		b.WriteByte(' ')
		b.WriteString(FormatOperation(op, width-4))
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Model) operationIcon(op log.OperationLog) string {
	if !op.Success {
		return m.theme.Icon("error")
	}
	switch op.Type {
	case log.OpCreateDir, log.OpDelete:
		return m.theme.Icon("folder")
	default:
		return m.theme.Icon("video")
	}
}

// FormatOperation renders one journal entry on a single line of at most
// maxWidth cells.
func FormatOperation(op log.OperationLog, maxWidth int) string {
	var text string
	switch op.Type {
	case log.OpRename, log.OpMove, log.OpTranscode:
		text = fmt.Sprintf("%s: %s → %s", op.Type, filepath.Base(op.SourcePath), filepath.Base(op.DestPath))
	case log.OpCreateDir:
		text = fmt.Sprintf("create: %s/", filepath.Base(op.DestPath))
	default:
		text = fmt.Sprintf("%s: %s", op.Type, filepath.Base(op.SourcePath))
	}
	if !op.Success {
		text += " (failed)"
	}
	return util.Truncate(text, maxWidth)
}

func (m *Model) renderConfirmation(summary log.SessionSummary) string {
	meta := summary.Session.Metadata
	text := fmt.Sprintf(
		"Undo session from %s?\n\nSource: %s\nOperations: %d (%d ok, %d failed)\n\n"+
			"Renames and moves are reversed, newest first.\nRemuxed files are left in place.\n\n"+
			"Press enter to confirm or n to cancel",
		summary.RelativeTime, util.ShortenPath(meta.SourceRoot, 50), meta.TotalOps, meta.SuccessfulOps, meta.FailedOps)
	return m.theme.FrameStyle().Width(60).Render(text)
}

func (m *Model) performUndo(summary log.SessionSummary) tea.Cmd {
	return func() tea.Msg {
		ok, failed, _ := undoSessionFn(summary.Session)
		return UndoCompleteMsg{successCount: ok, errorCount: failed}
	}
}
