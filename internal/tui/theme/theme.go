package theme

import (
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"
)

// Icons maps a semantic name to the glyph shown for it.
type Icons map[string]string

func (i Icons) clone() Icons {
	if i == nil {
		return nil
	}
	out := make(Icons, len(i))
	for k, v := range i {
		out[k] = v
	}
	return out
}

// Palette holds the colors shared by the prompts and the run report.
type Palette struct {
	Title   lipgloss.Color
	Frame   lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Cursor  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// Tone selects a badge color.
type Tone int

const (
	ToneInfo Tone = iota
	ToneSuccess
	ToneWarning
	ToneError
)

// Theme bundles palette, frame border and icons.
type Theme struct {
	palette Palette
	frame   lipgloss.Border
	padding int
	icons   Icons
	ascii   Icons
}

// Option configures a Theme during construction.
type Option func(*Theme)

// WithPalette overrides the default colors.
func WithPalette(p Palette) Option {
	return func(t *Theme) {
		t.palette = p
	}
}

// WithFrame overrides the prompt frame border.
func WithFrame(b lipgloss.Border) Option {
	return func(t *Theme) {
		t.frame = b
	}
}

// WithPadding overrides the padding inside prompt frames.
func WithPadding(n int) Option {
	return func(t *Theme) {
		t.padding = n
	}
}

// WithIcons overrides the icon set.
func WithIcons(icons Icons) Option {
	return func(t *Theme) {
		t.icons = icons.clone()
	}
}

// New constructs a Theme with optional overrides applied.
func New(opts ...Option) Theme {
	t := Theme{
		palette: Palette{
			Title:   lipgloss.Color("#2f5d8a"),
			Frame:   lipgloss.Color("#5b8fc4"),
			Text:    lipgloss.Color("#f5f5f5"),
			Muted:   lipgloss.Color("#8a94a6"),
			Cursor:  lipgloss.Color("#e0a84a"),
			Success: lipgloss.Color("#4fb783"),
			Warning: lipgloss.Color("#d9a441"),
			Error:   lipgloss.Color("#e0525c"),
		},
		frame:   lipgloss.RoundedBorder(),
		padding: 1,
		icons:   defaultIcons(),
		ascii:   asciiIcons.clone(),
	}
	for _, opt := range opts {
		opt(&t)
	}
	if t.icons == nil {
		t.icons = defaultIcons()
	}
	return t
}

// Default returns the default Theme.
func Default() Theme {
	return New()
}

func (t Theme) Palette() Palette       { return t.palette }
func (t Theme) Frame() lipgloss.Border { return t.frame }
func (t Theme) Padding() int           { return t.padding }

// Icon returns the glyph for name, falling back to ASCII.
func (t Theme) Icon(name string) string {
	if icon, ok := t.icons[name]; ok {
		return icon
	}
	return t.ascii[name]
}

// TitleStyle is used for prompt headings.
func (t Theme) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Background(t.palette.Title).
		Foreground(t.palette.Text).
		Padding(0, 1)
}

// FrameStyle wraps a prompt body.
func (t Theme) FrameStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(t.frame).
		BorderForeground(t.palette.Frame).
		Padding(0, t.padding)
}

// HintStyle renders key help below a prompt.
func (t Theme) HintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.palette.Muted)
}

// CursorStyle highlights the selected choice.
func (t Theme) CursorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.palette.Cursor)
}

// Badge returns a small colored label style.
func (t Theme) Badge(tone Tone) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(t.palette.Text)
	switch tone {
	case ToneSuccess:
		return base.Background(t.palette.Success)
	case ToneWarning:
		return base.Background(t.palette.Warning)
	case ToneError:
		return base.Background(t.palette.Error)
	default:
		return base.Background(t.palette.Frame)
	}
}

func defaultIcons() Icons {
	if plainTerminal() {
		return asciiIcons.clone()
	}
	return emojiIcons.clone()
}

// plainTerminal reports terminals where emoji widths are unreliable.
func plainTerminal() bool {
	if os.Getenv("SSH_CLIENT") != "" || os.Getenv("SSH_TTY") != "" || os.Getenv("SSH_CONNECTION") != "" {
		return true
	}
	return runtime.GOOS == "windows"
}

var emojiIcons = Icons{
	"folder":  "📁",
	"video":   "🎥",
	"cursor":  "▸",
	"success": "✅",
	"warning": "⚠️",
	"error":   "❌",
	"arrows":  "↑↓",
}

var asciiIcons = Icons{
	"folder":  "[D]",
	"video":   "[V]",
	"cursor":  ">",
	"success": "[v]",
	"warning": "[!]",
	"error":   "[x]",
	"arrows":  "^v",
}
