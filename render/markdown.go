package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer wraps glamour for rendering finished answers.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	style    string // "dark", "light", "notty" or "auto"
	width    int
}

// NewMarkdownRenderer creates a markdown renderer wrapping at width.
// If style is empty, "auto" is used.
func NewMarkdownRenderer(width int, style string) (*MarkdownRenderer, error) {
	if style == "" {
		style = "auto"
	}
	r, err := newTermRenderer(width, style)
	if err != nil {
		return nil, err
	}
	return &MarkdownRenderer{renderer: r, style: style, width: width}, nil
}

// Render renders markdown text for terminal display. Trailing blank lines
// glamour adds are trimmed.
func (m *MarkdownRenderer) Render(text string) (string, error) {
	out, err := m.renderer.Render(text)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}

// SetWidth updates the word wrap width and recreates the renderer.
func (m *MarkdownRenderer) SetWidth(width int) error {
	if width == m.width {
		return nil
	}
	r, err := newTermRenderer(width, m.style)
	if err != nil {
		return err
	}
	m.renderer = r
	m.width = width
	return nil
}

// Width returns the current wrap width.
func (m *MarkdownRenderer) Width() int {
	return m.width
}

func newTermRenderer(width int, style string) (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamourOption(style),
		glamour.WithWordWrap(width),
	)
}

// glamourOption returns the glamour TermRendererOption for a style name.
func glamourOption(style string) glamour.TermRendererOption {
	switch style {
	case "dark", "light", "notty":
		return glamour.WithStandardStyle(style)
	default:
		return glamour.WithAutoStyle()
	}
}
