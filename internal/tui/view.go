package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/bazelment/siderchat/chat"
	"github.com/bazelment/siderchat/internal/commands"
)

const (
	headerHeight = 1
	footerHeight = 2
)

// View renders the screen.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderStatus(),
		m.styles.Prompt.Render(m.input.View()),
	)
}

func (m Model) renderHeader() string {
	s := m.conv.Settings()
	line := fmt.Sprintf("siderchat | model=%s | think=%s | search=%s", s.Model, onOff(s.Think), onOff(s.Search))
	if id := m.conv.Session().ConversationID; id != "" {
		line += " | conversation=" + id
	}
	return m.styles.Header.Render(m.fit(line))
}

func (m Model) renderStatus() string {
	text := m.statusText
	if m.sending {
		text = m.spinner.View() + " " + text
	}
	text = m.fit(text)
	switch m.statusKind {
	case chat.StatusError:
		return m.styles.Error.Render(text)
	case chat.StatusSuccess:
		return m.styles.Success.Render(text)
	default:
		return m.styles.StatusBar.Render(text)
	}
}

// fit truncates a single line to the terminal width.
func (m Model) fit(line string) string {
	if m.width <= 0 {
		return line
	}
	return runewidth.Truncate(line, m.width, "…")
}

func (m Model) renderTranscript() string {
	blocks := make([]string, 0, len(m.transcript)+2)
	for _, e := range m.transcript {
		blocks = append(blocks, m.renderEntry(e))
	}
	if m.live != nil {
		blocks = append(blocks, m.renderLive(*m.live))
	}
	if m.searchText != "" {
		blocks = append(blocks, m.styles.Search.Render(m.searchText))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderEntry(e entry) string {
	switch e.kind {
	case entryUser:
		return m.styles.User.Render("You:") + " " + e.text
	case entryAssistant:
		var b strings.Builder
		b.WriteString(m.styles.Assistant.Render("Assistant:"))
		if e.reasoning != "" {
			b.WriteString("\n" + m.styles.Reasoning.Render(m.wrap(e.reasoning)))
		}
		b.WriteString("\n" + e.rendered)
		if e.footer != "" {
			b.WriteString("\n" + m.styles.StatusBar.Render(e.footer))
		}
		return b.String()
	case entryError:
		return m.styles.Error.Render("[error] " + e.text)
	default:
		return m.styles.System.Render(e.text)
	}
}

func (m Model) renderLive(t liveTurn) string {
	var b strings.Builder
	b.WriteString(m.styles.Assistant.Render("Assistant:"))
	if t.reasoning != "" {
		b.WriteString("\n" + m.styles.Reasoning.Render(m.wrap(t.reasoning)))
	}
	if t.answer != "" {
		b.WriteString("\n" + m.wrap(t.answer))
	}
	return b.String()
}

func (m Model) wrap(s string) string {
	if m.width <= 2 {
		return s
	}
	return lipgloss.NewStyle().Width(m.width - 2).Render(s)
}

func helpLine() string {
	return commands.HelpText()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
