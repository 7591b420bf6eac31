package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bazelment/siderchat/chat"
	"github.com/bazelment/siderchat/internal/commands"
)

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sinkEventMsg:
		m.applyEvent(msg.event)
		m.syncViewport()
		return m, m.listenForEvents()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.cancelTurn != nil {
				m.cancelTurn()
			}
			return m, tea.Quit
		case "esc":
			if m.sending && m.cancelTurn != nil {
				m.cancelTurn()
				m.statusText = "Canceling..."
				return m, nil
			}
		case "enter":
			return m.submit()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit handles the enter key.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}
	m.input.SetValue("")

	if cmd, ok := commands.Parse(line); ok {
		res, err := commands.Execute(m.conv, cmd)
		switch {
		case err != nil:
			m.transcript = append(m.transcript, entry{kind: entryError, text: err.Error()})
		case res.Exit:
			return m, tea.Quit
		default:
			if cmd.Name == commands.Reset {
				m.transcript = nil
			}
			m.transcript = append(m.transcript, entry{kind: entrySystem, text: res.Output})
		}
		m.syncViewport()
		return m, nil
	}

	if m.sending {
		m.statusText = chat.ErrTurnInProgress.Error()
		m.statusKind = chat.StatusError
		return m, nil
	}

	ctx := m.ctx
	var cancel context.CancelFunc
	if m.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	m.cancelTurn = cancel

	m.transcript = append(m.transcript, entry{kind: entryUser, text: line})
	m.sending = true
	m.live = nil
	m.searchText = ""
	m.syncViewport()

	return m, tea.Batch(m.sendTurn(ctx, line), m.spinner.Tick)
}

// applyEvent folds one conversation notification into the model.
func (m *Model) applyEvent(e chat.Event) {
	switch e := e.(type) {
	case chat.TurnCreatedEvent:
		m.live = &liveTurn{}
	case chat.ReasoningEvent:
		m.ensureLive().reasoning = e.FullText
	case chat.AnswerEvent:
		m.ensureLive().answer = e.FullText
	case chat.SearchEvent:
		m.searchText = e.Text
	case chat.SearchClearedEvent:
		m.searchText = ""
	case chat.StatusEvent:
		m.statusText = e.Text
		m.statusKind = e.Kind
	case chat.StatusClearedEvent:
		m.statusText = ""
		m.statusKind = chat.StatusInfo
	case chat.TurnEndedEvent:
		m.finishTurn(e.Result, e.Err)
	}
}

func (m *Model) ensureLive() *liveTurn {
	if m.live == nil {
		m.live = &liveTurn{}
	}
	return m.live
}

// finishTurn commits the streamed turn, or removes the user entry when
// the conversation rolled it back.
func (m *Model) finishTurn(result *chat.TurnResult, err error) {
	m.sending = false
	m.searchText = ""
	if m.cancelTurn != nil {
		m.cancelTurn()
		m.cancelTurn = nil
	}
	live := m.live
	m.live = nil

	if err != nil {
		var reqErr *chat.RequestError
		if errors.As(err, &reqErr) {
			m.dropLastUserEntry()
		}
		m.transcript = append(m.transcript, entry{kind: entryError, text: err.Error()})
		m.statusText = err.Error()
		m.statusKind = chat.StatusError
		return
	}

	e := entry{
		kind:      entryAssistant,
		text:      result.Text,
		reasoning: result.Reasoning,
		footer: fmt.Sprintf("%.1fs · %d in / %d out tokens",
			result.Duration.Seconds(), result.InputTokens, result.OutputTokens),
	}
	if live != nil && e.reasoning == "" {
		e.reasoning = live.reasoning
	}
	if !result.Completed {
		e.footer += " · stream ended early"
	}
	e.rendered = m.renderMarkdown(e.text)
	m.transcript = append(m.transcript, e)
	m.statusText = "Ready"
	m.statusKind = chat.StatusInfo
}

func (m *Model) dropLastUserEntry() {
	for i := len(m.transcript) - 1; i >= 0; i-- {
		if m.transcript[i].kind == entryUser {
			m.transcript = append(m.transcript[:i], m.transcript[i+1:]...)
			return
		}
	}
}

// resize lays out the viewport and re-renders markdown for the new width.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.viewport.Width = width
	m.viewport.Height = max(height-headerHeight-footerHeight, 1)
	m.input.Width = max(width-4, 10)

	if m.md != nil {
		if err := m.md.SetWidth(max(width-2, 20)); err != nil {
			m.logger.Warn("markdown resize failed", "error", err)
		}
		for i := range m.transcript {
			if m.transcript[i].kind == entryAssistant {
				m.transcript[i].rendered = m.renderMarkdown(m.transcript[i].text)
			}
		}
	}
	m.ready = true
	m.syncViewport()
}

func (m *Model) renderMarkdown(text string) string {
	if m.md == nil {
		return text
	}
	out, err := m.md.Render(text)
	if err != nil {
		m.logger.Debug("markdown render failed", "error", err)
		return text
	}
	return strings.TrimRight(out, "\n")
}

// syncViewport rebuilds the transcript view and keeps it pinned to the
// bottom.
func (m *Model) syncViewport() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}
