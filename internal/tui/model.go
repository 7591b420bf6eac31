// Package tui provides the full-screen chat interface.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bazelment/siderchat/chat"
	"github.com/bazelment/siderchat/render"
)

// entryKind classifies transcript entries.
type entryKind int

const (
	entryUser entryKind = iota
	entryAssistant
	entrySystem
	entryError
)

// entry is one block of the transcript. Assistant entries keep the raw
// text so they can be re-rendered when the width changes.
type entry struct {
	kind      entryKind
	text      string
	reasoning string
	rendered  string
	footer    string
}

// liveTurn is the assistant turn currently streaming.
type liveTurn struct {
	reasoning string
	answer    string
}

// Conversation is the part of chat.Conversation the TUI drives.
type Conversation interface {
	Send(ctx context.Context, text string) (*chat.TurnResult, error)
	Settings() chat.Settings
	SetModel(model string)
	SetThink(enabled bool)
	SetSearch(enabled bool)
	History() []chat.Message
	Reset() error
	Session() chat.SessionState
}

var _ Conversation = (*chat.Conversation)(nil)

// Model is the root TUI model.
type Model struct {
	ctx    context.Context
	conv   Conversation
	events *chat.EventSink
	logger *slog.Logger

	md     *render.MarkdownRenderer
	styles Styles

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	cancelTurn context.CancelFunc

	transcript []entry
	live       *liveTurn

	searchText string
	statusText string
	statusKind chat.StatusKind

	timeout       time.Duration
	width, height int
	sending       bool
	ready         bool
}

// Options configures a Model.
type Options struct {
	Logger       *slog.Logger
	GlamourStyle string
	Timeout      time.Duration
}

// NewModel creates a TUI model. events must be the sink the conversation
// was built with.
func NewModel(ctx context.Context, conv Conversation, events *chat.EventSink, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message or /help..."
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	md, err := render.NewMarkdownRenderer(80, opts.GlamourStyle)
	if err != nil {
		logger.Warn("markdown rendering disabled", "error", err)
	}

	return Model{
		ctx:        ctx,
		conv:       conv,
		events:     events,
		logger:     logger,
		md:         md,
		styles:     DefaultStyles(),
		input:      ti,
		viewport:   viewport.New(80, 20),
		spinner:    sp,
		timeout:    opts.Timeout,
		statusText: "Ready",
		transcript: []entry{{kind: entrySystem, text: "Welcome to siderchat. " + helpLine()}},
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.listenForEvents(),
	)
}

// listenForEvents waits for the next conversation notification.
func (m Model) listenForEvents() tea.Cmd {
	events := m.events
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case e := <-events.Events():
			return sinkEventMsg{event: e}
		}
	}
}

// sendTurn runs one Send off the UI goroutine. Its outcome is published
// through the event sink so it is ordered after the turn's notifications.
func (m Model) sendTurn(ctx context.Context, text string) tea.Cmd {
	conv := m.conv
	events := m.events
	return func() tea.Msg {
		result, err := conv.Send(ctx, text)
		events.TurnEnded(result, err)
		return nil
	}
}

type sinkEventMsg struct {
	event chat.Event
}
