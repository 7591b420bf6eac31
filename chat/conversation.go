package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bazelment/siderchat/internal/sse"
	"github.com/bazelment/siderchat/protocol"
)

// maxErrorBody bounds how much of a failed response is read for its error
// envelope.
const maxErrorBody = 64 << 10

// Settings are the per-request toggles a user can change between turns.
type Settings struct {
	Model  string
	Think  bool
	Search bool
}

// TurnResult summarizes a completed turn.
type TurnResult struct {
	Text           string
	Reasoning      string
	ConversationID string
	MessageID      string
	InputTokens    int
	OutputTokens   int
	Duration       time.Duration
	// Completed is false when the stream ended without message_stop or
	// [DONE]; the partial answer was still committed.
	Completed bool
}

// Conversation drives turns against a Transport, owning the history and
// session identifiers. At most one turn runs at a time.
type Conversation struct {
	transport Transport
	sink      Sink
	logger    *slog.Logger

	mu       sync.Mutex
	history  []Message
	session  SessionState
	settings Settings

	inFlight atomic.Bool
}

// NewConversation creates an empty conversation.
func NewConversation(t Transport, opts ...Option) *Conversation {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Sink == nil {
		cfg.Sink = NoOpSink{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	return &Conversation{
		transport: t,
		sink:      cfg.Sink,
		logger:    cfg.Logger,
		settings: Settings{
			Model:  cfg.Model,
			Think:  cfg.Think,
			Search: cfg.Search,
		},
	}
}

// Send submits text as a user turn and streams the reply to the sink. It
// blocks until the stream ends.
//
// On a request failure the user turn is removed from history and a
// *RequestError is returned. Canceling ctx is treated the same way. Once
// streaming has begun any other failure still commits the turn with
// whatever text arrived.
func (c *Conversation) Send(ctx context.Context, text string) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if c.transport == nil {
		return nil, ErrNoTransport
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrTurnInProgress
	}
	defer c.inFlight.Store(false)

	start := time.Now()

	c.mu.Lock()
	c.history = append(c.history, Message{Role: RoleUser, Content: text})
	settings := c.settings
	req := Request{
		Session: c.session.RequestContext(),
		Body:    protocol.NewMessagesRequest(settings.Model, toWire(c.history), settings.Think, settings.Search),
	}
	c.mu.Unlock()

	disp := NewDispatcher(c.sink, c.logger)
	c.sink.OnStatus(StatusSending, StatusInfo)

	c.logger.Debug("sending turn",
		"model", settings.Model,
		"think", settings.Think,
		"search", settings.Search,
		"messages", len(req.Body.Messages),
		"conversation_id", req.Session.ConversationID)

	resp, err := c.transport.Open(ctx, req)
	if err != nil {
		return nil, c.fail(disp, &RequestError{Cause: err, Message: err.Error()})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, c.fail(disp, &RequestError{
			StatusCode: resp.StatusCode,
			Message:    protocol.ParseErrorMessage(body),
		})
	}

	c.mu.Lock()
	c.session.Update(resp.ConversationID, resp.MessageID)
	c.mu.Unlock()

	r := sse.NewReader(resp.Body)
	for !disp.State().Terminal() {
		f, err := r.Next()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, c.fail(disp, &RequestError{Cause: ctxErr, Message: "turn canceled"})
			}
			if !errors.Is(err, io.EOF) {
				c.logger.Warn("stream ended early", "error", err)
			}
			break
		}
		disp.Step(f)
	}
	completed := disp.State() == StateCompleted

	answer := disp.Finish()

	c.mu.Lock()
	c.history = append(c.history, Message{Role: RoleAssistant, Content: answer})
	session := c.session
	c.mu.Unlock()

	usage := disp.Usage()
	result := &TurnResult{
		Text:           answer,
		Reasoning:      disp.Turn().Reasoning(),
		ConversationID: session.ConversationID,
		MessageID:      session.LastMessageID,
		InputTokens:    usage.InputTokens,
		OutputTokens:   usage.OutputTokens,
		Duration:       time.Since(start),
		Completed:      completed,
	}

	c.logger.Info("turn complete",
		"model", settings.Model,
		"chars", len(answer),
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
		"duration", result.Duration,
		"completed", completed)

	return result, nil
}

// fail rolls back the pending user turn and reports err to the sink.
func (c *Conversation) fail(disp *Dispatcher, err *RequestError) error {
	c.mu.Lock()
	if n := len(c.history); n > 0 && c.history[n-1].Role == RoleUser {
		c.history = c.history[:n-1]
	}
	c.mu.Unlock()

	disp.Fail(err.Message)
	c.logger.Error("request failed", "status", err.StatusCode, "error", err.Message)
	return err
}

// History returns a copy of the committed messages.
func (c *Conversation) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.history))
	copy(out, c.history)
	return out
}

// Session returns the current session identifiers.
func (c *Conversation) Session() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Settings returns the current toggles.
func (c *Conversation) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// SetModel changes the model for subsequent turns.
func (c *Conversation) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Model = model
}

// SetThink toggles reasoning for subsequent turns.
func (c *Conversation) SetThink(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Think = enabled
}

// SetSearch toggles web search for subsequent turns.
func (c *Conversation) SetSearch(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Search = enabled
}

// Busy reports whether a turn is in flight.
func (c *Conversation) Busy() bool {
	return c.inFlight.Load()
}

// Reset clears history and session identifiers. It fails while a turn is
// in flight.
func (c *Conversation) Reset() error {
	if c.inFlight.Load() {
		return ErrTurnInProgress
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
	c.session.Reset()
	return nil
}
