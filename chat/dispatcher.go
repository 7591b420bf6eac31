package chat

import (
	"context"
	"log/slog"

	"github.com/bazelment/siderchat/internal/logging"
	"github.com/bazelment/siderchat/internal/sse"
	"github.com/bazelment/siderchat/protocol"
)

// State is the dispatcher's position in a turn.
type State int

const (
	StateAwaitingStart State = iota
	StateReasoning
	StateSearching
	StateAnswering
	StateCompleted
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateAwaitingStart:
		return "awaiting_start"
	case StateReasoning:
		return "reasoning"
	case StateSearching:
		return "searching"
	case StateAnswering:
		return "answering"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further events are accepted.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateErrored
}

// Dispatcher applies decoded stream events to a Turn and a Sink. One
// dispatcher serves exactly one turn.
type Dispatcher struct {
	sink          Sink
	logger        *slog.Logger
	turn          *Turn
	final         string
	usage         protocol.Usage
	messageID     string
	state         State
	searchVisible bool
	finished      bool
}

// NewDispatcher creates a dispatcher for a fresh turn.
func NewDispatcher(sink Sink, logger *slog.Logger) *Dispatcher {
	if sink == nil {
		sink = NoOpSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sink:   sink,
		logger: logger,
		turn:   NewTurn(sink),
	}
}

// Step feeds one decoded frame. Frames whose payload is not valid JSON are
// logged and skipped. It returns the state after the frame.
func (d *Dispatcher) Step(f sse.Frame) State {
	if d.state.Terminal() {
		return d.state
	}
	d.logger.Log(context.Background(), logging.LevelTrace, "stream frame", "done", f.Done, "data", string(f.Data))
	if f.Done {
		d.clearSearch()
		d.state = StateCompleted
		return d.state
	}

	evt, err := protocol.ParseEvent(f.Data)
	if err != nil {
		perr := &ProtocolError{Cause: err, Message: "undecodable event", Line: string(f.Data)}
		d.logger.Warn("skipping stream line", "error", perr, "line", truncate(perr.Line, 200))
		return d.state
	}
	return d.Handle(evt)
}

// Handle applies one typed event.
func (d *Dispatcher) Handle(evt protocol.Event) State {
	if d.state.Terminal() {
		return d.state
	}

	switch e := evt.(type) {
	case protocol.MessageStartEvent:
		d.messageID = e.Message.ID
		d.usage.InputTokens = e.Message.Usage.InputTokens
		d.sink.OnStatus(StatusPreparing, StatusInfo)

	case protocol.ReasoningStartEvent:
		d.turn.BeginIfAbsent()
		d.turn.ResetReasoning()
		d.sink.OnStatus(StatusThinking, StatusInfo)
		d.state = StateReasoning

	case protocol.ReasoningDeltaEvent:
		d.turn.AppendReasoning(e.Content)
		if d.state == StateAwaitingStart {
			d.state = StateReasoning
		}

	case protocol.ReasoningEndEvent:
		d.sink.OnStatus(StatusReasoningComplete, StatusSuccess)

	case protocol.SearchStartEvent:
		d.searchVisible = true
		d.sink.OnSearchNotification(protocol.SearchingText)
		d.sink.OnStatus(StatusSearching, StatusInfo)
		d.state = StateSearching

	case protocol.SearchResultEvent:
		d.searchVisible = true
		d.sink.OnSearchNotification(protocol.FormatSearchResult(e.Result))

	case protocol.ContentBlockStartEvent:
		d.turn.BeginIfAbsent()
		d.clearSearch()
		d.sink.OnStatus(StatusReplying, StatusInfo)
		d.state = StateAnswering

	case protocol.ContentBlockDeltaEvent:
		d.turn.AppendAnswer(e.Delta.Text)
		d.state = StateAnswering

	case protocol.ContentBlockStopEvent:
		// Block boundaries carry no content.

	case protocol.MessageDeltaEvent:
		if e.Usage != nil {
			d.usage.OutputTokens = e.Usage.OutputTokens
			if e.Usage.InputTokens > 0 {
				d.usage.InputTokens = e.Usage.InputTokens
			}
		}
		if e.Delta.StopReason == protocol.StopReasonEndTurn {
			d.sink.OnStatus(StatusDone, StatusSuccess)
			d.clearSearch()
		}

	case protocol.MessageStopEvent:
		d.sink.OnStatusCleared()
		d.state = StateCompleted

	default:
		d.logger.Debug("ignoring unknown stream event", "type", evt.EventType())
	}

	return d.state
}

// Fail moves the dispatcher to Errored and surfaces message. The turn is
// not finalized.
func (d *Dispatcher) Fail(message string) {
	if d.state.Terminal() {
		return
	}
	d.clearSearch()
	d.sink.OnStatus(message, StatusError)
	d.state = StateErrored
}

// Finish finalizes the turn and returns the answer to commit. It is safe
// to call more than once; only the first call has effects.
func (d *Dispatcher) Finish() string {
	if d.finished {
		return d.final
	}
	d.finished = true

	created := d.turn.BeginIfAbsent()
	d.final = d.turn.Finalize()
	if created {
		d.sink.OnAnswerUpdate(d.final)
	}

	d.clearSearch()
	d.sink.OnStatusCleared()
	if d.state != StateErrored {
		d.state = StateCompleted
	}
	return d.final
}

// clearSearch removes the transient search notification at most once per
// display.
func (d *Dispatcher) clearSearch() {
	if !d.searchVisible {
		return
	}
	d.searchVisible = false
	d.sink.OnSearchCleared()
}

func (d *Dispatcher) State() State         { return d.state }
func (d *Dispatcher) Turn() *Turn           { return d.turn }
func (d *Dispatcher) Usage() protocol.Usage { return d.usage }
func (d *Dispatcher) MessageID() string     { return d.messageID }
func (d *Dispatcher) SearchVisible() bool   { return d.searchVisible }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
