package chat

import "strings"

// EmptyResponse is committed as the assistant answer when a turn ends with
// no answer text.
const EmptyResponse = "[empty response]"

// Phase is the lifecycle position of a Turn.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseReasoning
	PhaseAnswering
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseReasoning:
		return "reasoning"
	case PhaseAnswering:
		return "answering"
	case PhaseDone:
		return "done"
	default:
		return "idle"
	}
}

// Turn accumulates one assistant response. It exists, from the sink's
// point of view, only after Begin has fired; until then appends implicitly
// begin it.
type Turn struct {
	sink      Sink
	reasoning strings.Builder
	answer    strings.Builder
	final     string
	phase     Phase
	begun     bool
}

// NewTurn creates an idle turn reporting to sink.
func NewTurn(sink Sink) *Turn {
	if sink == nil {
		sink = NoOpSink{}
	}
	return &Turn{sink: sink}
}

// BeginIfAbsent moves an idle turn to reasoning and announces it. It
// reports whether the turn was created by this call.
func (t *Turn) BeginIfAbsent() bool {
	if t.begun {
		return false
	}
	t.begun = true
	if t.phase == PhaseIdle {
		t.phase = PhaseReasoning
	}
	t.sink.OnTurnCreated()
	return true
}

// ResetReasoning discards reasoning text collected so far.
func (t *Turn) ResetReasoning() {
	if t.phase == PhaseDone {
		return
	}
	t.reasoning.Reset()
}

// AppendReasoning adds a reasoning fragment and publishes the full text.
func (t *Turn) AppendReasoning(text string) {
	if text == "" || t.phase == PhaseDone {
		return
	}
	t.BeginIfAbsent()
	t.reasoning.WriteString(text)
	t.sink.OnReasoningUpdate(t.reasoning.String())
}

// AppendAnswer adds an answer fragment and publishes the full text.
func (t *Turn) AppendAnswer(text string) {
	if text == "" || t.phase == PhaseDone {
		return
	}
	t.BeginIfAbsent()
	t.phase = PhaseAnswering
	t.answer.WriteString(text)
	t.sink.OnAnswerUpdate(t.answer.String())
}

// Finalize closes the turn and returns the text to commit to history.
// Repeated calls return the same value.
func (t *Turn) Finalize() string {
	if t.phase == PhaseDone {
		return t.final
	}
	t.phase = PhaseDone
	t.final = t.answer.String()
	if t.final == "" {
		t.final = EmptyResponse
	}
	return t.final
}

func (t *Turn) Begun() bool       { return t.begun }
func (t *Turn) Phase() Phase      { return t.phase }
func (t *Turn) Reasoning() string { return t.reasoning.String() }
func (t *Turn) Answer() string    { return t.answer.String() }
