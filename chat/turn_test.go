package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTurn_BeginIfAbsentOnce(t *testing.T) {
	sink := &recordingSink{}
	turn := NewTurn(sink)

	assert.Equal(t, PhaseIdle, turn.Phase())
	assert.True(t, turn.BeginIfAbsent())
	assert.False(t, turn.BeginIfAbsent())
	assert.Equal(t, PhaseReasoning, turn.Phase())
	assert.Equal(t, 1, sink.count("turn"))
}

func TestTurn_ReasoningNotifiesFullText(t *testing.T) {
	sink := &recordingSink{}
	turn := NewTurn(sink)

	turn.AppendReasoning("step1")
	turn.AppendReasoning(" step2")

	assert.Equal(t, "step1 step2", turn.Reasoning())
	assert.Equal(t, []string{"reasoning:step1", "reasoning:step1 step2"}, sink.filter("reasoning:"))
	assert.Equal(t, 1, sink.count("turn"), "append implicitly begins the turn")
}

func TestTurn_AnswerMovesToAnswering(t *testing.T) {
	sink := &recordingSink{}
	turn := NewTurn(sink)

	turn.AppendReasoning("thinking")
	turn.AppendAnswer("Hello")
	turn.AppendAnswer(" there")

	assert.Equal(t, PhaseAnswering, turn.Phase())
	assert.Equal(t, "Hello there", turn.Answer())
	assert.Equal(t, []string{"answer:Hello", "answer:Hello there"}, sink.filter("answer:"))
}

func TestTurn_EmptyAppendsAreNoOps(t *testing.T) {
	sink := &recordingSink{}
	turn := NewTurn(sink)

	turn.AppendReasoning("")
	turn.AppendAnswer("")

	assert.Empty(t, sink.Calls())
	assert.False(t, turn.Begun())
	assert.Equal(t, PhaseIdle, turn.Phase())
}

func TestTurn_ResetReasoning(t *testing.T) {
	turn := NewTurn(nil)
	turn.AppendReasoning("old")
	turn.ResetReasoning()
	turn.AppendReasoning("new")
	assert.Equal(t, "new", turn.Reasoning())
}

func TestTurn_FinalizeEmptyUsesSentinel(t *testing.T) {
	turn := NewTurn(nil)
	turn.AppendReasoning("step1")

	assert.Equal(t, EmptyResponse, turn.Finalize())
	assert.Equal(t, PhaseDone, turn.Phase())
}

func TestTurn_FinalizeIsIdempotent(t *testing.T) {
	sink := &recordingSink{}
	turn := NewTurn(sink)
	turn.AppendAnswer("answer")

	first := turn.Finalize()
	turn.AppendAnswer(" more")
	second := turn.Finalize()

	assert.Equal(t, "answer", first)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"answer:answer"}, sink.filter("answer:"))
}
