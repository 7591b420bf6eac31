package tui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazelment/siderchat/chat"
)

const answerStream = `data: {"type":"content_block_start","index":0}
data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}
data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":" there"}}
data: {"type":"message_stop"}
`

func streamTransport(body string) chat.Transport {
	return chat.TransportFunc(func(context.Context, chat.Request) (*chat.Response, error) {
		return &chat.Response{
			StatusCode:     http.StatusOK,
			ConversationID: "conv-1",
			Body:           io.NopCloser(strings.NewReader(body)),
		}, nil
	})
}

func newTestModel(t *testing.T, transport chat.Transport) (Model, *chat.EventSink, *chat.Conversation) {
	t.Helper()
	sink := chat.NewEventSink(64)
	t.Cleanup(sink.Close)
	conv := chat.NewConversation(transport, chat.WithSink(sink))
	m := NewModel(context.Background(), conv, sink, Options{GlamourStyle: "notty"})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model), sink, conv
}

func typeLine(t *testing.T, m Model, line string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(line)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model), cmd
}

func applyAll(m Model, events ...chat.Event) Model {
	for _, e := range events {
		updated, _ := m.Update(sinkEventMsg{event: e})
		m = updated.(Model)
	}
	return m
}

func TestModel_StreamedTurnIsCommitted(t *testing.T) {
	m, _, _ := newTestModel(t, streamTransport(answerStream))

	m, cmd := typeLine(t, m, "Hi")
	require.NotNil(t, cmd)
	assert.True(t, m.sending)
	assert.Equal(t, entryUser, m.transcript[len(m.transcript)-1].kind)

	m = applyAll(m,
		chat.TurnCreatedEvent{},
		chat.ReasoningEvent{FullText: "step1"},
		chat.AnswerEvent{FullText: "Hello"},
	)
	require.NotNil(t, m.live)
	assert.Equal(t, "Hello", m.live.answer)
	assert.Contains(t, m.viewport.View(), "Hello")

	m = applyAll(m, chat.TurnEndedEvent{Result: &chat.TurnResult{
		Text:         "Hello there",
		Completed:    true,
		InputTokens:  3,
		OutputTokens: 2,
		Duration:     time.Second,
	}})

	assert.False(t, m.sending)
	assert.Nil(t, m.live)
	last := m.transcript[len(m.transcript)-1]
	assert.Equal(t, entryAssistant, last.kind)
	assert.Equal(t, "Hello there", last.text)
	assert.Equal(t, "step1", last.reasoning)
	assert.Contains(t, last.footer, "3 in / 2 out tokens")
	assert.Contains(t, last.rendered, "Hello there")
}

func TestModel_SearchPanelFollowsEvents(t *testing.T) {
	m, _, _ := newTestModel(t, streamTransport(answerStream))

	m = applyAll(m, chat.SearchEvent{Text: "Searching for related information..."})
	assert.Contains(t, m.renderTranscript(), "Searching for related information...")

	m = applyAll(m, chat.SearchClearedEvent{})
	assert.NotContains(t, m.renderTranscript(), "Searching for related information...")
}

func TestModel_StatusEvents(t *testing.T) {
	m, _, _ := newTestModel(t, streamTransport(answerStream))

	m = applyAll(m, chat.StatusEvent{Text: chat.StatusThinking, Kind: chat.StatusInfo})
	assert.Equal(t, chat.StatusThinking, m.statusText)

	m = applyAll(m, chat.StatusClearedEvent{})
	assert.Empty(t, m.statusText)
}

func TestModel_RequestErrorDropsUserEntry(t *testing.T) {
	m, _, _ := newTestModel(t, streamTransport(answerStream))

	m, _ = typeLine(t, m, "Hi")
	before := len(m.transcript)

	m = applyAll(m, chat.TurnEndedEvent{Err: &chat.RequestError{StatusCode: 401, Message: "Invalid token"}})

	assert.False(t, m.sending)
	require.Len(t, m.transcript, before)
	last := m.transcript[len(m.transcript)-1]
	assert.Equal(t, entryError, last.kind)
	assert.Contains(t, last.text, "Invalid token")
	for _, e := range m.transcript {
		assert.NotEqual(t, entryUser, e.kind)
	}
	assert.Equal(t, chat.StatusError, m.statusKind)
}

func TestModel_RejectsSecondSubmitWhileSending(t *testing.T) {
	m, _, _ := newTestModel(t, streamTransport(answerStream))

	m, _ = typeLine(t, m, "first")
	count := len(m.transcript)
	m, cmd := typeLine(t, m, "second")

	assert.Nil(t, cmd)
	assert.Len(t, m.transcript, count)
	assert.Equal(t, chat.ErrTurnInProgress.Error(), m.statusText)
}

func TestModel_SlashCommands(t *testing.T) {
	m, _, conv := newTestModel(t, streamTransport(answerStream))

	m, _ = typeLine(t, m, "/think off")
	assert.False(t, conv.Settings().Think)
	assert.Contains(t, m.renderHeader(), "think=off")

	m, _ = typeLine(t, m, "/model nope")
	assert.Equal(t, entryError, m.transcript[len(m.transcript)-1].kind)

	m, _ = typeLine(t, m, "/reset")
	require.Len(t, m.transcript, 1)
	assert.Equal(t, "Conversation cleared.", m.transcript[0].text)

	_, cmd := typeLine(t, m, "/exit")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_SendTurnPublishesOutcomeLast(t *testing.T) {
	m, sink, conv := newTestModel(t, streamTransport(answerStream))

	cmd := m.sendTurn(context.Background(), "Hi")
	go cmd()

	var got []chat.Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e := <-sink.Events():
			got = append(got, e)
		case <-timeout:
			t.Fatal("turn never ended")
		}
		if _, ok := got[len(got)-1].(chat.TurnEndedEvent); ok {
			break
		}
	}

	ended := got[len(got)-1].(chat.TurnEndedEvent)
	require.NoError(t, ended.Err)
	assert.Equal(t, "Hello there", ended.Result.Text)
	assert.Contains(t, got, chat.AnswerEvent{FullText: "Hello there"})
	assert.Len(t, conv.History(), 2)
}

func TestModel_SendTurnTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	m, sink, conv := newTestModel(t, chat.TransportFunc(func(context.Context, chat.Request) (*chat.Response, error) {
		return nil, boom
	}))

	go m.sendTurn(context.Background(), "Hi")()

	for e := range sink.Events() {
		if ended, ok := e.(chat.TurnEndedEvent); ok {
			assert.ErrorIs(t, ended.Err, boom)
			break
		}
	}
	assert.Empty(t, conv.History())
}
