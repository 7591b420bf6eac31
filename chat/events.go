package chat

import "sync"

// Event is a sink notification delivered over a channel.
type Event interface {
	isEvent()
}

// TurnCreatedEvent mirrors Sink.OnTurnCreated.
type TurnCreatedEvent struct{}

// ReasoningEvent carries the full reasoning text so far.
type ReasoningEvent struct {
	FullText string
}

// AnswerEvent carries the full answer text so far.
type AnswerEvent struct {
	FullText string
}

// SearchEvent shows or replaces the search notification.
type SearchEvent struct {
	Text string
}

// SearchClearedEvent removes the search notification.
type SearchClearedEvent struct{}

// StatusEvent sets the status line.
type StatusEvent struct {
	Text string
	Kind StatusKind
}

// StatusClearedEvent hides the status line.
type StatusClearedEvent struct{}

// TurnEndedEvent is published by the caller of Conversation.Send once it
// returns, so that consumers see it after every notification of the turn.
type TurnEndedEvent struct {
	Result *TurnResult
	Err    error
}

func (TurnCreatedEvent) isEvent()   {}
func (ReasoningEvent) isEvent()     {}
func (AnswerEvent) isEvent()        {}
func (SearchEvent) isEvent()        {}
func (SearchClearedEvent) isEvent() {}
func (StatusEvent) isEvent()        {}
func (StatusClearedEvent) isEvent() {}
func (TurnEndedEvent) isEvent()     {}

// EventSink is a Sink that forwards notifications to a channel, for
// consumers such as a UI loop that run on a different goroutine.
//
// Sends block until the consumer receives or the sink is closed; the
// order of notifications is preserved.
type EventSink struct {
	ch        chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewEventSink creates a sink with the given channel buffer.
func NewEventSink(buffer int) *EventSink {
	if buffer < 0 {
		buffer = 0
	}
	return &EventSink{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
}

// Events returns the receive side.
func (s *EventSink) Events() <-chan Event {
	return s.ch
}

// Close stops delivery. Notifications sent afterwards are dropped.
func (s *EventSink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *EventSink) emit(e Event) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.ch <- e:
	case <-s.done:
	}
}

func (s *EventSink) OnTurnCreated()                { s.emit(TurnCreatedEvent{}) }
func (s *EventSink) OnReasoningUpdate(text string) { s.emit(ReasoningEvent{FullText: text}) }
func (s *EventSink) OnAnswerUpdate(text string)    { s.emit(AnswerEvent{FullText: text}) }
func (s *EventSink) OnSearchNotification(t string) { s.emit(SearchEvent{Text: t}) }
func (s *EventSink) OnSearchCleared()              { s.emit(SearchClearedEvent{}) }
func (s *EventSink) OnStatusCleared()              { s.emit(StatusClearedEvent{}) }

func (s *EventSink) OnStatus(text string, kind StatusKind) {
	s.emit(StatusEvent{Text: text, Kind: kind})
}

// TurnEnded publishes the outcome of a Send call on the same channel as
// its notifications.
func (s *EventSink) TurnEnded(result *TurnResult, err error) {
	s.emit(TurnEndedEvent{Result: result, Err: err})
}

var _ Sink = (*EventSink)(nil)
