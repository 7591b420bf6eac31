package protocol

import (
	"encoding/json"
	"fmt"
)

// EventType discriminates between stream event kinds.
type EventType string

const (
	EventTypeMessageStart      EventType = "message_start"
	EventTypeReasoningStart    EventType = "reasoning_start"
	EventTypeReasoningDelta    EventType = "reasoning_delta"
	EventTypeReasoningEnd      EventType = "reasoning_end"
	EventTypeSearchStart       EventType = "search_start"
	EventTypeSearchResult      EventType = "search_result"
	EventTypeContentBlockStart EventType = "content_block_start"
	EventTypeContentBlockDelta EventType = "content_block_delta"
	EventTypeContentBlockStop  EventType = "content_block_stop"
	EventTypeMessageDelta      EventType = "message_delta"
	EventTypeMessageStop       EventType = "message_stop"
)

// StopReasonEndTurn is the message_delta stop reason for a finished turn.
const StopReasonEndTurn = "end_turn"

// Event is the closed set of stream events. Every known kind has its own
// struct; anything else decodes to UnknownEvent.
type Event interface {
	EventType() EventType
}

// Usage carries token counts reported by the service.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// MessageStartEvent opens an assistant message.
type MessageStartEvent struct {
	Message struct {
		ID    string `json:"id"`
		Model string `json:"model"`
		Usage Usage  `json:"usage"`
	} `json:"message"`
}

// EventType returns the stream event type.
func (e MessageStartEvent) EventType() EventType { return EventTypeMessageStart }

// ReasoningStartEvent marks the start of the reasoning trace.
type ReasoningStartEvent struct{}

// EventType returns the stream event type.
func (e ReasoningStartEvent) EventType() EventType { return EventTypeReasoningStart }

// ReasoningDeltaEvent carries a reasoning fragment.
type ReasoningDeltaEvent struct {
	Content string `json:"content"`
}

// EventType returns the stream event type.
func (e ReasoningDeltaEvent) EventType() EventType { return EventTypeReasoningDelta }

// ReasoningEndEvent marks the end of the reasoning trace.
type ReasoningEndEvent struct{}

// EventType returns the stream event type.
func (e ReasoningEndEvent) EventType() EventType { return EventTypeReasoningEnd }

// SearchStartEvent fires when the service starts a tool search.
type SearchStartEvent struct {
	ToolName string `json:"tool_name"`
}

// EventType returns the stream event type.
func (e SearchStartEvent) EventType() EventType { return EventTypeSearchStart }

// SearchResultEvent carries the raw search result object.
type SearchResultEvent struct {
	ToolName string          `json:"tool_name"`
	Result   json.RawMessage `json:"result"`
}

// EventType returns the stream event type.
func (e SearchResultEvent) EventType() EventType { return EventTypeSearchResult }

// ContentBlockStartEvent starts an answer content block.
type ContentBlockStartEvent struct {
	ContentBlock json.RawMessage `json:"content_block"`
	Index        int             `json:"index"`
}

// EventType returns the stream event type.
func (e ContentBlockStartEvent) EventType() EventType { return EventTypeContentBlockStart }

// TextDelta is the delta payload of content_block_delta.
type TextDelta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ContentBlockDeltaEvent contains incremental answer text.
type ContentBlockDeltaEvent struct {
	Delta TextDelta `json:"delta"`
	Index int       `json:"index"`
}

// EventType returns the stream event type.
func (e ContentBlockDeltaEvent) EventType() EventType { return EventTypeContentBlockDelta }

// ContentBlockStopEvent marks block completion.
type ContentBlockStopEvent struct {
	Index int `json:"index"`
}

// EventType returns the stream event type.
func (e ContentBlockStopEvent) EventType() EventType { return EventTypeContentBlockStop }

// MessageDelta contains message metadata updates.
type MessageDelta struct {
	StopReason string `json:"stop_reason"`
}

// MessageDeltaEvent updates message metadata.
type MessageDeltaEvent struct {
	Usage *Usage       `json:"usage,omitempty"`
	Delta MessageDelta `json:"delta"`
}

// EventType returns the stream event type.
func (e MessageDeltaEvent) EventType() EventType { return EventTypeMessageDelta }

// MessageStopEvent marks message completion.
type MessageStopEvent struct{}

// EventType returns the stream event type.
func (e MessageStopEvent) EventType() EventType { return EventTypeMessageStop }

// UnknownEvent is any event whose type tag is not recognized. It is kept
// so that callers can log it; dispatch ignores it.
type UnknownEvent struct {
	Tag string
}

// EventType returns the raw tag.
func (e UnknownEvent) EventType() EventType { return EventType(e.Tag) }

// ParseEvent decodes one data payload into a typed event. Invalid JSON is
// an error; a valid object with an unrecognized type is an UnknownEvent.
func ParseEvent(data []byte) (Event, error) {
	var base struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("failed to parse event type: %w", err)
	}

	switch base.Type {
	case EventTypeMessageStart:
		return decode[MessageStartEvent](data)
	case EventTypeReasoningStart:
		return ReasoningStartEvent{}, nil
	case EventTypeReasoningDelta:
		return decode[ReasoningDeltaEvent](data)
	case EventTypeReasoningEnd:
		return ReasoningEndEvent{}, nil
	case EventTypeSearchStart:
		return decode[SearchStartEvent](data)
	case EventTypeSearchResult:
		return decode[SearchResultEvent](data)
	case EventTypeContentBlockStart:
		return decode[ContentBlockStartEvent](data)
	case EventTypeContentBlockDelta:
		return decode[ContentBlockDeltaEvent](data)
	case EventTypeContentBlockStop:
		return decode[ContentBlockStopEvent](data)
	case EventTypeMessageDelta:
		return decode[MessageDeltaEvent](data)
	case EventTypeMessageStop:
		return MessageStopEvent{}, nil
	default:
		return UnknownEvent{Tag: string(base.Type)}, nil
	}
}

func decode[T Event](data []byte) (Event, error) {
	var e T
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to parse %s event: %w", e.EventType(), err)
	}
	return e, nil
}
