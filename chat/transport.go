package chat

import (
	"context"
	"io"

	"github.com/bazelment/siderchat/protocol"
)

// Request is one outgoing turn.
type Request struct {
	Session SessionContext
	Body    protocol.MessagesRequest
}

// Response is an opened stream. The transport has already read the status
// line and headers; Body yields the raw event-stream bytes.
type Response struct {
	Body           io.ReadCloser
	ConversationID string
	MessageID      string
	StatusCode     int
}

// Transport opens a streaming request against the assistant service.
//
// Open returns an error only when no response could be obtained. A response
// with a non-success status is returned normally so its body can be read
// for an error envelope.
type Transport interface {
	Open(ctx context.Context, req Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req Request) (*Response, error)

func (f TransportFunc) Open(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
