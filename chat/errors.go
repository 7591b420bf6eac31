package chat

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common error conditions.
var (
	ErrTurnInProgress = errors.New("a turn is already in progress")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrNoTransport    = errors.New("no transport configured")
)

// ProtocolError represents a stream line that could not be decoded. It is
// logged and the line is skipped; it never fails a turn.
type ProtocolError struct {
	Cause   error
	Message string
	Line    string
}

func (e *ProtocolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("protocol error: %s", e.Message)
}

func (e *ProtocolError) Unwrap() error {
	return e.Cause
}

// RequestError is a failed request: the transport could not be opened or
// the service answered with a non-success status. The user turn that
// triggered it has been rolled back.
type RequestError struct {
	Cause      error
	Message    string
	StatusCode int
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed: %s", e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// IsRecoverable returns true if resubmitting the same input can succeed
// without changing configuration.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return false
		}
		return true
	}

	if errors.Is(err, ErrNoTransport) {
		return false
	}

	return true
}
