package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazelment/siderchat/chat"
	"github.com/bazelment/siderchat/protocol"
)

type capturedRequest struct {
	Header http.Header
	Query  string
	Path   string
	Body   protocol.MessagesRequest
}

// fakeService serves scripted event streams and records each request.
type fakeService struct {
	t        *testing.T
	mu       sync.Mutex
	requests []capturedRequest
	handler  func(w http.ResponseWriter, n int)
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body protocol.MessagesRequest
	assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))

	f.mu.Lock()
	f.requests = append(f.requests, capturedRequest{
		Header: r.Header.Clone(),
		Query:  r.URL.RawQuery,
		Path:   r.URL.Path,
		Body:   body,
	})
	n := len(f.requests)
	f.mu.Unlock()

	f.handler(w, n)
}

func (f *fakeService) Requests() []capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]capturedRequest(nil), f.requests...)
}

func writeStream(w http.ResponseWriter, lines ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	for _, l := range lines {
		fmt.Fprintf(w, "data: %s\n\n", l)
		if flusher != nil {
			flusher.Flush()
		}
	}
}

var helloLines = []string{
	`{"type":"message_start","message":{"id":"m","usage":{"input_tokens":3}}}`,
	`{"type":"content_block_start","index":0}`,
	`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`,
	`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":" there"}}`,
	`{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":2}}`,
	`{"type":"message_stop"}`,
	`[DONE]`,
}

func TestClient_OpenSendsRequest(t *testing.T) {
	svc := &fakeService{t: t, handler: func(w http.ResponseWriter, _ int) {
		w.Header().Set(HeaderConversationID, "conv-9")
		w.Header().Set(HeaderAssistantMessageID, "asst-9")
		writeStream(w, helloLines...)
	}}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	c := New(srv.URL, "secret")
	resp, err := c.Open(context.Background(), chat.Request{
		Session: chat.SessionContext{ConversationID: "conv-1", ParentMessageID: "asst-1"},
		Body:    protocol.NewMessagesRequest("gpt-5-mini", []protocol.Message{{Role: "user", Content: "Hi"}}, true, false),
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "conv-9", resp.ConversationID)
	assert.Equal(t, "asst-9", resp.MessageID)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "message_stop")

	reqs := svc.Requests()
	require.Len(t, reqs, 1)
	got := reqs[0]
	assert.Equal(t, MessagesPath, got.Path)
	assert.Equal(t, "cid=conv-1", got.Query)
	assert.Equal(t, "Bearer secret", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "conv-1", got.Header.Get(HeaderConversationID))
	assert.Equal(t, "asst-1", got.Header.Get(HeaderParentMessageID))
	assert.Equal(t, "gpt-5-mini", got.Body.Model)
	assert.True(t, got.Body.Stream)
	assert.True(t, got.Body.Metadata.ThinkEnabled)
}

func TestClient_OpenWithoutSession(t *testing.T) {
	svc := &fakeService{t: t, handler: func(w http.ResponseWriter, _ int) {
		writeStream(w, `[DONE]`)
	}}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	resp, err := New(srv.URL+"/", "tok").Open(context.Background(), chat.Request{})
	require.NoError(t, err)
	resp.Body.Close()

	got := svc.Requests()[0]
	assert.Equal(t, MessagesPath, got.Path)
	assert.Empty(t, got.Query)
	assert.Empty(t, got.Header.Get(HeaderConversationID))
	assert.Empty(t, got.Header.Get(HeaderParentMessageID))
}

func TestClient_InvalidBaseURL(t *testing.T) {
	_, err := New("://bad", "tok").Open(context.Background(), chat.Request{})
	assert.Error(t, err)
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, "tok").Open(context.Background(), chat.Request{})
	assert.Error(t, err)
}

func TestClient_TimeoutCancelsStream(t *testing.T) {
	block := make(chan struct{})
	svc := &fakeService{t: t, handler: func(w http.ResponseWriter, _ int) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-block
	}}
	srv := httptest.NewServer(svc)
	defer srv.Close()
	defer close(block)

	resp, err := New(srv.URL, "tok", WithTimeout(50*time.Millisecond)).Open(context.Background(), chat.Request{})
	require.NoError(t, err)
	defer resp.Body.Close()

	_, err = io.ReadAll(resp.Body)
	assert.Error(t, err)
}

func TestConversationOverHTTP(t *testing.T) {
	svc := &fakeService{t: t, handler: func(w http.ResponseWriter, n int) {
		switch n {
		case 1:
			w.Header().Set(HeaderConversationID, "conv-1")
			w.Header().Set(HeaderAssistantMessageID, "asst-1")
			writeStream(w, helloLines...)
		case 2:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":{"type":"authentication_error","message":"Invalid token"}}`)
		default:
			writeStream(w, helloLines...)
		}
	}}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	conv := chat.NewConversation(New(srv.URL, "tok"), chat.WithSearch(true))
	ctx := context.Background()

	result, err := conv.Send(ctx, "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello there", result.Text)

	_, err = conv.Send(ctx, "again")
	var reqErr *chat.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Invalid token", reqErr.Message)
	assert.Len(t, conv.History(), 2)

	_, err = conv.Send(ctx, "third")
	require.NoError(t, err)

	reqs := svc.Requests()
	require.Len(t, reqs, 3)
	assert.Empty(t, reqs[0].Query)
	assert.Equal(t, "cid=conv-1", reqs[2].Query)
	assert.Equal(t, "asst-1", reqs[2].Header.Get(HeaderParentMessageID))
	require.Len(t, reqs[0].Body.Tools, 1)
	assert.Equal(t, protocol.WebSearchToolName, reqs[0].Body.Tools[0].Name)

	var msgs []string
	for _, m := range reqs[2].Body.Messages {
		msgs = append(msgs, m.Role+":"+m.Content)
	}
	assert.Equal(t, []string{"user:Hi", "assistant:Hello there", "user:third"}, msgs)
}
