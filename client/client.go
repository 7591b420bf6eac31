// Package client implements chat.Transport over HTTP against the
// assistant service's /v1/messages endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/bazelment/siderchat/chat"
)

// Session headers exchanged with the service.
const (
	HeaderConversationID     = "X-Conversation-ID"
	HeaderParentMessageID    = "X-Parent-Message-ID"
	HeaderAssistantMessageID = "X-Assistant-Message-ID"
)

// MessagesPath is the streaming endpoint, relative to the base URL.
const MessagesPath = "/v1/messages"

// DefaultTimeout bounds a whole turn, including streaming.
const DefaultTimeout = 5 * time.Minute

// Client posts turns to the service.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	token      string
	userAgent  string
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithTimeout bounds each turn. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the service at baseURL authenticating with a
// bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
		baseURL:    baseURL,
		token:      token,
		userAgent:  "siderchat",
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ chat.Transport = (*Client)(nil)

// Open posts req and returns once the response headers arrive. The
// returned body must be closed by the caller; closing it also releases the
// turn timeout.
func (c *Client) Open(ctx context.Context, req chat.Request) (*chat.Response, error) {
	endpoint, err := c.endpoint(req.Session.ConversationID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req.Body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}
	if id := req.Session.ConversationID; id != "" {
		httpReq.Header.Set(HeaderConversationID, id)
	}
	if id := req.Session.ParentMessageID; id != "" {
		httpReq.Header.Set(HeaderParentMessageID, id)
	}

	c.logger.Debug("opening stream", "url", endpoint, "bytes", len(payload))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("send request: %w", err)
	}

	c.logger.Debug("stream opened",
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"))

	return &chat.Response{
		StatusCode:     resp.StatusCode,
		ConversationID: resp.Header.Get(HeaderConversationID),
		MessageID:      resp.Header.Get(HeaderAssistantMessageID),
		Body:           &cancelOnClose{ReadCloser: resp.Body, cancel: cancel},
	}, nil
}

// endpoint resolves the messages URL, adding cid when a conversation is
// known.
func (c *Client) endpoint(conversationID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", c.baseURL, err)
	}
	u = u.JoinPath(MessagesPath)
	if conversationID != "" {
		q := u.Query()
		q.Set("cid", conversationID)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
