package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// WebSearchToolName is the only tool the client ever declares.
const WebSearchToolName = "web_search"

// Message is one conversation entry in the request body.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Metadata toggles service-side features for a request.
type Metadata struct {
	ThinkEnabled  bool `json:"think_enabled"`
	SearchEnabled bool `json:"search_enabled"`
}

// Tool declares a capability the service may invoke.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// ToolChoice selects how the service picks tools.
type ToolChoice struct {
	Type string `json:"type"`
}

// MessagesRequest is the body of POST /v1/messages.
type MessagesRequest struct {
	ToolChoice *ToolChoice `json:"tool_choice,omitempty"`
	Model      string      `json:"model"`
	Messages   []Message   `json:"messages"`
	Tools      []Tool      `json:"tools,omitempty"`
	Metadata   Metadata    `json:"metadata"`
	Stream     bool        `json:"stream"`
}

// WebSearchInput is the argument shape of the web_search tool.
type WebSearchInput struct {
	Query string `json:"query" jsonschema:"required,description=Search query"`
}

var webSearchSchema = generateSchema[WebSearchInput]()

// WebSearchTool returns the web_search tool declaration.
func WebSearchTool() Tool {
	return Tool{
		Name:        WebSearchToolName,
		Description: "Search the web for information",
		InputSchema: webSearchSchema,
	}
}

// NewMessagesRequest builds a streaming request. The web_search tool and
// an auto tool choice are attached only when search is enabled.
func NewMessagesRequest(model string, messages []Message, think, search bool) MessagesRequest {
	req := MessagesRequest{
		Model:    model,
		Messages: messages,
		Stream:   true,
		Metadata: Metadata{ThinkEnabled: think, SearchEnabled: search},
	}
	if search {
		req.Tools = []Tool{WebSearchTool()}
		req.ToolChoice = &ToolChoice{Type: "auto"}
	}
	return req
}

// generateSchema reflects a JSON schema from a tagged struct type.
func generateSchema[T any]() json.RawMessage {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}

	var zero T
	schema := reflector.Reflect(zero)

	bytes, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("failed to generate schema for type %T: %v", zero, err))
	}
	return json.RawMessage(bytes)
}

// DefaultErrorMessage is used when an error body carries no usable text.
const DefaultErrorMessage = "request failed"

// ParseErrorMessage extracts the human-readable message from an error
// body. Both {"error":{"message":"..."}} and {"error":"..."} are accepted.
func ParseErrorMessage(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return DefaultErrorMessage
	}

	var details struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &details); err == nil && details.Message != "" {
		return details.Message
	}

	var text string
	if err := json.Unmarshal(envelope.Error, &text); err == nil && strings.TrimSpace(text) != "" {
		return text
	}
	return DefaultErrorMessage
}
