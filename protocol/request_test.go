package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessagesRequest_NoSearch(t *testing.T) {
	req := NewMessagesRequest("claude-haiku-4.5", []Message{{Role: "user", Content: "hi"}}, true, false)

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))

	assert.Equal(t, "claude-haiku-4.5", body["model"])
	assert.Equal(t, true, body["stream"])
	assert.Equal(t, map[string]any{"think_enabled": true, "search_enabled": false}, body["metadata"])
	assert.NotContains(t, body, "tools")
	assert.NotContains(t, body, "tool_choice")

	messages := body["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, map[string]any{"role": "user", "content": "hi"}, messages[0])
}

func TestNewMessagesRequest_WithSearch(t *testing.T) {
	req := NewMessagesRequest("gpt-5.1", nil, false, true)

	require.Len(t, req.Tools, 1)
	assert.Equal(t, WebSearchToolName, req.Tools[0].Name)
	require.NotNil(t, req.ToolChoice)
	assert.Equal(t, "auto", req.ToolChoice.Type)
	assert.True(t, req.Metadata.SearchEnabled)
	assert.False(t, req.Metadata.ThinkEnabled)
}

func TestWebSearchTool_Schema(t *testing.T) {
	tool := WebSearchTool()

	var schema struct {
		Type       string `json:"type"`
		Properties map[string]struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	require.NoError(t, json.Unmarshal(tool.InputSchema, &schema))

	assert.Equal(t, "object", schema.Type)
	require.Contains(t, schema.Properties, "query")
	assert.Equal(t, "string", schema.Properties["query"].Type)
	assert.Equal(t, "Search query", schema.Properties["query"].Description)
	assert.Equal(t, []string{"query"}, schema.Required)
}

func TestParseErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"anthropic envelope", `{"type":"error","error":{"type":"authentication_error","message":"Authentication required"}}`, "Authentication required"},
		{"plain string", `{"error":"upstream unavailable"}`, "upstream unavailable"},
		{"empty string", `{"error":"  "}`, DefaultErrorMessage},
		{"object without message", `{"error":{"type":"api_error"}}`, DefaultErrorMessage},
		{"no error field", `{"ok":false}`, DefaultErrorMessage},
		{"not json", `<html>502</html>`, DefaultErrorMessage},
		{"empty body", ``, DefaultErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseErrorMessage([]byte(tt.body)))
		})
	}
}
