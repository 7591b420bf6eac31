package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSearchResult_Snippets(t *testing.T) {
	raw := json.RawMessage(`{"search":{"search_snippets":{"a":{"title":"T","snippet":"S","link":"L"}}}}`)

	got := FormatSearchResult(raw)
	assert.Equal(t, SearchResultsHeader+"📌 T\nS\n🔗 L\n\n", got)
}

func TestFormatSearchResult_FirstThreeInDocumentOrder(t *testing.T) {
	raw := json.RawMessage(`{"search":{"search_snippets":{
		"z":{"title":"first","snippet":"1","link":"l1"},
		"b":{"title":"second","snippet":"2","link":"l2"},
		"m":{"title":"third","snippet":"3","link":"l3"},
		"a":{"title":"fourth","snippet":"4","link":"l4"}
	}}}`)

	got := FormatSearchResult(raw)
	first := strings.Index(got, "first")
	second := strings.Index(got, "second")
	third := strings.Index(got, "third")

	assert.True(t, first >= 0 && first < second && second < third, "unexpected order: %q", got)
	assert.NotContains(t, got, "fourth")
}

func TestFormatSearchResult_Fallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no search key", `{"web":{"pages":[1,2]}}`},
		{"snippets not an object", `{"search":{"search_snippets":[1,2]}}`},
		{"scalar", `"plain"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatSearchResult(json.RawMessage(tt.raw))
			assert.True(t, strings.HasPrefix(got, SearchResultsHeader))
			assert.NotContains(t, got, "📌")
		})
	}
}

func TestFormatSearchResult_FallbackIsIndented(t *testing.T) {
	got := FormatSearchResult(json.RawMessage(`{"k":"v"}`))
	assert.Equal(t, SearchResultsHeader+"{\n  \"k\": \"v\"\n}", got)
}

func TestFormatSearchResult_Empty(t *testing.T) {
	assert.Equal(t, SearchResultsHeader+"null", FormatSearchResult(nil))
}
