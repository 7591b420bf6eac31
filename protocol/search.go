package protocol

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	// SearchingText is shown while a search is running.
	SearchingText = "Searching for related information..."
	// SearchResultsHeader prefixes formatted search results.
	SearchResultsHeader = "🔍 Found related information:\n\n"
	// MaxSearchSnippets caps how many snippets are shown.
	MaxSearchSnippets = 3
)

// SearchSnippet is one hit in a search result.
type SearchSnippet struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// FormatSearchResult renders a search_result payload for display. Results
// shaped as {"search":{"search_snippets":{...}}} list the first
// MaxSearchSnippets entries in document order; anything else is dumped as
// indented JSON.
func FormatSearchResult(result json.RawMessage) string {
	var b strings.Builder
	b.WriteString(SearchResultsHeader)

	snippets, ok := searchSnippets(result)
	if !ok {
		b.WriteString(dumpJSON(result))
		return b.String()
	}

	for _, s := range snippets {
		b.WriteString("📌 " + s.Title + "\n")
		b.WriteString(s.Snippet + "\n")
		b.WriteString("🔗 " + s.Link + "\n\n")
	}
	return b.String()
}

// searchSnippets extracts up to MaxSearchSnippets snippets, keeping the key
// order of the search_snippets object.
func searchSnippets(result json.RawMessage) ([]SearchSnippet, bool) {
	var shape struct {
		Search *struct {
			SearchSnippets json.RawMessage `json:"search_snippets"`
		} `json:"search"`
	}
	if err := json.Unmarshal(result, &shape); err != nil || shape.Search == nil {
		return nil, false
	}
	raw := bytes.TrimSpace(shape.Search.SearchSnippets)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, false
	}

	var out []SearchSnippet
	for dec.More() && len(out) < MaxSearchSnippets {
		if _, err := dec.Token(); err != nil {
			return nil, false
		}
		var s SearchSnippet
		if err := dec.Decode(&s); err != nil {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func dumpJSON(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "null"
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}
