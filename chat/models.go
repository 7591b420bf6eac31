package chat

import "slices"

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-haiku-4.5"

var availableModels = []string{
	"gemini-2.5-flash",
	"claude-haiku-4.5",
	"gpt-5-mini",
	"gpt-5.1",
	"claude-4.5-sonnet",
	"gemini-3.0-pro",
}

// AvailableModels returns the models the service accepts, in display order.
func AvailableModels() []string {
	return slices.Clone(availableModels)
}

// IsKnownModel reports whether name is one of AvailableModels.
func IsKnownModel(name string) bool {
	return slices.Contains(availableModels, name)
}
