package chat

import "github.com/bazelment/siderchat/protocol"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the conversation history.
type Message struct {
	Role    Role
	Content string
}

func toWire(history []Message) []protocol.Message {
	out := make([]protocol.Message, len(history))
	for i, m := range history {
		out[i] = protocol.Message{Role: string(m.Role), Content: m.Content}
	}
	return out
}
