package chat

// SessionContext is the session metadata attached to an outgoing request.
// Empty fields are omitted by the transport.
type SessionContext struct {
	ConversationID  string
	ParentMessageID string
}

// SessionState tracks the server-issued identifiers that thread turns into
// one conversation. Updates are monotonic: a response that lacks an
// identifier never clears a known one.
type SessionState struct {
	ConversationID string
	LastMessageID  string
}

// Update records identifiers from a response. Empty values are ignored.
func (s *SessionState) Update(conversationID, messageID string) {
	if conversationID != "" {
		s.ConversationID = conversationID
	}
	if messageID != "" {
		s.LastMessageID = messageID
	}
}

// RequestContext returns the metadata for the next request.
func (s SessionState) RequestContext() SessionContext {
	return SessionContext{
		ConversationID:  s.ConversationID,
		ParentMessageID: s.LastMessageID,
	}
}

// Reset forgets the session so the next request starts a new conversation.
func (s *SessionState) Reset() {
	*s = SessionState{}
}

// Empty reports whether no identifiers are known yet.
func (s SessionState) Empty() bool {
	return s.ConversationID == "" && s.LastMessageID == ""
}
