package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionState_UpdateIsMonotonic(t *testing.T) {
	var s SessionState
	assert.True(t, s.Empty())

	s.Update("c1", "m1")
	assert.Equal(t, SessionState{ConversationID: "c1", LastMessageID: "m1"}, s)

	s.Update("", "")
	assert.Equal(t, SessionState{ConversationID: "c1", LastMessageID: "m1"}, s, "missing ids keep known values")

	s.Update("", "m2")
	assert.Equal(t, SessionState{ConversationID: "c1", LastMessageID: "m2"}, s)
}

func TestSessionState_RequestContext(t *testing.T) {
	s := SessionState{ConversationID: "c1", LastMessageID: "m1"}
	assert.Equal(t, SessionContext{ConversationID: "c1", ParentMessageID: "m1"}, s.RequestContext())
	assert.Equal(t, SessionContext{}, SessionState{}.RequestContext())
}

func TestSessionState_Reset(t *testing.T) {
	s := SessionState{ConversationID: "c1", LastMessageID: "m1"}
	s.Reset()
	assert.True(t, s.Empty())
}
