package chat

// StatusKind classifies a status line.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusError
)

func (k StatusKind) String() string {
	switch k {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "info"
	}
}

// Status texts shown while a turn streams.
const (
	StatusSending           = "Sending..."
	StatusPreparing         = "Preparing..."
	StatusThinking          = "Thinking..."
	StatusReasoningComplete = "Reasoning complete"
	StatusSearching         = "Searching..."
	StatusReplying          = "Replying..."
	StatusDone              = "Done"
)

// Sink receives presentation notifications. Every method is a pure
// notification; text arguments are always the full accumulated value, not
// the delta.
//
// Implementations are called from the goroutine running Conversation.Send.
type Sink interface {
	// OnTurnCreated fires once per turn, when the first content-bearing
	// event arrives (or at finalization if none did).
	OnTurnCreated()
	OnReasoningUpdate(fullText string)
	OnAnswerUpdate(fullText string)
	// OnSearchNotification shows or replaces the transient search panel.
	OnSearchNotification(text string)
	// OnSearchCleared removes the transient search panel.
	OnSearchCleared()
	OnStatus(text string, kind StatusKind)
	OnStatusCleared()
}

// NoOpSink is a Sink that does nothing.
type NoOpSink struct{}

func (NoOpSink) OnTurnCreated()              {}
func (NoOpSink) OnReasoningUpdate(string)    {}
func (NoOpSink) OnAnswerUpdate(string)       {}
func (NoOpSink) OnSearchNotification(string) {}
func (NoOpSink) OnSearchCleared()            {}
func (NoOpSink) OnStatus(string, StatusKind) {}
func (NoOpSink) OnStatusCleared()            {}

var _ Sink = NoOpSink{}

// MultiSink fans notifications out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) OnTurnCreated() {
	for _, s := range m {
		s.OnTurnCreated()
	}
}

func (m MultiSink) OnReasoningUpdate(fullText string) {
	for _, s := range m {
		s.OnReasoningUpdate(fullText)
	}
}

func (m MultiSink) OnAnswerUpdate(fullText string) {
	for _, s := range m {
		s.OnAnswerUpdate(fullText)
	}
}

func (m MultiSink) OnSearchNotification(text string) {
	for _, s := range m {
		s.OnSearchNotification(text)
	}
}

func (m MultiSink) OnSearchCleared() {
	for _, s := range m {
		s.OnSearchCleared()
	}
}

func (m MultiSink) OnStatus(text string, kind StatusKind) {
	for _, s := range m {
		s.OnStatus(text, kind)
	}
}

func (m MultiSink) OnStatusCleared() {
	for _, s := range m {
		s.OnStatusCleared()
	}
}
