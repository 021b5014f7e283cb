package domain

// Message is one entry of the conversation log (user or assistant)
type Message struct {
	ID        MessageID
	Author    Role
	Text      string
	CreatedAt Timestamp

	// ReplyTo links an assistant answer to the question it resolves
	ReplyTo *MessageID
	// Segments is the rendered form of assistant text; user text is never rendered
	Segments []Segment
}

// Segment is a piece of rendered assistant text. It is a link when URL is set.
type Segment struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

func (s Segment) IsLink() bool {
	return s.URL != ""
}

// Phase is the position of a session in the conversation state machine.
type Phase string

const (
	PhaseDisconnected Phase = "disconnected"
	PhaseConnecting   Phase = "connecting"
	PhaseIdle         Phase = "idle"
	PhaseAwaiting     Phase = "awaiting_answer"
)

// SessionState is everything one session knows.
// Credentials and Snapshot are set together, only once a connect succeeded.
type SessionState struct {
	Phase       Phase
	Credentials *Credentials
	Snapshot    *WorldSnapshot
	Messages    []Message
	LastError   string

	// Epoch is bumped on every reset; results from an older epoch are dropped
	Epoch uint64
	// candidate credentials while a connect is outstanding
	PendingCredentials *Credentials
	// question currently awaiting an answer
	PendingQuestion MessageID
}

// Pending is true while exactly one fetch or inference call is outstanding.
func (s SessionState) Pending() bool {
	return s.Phase == PhaseConnecting || s.Phase == PhaseAwaiting
}

func (s SessionState) Connected() bool {
	return s.Phase == PhaseIdle || s.Phase == PhaseAwaiting
}

// Session binds a state to an identity
type Session struct {
	ID        SessionID
	State     SessionState
	CreatedAt Timestamp
	UpdatedAt Timestamp
}
