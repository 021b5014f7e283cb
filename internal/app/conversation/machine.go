package conversation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/PabloGalante/lorekeeper/internal/domain"
)

// Event drives the session state machine.
type Event interface {
	isEvent()
}

// ConnectRequested starts a fetch with the given credentials.
type ConnectRequested struct {
	Credentials domain.Credentials
}

type ConnectSucceeded struct {
	Epoch     uint64
	Snapshot  *domain.WorldSnapshot
	MessageID domain.MessageID
	At        domain.Timestamp
}

type ConnectFailed struct {
	Epoch uint64
	Err   error
}

// QuestionSubmitted appends the question to the log before the answer is awaited.
type QuestionSubmitted struct {
	MessageID domain.MessageID
	Text      string
	At        domain.Timestamp
}

// AnswerReceived resolves the pending question with the assistant's text.
type AnswerReceived struct {
	Epoch     uint64
	ReplyTo   domain.MessageID
	MessageID domain.MessageID
	Text      string
	Segments  []domain.Segment
	At        domain.Timestamp
}

// AnswerFailed resolves the pending question with a visible error message.
type AnswerFailed struct {
	Epoch     uint64
	ReplyTo   domain.MessageID
	MessageID domain.MessageID
	Err       error
	At        domain.Timestamp
}

type Reset struct{}

func (ConnectRequested) isEvent()  {}
func (ConnectSucceeded) isEvent()  {}
func (ConnectFailed) isEvent()     {}
func (QuestionSubmitted) isEvent() {}
func (AnswerReceived) isEvent()    {}
func (AnswerFailed) isEvent()      {}
func (Reset) isEvent()             {}

// Apply returns the state that follows s after e. When e is refused the error says why
// and the returned state is s with LastError set; stale results return s untouched.
// Apply never mutates s.
func Apply(s domain.SessionState, e Event) (domain.SessionState, error) {
	if s.Phase == "" {
		s.Phase = domain.PhaseDisconnected
	}

	switch ev := e.(type) {
	case Reset:
		return domain.SessionState{
			Phase: domain.PhaseDisconnected,
			Epoch: s.Epoch + 1,
		}, nil

	case ConnectRequested:
		switch {
		case s.Pending():
			return refuse(s, domain.ErrOperationPending)
		case s.Connected():
			return refuse(s, domain.ErrAlreadyConnected)
		}
		if err := ev.Credentials.Validate(); err != nil {
			return refuse(s, err)
		}
		creds := ev.Credentials
		s.Phase = domain.PhaseConnecting
		s.PendingCredentials = &creds
		s.LastError = ""
		return s, nil

	case ConnectSucceeded:
		if ev.Epoch != s.Epoch || s.Phase != domain.PhaseConnecting {
			return s, domain.ErrStaleEvent
		}
		s.Phase = domain.PhaseIdle
		s.Credentials = s.PendingCredentials
		s.PendingCredentials = nil
		s.Snapshot = ev.Snapshot
		s.Messages = appendMessage(s.Messages, domain.Message{
			ID:        ev.MessageID,
			Author:    domain.RoleAssistant,
			Text:      Greeting(ev.Snapshot),
			CreatedAt: ev.At,
		})
		return s, nil

	case ConnectFailed:
		if ev.Epoch != s.Epoch || s.Phase != domain.PhaseConnecting {
			return s, domain.ErrStaleEvent
		}
		s.Phase = domain.PhaseDisconnected
		s.PendingCredentials = nil
		s.LastError = domain.UserMessage(ev.Err)
		return s, nil

	case QuestionSubmitted:
		switch s.Phase {
		case domain.PhaseConnecting, domain.PhaseAwaiting:
			return refuse(s, domain.ErrOperationPending)
		case domain.PhaseDisconnected:
			return refuse(s, domain.ErrNotConnected)
		}
		if strings.TrimSpace(ev.Text) == "" {
			return refuse(s, &domain.ValidationError{Field: "question"})
		}
		s.Phase = domain.PhaseAwaiting
		s.PendingQuestion = ev.MessageID
		s.LastError = ""
		s.Messages = appendMessage(s.Messages, domain.Message{
			ID:        ev.MessageID,
			Author:    domain.RoleUser,
			Text:      ev.Text,
			CreatedAt: ev.At,
		})
		return s, nil

	case AnswerReceived:
		if !awaiting(s, ev.Epoch, ev.ReplyTo) {
			return s, domain.ErrStaleEvent
		}
		replyTo := ev.ReplyTo
		s.Phase = domain.PhaseIdle
		s.PendingQuestion = ""
		s.Messages = appendMessage(s.Messages, domain.Message{
			ID:        ev.MessageID,
			Author:    domain.RoleAssistant,
			Text:      ev.Text,
			CreatedAt: ev.At,
			ReplyTo:   &replyTo,
			Segments:  ev.Segments,
		})
		return s, nil

	case AnswerFailed:
		if !awaiting(s, ev.Epoch, ev.ReplyTo) {
			return s, domain.ErrStaleEvent
		}
		msg := domain.UserMessage(ev.Err)
		text := ErrorReply(msg)
		replyTo := ev.ReplyTo
		s.Phase = domain.PhaseIdle
		s.PendingQuestion = ""
		s.LastError = msg
		s.Messages = appendMessage(s.Messages, domain.Message{
			ID:        ev.MessageID,
			Author:    domain.RoleAssistant,
			Text:      text,
			CreatedAt: ev.At,
			ReplyTo:   &replyTo,
			Segments:  []domain.Segment{{Text: text}},
		})
		return s, nil
	}

	return s, fmt.Errorf("unknown event %T", e)
}

// Greeting is the first assistant message of a connected session.
func Greeting(snap *domain.WorldSnapshot) string {
	name := "your world"
	count := 0
	if snap != nil {
		if snap.Name != "" {
			name = snap.Name
		}
		count = snap.ArticleCount
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Connection successful. I have loaded the archives for '%s'.", name)
	switch {
	case count == 1:
		b.WriteString(" I have found 1 article.")
	case count > 1:
		fmt.Fprintf(&b, " I have found %d articles.", count)
	}
	b.WriteString(" What lore may I illuminate for you?")
	return b.String()
}

// ErrorReply is the assistant message recording a failed turn.
func ErrorReply(msg string) string {
	return "Sorry, an error occurred: " + msg
}

func refuse(s domain.SessionState, err error) (domain.SessionState, error) {
	s.LastError = domain.UserMessage(err)
	return s, err
}

func awaiting(s domain.SessionState, epoch uint64, replyTo domain.MessageID) bool {
	return epoch == s.Epoch && s.Phase == domain.PhaseAwaiting && s.PendingQuestion == replyTo
}

// appendMessage never writes into the backing array of msgs, so earlier states stay intact.
func appendMessage(msgs []domain.Message, m domain.Message) []domain.Message {
	return append(slices.Clip(msgs), m)
}
