package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/lorekeeper/internal/app/lorecontext"
	"github.com/PabloGalante/lorekeeper/internal/app/render"
	"github.com/PabloGalante/lorekeeper/internal/domain"
	"github.com/PabloGalante/lorekeeper/internal/observability"
)

type Service struct {
	fetcher      domain.LoreFetcher
	llm          domain.LLMClient
	sessionStore domain.SessionStore
	credStore    domain.CredentialStore
	assembler    *lorecontext.Assembler
	renderer     *render.Renderer
	now          func() time.Time
	newID        func() string
}

type Option func(*Service)

func WithAssembler(a *lorecontext.Assembler) Option {
	return func(s *Service) { s.assembler = a }
}

func WithRenderer(r *render.Renderer) Option {
	return func(s *Service) { s.renderer = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the conversation flow. credStore may be nil when credentials
// only live as long as the session.
func NewService(
	fetcher domain.LoreFetcher,
	llm domain.LLMClient,
	sessionStore domain.SessionStore,
	credStore domain.CredentialStore,
	opts ...Option,
) *Service {
	s := &Service{
		fetcher:      fetcher,
		llm:          llm,
		sessionStore: sessionStore,
		credStore:    credStore,
		assembler:    lorecontext.NewAssembler(lorecontext.FormatJSON),
		renderer:     render.NewRenderer(render.DefaultBaseURL),
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type StartSessionInput struct {
	// ID is optional; a named session is reused when it already exists
	ID domain.SessionID
}

func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*domain.Session, error) {
	log := observability.LoggerFromContext(ctx)

	if in.ID != "" {
		if existing, err := s.sessionStore.GetSession(in.ID); err == nil {
			return existing, nil
		}
	} else {
		in.ID = domain.SessionID(s.newID())
	}

	now := s.now()
	session := &domain.Session{
		ID:        in.ID,
		State:     domain.SessionState{Phase: domain.PhaseDisconnected},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.sessionStore.CreateSession(session); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	log.Info("session started", "session_id", session.ID)
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	return s.sessionStore.GetSession(id)
}

type ConnectInput struct {
	SessionID   domain.SessionID
	Credentials domain.Credentials
}

// Connect fetches the world snapshot and seeds the log with a greeting. Credentials
// are persisted only after a successful fetch. The fetch is not cancelled when ctx is.
func (s *Service) Connect(ctx context.Context, in ConnectInput) (*domain.Session, error) {
	log := observability.LoggerFromContext(ctx).With("session_id", in.SessionID)

	sess, err := s.apply(in.SessionID, ConnectRequested{Credentials: in.Credentials})
	if err != nil {
		log.Warn("connect refused", "error", err)
		return sess, err
	}
	epoch := sess.State.Epoch

	log.Info("connecting to world")
	snap, fetchErr := s.fetcher.FetchWorld(context.WithoutCancel(ctx), in.Credentials)
	if fetchErr != nil {
		log.Error("world fetch failed", "error", fetchErr)
		sess, err = s.apply(in.SessionID, ConnectFailed{Epoch: epoch, Err: fetchErr})
		if err != nil && !errors.Is(err, domain.ErrStaleEvent) {
			return sess, err
		}
		return sess, fetchErr
	}

	sess, err = s.apply(in.SessionID, ConnectSucceeded{
		Epoch:     epoch,
		Snapshot:  snap,
		MessageID: domain.MessageID(s.newID()),
		At:        s.now(),
	})
	if err != nil {
		log.Warn("connect result dropped", "error", err)
		return sess, err
	}

	if s.credStore != nil {
		s.persistCredentials(ctx, in.SessionID, epoch, in.Credentials)
	}

	log.Info("world connected", "article_count", snap.ArticleCount)
	return sess, nil
}

// Resume re-runs the connect flow with persisted credentials.
func (s *Service) Resume(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	if s.credStore == nil {
		return nil, domain.ErrCredentialsNotFound
	}
	creds, err := s.credStore.LoadCredentials(ctx, string(id))
	if err != nil {
		return nil, err
	}
	return s.Connect(ctx, ConnectInput{SessionID: id, Credentials: creds})
}

type AskInput struct {
	SessionID domain.SessionID
	Question  string
}

type AskOutput struct {
	Session  *domain.Session
	Question *domain.Message
	// Answer is the assistant reply, or the assistant error message of a failed turn
	Answer *domain.Message
}

// Ask appends the question, forwards it with the world context and appends the result.
// A failed inference still appends an assistant message; the error is returned alongside.
func (s *Service) Ask(ctx context.Context, in AskInput) (*AskOutput, error) {
	log := observability.LoggerFromContext(ctx).With("session_id", in.SessionID)

	questionID := domain.MessageID(s.newID())
	sess, err := s.apply(in.SessionID, QuestionSubmitted{
		MessageID: questionID,
		Text:      in.Question,
		At:        s.now(),
	})
	if err != nil {
		log.Warn("question refused", "error", err)
		return &AskOutput{Session: sess}, err
	}

	out := &AskOutput{Question: lastMessage(sess)}
	epoch := sess.State.Epoch

	log.Info("asking", "question_len", len(in.Question))
	text, askErr := s.ask(context.WithoutCancel(ctx), sess.State.Snapshot, in.Question)

	var ev Event
	if askErr != nil {
		log.Error("ai forward failed", "error", askErr)
		ev = AnswerFailed{
			Epoch:     epoch,
			ReplyTo:   questionID,
			MessageID: domain.MessageID(s.newID()),
			Err:       askErr,
			At:        s.now(),
		}
	} else {
		ev = AnswerReceived{
			Epoch:     epoch,
			ReplyTo:   questionID,
			MessageID: domain.MessageID(s.newID()),
			Text:      text,
			Segments:  s.renderer.Render(text),
			At:        s.now(),
		}
	}

	sess, err = s.apply(in.SessionID, ev)
	out.Session = sess
	if err != nil {
		log.Warn("answer dropped", "error", err)
		return out, err
	}
	out.Answer = lastMessage(sess)

	log.Info("ask completed", "failed", askErr != nil)
	return out, askErr
}

func (s *Service) ask(ctx context.Context, snap *domain.WorldSnapshot, question string) (string, error) {
	prompt, err := s.assembler.Build(snap, question)
	if err != nil {
		return "", &domain.AIError{Message: "Failed to prepare the world context.", Err: err}
	}
	return s.llm.Generate(ctx, prompt)
}

// Reset clears credentials, snapshot and the whole log. Safe in any state.
func (s *Service) Reset(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	log := observability.LoggerFromContext(ctx).With("session_id", id)

	sess, err := s.apply(id, Reset{})
	if err != nil {
		return nil, err
	}

	if s.credStore != nil {
		if err := s.credStore.DeleteCredentials(ctx, string(id)); err != nil {
			log.Error("failed to delete persisted credentials", "error", err)
			return sess, err
		}
	}

	log.Info("session reset")
	return sess, nil
}

// persistCredentials saves creds for the connect of the given epoch. A reset that
// lands while saving bumps the epoch, so the save is undone.
func (s *Service) persistCredentials(ctx context.Context, id domain.SessionID, epoch uint64, creds domain.Credentials) {
	log := observability.LoggerFromContext(ctx).With("session_id", id)

	if err := s.credStore.SaveCredentials(ctx, string(id), creds); err != nil {
		log.Error("failed to persist credentials", "error", err)
		return
	}

	cur, err := s.sessionStore.GetSession(id)
	if err == nil && cur.State.Epoch == epoch {
		return
	}

	log.Warn("session reset while persisting credentials, discarding them")
	if err := s.credStore.DeleteCredentials(ctx, string(id)); err != nil {
		log.Error("failed to delete persisted credentials", "error", err)
	}
}

func (s *Service) apply(id domain.SessionID, ev Event) (*domain.Session, error) {
	return s.sessionStore.UpdateSession(id, func(sess *domain.Session) error {
		next, err := Apply(sess.State, ev)
		sess.State = next
		sess.UpdatedAt = s.now()
		return err
	})
}

func lastMessage(sess *domain.Session) *domain.Message {
	if sess == nil || len(sess.State.Messages) == 0 {
		return nil
	}
	m := sess.State.Messages[len(sess.State.Messages)-1]
	return &m
}
