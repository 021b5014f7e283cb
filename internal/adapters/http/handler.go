package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/PabloGalante/lorekeeper/internal/app/conversation"
	"github.com/PabloGalante/lorekeeper/internal/app/lorecontext"
	"github.com/PabloGalante/lorekeeper/internal/app/render"
	"github.com/PabloGalante/lorekeeper/internal/domain"
	"github.com/PabloGalante/lorekeeper/internal/observability"
)

// maxBodyBytes bounds request bodies; /api/ai carries a whole serialized world.
const maxBodyBytes = 16 << 20

type Server struct {
	svc      *conversation.Service
	fetcher  domain.LoreFetcher
	llm      domain.LLMClient
	renderer *render.Renderer
}

type Options struct {
	// CORSOrigins limits cross-origin callers; empty allows all
	CORSOrigins []string
}

func NewServer(
	svc *conversation.Service,
	fetcher domain.LoreFetcher,
	llm domain.LLMClient,
	renderer *render.Renderer,
	opts Options,
) http.Handler {
	s := &Server{
		svc:      svc,
		fetcher:  fetcher,
		llm:      llm,
		renderer: renderer,
	}
	mux := http.NewServeMux()

	// health checks
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /_ah/health", s.handleHealth)

	// stateless gateway
	mux.HandleFunc("POST /api/boromir/world/{worldId}", s.handleFetchWorld)
	mux.HandleFunc("POST /api/boromir/world/{$}", s.handleFetchWorld)
	mux.HandleFunc("POST /api/ai", s.handleAI)

	// session API
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /sessions/{id}/connect", s.handleConnect)
	mux.HandleFunc("POST /sessions/{id}/messages", s.handleSendMessage)
	mux.HandleFunc("POST /sessions/{id}/reset", s.handleReset)

	return chainMiddlewares(mux,
		withCORS(opts.CORSOrigins),
		withLogging,
		withRequestID,
	)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type fetchWorldRequest struct {
	AppKey    string `json:"appKey"`
	AuthToken string `json:"authToken"`
}

type aiRequest struct {
	Context  string `json:"context"`
	Question string `json:"question"`
}

type aiResponse struct {
	Text     string           `json:"text"`
	Segments []domain.Segment `json:"segments"`
}

type connectRequest struct {
	AppKey    string `json:"appKey"`
	AuthToken string `json:"authToken"`
	WorldID   string `json:"worldId"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sessionResponse struct {
	ID        string            `json:"id"`
	Phase     string            `json:"phase"`
	Connected bool              `json:"connected"`
	Pending   bool              `json:"pending"`
	WorldName string            `json:"world_name,omitempty"`
	Articles  int               `json:"article_count"`
	LastError string            `json:"last_error,omitempty"`
	Messages  []messageResponse `json:"messages"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type messageResponse struct {
	ID        string           `json:"id"`
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	Segments  []domain.Segment `json:"segments,omitempty"`
	ReplyTo   string           `json:"reply_to,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type sendMessageResponse struct {
	Question *messageResponse `json:"question,omitempty"`
	Answer   *messageResponse `json:"answer,omitempty"`
	Session  sessionResponse  `json:"session"`
	Error    string           `json:"error,omitempty"`
}

// ─────────────────────────────────────────────
// Gateway handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleFetchWorld(w http.ResponseWriter, r *http.Request) {
	var req fetchWorldRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	creds := domain.Credentials{
		ApplicationKey: req.AppKey,
		AuthToken:      req.AuthToken,
		WorldID:        r.PathValue("worldId"),
	}

	// upstream calls run to completion even if the caller goes away
	snap, err := s.fetcher.FetchWorld(context.WithoutCancel(r.Context()), creds)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(snap.Raw)
}

func (s *Server) handleAI(w http.ResponseWriter, r *http.Request) {
	var req aiRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		writeError(w, r, &domain.ValidationError{Field: "question"})
		return
	}

	text, err := s.llm.Generate(context.WithoutCancel(r.Context()), lorecontext.BuildPrompt(req.Context, req.Question))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, aiResponse{
		Text:     text,
		Segments: s.renderer.Render(text),
	})
}

// ─────────────────────────────────────────────
// Session handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.StartSession(r.Context(), conversation.StartSessionInput{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.GetSession(r.Context(), domain.SessionID(r.PathValue("id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := s.svc.Connect(r.Context(), conversation.ConnectInput{
		SessionID: domain.SessionID(r.PathValue("id")),
		Credentials: domain.Credentials{
			ApplicationKey: req.AppKey,
			AuthToken:      req.AuthToken,
			WorldID:        req.WorldID,
		},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := s.svc.Ask(r.Context(), conversation.AskInput{
		SessionID: domain.SessionID(r.PathValue("id")),
		Question:  req.Text,
	})

	// a failed inference still completes the turn with an in-line error message
	var aiErr *domain.AIError
	if err != nil && !(errors.As(err, &aiErr) && out != nil && out.Answer != nil) {
		writeError(w, r, err)
		return
	}

	resp := sendMessageResponse{
		Session: toSessionResponse(out.Session),
		Error:   domain.UserMessage(err),
	}
	if out.Question != nil {
		m := toMessageResponse(*out.Question)
		resp.Question = &m
	}
	if out.Answer != nil {
		m := toMessageResponse(*out.Answer)
		resp.Answer = &m
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Reset(r.Context(), domain.SessionID(r.PathValue("id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

// toSessionResponse never exposes credentials.
func toSessionResponse(s *domain.Session) sessionResponse {
	st := s.State
	resp := sessionResponse{
		ID:        string(s.ID),
		Phase:     string(st.Phase),
		Connected: st.Connected(),
		Pending:   st.Pending(),
		LastError: st.LastError,
		Messages:  make([]messageResponse, 0, len(st.Messages)),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if st.Snapshot != nil {
		resp.WorldName = st.Snapshot.Name
		resp.Articles = st.Snapshot.ArticleCount
	}
	for _, m := range st.Messages {
		resp.Messages = append(resp.Messages, toMessageResponse(m))
	}
	return resp
}

func toMessageResponse(m domain.Message) messageResponse {
	out := messageResponse{
		ID:        string(m.ID),
		Role:      string(m.Author),
		Content:   m.Text,
		Segments:  m.Segments,
		CreatedAt: m.CreatedAt,
	}
	if m.ReplyTo != nil {
		out.ReplyTo = string(*m.ReplyTo)
	}
	return out
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		badRequest(w, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *domain.ValidationError
		upstream   *domain.UpstreamError
		transport  *domain.TransportError
		aiErr      *domain.AIError
	)

	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.As(err, &validation):
		status, msg = http.StatusBadRequest, validation.Error()
	case errors.As(err, &aiErr):
		status, msg = http.StatusBadGateway, aiErr.Message
		if aiErr.Unconfigured {
			status = http.StatusInternalServerError
		}
	case errors.As(err, &upstream):
		status, msg = upstream.Status, upstream.Message
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
	case errors.As(err, &transport):
		status, msg = http.StatusBadGateway, domain.UserMessage(err)
	case errors.Is(err, domain.ErrSessionNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrOperationPending),
		errors.Is(err, domain.ErrAlreadyConnected),
		errors.Is(err, domain.ErrNotConnected),
		errors.Is(err, domain.ErrStaleEvent):
		status, msg = http.StatusConflict, err.Error()
	}

	if status >= http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error("request failed", "status", status, "error", err)
	}

	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}
