package memory

import (
	"errors"
	"sync"

	"github.com/PabloGalante/lorekeeper/internal/domain"
)

// SessionStore keeps sessions in process memory. Each session is isolated;
// copies are handed out so callers never share a mutable session.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.SessionID]*domain.Session),
	}
}

func (s *SessionStore) CreateSession(session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return errors.New("session already exists")
	}

	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (s *SessionStore) GetSession(id domain.SessionID) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	cp := *sess
	return &cp, nil
}

func (s *SessionStore) UpdateSession(id domain.SessionID, fn func(*domain.Session) error) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	cp := *sess
	err := fn(&cp)
	s.sessions[id] = &cp

	out := cp
	return &out, err
}
