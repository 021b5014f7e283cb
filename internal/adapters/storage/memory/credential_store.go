package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/lorekeeper/internal/domain"
)

// CredentialStore is a non-persistent domain.CredentialStore for the gateway and tests.
type CredentialStore struct {
	mu    sync.RWMutex
	creds map[string]domain.Credentials
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		creds: make(map[string]domain.Credentials),
	}
}

func (s *CredentialStore) SaveCredentials(_ context.Context, key string, creds domain.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds[key] = creds
	return nil
}

func (s *CredentialStore) LoadCredentials(_ context.Context, key string) (domain.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.creds[key]
	if !ok {
		return domain.Credentials{}, domain.ErrCredentialsNotFound
	}
	return c, nil
}

func (s *CredentialStore) DeleteCredentials(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.creds, key)
	return nil
}
