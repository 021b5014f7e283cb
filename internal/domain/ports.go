package domain

import "context"

// Prompt is what the AI service receives: a fixed system instruction and the user content.
// It is derived from the snapshot and the question only.
type Prompt struct {
	System string
	User   string
}

// LoreFetcher retrieves one world's snapshot from the lore-wiki service.
type LoreFetcher interface {
	FetchWorld(ctx context.Context, creds Credentials) (*WorldSnapshot, error)
}

// LLMClient defines how the core application interacts with the inference service.
type LLMClient interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// SessionStore defines session's persistence
type SessionStore interface {
	CreateSession(session *Session) error
	GetSession(id SessionID) (*Session, error)
	// UpdateSession runs fn on a copy of the stored session under the store's lock
	// and writes the copy back. fn's error is returned after the write.
	UpdateSession(id SessionID, fn func(*Session) error) (*Session, error)
}

// CredentialStore is the key-value store holding credentials across runs.
type CredentialStore interface {
	SaveCredentials(ctx context.Context, key string, creds Credentials) error
	LoadCredentials(ctx context.Context, key string) (Credentials, error)
	DeleteCredentials(ctx context.Context, key string) error
}
