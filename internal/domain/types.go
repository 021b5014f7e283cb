package domain

import (
	"log/slog"
	"time"
)

type SessionID string
type MessageID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Timestamp = time.Time

// Credentials are the three secrets that scope access to one world on the lore-wiki service.
// They only ever travel to the lore-wiki service.
type Credentials struct {
	ApplicationKey string
	AuthToken      string
	WorldID        string
}

// Validate reports the first missing field as a *ValidationError.
func (c Credentials) Validate() error {
	switch {
	case c.ApplicationKey == "":
		return &ValidationError{Field: "applicationKey"}
	case c.AuthToken == "":
		return &ValidationError{Field: "authToken"}
	case c.WorldID == "":
		return &ValidationError{Field: "worldId"}
	}
	return nil
}

func (c Credentials) String() string {
	return "Credentials{redacted}"
}

// GoString covers %#v.
func (c Credentials) GoString() string {
	return "domain.Credentials{redacted}"
}

// LogValue keeps secrets out of structured logs.
func (c Credentials) LogValue() slog.Value {
	return slog.StringValue("redacted")
}
