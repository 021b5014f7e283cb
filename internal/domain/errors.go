package domain

import (
	"errors"
	"fmt"
)

// Service names used in upstream and transport errors.
const (
	ServiceLore = "lore"
	ServiceAI   = "ai"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrOperationPending    = errors.New("another operation is already in progress")
	ErrNotConnected        = errors.New("no world is connected")
	ErrAlreadyConnected    = errors.New("a world is already connected, reset first")
	ErrStaleEvent          = errors.New("event belongs to a previous session epoch")
	ErrCredentialsNotFound = errors.New("credentials not found")
)

// ValidationError reports a missing or empty required field. It never reaches the network.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// UpstreamError is a non-success status returned by the lore-wiki or AI service.
type UpstreamError struct {
	Service string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s service error (status %d): %s", e.Service, e.Status, e.Message)
}

// TransportError is a network-level failure reaching an upstream service.
type TransportError struct {
	Service string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s service unreachable: %v", e.Service, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AIError is any failure of the inference call, including a missing server-side credential.
// Err, when set, is the *UpstreamError or *TransportError underneath.
type AIError struct {
	Message      string
	Unconfigured bool
	Err          error
}

func (e *AIError) Error() string {
	return e.Message
}

func (e *AIError) Unwrap() error { return e.Err }

// UserMessage converts an operation failure into the single message shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		validation *ValidationError
		upstream   *UpstreamError
		transport  *TransportError
		aiErr      *AIError
	)

	switch {
	case errors.As(err, &aiErr):
		return aiErr.Message
	case errors.As(err, &validation):
		return validation.Error()
	case errors.As(err, &upstream):
		if upstream.Service == ServiceLore {
			return fmt.Sprintf("Failed to fetch from World Anvil API (%d): %s", upstream.Status, upstream.Message)
		}
		return upstream.Message
	case errors.As(err, &transport):
		return fmt.Sprintf("Could not reach the %s service. Please try again.", transport.Service)
	default:
		return err.Error()
	}
}
