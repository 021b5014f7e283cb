package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/lorekeeper/internal/domain"
)

func TestUserMessage(t *testing.T) {
	upstream401 := &domain.UpstreamError{Service: domain.ServiceLore, Status: 401, Message: "service returned 401"}
	upstream500 := &domain.UpstreamError{Service: domain.ServiceLore, Status: 500, Message: "service returned 500"}

	assert.Equal(t, "", domain.UserMessage(nil))
	assert.Equal(t, "worldId is required", domain.UserMessage(&domain.ValidationError{Field: "worldId"}))
	assert.Contains(t, domain.UserMessage(upstream401), "401")
	assert.NotEqual(t, domain.UserMessage(upstream401), domain.UserMessage(upstream500))
	assert.Contains(t, domain.UserMessage(&domain.TransportError{Service: domain.ServiceLore, Err: errors.New("dial")}), "lore")

	aiErr := &domain.AIError{
		Message: "The AI service rejected the request: quota exceeded",
		Err:     &domain.UpstreamError{Service: domain.ServiceAI, Status: 429, Message: "quota exceeded"},
	}
	assert.Equal(t, aiErr.Message, domain.UserMessage(fmt.Errorf("ask: %w", aiErr)))

	var up *domain.UpstreamError
	assert.True(t, errors.As(aiErr, &up))
	assert.Equal(t, 429, up.Status)
}
