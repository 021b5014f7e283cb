package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/lorekeeper/internal/domain"
)

// MockLLM answers without calling any service. Useful for local dev and tests.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Generate(ctx context.Context, prompt domain.Prompt) (string, error) {
	question := prompt.User
	if i := strings.LastIndex(question, "QUESTION:\n"); i >= 0 {
		question = question[i+len("QUESTION:\n"):]
	}
	return fmt.Sprintf("The archives hold no answer yet for %q. See [the index](/w/index) while I study.", question), nil
}

// Unconfigured stands in when no server-side AI credential is set.
type Unconfigured struct{}

func (Unconfigured) Generate(context.Context, domain.Prompt) (string, error) {
	return "", &domain.AIError{
		Message:      "The AI service is not configured on the server.",
		Unconfigured: true,
	}
}
