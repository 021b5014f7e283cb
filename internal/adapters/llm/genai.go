package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/genai"

	"github.com/PabloGalante/lorekeeper/internal/domain"
	"github.com/PabloGalante/lorekeeper/internal/observability"
)

const DefaultModel = "gemini-2.5-flash"

// GenAIConfig selects the backend: an API key uses the Gemini API, a project uses Vertex AI.
type GenAIConfig struct {
	APIKey    string
	Project   string
	Location  string
	ModelName string
}

type GenAIClient struct {
	client    *genai.Client
	modelName string
}

// NewGenAIClient creates an LLMClient based on Gemini.
func NewGenAIClient(ctx context.Context, cfg GenAIConfig) (*GenAIClient, error) {
	modelName := cfg.ModelName
	if modelName == "" {
		modelName = DefaultModel
	}

	var cc *genai.ClientConfig
	switch {
	case cfg.APIKey != "":
		cc = &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
	case cfg.Project != "":
		if cfg.Location == "" {
			return nil, fmt.Errorf("location is required for the Vertex AI backend")
		}
		cc = &genai.ClientConfig{
			Project:  cfg.Project,
			Location: cfg.Location,
			Backend:  genai.BackendVertexAI,
		}
	default:
		return nil, fmt.Errorf("either an API key or a GCP project must be set")
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &GenAIClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// Generate implements domain.LLMClient with a single, non-streaming call.
func (g *GenAIClient) Generate(ctx context.Context, prompt domain.Prompt) (string, error) {
	log := observability.LoggerFromContext(ctx).With("model", g.modelName)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt.User), cfg)
	if err != nil {
		log.Error("generate content failed", "error", err)
		return "", normalizeError(err)
	}

	// empty text is a valid answer
	return res.Text(), nil
}

func normalizeError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Status
		}
		return &domain.AIError{
			Message: fmt.Sprintf("The AI service rejected the request (%d): %s", apiErr.Code, msg),
			Err: &domain.UpstreamError{
				Service: domain.ServiceAI,
				Status:  apiErr.Code,
				Message: msg,
			},
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &domain.AIError{
			Message: "Could not reach the AI service. Please try again.",
			Err:     &domain.TransportError{Service: domain.ServiceAI, Err: err},
		}
	}

	return &domain.AIError{
		Message: "Failed to get a response from the AI.",
		Err:     err,
	}
}
