// Package server builds the gateway's object graph from configuration.
package server

import (
	"context"
	"fmt"
	"net/http"

	httpadapter "github.com/PabloGalante/lorekeeper/internal/adapters/http"
	"github.com/PabloGalante/lorekeeper/internal/adapters/llm"
	"github.com/PabloGalante/lorekeeper/internal/adapters/loreapi"
	"github.com/PabloGalante/lorekeeper/internal/adapters/storage/memory"
	"github.com/PabloGalante/lorekeeper/internal/app/conversation"
	"github.com/PabloGalante/lorekeeper/internal/app/lorecontext"
	"github.com/PabloGalante/lorekeeper/internal/app/render"
	"github.com/PabloGalante/lorekeeper/internal/config"
	"github.com/PabloGalante/lorekeeper/internal/domain"
	"github.com/PabloGalante/lorekeeper/internal/observability"
)

// NewLLM picks the AI backend. A missing server credential is not fatal: every
// inference then fails with a "not configured" error.
func NewLLM(ctx context.Context, cfg *config.Config) (domain.LLMClient, error) {
	log := observability.Logger()

	switch {
	case cfg.UseMockLLM:
		log.Info("using mock LLM client")
		return llm.NewMockLLM(), nil
	case !cfg.AIConfigured():
		log.Warn("no AI credential configured; inference requests will fail")
		return llm.Unconfigured{}, nil
	}

	gc := llm.GenAIConfig{ModelName: cfg.ModelName}
	if cfg.Mode == config.ModeGCP {
		gc.Project = cfg.GCPProjectID
		gc.Location = cfg.GCPLocation
	} else {
		gc.APIKey = cfg.GeminiAPIKey
	}

	client, err := llm.NewGenAIClient(ctx, gc)
	if err != nil {
		return nil, fmt.Errorf("init genai client: %w", err)
	}
	log.Info("using genai client", "model", cfg.ModelName, "mode", cfg.Mode)
	return client, nil
}

func NewFetcher(cfg *config.Config) *loreapi.Client {
	var opts []loreapi.Option
	if cfg.UpstreamTimeout > 0 {
		opts = append(opts, loreapi.WithTimeout(cfg.UpstreamTimeout))
	}
	return loreapi.NewClient(cfg.LoreAPIBaseURL, opts...)
}

func NewRenderer(cfg *config.Config) *render.Renderer {
	return render.NewRenderer(cfg.SiteBaseURL)
}

// NewService wires the conversation flow. credStore may be nil.
func NewService(
	cfg *config.Config,
	fetcher domain.LoreFetcher,
	ai domain.LLMClient,
	credStore domain.CredentialStore,
) *conversation.Service {
	return conversation.NewService(
		fetcher,
		ai,
		memory.NewSessionStore(),
		credStore,
		conversation.WithAssembler(lorecontext.NewAssembler(lorecontext.Format(cfg.ContextFormat))),
		conversation.WithRenderer(NewRenderer(cfg)),
	)
}

// NewHandler builds the full HTTP gateway. Server-side sessions never persist credentials.
func NewHandler(ctx context.Context, cfg *config.Config) (http.Handler, error) {
	ai, err := NewLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}
	fetcher := NewFetcher(cfg)
	svc := NewService(cfg, fetcher, ai, nil)

	return httpadapter.NewServer(svc, fetcher, ai, NewRenderer(cfg), httpadapter.Options{
		CORSOrigins: cfg.CORSOrigins,
	}), nil
}
