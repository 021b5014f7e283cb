package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/lorekeeper/internal/adapters/llm"
	"github.com/PabloGalante/lorekeeper/internal/config"
	"github.com/PabloGalante/lorekeeper/internal/server"
)

func TestNewLLMSelection(t *testing.T) {
	ctx := context.Background()

	ai, err := server.NewLLM(ctx, &config.Config{Mode: config.ModeLocal, UseMockLLM: true})
	require.NoError(t, err)
	assert.IsType(t, &llm.MockLLM{}, ai)

	ai, err = server.NewLLM(ctx, &config.Config{Mode: config.ModeLocal})
	require.NoError(t, err)
	assert.IsType(t, llm.Unconfigured{}, ai)

	ai, err = server.NewLLM(ctx, &config.Config{Mode: config.ModeLocal, GeminiAPIKey: "test-key", ModelName: llm.DefaultModel})
	require.NoError(t, err)
	assert.IsType(t, &llm.GenAIClient{}, ai)
}

func TestNewHandlerServesHealth(t *testing.T) {
	t.Setenv("LORE_USE_MOCK_LLM", "true")
	cfg, err := config.Load()
	require.NoError(t, err)

	h, err := server.NewHandler(context.Background(), cfg)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
