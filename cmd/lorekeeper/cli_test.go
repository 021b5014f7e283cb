package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/lorekeeper/internal/domain"
)

func setupEnv(t *testing.T) {
	t.Helper()
	lore := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-auth-token") != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"name":"Aeloria","articles":[{},{}]}`))
	}))
	t.Cleanup(lore.Close)

	t.Setenv("LORE_API_BASE_URL", lore.URL)
	t.Setenv("LORE_USE_MOCK_LLM", "true")
	t.Setenv("LORE_LOG_LEVEL", "error")
	t.Setenv("LORE_CREDENTIAL_STORE", filepath.Join(t.TempDir(), "creds.db"))
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestConnectAskReset(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "", "connect", "--app-key", "key", "--auth-token", "tok", "--world-id", "w-1")
	require.NoError(t, err)
	assert.Contains(t, out, "I have loaded the archives for 'Aeloria'. I have found 2 articles.")

	out, err = run(t, "", "ask", "Who", "rules?")
	require.NoError(t, err)
	assert.Contains(t, out, `"Who rules?"`)
	assert.Contains(t, out, "the index (https://www.worldanvil.com/w/index)")

	out, err = run(t, "", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, `Profile "default" reset.`)

	_, err = run(t, "", "ask", "Again?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lorekeeper connect")
}

func TestConnectFailure(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "", "connect", "--app-key", "key", "--auth-token", "bad", "--world-id", "w-1")
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch from World Anvil API (401): Invalid token", domain.UserMessage(err))

	_, err = run(t, "", "connect", "--app-key", "key", "--world-id", "w-1")
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "authToken", vErr.Field)

	_, err = run(t, "", "ask", "Who?")
	require.Error(t, err, "failed connects save nothing")
}

func TestChat(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "", "--profile", "p1", "connect", "--app-key", "key", "--auth-token", "tok", "--world-id", "w-1")
	require.NoError(t, err)

	out, err := run(t, "First?\n\nSecond?\n/quit\n", "--profile", "p1", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "Aeloria")
	assert.Contains(t, out, `"First?"`)
	assert.Contains(t, out, `"Second?"`)

	out, err = run(t, "/reset\n", "--profile", "p1", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "World forgotten.")

	_, err = run(t, "", "--profile", "p1", "chat")
	require.Error(t, err)
}

func TestFormatSegments(t *testing.T) {
	m := domain.Message{
		Text: "See [x](/w/x).",
		Segments: []domain.Segment{
			{Text: "See "},
			{Text: "x", URL: "https://www.worldanvil.com/w/x"},
			{Text: "."},
		},
	}
	assert.Equal(t, "See x (https://www.worldanvil.com/w/x).", formatSegments(m))
	assert.Equal(t, "plain", formatSegments(domain.Message{Text: "plain"}))
}
