package lorecontext_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/lorekeeper/internal/app/lorecontext"
	"github.com/PabloGalante/lorekeeper/internal/domain"
)

func snapshot(t *testing.T, raw string) *domain.WorldSnapshot {
	t.Helper()
	snap, err := domain.ParseWorldSnapshot([]byte(raw))
	require.NoError(t, err)
	return snap
}

func TestBuildPromptLayout(t *testing.T) {
	p := lorecontext.BuildPrompt(`{"name":"Aeloria"}`, "Who rules Aeloria?")

	assert.Equal(t, lorecontext.PolicyInstruction, p.System)
	assert.Equal(t, "CONTEXT:\n---\n{\"name\":\"Aeloria\"}\n---\n\nQUESTION:\nWho rules Aeloria?", p.User)
}

func TestPolicyInstructionRestrictsToContext(t *testing.T) {
	assert.Contains(t, lorecontext.PolicyInstruction, "CONTEXT")
	assert.Contains(t, lorecontext.PolicyInstruction, "Do not use any external knowledge")
	assert.Contains(t, lorecontext.PolicyInstruction, "cannot find that information")
}

func TestBuildIsDeterministic(t *testing.T) {
	a := lorecontext.NewAssembler(lorecontext.FormatJSON)
	snap := snapshot(t, `{"name":"Aeloria","articles":[{"title":"Ruins"}]}`)

	p1, err := a.Build(snap, "What ruins exist?")
	require.NoError(t, err)
	p2, err := a.Build(snap, "What ruins exist?")
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Contains(t, p1.User, `"title":"Ruins"`)
	assert.True(t, strings.HasSuffix(p1.User, "QUESTION:\nWhat ruins exist?"))
}

func TestBuildYAMLFormat(t *testing.T) {
	a := lorecontext.NewAssembler(lorecontext.FormatYAML)
	snap := snapshot(t, `{"name":"Aeloria","articles":[{"title":"Ruins"}]}`)

	p, err := a.Build(snap, "q")
	require.NoError(t, err)

	assert.Contains(t, p.User, "name: Aeloria")
	assert.Contains(t, p.User, "- title: Ruins")
}

func TestSerializeNilSnapshot(t *testing.T) {
	out, err := lorecontext.NewAssembler("").Serialize(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
}
