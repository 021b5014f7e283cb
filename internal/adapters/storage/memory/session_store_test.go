package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/lorekeeper/internal/adapters/storage/memory"
	"github.com/PabloGalante/lorekeeper/internal/domain"
)

func TestSessionStoreIsolation(t *testing.T) {
	store := memory.NewSessionStore()
	require.NoError(t, store.CreateSession(&domain.Session{ID: "a"}))
	require.NoError(t, store.CreateSession(&domain.Session{ID: "b"}))
	assert.Error(t, store.CreateSession(&domain.Session{ID: "a"}))

	_, err := store.UpdateSession("a", func(s *domain.Session) error {
		s.State.Phase = domain.PhaseIdle
		return nil
	})
	require.NoError(t, err)

	a, err := store.GetSession("a")
	require.NoError(t, err)
	b, err := store.GetSession("b")
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseIdle, a.State.Phase)
	assert.Equal(t, domain.Phase(""), b.State.Phase)

	// mutating a returned copy does not touch the store
	a.State.Phase = domain.PhaseAwaiting
	again, _ := store.GetSession("a")
	assert.Equal(t, domain.PhaseIdle, again.State.Phase)
}

func TestSessionStoreUpdateKeepsStateOnError(t *testing.T) {
	store := memory.NewSessionStore()
	require.NoError(t, store.CreateSession(&domain.Session{ID: "a"}))

	boom := errors.New("refused")
	out, err := store.UpdateSession("a", func(s *domain.Session) error {
		s.State.LastError = "refused"
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "refused", out.State.LastError)

	_, err = store.UpdateSession("missing", func(*domain.Session) error { return nil })
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCredentialStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCredentialStore()

	_, err := store.LoadCredentials(ctx, "default")
	require.ErrorIs(t, err, domain.ErrCredentialsNotFound)

	creds := domain.Credentials{ApplicationKey: "k", AuthToken: "t", WorldID: "w"}
	require.NoError(t, store.SaveCredentials(ctx, "default", creds))

	got, err := store.LoadCredentials(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, creds, got)

	require.NoError(t, store.DeleteCredentials(ctx, "default"))
	require.NoError(t, store.DeleteCredentials(ctx, "default"))
	_, err = store.LoadCredentials(ctx, "default")
	assert.ErrorIs(t, err, domain.ErrCredentialsNotFound)
}
