package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/lorekeeper/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/lorekeeper/internal/app/conversation"
	"github.com/PabloGalante/lorekeeper/internal/config"
	"github.com/PabloGalante/lorekeeper/internal/domain"
	"github.com/PabloGalante/lorekeeper/internal/observability"
	"github.com/PabloGalante/lorekeeper/internal/server"
)

const defaultProfile = "default"

// cli carries state shared by every subcommand.
type cli struct {
	profile string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "lorekeeper",
		Short: "Ask questions about your World Anvil world",
		Long: `lorekeeper connects to a World Anvil world with your application key and
auth token, then answers questions grounded only in that world's lore.

Credentials are saved per profile in a local SQLite file (LORE_CREDENTIAL_STORE)
so later commands can reconnect without asking again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg
			observability.Init(cmd.ErrOrStderr(), "text", cfg.LogLevel)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.profile, "profile", defaultProfile, "credential profile to use")

	root.AddCommand(
		newConnectCmd(c),
		newAskCmd(c),
		newChatCmd(c),
		newResetCmd(c),
		newServeCmd(c),
	)
	return root
}

// session opens the credential store and returns a service with the profile's session started.
func (c *cli) session(ctx context.Context) (*conversation.Service, domain.SessionID, func(), error) {
	store, err := sqlite.Open(c.cfg.CredentialStorePath)
	if err != nil {
		return nil, "", nil, fmt.Errorf("open credential store: %w", err)
	}
	closeFn := func() { _ = store.Close() }

	ai, err := server.NewLLM(ctx, c.cfg)
	if err != nil {
		closeFn()
		return nil, "", nil, err
	}

	svc := server.NewService(c.cfg, server.NewFetcher(c.cfg), ai, store)
	sess, err := svc.StartSession(ctx, conversation.StartSessionInput{ID: domain.SessionID(c.profile)})
	if err != nil {
		closeFn()
		return nil, "", nil, err
	}
	return svc, sess.ID, closeFn, nil
}

// resume reconnects the profile with its saved credentials.
func (c *cli) resume(ctx context.Context, svc *conversation.Service, id domain.SessionID) (*domain.Session, error) {
	sess, err := svc.Resume(ctx, id)
	if errors.Is(err, domain.ErrCredentialsNotFound) {
		return nil, fmt.Errorf("no saved credentials for profile %q, run 'lorekeeper connect' first", c.profile)
	}
	return sess, err
}
