package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/lorekeeper/internal/app/conversation"
	"github.com/PabloGalante/lorekeeper/internal/domain"
)

func newConnectCmd(c *cli) *cobra.Command {
	var creds domain.Credentials

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Load a world and save its credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, id, closeFn, err := c.session(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			sess, err := svc.Connect(ctx, conversation.ConnectInput{SessionID: id, Credentials: creds})
			if err != nil {
				return err
			}
			printTranscript(cmd.OutOrStdout(), sess.State.Messages)
			return nil
		},
	}

	cmd.Flags().StringVar(&creds.ApplicationKey, "app-key", "", "World Anvil application key")
	cmd.Flags().StringVar(&creds.AuthToken, "auth-token", "", "World Anvil user auth token")
	cmd.Flags().StringVar(&creds.WorldID, "world-id", "", "world identifier")
	return cmd
}

func newAskCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question about the connected world",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, id, closeFn, err := c.session(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			if _, err := c.resume(ctx, svc, id); err != nil {
				return err
			}

			out, err := svc.Ask(ctx, conversation.AskInput{SessionID: id, Question: strings.Join(args, " ")})
			if out != nil && out.Answer != nil {
				printMessage(cmd.OutOrStdout(), *out.Answer)
			}
			return err
		},
	}
}

func newResetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the world and the saved credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, id, closeFn, err := c.session(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			if _, err := svc.Reset(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile %q reset.\n", c.profile)
			return nil
		},
	}
}
