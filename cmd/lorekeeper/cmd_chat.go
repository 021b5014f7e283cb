package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/lorekeeper/internal/app/conversation"
	"github.com/PabloGalante/lorekeeper/internal/domain"
)

func newChatCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long: `Start an interactive conversation with the connected world.

Commands:
  /reset - forget the world and saved credentials, then exit
  /quit  - exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, id, closeFn, err := c.session(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			sess, err := c.resume(ctx, svc, id)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printTranscript(w, sess.State.Messages)

			in := bufio.NewScanner(cmd.InOrStdin())
			in.Buffer(make([]byte, 0, 64*1024), 1<<20)
			for {
				fmt.Fprint(w, "> ")
				if !in.Scan() {
					fmt.Fprintln(w)
					return in.Err()
				}

				line := strings.TrimSpace(in.Text())
				switch line {
				case "":
					continue
				case "/quit", "/exit":
					return nil
				case "/reset":
					if _, err := svc.Reset(ctx, id); err != nil {
						return err
					}
					fmt.Fprintln(w, "World forgotten. Run 'lorekeeper connect' to load another.")
					return nil
				}

				out, err := svc.Ask(ctx, conversation.AskInput{SessionID: id, Question: line})
				if out != nil && out.Answer != nil {
					printMessage(w, *out.Answer)
					continue
				}

				// the turn was refused and never logged
				var vErr *domain.ValidationError
				if err != nil && !errors.As(err, &vErr) {
					return err
				}
			}
		},
	}
}
