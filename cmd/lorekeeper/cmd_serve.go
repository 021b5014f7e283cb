package main

import (
	"github.com/spf13/cobra"

	"github.com/PabloGalante/lorekeeper/internal/observability"
	"github.com/PabloGalante/lorekeeper/internal/server"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			observability.Init(cmd.ErrOrStderr(), c.cfg.LogFormat, c.cfg.LogLevel)
			return server.Serve(cmd.Context(), c.cfg)
		},
	}
}
