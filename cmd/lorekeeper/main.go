// Command lorekeeper is a terminal client for asking questions about a World Anvil world.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/PabloGalante/lorekeeper/internal/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", domain.UserMessage(err))
		stop()
		os.Exit(1)
	}
}
