package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/PabloGalante/lorekeeper/internal/config"
	"github.com/PabloGalante/lorekeeper/internal/observability"
	"github.com/PabloGalante/lorekeeper/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		observability.Logger().Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := observability.Init(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	if err := server.Serve(ctx, cfg); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
