package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/PabloGalante/lorekeeper/internal/config"
	"github.com/PabloGalante/lorekeeper/internal/observability"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the gateway until ctx is done, then drains in-flight requests.
func Serve(ctx context.Context, cfg *config.Config) error {
	log := observability.Logger()

	handler, err := NewHandler(ctx, cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("lorekeeper API listening", "addr", srv.Addr, "mode", cfg.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
