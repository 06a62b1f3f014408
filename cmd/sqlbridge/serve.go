package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/sqlbridge"
)

type ServeCommand struct {
	Listen string `help:"The address to listen on." default:"${listen}"`
}

func (c *ServeCommand) Run(ctx context.Context, g GlobalFlags) error {
	log, err := g.Logger()
	if err != nil {
		return err
	}
	gw, closer, err := g.Gateway(ctx)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}
	defer closer()

	s := &http.Server{
		Addr:    c.Listen,
		Handler: sqlbridge.NewHandler(log, gw),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(shutdownCtx)
	}()

	log.Info("listening", slog.String("addr", c.Listen))
	if err = s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
