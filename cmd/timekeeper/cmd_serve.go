package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"timekeeper/internal/server"
)

// serveCmd runs the HTTP chat surface
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat server (PORT, default 7860)",
	Long: `Serves a minimal web chat page plus a JSON API:

  POST /api/chat                {"message": "..."}
  GET  /api/timesheet/download  current timesheet as xlsx
  GET  /health`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info("Keys",
		zap.Bool("api_key", cfg.Keys.APIKey != ""),
		zap.Bool("other_key", cfg.Keys.OtherKey != ""),
	)

	srv := server.New(a.assistant, logger, server.Options{
		ReadTimeout:    cfg.GetReadTimeout(),
		WriteTimeout:   cfg.GetWriteTimeout(),
		RequestTimeout: cfg.GetLLMTimeout() + 10*time.Second,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Listen(cfg.ListenAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
