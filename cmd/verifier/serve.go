package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"news_verifier/internal/logger"
	"news_verifier/internal/scheduler"
	"news_verifier/internal/server"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and, if enabled, the headline scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()
		defer logger.Log.Info("Application stopped")

		var sched *scheduler.Scheduler
		if cfg.Scheduler.Enabled {
			if sched, err = scheduler.New(cfg.Scheduler, a.pipeline); err != nil {
				return err
			}
		}

		srv := server.NewServer(a.pipeline, a.pipeline, a.database, a.database, cfg.RecentWindow(), cfg.HTTP.HelpPage)
		httpServer := &http.Server{Addr: cfg.HTTP.Addr, Handler: srv.Routes()}

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			logger.Log.Infof("Starting HTTP server on %s", cfg.HTTP.Addr)
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			logger.Log.Info("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout())
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})

		if sched != nil {
			g.Go(func() error { return sched.Run(gctx) })
		}

		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
