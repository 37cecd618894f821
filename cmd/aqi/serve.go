package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/air-quality-etl/internal/adapter/http"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
	"github.com/spf13/cobra"
)

var serveNoFiles bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the latest analysis over HTTP",
	Long: `Runs one analysis at startup, then serves health, readiness, Prometheus
metrics, and the /api/v1 endpoints. POST /api/v1/refresh re-fetches the snapshot.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		metrics := observability.NewMetrics()

		s := buildSinks(cfg.OutputDir, !serveNoFiles, !serveNoFiles)
		defer s.close()

		p, err := buildPipeline(s.loaders, metrics)
		if err != nil {
			return err
		}

		srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
				stop()
			}
		}()

		if _, err := p.RunOnce(ctx); err != nil {
			logger.Error("initial analysis failed", "error", err)
		}

		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		logger.Info("shutdown complete")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoFiles, "no-files", false, "do not write CSV and GeoJSON files on each run")
	rootCmd.AddCommand(serveCmd)
}
