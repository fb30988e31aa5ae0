package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"snapback/internal/api"
	"snapback/internal/config"
	"snapback/internal/scan"
	"snapback/pkg/logger"
	"snapback/pkg/metrics"
	"snapback/pkg/report"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context,
	cfg *config.Config,
	coordinator *scan.Coordinator,
	reports *report.Store) func(ctx context.Context) {
	server := api.NewServer(api.Deps{
		Coordinator: coordinator,
		Reports:     reports,
	}, api.NewOptions(cfg))

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the scan API server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

			m := metrics.New(prometheus.DefaultRegisterer)
			pipe, reports := buildPipeline(cfg, m)
			coordinator := scan.New(pipe, m)

			stopWebserver := setupServer(ctx, cfg, coordinator, reports)

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
		},
	}

	return cmd
}
