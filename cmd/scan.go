package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"snapback/internal/config"
	"snapback/internal/pipeline"
	"snapback/pkg/logger"
	"snapback/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func scanCommand(cfg *config.Config) *cobra.Command {
	var (
		date   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Runs one scan and writes the report",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			m := metrics.New(prometheus.DefaultRegisterer)
			pipe, _ := buildPipeline(cfg, m)

			res, err := pipe.Run(ctx, pipeline.RunOptions{TargetDate: date, DryRun: dryRun})
			if err != nil {
				logger.Fatal(ctx, "scan failed", zap.Error(err))
			}

			if res.CSVPath != "" {
				fmt.Printf("  CSV: %s\n", res.CSVPath)
				fmt.Printf("  JSON: %s\n", res.JSONPath)
				fmt.Println()
			}
			fmt.Println(res.Summary)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", `Release date to scan ("YYYY-MM-DD", default tomorrow UTC)`)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Don't write reports, just print results")

	return cmd
}
