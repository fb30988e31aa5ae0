package main

import (
	"context"
	"fmt"

	"snapback/internal/config"
	"snapback/pkg/logger"
	"snapback/pkg/report"
	"snapback/pkg/site"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func siteCommand(cfg *config.Config) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "site",
		Short: "Renders the stored reports into a static HTML site",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			builder, err := site.NewBuilder(report.NewStore(cfg.Reports.Dir), outputDir)
			if err != nil {
				logger.Fatal(ctx, "could not create site builder", zap.Error(err))
			}

			pages, err := builder.Build()
			if err != nil {
				logger.Fatal(ctx, "could not build site", zap.Error(err))
			}

			fmt.Printf("Generated static site in %s/ (%d report pages)\n", outputDir, pages)
		},
	}

	cmd.Flags().StringVar(&outputDir, "output", "docs", "Output directory for the generated site")

	return cmd
}
