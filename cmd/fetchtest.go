package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"snapback/internal/config"
	"snapback/pkg/domain"
	"snapback/pkg/droplist/iis"
	"snapback/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func fetchTestCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch-test",
		Short: "Fetches both drop lists and prints per-namespace counts",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			source := iis.New(&http.Client{Timeout: cfg.DropList.Timeout},
				cfg.DropList.SeURL, cfg.DropList.NuURL, cfg.UserAgent)

			fmt.Println("Testing drop list fetch...")
			for _, tld := range domain.AllTLDs() {
				records, err := source.DropList(ctx, tld)
				if err != nil {
					logger.Warn(ctx, "could not fetch drop list",
						zap.String("tld", string(tld)), zap.Error(err))
				}
				fmt.Printf("  .%s: %d domains in drop list\n", tld, len(records))
			}
		},
	}

	return cmd
}
