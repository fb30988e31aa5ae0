// Package main provides the CLI entrypoint for the snapback scanner.
// It wires subcommands (serve, scan, fetch-test, site), loads configuration,
// and initializes logging.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"snapback/internal/config"
	"snapback/internal/pipeline"
	"snapback/pkg/availability"
	"snapback/pkg/droplist/iis"
	"snapback/pkg/indexsignal"
	"snapback/pkg/logger"
	"snapback/pkg/metrics"
	"snapback/pkg/report"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// buildPipeline wires the scan stages from configuration: the registry
// drop-list client, the DNS prober, the index-signal chain and the report
// store. The store is returned separately because the API server reads
// reports without going through the pipeline.
func buildPipeline(cfg *config.Config, m *metrics.Metrics) (*pipeline.Pipeline, *report.Store) {
	source := iis.New(&http.Client{Timeout: cfg.DropList.Timeout},
		cfg.DropList.SeURL, cfg.DropList.NuURL, cfg.UserAgent)

	prober := availability.New(cfg.DNS.Server, cfg.DNS.Timeout)

	sources := []indexsignal.Source{
		indexsignal.NewWayback(&http.Client{Timeout: cfg.Index.Timeout}, cfg.Index.CDXURL, cfg.Index.CDXLimit),
	}
	if cfg.Index.UseSearchFallback {
		searchClient := &http.Client{Timeout: cfg.Index.Timeout}
		sources = append(sources,
			indexsignal.NewWebSearch(searchClient, indexsignal.GoogleEngine(), cfg.UserAgent),
			indexsignal.NewWebSearch(searchClient, indexsignal.BingEngine(), cfg.UserAgent),
		)
	}
	chain := indexsignal.NewChain(cfg.Index.ScanDelay, m, sources...)

	store := report.NewStore(cfg.Reports.Dir)

	return pipeline.New(source, prober, chain, store, m, pipeline.NewOptions(cfg)), store
}

// main sets up the root Cobra command, loads configuration and logging, and
// registers subcommands before executing the CLI.
func main() {
	rootCmd := &cobra.Command{
		Use: "snapback",
	}

	// there is no way to access flags before command execution in cobra.
	// configPath here is parsed using the standard flags package.
	// following line is just added to prevent errors when Cobra is parsing the flags.
	rootCmd.PersistentFlags().StringP("config", "c", "config.yml", "Config File Path")

	configPath := flag.String("c", "config.yml", "The config file path")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Fatal("could not load .env file", err)
	}

	log.Println("loading config ...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config file", err)
	}

	logger.Setup(cfg.Environment)

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			logger.Sync(ctx)

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		serveCommand(cfg),
		scanCommand(cfg),
		fetchTestCommand(cfg),
		siteCommand(cfg),
	)

	err = rootCmd.Execute()
	logger.Sync(ctx)
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
