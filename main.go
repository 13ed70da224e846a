package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"listings-aggregator/config"
	"listings-aggregator/services"
	"listings-aggregator/storage"
	"listings-aggregator/utils"
)

func main() {
	cfg := config.Load()

	logger, err := utils.NewLoggerWith(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *utils.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Listings Aggregator starting ===")
	logger.Info("Config: seed source %s | fetch latency %v | filter %q",
		cfg.SeedSource, cfg.FetchLatency, cfg.FilterType)

	cleaner := services.NewCleaner(logger)

	seed, err := openSeedSource(ctx, cfg, logger, cleaner)
	if err != nil {
		return err
	}
	defer seed.Close()

	initial, err := seed.Load(ctx)
	if err != nil {
		return fmt.Errorf("load seed listings: %w", err)
	}
	logger.Info("Loaded %d seed listings", len(initial))

	agg := services.NewAggregator(initial,
		services.WithLatency(cfg.FetchLatency),
		services.WithLogger(logger),
	)

	reporter := services.NewReporter(logger, os.Stdout)
	reporter.Print(agg.Report(cfg.FilterType))

	var incomingSrc storage.ListingSource = storage.NewBuiltinIncoming()
	if cfg.IncomingFile != "" {
		incomingSrc = storage.NewYAMLSource(cfg.IncomingFile, cleaner)
	}
	incoming, err := incomingSrc.Load(ctx)
	if err != nil {
		return fmt.Errorf("load incoming listings: %w", err)
	}

	logger.Info("Fetching %d new listings...", len(incoming))
	start := time.Now()
	fetch := agg.FetchNewListings(ctx, incoming)
	if err := fetch.Wait(); err != nil {
		return fmt.Errorf("fetch new listings: %w", err)
	}
	logger.Info("Fetch completed in %v", time.Since(start).Round(time.Millisecond))

	snapshot := agg.Snapshot()
	reporter.PrintListings("Updated property listings", snapshot)

	var out storage.ListingWriter
	out, err = storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := out.Write(snapshot); err != nil {
		return err
	}
	logger.Info("Snapshot of %d listings saved to %s", len(snapshot), cfg.CSVOutputPath)
	return nil
}

func openSeedSource(ctx context.Context, cfg *config.Config, logger *utils.Logger, cleaner *services.Cleaner) (storage.ListingSource, error) {
	switch cfg.SeedSource {
	case config.SourceBuiltin:
		return storage.NewBuiltinSource(), nil
	case config.SourceYAML:
		return storage.NewYAMLSource(cfg.SeedFile, cleaner), nil
	case config.SourcePostgres:
		src, err := storage.NewPostgresSource(ctx, cfg.DSN(), &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		})
		if err != nil {
			logger.Error("Make sure the properties database is running")
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown seed source %q", cfg.SeedSource)
	}
}
