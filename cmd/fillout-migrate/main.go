// Command fillout-migrate decodes legacy fillout values into typed values.
//
// It prints a JSON report and exits with status 1 when any value could not
// be decoded.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/theoboldt/juvem-sub001/internal/di"
	"github.com/theoboldt/juvem-sub001/internal/service"
	"github.com/theoboldt/juvem-sub001/pkg/config"
	"github.com/theoboldt/juvem-sub001/pkg/logger"
)

func main() {
	var (
		envFile   string
		dryRun    bool
		batchSize int
	)
	flag.StringVar(&envFile, "env", "", "path to an env file (default: .env when present)")
	flag.BoolVar(&dryRun, "dry-run", false, "decode values without writing them")
	flag.IntVar(&batchSize, "batch-size", service.DefaultMigrationBatchSize, "number of fillouts per batch")
	flag.Parse()

	if err := run(envFile, service.MigrationOptions{DryRun: dryRun, BatchSize: batchSize}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile string, opts service.MigrationOptions) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	log, err := logger.New(&logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: "fillout-migrate",
		Development: true,
		OutputPath:  "stderr",
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, db, err := di.OpenRepositories(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	migration := service.NewFilloutMigrationService(repos.Fillouts, repos.Attributes, log)
	report, err := migration.Run(ctx, opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}

	if len(report.Failed) > 0 {
		log.Warn("Some legacy values could not be decoded", zap.Int("failed", len(report.Failed)))
		return fmt.Errorf("%d of %d values failed", len(report.Failed), report.Processed)
	}
	return nil
}

func loadConfig(envFile string) (*config.Config, error) {
	if envFile != "" {
		return config.LoadWithPath(envFile)
	}
	return config.Load()
}
