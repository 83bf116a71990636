package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linklens/internal/app"
	"linklens/internal/collector"
	"linklens/internal/config"
	"linklens/internal/infrastructure/persistence/postgres"
)

func main() {
	workers := flag.Int("workers", 0, "override COLLECTOR_WORKERS")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *workers > 0 {
		cfg.Collector.Workers = *workers
	}

	c, err := app.NewContainer(cfg, log.Default())
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer migCancel()
	if err := c.Migrate(migCtx); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	runner := collector.NewRunner(postgres.NewCaptureRepository(c.DB), cfg.Collector, c.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("collector started workers=%d poll=%s", cfg.Collector.Workers, cfg.Collector.PollInterval)
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("collector error: %v", err)
	}
	log.Printf("collector stopped")
}
