package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fiscus/internal/amqp"
	"fiscus/internal/backend"
	"fiscus/internal/config"
	"fiscus/internal/log"
	"fiscus/internal/persist"
	"fiscus/internal/persist/sheets"
	"fiscus/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := backend.New(ctx, cfg, logger.WithComponent(log.ComponentPersist))
	if err != nil {
		logger.Error("failed to initialize backend", log.FieldBackend, cfg.DataBackend, log.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Cleanup(); err != nil {
			logger.Error("backend cleanup failed", log.FieldError, err)
		}
	}()

	// Google Sheets export is optional
	var exporter persist.Saver
	if cfg.SheetsSpreadsheetID != "" {
		exp, err := sheets.NewFromEnv(ctx)
		if err != nil {
			logger.Error("failed to initialize sheets exporter", log.FieldError, err)
			os.Exit(1)
		}
		exporter = exp
		logger.Info("sheets export enabled", "spreadsheet_id", cfg.SheetsSpreadsheetID)
	} else {
		logger.Info("sheets export disabled - no SHEETS_SPREADSHEET_ID provided")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	w := worker.NewSyncWorker(store.Backend, exporter, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeSync(gctx, func(msg *amqp.SyncMessage) error {
			return w.HandleSync(gctx, msg)
		})
	})
	g.Go(func() error {
		return w.RunExportLoop(gctx, cfg.ExportInterval)
	})

	logger.Info("sync worker started",
		log.FieldQueue, cfg.AMQPQueue, log.FieldBackend, cfg.DataBackend)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("worker stopped gracefully")
}
