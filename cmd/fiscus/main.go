package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fiscus/internal/advisor"
	"fiscus/internal/amqp"
	"fiscus/internal/backend"
	"fiscus/internal/category"
	"fiscus/internal/config"
	apphttp "fiscus/internal/http"
	"fiscus/internal/log"
	"fiscus/internal/service"
)

func main() {
	// .env is for local development; missing files are fine
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := category.Default()
	if cfg.CategoriesFile != "" {
		loaded, err := category.LoadFile(cfg.CategoriesFile)
		if err != nil {
			logger.Error("failed to load categories file", log.FieldError, err)
			os.Exit(1)
		}
		registry = loaded
		logger.Info("loaded category registry", "path", cfg.CategoriesFile, log.FieldCount, len(registry.Keys()))
	}

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

	// AMQP is optional: without it mutations persist directly to the backend
	var publisher service.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, persisting directly", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("sync publishing enabled",
				log.FieldExchange, cfg.AMQPExchange, log.FieldQueue, cfg.AMQPQueue)
		}
	}

	svc := service.New(store.Backend, publisher, registry, logger.WithComponent(log.ComponentService))

	var asker apphttp.Asker
	if cfg.AIAPIKey != "" {
		adv, err := advisor.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
		if err != nil {
			logger.Error("failed to initialize advisor", log.FieldError, err)
			os.Exit(1)
		}
		asker = adv
		logger.Info("advisor enabled", "model", cfg.AIModel)
	}

	srv := apphttp.NewServer(svc, asker, cfg, logger.WithComponent(log.ComponentHTTP))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}
