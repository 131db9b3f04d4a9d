package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"bilancio/internal/commands"
	"bilancio/internal/config"
	applog "bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

// The worker owns the scheduled side of the system: it materializes
// due recurring templates on an interval and applies queued commands
// to the store.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.ParseLevel(cfg.LogLevel), applog.ComponentWorker)
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.DataBackend, cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if cfg.DataBackend != "sqlite" {
		logger.Warn("Memory backend: worker state will not survive restarts")
	}

	var client *commands.Client
	if cfg.AMQPURL != "" {
		c, err := commands.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPCommandQueue, cfg.AMQPChangeQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		client = c
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	writes := services.NewStoreService(store, nil, client)
	defer writes.Close()

	processor := services.NewRecurringProcessor(store, writes)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(cfg.RecurringInterval)
		defer ticker.Stop()

		// first scan immediately, then on the interval
		for {
			n, err := processor.ProcessDue(gctx, time.Now())
			if err != nil {
				logger.Error("Recurring scan failed", "error", err)
			} else if n > 0 {
				logger.Info("Recurring scan completed", "materialized", n)
			}

			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
			}
		}
	})

	if client != nil {
		handler := services.NewCommandProcessor(writes)
		g.Go(func() error {
			return client.ConsumeCommandsWithRetry(gctx, func(cmd *commands.Command) error {
				return handler.Handle(gctx, cmd)
			})
		})
	}

	logger.Info("Worker started",
		"interval", cfg.RecurringInterval,
		"backend", cfg.DataBackend)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
