package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"bilancio/internal/commands"
	"bilancio/internal/config"
	apphttp "bilancio/internal/http"
	applog "bilancio/internal/log"
	"bilancio/internal/report"
	"bilancio/internal/services"
	"bilancio/internal/snapshot"
	"bilancio/internal/storage"
)

func main() {
	// .env for local development; absent in containers
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.ParseLevel(cfg.LogLevel), applog.ComponentApp)
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
	logger.Info("Initialized store", "backend", cfg.DataBackend)

	var client *commands.Client
	if cfg.AMQPURL != "" {
		c, err := commands.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPCommandQueue, cfg.AMQPChangeQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		client = c
		logger.Info("AMQP connected", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	holder := snapshot.NewHolder()
	snapshots := services.NewSnapshotService(store, holder)
	writes := services.NewStoreService(store, snapshots, client)
	defer writes.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := snapshots.Reload(ctx); err != nil {
		logger.Error("Initial snapshot load failed", "error", err)
		os.Exit(1)
	}

	views := report.NewService(cfg.BaseCurrency, cfg.TrendMonths)
	srv := apphttp.NewServer(":"+cfg.Port, holder, views, writes, cfg.DisplayCurrency)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Peers write to the shared store and announce it; reload on each
	// notice so this process serves fresh snapshots.
	if client != nil {
		g.Go(func() error {
			err := client.ConsumeChangesWithRetry(gctx, func(change *commands.StoreChange) error {
				return snapshots.Reload(gctx)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
