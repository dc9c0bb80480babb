package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/adarshpathak3408/FinFlow/internal/amqp"
	"github.com/adarshpathak3408/FinFlow/internal/config"
	"github.com/adarshpathak3408/FinFlow/internal/log"
	"github.com/adarshpathak3408/FinFlow/internal/sheets"
	gsheet "github.com/adarshpathak3408/FinFlow/internal/sheets/google"
	"github.com/adarshpathak3408/FinFlow/internal/storage"
	"github.com/adarshpathak3408/FinFlow/internal/worker"
)

func main() {
	// .env is for local development; missing file is fine.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	logger.Info("Starting finflow-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Spreadsheet export is optional. Without it, sync events only flip the
	// synced flag.
	var (
		writer  sheets.TransactionWriter
		deleter sheets.TransactionDeleter
	)
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		writer, deleter = client, client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled, no GOOGLE_SPREADSHEET_ID provided")
	}

	w := worker.New(repo, writer, deleter, cfg.SyncBatchSize, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catch up on rows whose events were lost while the worker was down.
	if n, err := w.SyncPending(ctx); err != nil {
		logger.Error("Startup sync check failed", log.FieldError, err)
	} else if n > 0 {
		logger.Info("Startup sync exported pending rows", "count", n)
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		g.Go(func() error {
			return amqp.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
				func(event amqp.Event) error {
					return w.HandleEvent(ctx, event)
				})
		})
	} else {
		logger.Info("AMQP disabled, relying on periodic sweep only")
	}

	g.Go(func() error {
		return w.RunSweep(ctx, cfg.SyncInterval)
	})

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.DigestSchedule, func() {
		if err := w.DailyDigest(ctx); err != nil {
			logger.Error("Daily digest failed", log.FieldError, err)
		}
	}); err != nil {
		logger.Error("Invalid digest schedule", log.FieldError, err, "schedule", cfg.DigestSchedule)
		os.Exit(1)
	}
	scheduler.Start()

	g.Go(func() error {
		<-ctx.Done()
		<-scheduler.Stop().Done()
		return ctx.Err()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
