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

	"github.com/adarshpathak3408/FinFlow/internal/amqp"
	"github.com/adarshpathak3408/FinFlow/internal/config"
	apphttp "github.com/adarshpathak3408/FinFlow/internal/http"
	"github.com/adarshpathak3408/FinFlow/internal/log"
	"github.com/adarshpathak3408/FinFlow/internal/services"
	"github.com/adarshpathak3408/FinFlow/internal/storage"
)

func main() {
	// .env is for local development; missing file is fine.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

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

	// Async export is optional: without a broker the worker sweep still
	// picks up unsynced rows.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without async export", log.FieldError, err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	svc := services.NewTransactionService(repo, publisher, logger)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:            ":" + cfg.Port,
		Service:         svc,
		Reader:          repo,
		Budgets:         repo,
		DisplayCurrency: cfg.DisplayCurrency,
		UPIVpa:          cfg.UPIVpa,
		PayeeName:       cfg.PayeeName,
		Logger:          logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting finflow server", "port", cfg.Port, log.FieldCurrency, cfg.DisplayCurrency)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
