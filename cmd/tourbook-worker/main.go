package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"tourbook/internal/amqp"
	"tourbook/internal/config"
	"tourbook/internal/log"
	"tourbook/internal/sheets"
	"tourbook/internal/sheets/google"
	"tourbook/internal/storage"
	"tourbook/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.New(log.Config{Component: log.ComponentWorker, Format: cfg.LogFormat})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	if cfg.AMQPURL == "" {
		logger.Error("Worker requires AMQP_URL to be set")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			log.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	writer, err := buildSheetsWriter(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err.Error())
		os.Exit(1)
	}
	if writer == nil {
		logger.Info("Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	w := worker.NewReportWorker(repo, writer, cfg.SyncBatchSize)

	// Catch up on anything that changed while the worker was down.
	if err := w.Sweep(ctx); err != nil {
		logger.Warn("Startup sweep failed", log.FieldError, err.Error())
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting AMQP consumer",
			"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		return amqp.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
			func(msg *amqp.SyncMessage) error {
				return w.HandleMessage(ctx, msg)
			})
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.Sweep(ctx); err != nil {
					logger.Warn("Periodic sweep failed", log.FieldError, err.Error())
				}
			}
		}
	})

	logger.Info("Worker started", "sync_interval", cfg.SyncInterval.String(),
		"batch_size", cfg.SyncBatchSize)

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker exited with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// buildSheetsWriter returns nil when export is not configured, which the
// worker treats as a no-op writer.
func buildSheetsWriter(ctx context.Context, cfg *config.Config) (sheets.ReportWriter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, nil
	}

	credentials := []byte(cfg.GoogleCredentialsJSON)
	if len(credentials) == 0 && cfg.GoogleCredentialsFile != "" {
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, err
		}
		credentials = data
	}

	return google.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, credentials)
}
