package main

import (
	"context"
	"errors"
	"time"

	"buildcost/internal/cli"
	applog "buildcost/internal/log"
	"buildcost/internal/services"
	"buildcost/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	bootstrap := cli.SetupLogger(applog.DefaultConfig().Level)
	cfg := cli.LoadAndValidateConfig(bootstrap)
	logger := cli.SetupLogger(cfg.SlogLevel())

	logger.Info("Starting buildcost-worker")

	initCtx, initCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	be := cli.InitBackend(initCtx, logger, cfg)
	exporter, _ := cli.InitSheets(initCtx, logger, cfg)
	initCancel()

	budget := services.NewBudgetService(be.Store)
	exports := services.NewExportService(budget, exporter).WithConcurrency(cfg.SyncBatchSize)
	exportWorker := worker.NewExportWorker(exports)
	sweeper := services.NewExportSweeper(exports, services.ExportSweeperConfig{Interval: cfg.SyncInterval})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := sweeper.Stop(stopCtx); err != nil {
			logger.Warn("Export sweeper did not stop cleanly", "error", err)
		}
		if be.Cleanup != nil {
			if err := be.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	})

	// Bring every active project's sheet up to date before consuming.
	if n, err := exports.ExportActive(ctx); err != nil {
		logger.Error("Startup export failed", "error", err, "exported", n)
	} else {
		logger.Info("Startup export complete", "exported", n)
	}

	if err := sweeper.Start(ctx); err != nil {
		logger.Error("Failed to start export sweeper", "error", err)
	}

	if be.AMQP != nil {
		go func() {
			err := be.AMQP.ConsumeRecordChanges(ctx, exportWorker.HandleRecordChanged)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
			}
		}()
		logger.Info("Consuming record changes", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Skipping AMQP message consumption - relying on periodic sweeps",
			"interval", cfg.SyncInterval)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
