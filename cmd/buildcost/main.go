package main

import (
	"context"
	"net/http"
	"time"

	"buildcost/internal/cli"
	apphttp "buildcost/internal/http"
	applog "buildcost/internal/log"
	"buildcost/internal/services"
)

func main() {
	cli.LoadEnvFile()

	bootstrap := cli.SetupLogger(applog.DefaultConfig().Level)
	cfg := cli.LoadAndValidateConfig(bootstrap)
	logger := cli.SetupLogger(cfg.SlogLevel())
	if cfg.ConfigFile != "" {
		logger.Info("Loaded configuration file", "path", cfg.ConfigFile)
	}

	initCtx, initCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	be := cli.InitBackend(initCtx, logger, cfg)
	exporter, rows := cli.InitSheets(initCtx, logger, cfg)
	estimator, closeEstimator := cli.InitEstimator(initCtx, logger, cfg)
	initCancel()

	budget := services.NewBudgetService(be.Store)
	exports := services.NewExportService(budget, exporter).WithConcurrency(cfg.SyncBatchSize)

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		TrustedProxies:     cfg.TrustedProxies,
		RateLimitRequests:  cfg.RateLimitRequests,
		RateLimitWindow:    cfg.RateLimitWindow,
		Logger:             applog.NewWithLevel(cfg.SlogLevel(), applog.ComponentHTTP),
	}, apphttp.Deps{
		Records:   be.Records,
		Budget:    budget,
		Estimator: estimator,
		Exports:   exports,
		Rows:      rows,
	})
	if err != nil {
		logger.Error("Failed to configure HTTP server", "error", err)
		return
	}

	// Configure server timeouts and limits
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 60 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		closeEstimator()
		if be.Cleanup != nil {
			if err := be.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	})

	logger.Info("Starting buildcost server", "port", cfg.Port, "backend", cfg.DataBackend,
		"amqp", be.AMQP != nil, "estimator", estimator.Available())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		return
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
