package cli

import (
	"context"
	"log/slog"
	"os"
	"time"

	"buildcost/internal/cache"
	"buildcost/internal/config"
	"buildcost/internal/estimating"
	"buildcost/internal/sheets"
	gsheet "buildcost/internal/sheets/google"
	memsheet "buildcost/internal/sheets/memory"
)

// InitSheets returns the report exporter and, when a spreadsheet is
// configured, the row reader used for imports. Without Google Sheets the
// exporter keeps reports in memory and rows is nil.
func InitSheets(ctx context.Context, logger *slog.Logger, cfg *config.Config) (sheets.ReportExporter, sheets.RowReader) {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled, exports kept in memory")
		return memsheet.New(cfg.SummarySheetSuffix), nil
	}
	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
		SheetSuffix:     cfg.SummarySheetSuffix,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, client
}

// InitEstimator builds the AI estimator. Without an API key it is
// returned unavailable. Responses are cached in Redis when REDIS_URL is
// set, otherwise in a local LRU. The returned func releases the cache.
func InitEstimator(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*estimating.Estimator, func()) {
	prompts := estimating.DefaultPrompts()
	if cfg.AIAPIKey == "" {
		logger.Info("AI estimating disabled - no AI_API_KEY provided")
		return estimating.New(nil, prompts, nil), func() {}
	}

	gen, err := estimating.NewGemini(ctx, cfg.AIAPIKey, cfg.AIModel)
	if err != nil {
		logger.Error("Failed to initialize AI estimator", "error", err)
		os.Exit(1)
	}

	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err == nil {
			logger.Info("AI responses cached in Redis", "model", cfg.AIModel)
			return estimating.New(gen, prompts, cache.NewRedisCache[string](client, "buildcost:ai:", cfg.AICacheTTL)),
				func() { _ = client.Close() }
		}
		logger.Warn("Redis unavailable, falling back to local cache", "error", err)
	}

	lru := cache.NewLRUCache[string](256, cfg.AICacheTTL)
	manager := cache.NewManager()
	manager.Register(lru)
	manager.StartCleanup(10 * time.Minute)
	logger.Info("AI responses cached locally", "model", cfg.AIModel)
	return estimating.New(gen, prompts, lru), manager.Stop
}
