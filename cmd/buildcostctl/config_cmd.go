package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	if cfg.ConfigFile != "" {
		fmt.Printf("  Config file: %s\n\n", cfg.ConfigFile)
	} else {
		fmt.Println("  Config file: none (defaults and environment)")
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	section := func(name string) { fmt.Fprintf(w, "  [%s]\t\n", name) }
	row := func(key string, value any) { fmt.Fprintf(w, "    %s\t%v\n", key, value) }

	section("Server")
	row("Port", cfg.Port)
	row("Log level", cfg.LogLevel)
	row("CORS origins", strings.Join(cfg.CORSAllowedOrigins, ", "))
	row("Rate limit", fmt.Sprintf("%d per %s", cfg.RateLimitRequests, cfg.RateLimitWindow))

	section("Storage")
	row("Backend", cfg.DataBackend)
	row("Data directory", cfg.DataDirectory)
	row("SQLite path", cfg.SQLiteDBPath)
	row("Database URL", maskURL(cfg.DatabaseURL))
	row("Redis URL", maskURL(cfg.RedisURL))

	section("Events")
	row("AMQP URL", maskURL(cfg.AMQPURL))
	row("Exchange / queue", cfg.AMQPExchange+" / "+cfg.AMQPQueue)
	row("Sweep interval", cfg.SyncInterval)
	row("Export concurrency", cfg.SyncBatchSize)

	section("Google Sheets")
	row("Enabled", cfg.SheetsEnabled())
	row("Spreadsheet", orNotSet(cfg.GoogleSpreadsheetID))
	row("Sheet suffix", cfg.SummarySheetSuffix)

	section("Estimating")
	row("Model", cfg.AIModel)
	row("API key", maskSecret(cfg.AIAPIKey))
	row("Cache TTL", cfg.AICacheTTL)

	return w.Flush()
}

func orNotSet(s string) string {
	if s == "" {
		return "not set"
	}
	return s
}

// maskSecret keeps only the last four characters.
func maskSecret(s string) string {
	if s == "" {
		return "not set"
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

// maskURL hides the password of a URL with user info.
func maskURL(raw string) string {
	if raw == "" {
		return "not set"
	}
	at := strings.LastIndex(raw, "@")
	scheme := strings.Index(raw, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return raw
	}
	userinfo := raw[scheme+3 : at]
	if colon := strings.Index(userinfo, ":"); colon >= 0 {
		userinfo = userinfo[:colon] + ":****"
	}
	return raw[:scheme+3] + userinfo + raw[at:]
}
