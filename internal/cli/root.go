// Package cli provides the command-line interface for the screening application.
package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"nse-screener/internal/config"
	"nse-screener/internal/logging"
	"nse-screener/internal/marketdata"
	"nse-screener/internal/scrape"
	"nse-screener/internal/screener"
	"nse-screener/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-06-01"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Provider  marketdata.Provider
	Store     store.DataStore
	Artifacts *screener.Artifacts
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Secondary scrape source backs the primary provider for ratios the
	// quote API omits on NSE listings.
	var enricher marketdata.Enricher
	if cfg.Fetch.ScrapeFallback {
		enricher = scrape.NewClient(cfg.Fetch, logger)
		logger.Debug().Msg("Scrape enrichment enabled")
	}
	app.Provider = marketdata.NewYahooProvider(cfg.Fetch, enricher, logger)

	// Initialize SQLite store
	dbPath := filepath.Join(config.DefaultConfigDir(), "screener.db")
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, candle caching disabled")
	} else {
		app.Store = dataStore
		app.Provider = marketdata.NewCachedProvider(app.Provider, dataStore, logger)
		logger.Debug().Msg("SQLite store initialized")
	}

	artifacts, err := screener.NewArtifacts(cfg.Output.Dir)
	if err != nil {
		logger.Warn().Err(err).Str("dir", cfg.Output.Dir).Msg("Output directory unavailable")
	} else {
		app.Artifacts = artifacts
	}

	rootCmd := &cobra.Command{
		Use:   "nse-screener",
		Short: "NSE stock screener and candle-signal toolkit",
		Long: `nse-screener screens NSE-listed companies on fundamental criteria and
detects qualifying candle sequences in daily price history.

Screening applies separate rule sets for bank/finance companies, PSUs and
private companies. Signal detection finds runs of consecutive up-days whose
low-to-high span clears the configured gain threshold.

Use 'nse-screener help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/nse-screener)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newScreenCmd(app))
	rootCmd.AddCommand(newSignalsCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newUniverseCmd(app))
	rootCmd.AddCommand(newMarketCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("nse-screener v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Screening Thresholds")
	output.Printf("  Bank/Finance Min Net Profit: %.0f Cr\n", cfg.Screening.BankMinNetProfit)
	output.Printf("  Bank/Finance Min ROE:        %.1f%%\n", cfg.Screening.BankMinROE)
	output.Printf("  Non-Bank Min Net Profit:     %.0f Cr\n", cfg.Screening.NonBankMinNetProfit)
	output.Printf("  Non-Bank Min ROCE:           %.1f%%\n", cfg.Screening.NonBankMinROCE)
	output.Printf("  Max Public Holding:          %.1f%%\n", cfg.Screening.MaxPublicHolding)
	output.Printf("  Checkpoint Interval:         %d\n", cfg.Screening.CheckpointInterval)
	output.Printf("  Staleness Window:            %d days\n", cfg.Screening.StalenessDays)
	output.Println()

	output.Bold("Signal Detection")
	output.Printf("  Min Gain:      %.1f%%\n", cfg.Signals.MinGainPercent)
	output.Printf("  History:       %d years\n", cfg.Signals.HistoryYears)
	output.Printf("  Workers:       %d\n", cfg.Signals.Workers)
	output.Println()

	output.Bold("Fetch")
	output.Printf("  Max Attempts:    %d\n", cfg.Fetch.MaxAttempts)
	output.Printf("  Retry Backoff:   %s\n", cfg.Fetch.RetryBackoff)
	output.Printf("  Request Timeout: %s\n", cfg.Fetch.RequestTimeout)
	output.Printf("  Scrape Interval: %s\n", cfg.Fetch.ScrapeInterval)
	output.Printf("  Scrape Fallback: %v\n", cfg.Fetch.ScrapeFallback)
	output.Println()

	output.Bold("Output")
	output.Printf("  Directory:   %s\n", cfg.Output.Dir)
	if cfg.Output.SymbolFile != "" {
		output.Printf("  Symbol File: %s\n", cfg.Output.SymbolFile)
	}

	return nil
}
