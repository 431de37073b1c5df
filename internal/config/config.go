// Package config provides configuration management for the screening application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Screening ScreeningConfig `mapstructure:"screening"`
	Signals   SignalConfig    `mapstructure:"signals"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Output    OutputConfig    `mapstructure:"output"`
	UI        UIConfig        `mapstructure:"ui"`
}

// ScreeningConfig holds the fundamental screening thresholds. The rule set
// is deliberately configurable; the defaults are the hand-tuned values the
// evaluator has always used.
type ScreeningConfig struct {
	BankMinNetProfit    float64 `mapstructure:"bank_min_net_profit"`    // crore
	BankMinROE          float64 `mapstructure:"bank_min_roe"`           // percent
	NonBankMinNetProfit float64 `mapstructure:"nonbank_min_net_profit"` // crore
	NonBankMinROCE      float64 `mapstructure:"nonbank_min_roce"`       // percent
	MaxPublicHolding    float64 `mapstructure:"max_public_holding"`     // percent, private companies only
	CheckpointInterval  int     `mapstructure:"checkpoint_interval"`
	StalenessDays       int     `mapstructure:"staleness_days"`
}

// SignalConfig holds candle-sequence detection configuration.
type SignalConfig struct {
	MinGainPercent float64 `mapstructure:"min_gain_percent"`
	HistoryYears   int     `mapstructure:"history_years"`
	Workers        int     `mapstructure:"workers"`
}

// FetchConfig holds data-fetch configuration.
type FetchConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	ScrapeInterval time.Duration `mapstructure:"scrape_interval"` // pause between scrape-heavy symbols
	MarketInterval time.Duration `mapstructure:"market_interval"` // pause between pure market-data symbols
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	ScrapeFallback bool          `mapstructure:"scrape_fallback"`
}

// OutputConfig holds artifact output configuration.
type OutputConfig struct {
	Dir        string `mapstructure:"dir"`
	SymbolFile string `mapstructure:"symbol_file"` // optional explicit symbol list; fatal if set and missing
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/nse-screener"
	}
	return filepath.Join(home, ".config", "nse-screener")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Screening: ScreeningConfig{
			BankMinNetProfit:    1000,
			BankMinROE:          10,
			NonBankMinNetProfit: 200,
			NonBankMinROCE:      20,
			MaxPublicHolding:    30,
			CheckpointInterval:  50,
			StalenessDays:       7,
		},
		Signals: SignalConfig{
			MinGainPercent: 20,
			HistoryYears:   10,
			Workers:        4,
		},
		Fetch: FetchConfig{
			MaxAttempts:    3,
			RetryBackoff:   3 * time.Second,
			RequestTimeout: 20 * time.Second,
			ScrapeInterval: 1500 * time.Millisecond,
			MarketInterval: 250 * time.Millisecond,
			CacheTTL:       30 * time.Minute,
			ScrapeFallback: true,
		},
		Output: OutputConfig{
			Dir: filepath.Join(DefaultConfigDir(), "output"),
		},
		UI: UIConfig{
			ColorEnabled: true,
			DateFormat:   "2006-01-02",
		},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("creating config template: %w", err)
		}
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("screening.bank_min_net_profit", cfg.Screening.BankMinNetProfit)
	v.SetDefault("screening.bank_min_roe", cfg.Screening.BankMinROE)
	v.SetDefault("screening.nonbank_min_net_profit", cfg.Screening.NonBankMinNetProfit)
	v.SetDefault("screening.nonbank_min_roce", cfg.Screening.NonBankMinROCE)
	v.SetDefault("screening.max_public_holding", cfg.Screening.MaxPublicHolding)
	v.SetDefault("screening.checkpoint_interval", cfg.Screening.CheckpointInterval)
	v.SetDefault("screening.staleness_days", cfg.Screening.StalenessDays)
	v.SetDefault("signals.min_gain_percent", cfg.Signals.MinGainPercent)
	v.SetDefault("signals.history_years", cfg.Signals.HistoryYears)
	v.SetDefault("signals.workers", cfg.Signals.Workers)
	v.SetDefault("fetch.max_attempts", cfg.Fetch.MaxAttempts)
	v.SetDefault("fetch.retry_backoff", cfg.Fetch.RetryBackoff)
	v.SetDefault("fetch.request_timeout", cfg.Fetch.RequestTimeout)
	v.SetDefault("fetch.scrape_interval", cfg.Fetch.ScrapeInterval)
	v.SetDefault("fetch.market_interval", cfg.Fetch.MarketInterval)
	v.SetDefault("fetch.cache_ttl", cfg.Fetch.CacheTTL)
	v.SetDefault("fetch.scrape_fallback", cfg.Fetch.ScrapeFallback)
	v.SetDefault("output.dir", cfg.Output.Dir)
	v.SetDefault("output.symbol_file", cfg.Output.SymbolFile)
	v.SetDefault("ui.color_enabled", cfg.UI.ColorEnabled)
	v.SetDefault("ui.date_format", cfg.UI.DateFormat)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NSE_SCREENER_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("NSE_SCREENER_SYMBOL_FILE"); v != "" {
		cfg.Output.SymbolFile = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Screening.BankMinNetProfit < 0 || c.Screening.NonBankMinNetProfit < 0 {
		return fmt.Errorf("profit thresholds must be non-negative")
	}
	if c.Screening.MaxPublicHolding < 0 || c.Screening.MaxPublicHolding > 100 {
		return fmt.Errorf("max_public_holding must be between 0 and 100")
	}
	if c.Screening.CheckpointInterval <= 0 {
		return fmt.Errorf("checkpoint_interval must be positive")
	}
	if c.Signals.MinGainPercent < 0 {
		return fmt.Errorf("min_gain_percent must be non-negative")
	}
	if c.Signals.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.Fetch.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be positive")
	}
	return nil
}
