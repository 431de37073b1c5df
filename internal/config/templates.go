package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# NSE Screener Configuration

[screening]
# Bank/Finance criteria
bank_min_net_profit = 1000.0
bank_min_roe = 10.0
# Non-bank criteria
nonbank_min_net_profit = 200.0
nonbank_min_roce = 20.0
# Private companies only; PSUs are exempt
max_public_holding = 30.0
# Persist partial results every N symbols during a batch run
checkpoint_interval = 50
# Reuse a comprehensive artifact younger than this instead of re-fetching
staleness_days = 7

[signals]
# Minimum low-to-high gain for a candle sequence to be retained
min_gain_percent = 20.0
# Preferred history window; degrades to half if empty
history_years = 10
# Concurrent symbol fetches during signal generation
workers = 4

[fetch]
max_attempts = 3
retry_backoff = "3s"
request_timeout = "20s"
# Courtesy pause between symbols on scrape-heavy paths
scrape_interval = "1500ms"
# Pause between symbols on pure market-data paths
market_interval = "250ms"
cache_ttl = "30m"
# Attempt screener.in enrichment when the primary source has no value
scrape_fallback = true

[output]
# Artifact directory; defaults to <config dir>/output
dir = ""
# Optional explicit symbol list CSV (must have a SYMBOL column).
# If set and the file is missing, the run aborts.
symbol_file = ""

[ui]
color_enabled = true
date_format = "2006-01-02"
`

// createTemplateConfig writes a template config.toml so a first run leaves
// an editable file behind.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return os.WriteFile(path, []byte(configTemplate), 0644)
}
