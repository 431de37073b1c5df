// Package marketdata provides best-effort access to per-symbol financial
// facts and daily price history.
package marketdata

import (
	"context"
	"errors"

	"nse-screener/internal/models"
)

// ErrUnavailable is returned when a symbol's data cannot be fetched after
// exhausting retries. Callers treat it as "skip symbol", never as fatal.
var ErrUnavailable = errors.New("market data unavailable")

// Provider supplies financial profiles and price history for bare NSE
// tickers (uppercase, no exchange suffix).
type Provider interface {
	// GetProfile returns a populated profile or ErrUnavailable. Numeric
	// fields that could not be determined are 0, never unset.
	GetProfile(ctx context.Context, symbol string) (*models.FinancialProfile, error)

	// GetDailyHistory returns daily candles over the requested lookback in
	// years, degrading to a shorter window before giving up.
	GetDailyHistory(ctx context.Context, symbol string, years int) ([]models.Candle, error)

	// GetLatestClose returns the most recent close price.
	GetLatestClose(ctx context.Context, symbol string) (float64, error)
}

// Enricher is a best-effort secondary source for fields the primary
// provider could not supply. A zero return with ok=false means the field
// stays at its sentinel.
type Enricher interface {
	DebtToEquity(ctx context.Context, symbol string) (float64, bool)
	PublicHolding(ctx context.Context, symbol string) (float64, bool)
}
