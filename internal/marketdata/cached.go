package marketdata

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"nse-screener/internal/models"
	"nse-screener/internal/store"
)

// CachedProvider wraps a Provider with a persistent candle cache so daily
// history is fetched from the network at most once per trading day.
type CachedProvider struct {
	inner  Provider
	store  store.DataStore
	logger zerolog.Logger
}

// NewCachedProvider wraps inner with the given store.
func NewCachedProvider(inner Provider, st store.DataStore, logger zerolog.Logger) *CachedProvider {
	return &CachedProvider{inner: inner, store: st, logger: logger}
}

// GetProfile delegates to the wrapped provider; profiles change too often
// for the persistent cache to help.
func (c *CachedProvider) GetProfile(ctx context.Context, symbol string) (*models.FinancialProfile, error) {
	return c.inner.GetProfile(ctx, symbol)
}

// GetDailyHistory serves candles from the store when the newest stored
// candle is from today or the last trading session, fetching and
// persisting otherwise.
func (c *CachedProvider) GetDailyHistory(ctx context.Context, symbol string, years int) ([]models.Candle, error) {
	freshness, err := c.store.GetCandlesFreshness(ctx, symbol)
	if err == nil && !freshness.IsZero() && recentEnough(freshness) {
		from := time.Now().AddDate(-years, 0, 0)
		cached, err := c.store.GetCandles(ctx, symbol, from, time.Now())
		if err == nil && len(cached) > 0 {
			c.logger.Debug().Str("symbol", symbol).Int("candles", len(cached)).Msg("Candle cache hit")
			return cached, nil
		}
	}

	candles, err := c.inner.GetDailyHistory(ctx, symbol, years)
	if err != nil {
		return nil, err
	}
	if err := c.store.SaveCandles(ctx, symbol, candles); err != nil {
		c.logger.Warn().Str("symbol", symbol).Err(err).Msg("Candle cache write failed")
	}
	return candles, nil
}

// GetLatestClose always goes to the network; closeness ranking needs the
// live price, not yesterday's.
func (c *CachedProvider) GetLatestClose(ctx context.Context, symbol string) (float64, error) {
	return c.inner.GetLatestClose(ctx, symbol)
}

// recentEnough reports whether a candle timestamp plausibly covers the
// last completed session. Weekends extend the window.
func recentEnough(t time.Time) bool {
	age := time.Since(t)
	switch time.Now().Weekday() {
	case time.Saturday:
		return age < 48*time.Hour
	case time.Sunday, time.Monday:
		return age < 96*time.Hour
	default:
		return age < 48*time.Hour
	}
}
