package signals

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"nse-screener/internal/marketdata"
	"nse-screener/internal/models"
)

// Ranker re-ranks detected signals against live prices so the watchlist
// surfaces whatever trades closest to its entry level right now.
type Ranker struct {
	provider marketdata.Provider
	pacing   time.Duration
	logger   zerolog.Logger
}

// NewRanker wires a proximity ranker.
func NewRanker(provider marketdata.Provider, pacing time.Duration, logger zerolog.Logger) *Ranker {
	return &Ranker{provider: provider, pacing: pacing, logger: logger}
}

// Rank keeps the latest signal per symbol, fetches each symbol's current
// close and orders the survivors by absolute distance from the entry
// price. Symbols whose price is unavailable, or that already trade at or
// above the sell target, are dropped.
func (r *Ranker) Rank(ctx context.Context, rows []models.SignalRow) ([]models.ProximityRow, error) {
	latest := latestPerSymbol(rows)

	ranked := make([]models.ProximityRow, 0, len(latest))
	for i, sig := range latest {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cmp, err := r.provider.GetLatestClose(ctx, sig.Symbol)
		if err != nil || cmp <= 0 {
			r.logger.Debug().Str("symbol", sig.Symbol).Err(err).Msg("No current price, dropping signal")
			continue
		}
		if cmp >= sig.SellPrice {
			// Target already met; nothing left to buy into.
			continue
		}

		prox := (cmp - sig.BuyPrice) / sig.BuyPrice * 100
		ranked = append(ranked, models.ProximityRow{
			Symbol:        sig.Symbol,
			BuyDate:       sig.BuyDate,
			BuyPrice:      sig.BuyPrice,
			SellPrice:     sig.SellPrice,
			CurrentPrice:  cmp,
			Proximity:     prox,
			Closeness:     math.Abs(prox),
			PotentialGain: (sig.SellPrice - cmp) / cmp * 100,
		})

		if i < len(latest)-1 {
			select {
			case <-time.After(r.pacing):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Closeness < ranked[j].Closeness
	})
	return ranked, nil
}

// latestPerSymbol keeps only the most recent signal for each symbol,
// returned in symbol order.
func latestPerSymbol(rows []models.SignalRow) []models.SignalRow {
	bySymbol := make(map[string]models.SignalRow)
	for _, row := range rows {
		cur, ok := bySymbol[row.Symbol]
		if !ok || row.BuyDate > cur.BuyDate {
			bySymbol[row.Symbol] = row
		}
	}

	out := make([]models.SignalRow, 0, len(bySymbol))
	for _, row := range bySymbol {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
