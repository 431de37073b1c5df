package signals

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"nse-screener/internal/config"
	"nse-screener/internal/logging"
	"nse-screener/internal/marketdata"
	"nse-screener/internal/models"
)

// Generator runs candle-signal detection over a symbol list using a small
// worker pool, since history fetches are independent per symbol.
type Generator struct {
	cfg      *config.Config
	provider marketdata.Provider
	detector *Detector
	logger   zerolog.Logger
	progress func(done, total int, symbol string)
}

// NewGenerator wires a signal generator.
func NewGenerator(cfg *config.Config, provider marketdata.Provider, logger zerolog.Logger) *Generator {
	return &Generator{
		cfg:      cfg,
		provider: provider,
		detector: NewDetector(cfg.Signals.MinGainPercent),
		logger:   logger,
	}
}

// OnProgress registers a progress callback.
func (g *Generator) OnProgress(fn func(done, total int, symbol string)) {
	g.progress = fn
}

// Generate detects signals for every symbol and returns the combined rows
// sorted by symbol then buy date. Symbols whose history cannot be fetched
// are skipped, never fatal.
func (g *Generator) Generate(ctx context.Context, symbols []string) ([]models.SignalRow, error) {
	workers := g.cfg.Signals.Workers
	if workers <= 0 {
		workers = 1
	}

	type result struct {
		symbol  string
		signals []models.CandleSignal
	}

	jobs := make(chan string)
	results := make(chan result)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				results <- result{symbol: symbol, signals: g.detectOne(ctx, symbol)}
				select {
				case <-time.After(g.cfg.Fetch.MarketInterval):
				case <-ctx.Done():
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, symbol := range symbols {
			select {
			case jobs <- symbol:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []models.CandleSignal
	done := 0
	for res := range results {
		done++
		all = append(all, res.signals...)
		if g.progress != nil {
			g.progress(done, len(symbols), res.symbol)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Symbol != all[j].Symbol {
			return all[i].Symbol < all[j].Symbol
		}
		return all[i].BuyDate < all[j].BuyDate
	})

	rows := make([]models.SignalRow, 0, len(all))
	for _, s := range all {
		rows = append(rows, models.SignalRow{
			Symbol:      s.Symbol,
			BuyDate:     s.BuyDate,
			BuyPrice:    s.BuyPrice,
			SellDate:    s.SellDate,
			SellPrice:   s.SellPrice,
			GainPercent: s.GainPercent,
			Days:        s.Days,
		})
	}
	g.logger.Info().Int("symbols", len(symbols)).Int("signals", len(rows)).
		Msg("Signal generation complete")
	return rows, nil
}

func (g *Generator) detectOne(ctx context.Context, symbol string) []models.CandleSignal {
	start := time.Now()
	candles, err := g.provider.GetDailyHistory(ctx, symbol, g.cfg.Signals.HistoryYears)
	logging.LogFetch(g.logger, "history", symbol, time.Since(start), err)
	if err != nil {
		return nil
	}
	return g.detector.Detect(symbol, candles)
}
