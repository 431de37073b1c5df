package screener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"nse-screener/internal/config"
	"nse-screener/internal/logging"
	"nse-screener/internal/marketdata"
	"nse-screener/internal/models"
)

// ProgressFunc receives batch progress: symbols processed so far, total
// universe size and the symbol just finished.
type ProgressFunc func(done, total int, symbol string)

// Summary reports what a batch run accomplished.
type Summary struct {
	Processed   int
	Passed      int
	Skipped     int
	Duration    time.Duration
	Interrupted bool
	ReusedFrom  string // non-empty when a fresh artifact was reused instead of fetching
}

// PassRate returns the fraction of processed symbols that passed.
func (s Summary) PassRate() float64 {
	if s.Processed == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Processed)
}

// Runner drives a full screening batch: fetch, classify, evaluate and
// persist, one symbol at a time.
type Runner struct {
	cfg       *config.Config
	provider  marketdata.Provider
	evaluator *Evaluator
	artifacts *Artifacts
	logger    zerolog.Logger
	progress  ProgressFunc
}

// NewRunner wires a batch runner.
func NewRunner(cfg *config.Config, provider marketdata.Provider, artifacts *Artifacts, logger zerolog.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		provider:  provider,
		evaluator: NewEvaluator(cfg.Screening),
		artifacts: artifacts,
		logger:    logger,
	}
}

// OnProgress registers a progress callback.
func (r *Runner) OnProgress(fn ProgressFunc) {
	r.progress = fn
}

// Run screens every symbol in the universe sequentially. Cancelling the
// context stops the batch and flushes an interrupted artifact so partial
// work survives a Ctrl-C. When force is false and a comprehensive artifact
// younger than the staleness window exists, the batch is skipped and the
// rows are reloaded from that artifact instead.
func (r *Runner) Run(ctx context.Context, symbols []string, force bool) ([]models.ScreeningRow, Summary, error) {
	start := time.Now()

	if !force {
		maxAge := time.Duration(r.cfg.Screening.StalenessDays) * 24 * time.Hour
		if fresh := r.artifacts.FindFresh(maxAge); fresh != "" {
			rows, err := ReadComprehensive(fresh)
			if err == nil && len(rows) > 0 {
				r.logger.Info().Str("artifact", fresh).Int("rows", len(rows)).
					Msg("Reusing recent screening results")
				passed := 0
				for _, row := range rows {
					if row.PassesCriteria {
						passed++
					}
				}
				return rows, Summary{
					Processed:  len(rows),
					Passed:     passed,
					Duration:   time.Since(start),
					ReusedFrom: fresh,
				}, nil
			}
			r.logger.Warn().Str("artifact", fresh).Err(err).
				Msg("Stale-check artifact unreadable, running fresh batch")
		}
	}

	acc := NewAccumulator(r.cfg.Screening.CheckpointInterval, func(rows []models.ScreeningRow, label string) error {
		_, err := r.artifacts.WriteComprehensive(rows, label)
		return err
	}, r.logger)

	today := time.Now().Format("2006-01-02")
	skipped := 0

	for i, symbol := range symbols {
		select {
		case <-ctx.Done():
			r.logger.Warn().Int("processed", len(acc.Rows())).
				Msg("Batch interrupted, flushing partial results")
			if err := acc.FlushInterrupted(); err != nil {
				r.logger.Error().Err(err).Msg("Interrupted flush failed")
			}
			return acc.Rows(), Summary{
				Processed:   len(acc.Rows()),
				Passed:      countPassed(acc.Rows()),
				Skipped:     skipped,
				Duration:    time.Since(start),
				Interrupted: true,
			}, ctx.Err()
		default:
		}

		row, err := r.screenOne(ctx, symbol, today)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				continue // loop head handles the flush
			}
			skipped++
			r.logger.Warn().Str("symbol", symbol).Err(err).Msg("Symbol skipped")
		} else {
			acc.Add(row)
		}

		if r.progress != nil {
			r.progress(i+1, len(symbols), symbol)
		}

		// Pace requests so neither the quote API nor the scrape
		// fallback sees a burst.
		if i < len(symbols)-1 {
			select {
			case <-time.After(r.cfg.Fetch.ScrapeInterval):
			case <-ctx.Done():
			}
		}
	}

	rows := acc.Rows()
	if _, err := r.artifacts.WriteComprehensive(rows, "final"); err != nil {
		return rows, Summary{}, fmt.Errorf("writing comprehensive artifact: %w", err)
	}
	if _, err := r.artifacts.WriteScreened(rows); err != nil {
		return rows, Summary{}, fmt.Errorf("writing screened artifact: %w", err)
	}

	summary := Summary{
		Processed: len(rows),
		Passed:    countPassed(rows),
		Skipped:   skipped,
		Duration:  time.Since(start),
	}
	r.logger.Info().
		Int("processed", summary.Processed).
		Int("passed", summary.Passed).
		Int("skipped", summary.Skipped).
		Dur("took", summary.Duration).
		Msg("Screening batch complete")
	return rows, summary, nil
}

func (r *Runner) screenOne(ctx context.Context, symbol, date string) (models.ScreeningRow, error) {
	fetchStart := time.Now()
	profile, err := r.provider.GetProfile(ctx, symbol)
	logging.LogFetch(r.logger, "profile", symbol, time.Since(fetchStart), err)
	if err != nil {
		return models.ScreeningRow{}, err
	}

	Classify(profile)
	passes := r.evaluator.Evaluate(profile)
	logging.LogVerdict(r.logger, symbol, passes)

	return models.NewScreeningRow(profile, passes, date), nil
}

func countPassed(rows []models.ScreeningRow) int {
	n := 0
	for _, r := range rows {
		if r.PassesCriteria {
			n++
		}
	}
	return n
}
