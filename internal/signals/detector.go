// Package signals detects qualifying runs of consecutive up-days in daily
// candle history and ranks them against live prices.
package signals

import (
	"sort"

	"nse-screener/internal/models"
)

// Detector finds maximal runs of consecutive up-days whose low-to-high
// span clears a minimum gain, then discards any run whose buy level was
// revisited and target re-hit later in the history.
type Detector struct {
	minGainPercent float64
}

// NewDetector creates a detector with the given minimum gain threshold.
func NewDetector(minGainPercent float64) *Detector {
	return &Detector{minGainPercent: minGainPercent}
}

// Detect returns every still-valid qualifying signal for one symbol,
// sorted by buy date. Candles must be in chronological order.
func (d *Detector) Detect(symbol string, candles []models.Candle) []models.CandleSignal {
	var signals []models.CandleSignal

	for _, run := range upRuns(candles) {
		entry := candles[run.start].Low
		exit := candles[run.end].High
		if entry == 0 {
			continue
		}
		gain := (exit - entry) / entry * 100
		if gain < d.minGainPercent {
			continue
		}
		if replayedLater(candles, run.end, entry, exit) {
			continue
		}
		signals = append(signals, models.CandleSignal{
			Symbol:      symbol,
			BuyDate:     candles[run.start].Timestamp.Format("2006-01-02"),
			BuyPrice:    entry,
			SellDate:    candles[run.end].Timestamp.Format("2006-01-02"),
			SellPrice:   exit,
			GainPercent: gain,
			Days:        run.end - run.start + 1,
		})
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].BuyDate < signals[j].BuyDate
	})
	return signals
}

type run struct {
	start, end int // inclusive candle indices
}

// upRuns returns the maximal stretches of consecutive up-days. A single
// up-day is a run of length one.
func upRuns(candles []models.Candle) []run {
	var runs []run
	start := -1
	for i, c := range candles {
		if c.IsUp() {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, run{start: start, end: i - 1})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, run{start: start, end: len(candles) - 1})
	}
	return runs
}

// replayedLater reports whether, after the run ended, price first came
// back down to the entry level and then reached the exit level again.
// Such a signal already played out once and is no longer actionable.
func replayedLater(candles []models.Candle, runEnd int, entry, exit float64) bool {
	reentered := false
	for i := runEnd + 1; i < len(candles); i++ {
		if !reentered {
			if candles[i].Low <= entry {
				reentered = true
			}
			// The re-entry day itself can also hit the target.
		}
		if reentered && candles[i].High >= exit {
			return true
		}
	}
	return false
}
