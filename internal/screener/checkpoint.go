package screener

import (
	"github.com/rs/zerolog"

	"nse-screener/internal/models"
)

// FlushFunc persists the accumulated rows. The label distinguishes
// partial, interrupted and final artifacts.
type FlushFunc func(rows []models.ScreeningRow, label string) error

// Accumulator collects screening rows and flushes a checkpoint artifact
// every interval rows, protecting long batch runs against interruption.
type Accumulator struct {
	rows     []models.ScreeningRow
	interval int
	flush    FlushFunc
	logger   zerolog.Logger
}

// NewAccumulator creates an accumulator flushing every interval rows.
func NewAccumulator(interval int, flush FlushFunc, logger zerolog.Logger) *Accumulator {
	if interval <= 0 {
		interval = 50
	}
	return &Accumulator{
		interval: interval,
		flush:    flush,
		logger:   logger,
	}
}

// Add appends a result row, flushing a checkpoint when the interval is
// reached. Checkpoint failures are logged, never fatal: losing a
// checkpoint must not abort the batch.
func (a *Accumulator) Add(row models.ScreeningRow) {
	a.rows = append(a.rows, row)
	if len(a.rows)%a.interval == 0 {
		if err := a.flush(a.rows, "partial"); err != nil {
			a.logger.Warn().Err(err).Int("rows", len(a.rows)).Msg("Checkpoint flush failed")
		} else {
			a.logger.Info().Int("rows", len(a.rows)).Msg("Checkpoint flushed")
		}
	}
}

// Rows returns everything accumulated so far.
func (a *Accumulator) Rows() []models.ScreeningRow {
	return a.rows
}

// FlushInterrupted persists whatever has accumulated after a cancellation.
func (a *Accumulator) FlushInterrupted() error {
	if len(a.rows) == 0 {
		return nil
	}
	return a.flush(a.rows, "interrupted")
}
