// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"nse-screener/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Candles
	SaveCandles(ctx context.Context, symbol string, candles []models.Candle) error
	GetCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error)
	GetCandlesFreshness(ctx context.Context, symbol string) (time.Time, error)

	// Screening runs
	SaveScreeningRun(ctx context.Context, run *ScreeningRun, rows []models.ScreeningRow) (int64, error)
	GetScreeningRuns(ctx context.Context, limit int) ([]ScreeningRun, error)
	GetRunRows(ctx context.Context, runID int64, passedOnly bool) ([]models.ScreeningRow, error)

	// Candle signals
	SaveSignals(ctx context.Context, date string, rows []models.SignalRow) error
	GetSignals(ctx context.Context, date string) ([]models.SignalRow, error)
	LatestSignalDate(ctx context.Context) (string, error)

	// Sync
	GetLastSync(dataType string) time.Time
	SetLastSync(dataType string, t time.Time) error

	// Lifecycle
	Close() error
}

// ScreeningRun is the stored summary of one batch run.
type ScreeningRun struct {
	ID          int64
	RunDate     string // YYYY-MM-DD
	Processed   int
	Passed      int
	Skipped     int
	Duration    time.Duration
	Interrupted bool
	CreatedAt   time.Time
}
