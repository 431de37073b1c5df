// Package analysis builds per-symbol technical snapshots from daily
// candle history.
package analysis

import (
	"context"
	"fmt"

	"nse-screener/internal/analysis/indicators"
	"nse-screener/internal/models"
)

// Report is a point-in-time technical snapshot for one symbol.
type Report struct {
	Symbol      string
	Close       float64
	SMA         map[int]float64 // period -> latest value
	GoldenCross bool            // SMA50 above SMA200
	DeathCross  bool
	RSI         float64
	MACD        float64
	MACDSignal  float64
	MACDBullish bool
	BollUpper   float64
	BollMiddle  float64
	BollLower   float64
}

// Analyzer computes reports with a shared indicator engine.
type Analyzer struct {
	engine     *indicators.Engine
	smaPeriods []int
}

// NewAnalyzer creates an analyzer with the standard daily-chart setup:
// SMA 10/50/100/200, RSI 14, MACD 12/26/9 and Bollinger 20/2.
func NewAnalyzer(workers int) *Analyzer {
	engine := indicators.NewEngine(workers)
	periods := []int{10, 50, 100, 200}
	for _, p := range periods {
		engine.RegisterIndicator(indicators.NewSMA(p))
	}
	engine.RegisterIndicator(indicators.NewRSI(14))
	engine.RegisterMultiIndicator(indicators.NewMACD(12, 26, 9))
	engine.RegisterMultiIndicator(indicators.NewBollingerBands(20, 2))
	return &Analyzer{engine: engine, smaPeriods: periods}
}

// Analyze computes the technical snapshot from chronological daily candles.
// Indicators whose lookback exceeds the history stay at zero rather than
// failing the whole report.
func (a *Analyzer) Analyze(ctx context.Context, symbol string, candles []models.Candle) (*Report, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("no candle history for %s", symbol)
	}

	single, multi, err := a.engine.CalculateAll(ctx, candles)
	if err != nil {
		return nil, err
	}

	last := len(candles) - 1
	report := &Report{
		Symbol: symbol,
		Close:  candles[last].Close,
		SMA:    make(map[int]float64),
	}

	for _, p := range a.smaPeriods {
		if values, ok := single[fmt.Sprintf("SMA_%d", p)]; ok {
			report.SMA[p] = values[last]
		}
	}
	if sma50, ok50 := report.SMA[50]; ok50 {
		if sma200, ok200 := report.SMA[200]; ok200 && sma200 > 0 {
			report.GoldenCross = sma50 > sma200
			report.DeathCross = sma50 < sma200
		}
	}

	if values, ok := single["RSI_14"]; ok {
		report.RSI = values[last]
	}

	if macd, ok := multi["MACD_12_26_9"]; ok {
		report.MACD = macd["macd"][last]
		report.MACDSignal = macd["signal"][last]
		report.MACDBullish = report.MACD > report.MACDSignal
	}

	if boll, ok := multi["BollingerBands_20_2.0"]; ok {
		report.BollUpper = boll["upper"][last]
		report.BollMiddle = boll["middle"][last]
		report.BollLower = boll["lower"][last]
	}

	return report, nil
}
