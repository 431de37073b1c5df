package indicators

import (
	"context"
	"sort"
	"testing"
)

func testEngine() *Engine {
	e := NewEngine(2)
	e.RegisterIndicator(NewSMA(3))
	e.RegisterIndicator(NewRSI(14))
	e.RegisterMultiIndicator(NewBollingerBands(20, 2))
	return e
}

func TestEngine_CalculateAll(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i%5)
	}
	candles := candlesFromCloses(closes)

	single, multi, err := testEngine().CalculateAll(context.Background(), candles)
	if err != nil {
		t.Fatalf("CalculateAll: %v", err)
	}
	for _, name := range []string{"SMA_3", "RSI_14"} {
		if _, ok := single[name]; !ok {
			t.Errorf("missing single result %q", name)
		}
	}
	if _, ok := multi["BollingerBands_20_2.0"]; !ok {
		t.Error("missing Bollinger result")
	}
}

func TestEngine_CalculateAllSkipsShortHistory(t *testing.T) {
	// Three candles are enough for SMA_3 but not RSI_14 or Bollinger;
	// the short ones are skipped, not fatal.
	candles := candlesFromCloses([]float64{10, 11, 12})

	single, multi, err := testEngine().CalculateAll(context.Background(), candles)
	if err != nil {
		t.Fatalf("CalculateAll: %v", err)
	}
	if _, ok := single["SMA_3"]; !ok {
		t.Error("SMA_3 should still be computed")
	}
	if _, ok := single["RSI_14"]; ok {
		t.Error("RSI_14 should be skipped on short history")
	}
	if len(multi) != 0 {
		t.Errorf("multi results = %v, want none", multi)
	}
}

func TestEngine_CalculateByName(t *testing.T) {
	e := testEngine()
	candles := candlesFromCloses([]float64{10, 20, 30, 40})

	values, err := e.Calculate(context.Background(), "SMA_3", candles)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if values[3] != 30 {
		t.Errorf("SMA_3 last value = %f, want 30", values[3])
	}

	if _, err := e.Calculate(context.Background(), "NOPE", candles); err == nil {
		t.Error("expected error for unknown indicator")
	}
}

func TestEngine_ListIndicators(t *testing.T) {
	names := testEngine().ListIndicators()
	sort.Strings(names)
	want := []string{"RSI_14", "SMA_3"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
