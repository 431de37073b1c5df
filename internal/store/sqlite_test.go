package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"nse-screener/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetCandles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	candles := []models.Candle{
		{Timestamp: base, Open: 100, High: 105, Low: 99, Close: 104, Volume: 1000},
		{Timestamp: base.AddDate(0, 0, 1), Open: 104, High: 110, Low: 103, Close: 109, Volume: 1500},
		{Timestamp: base.AddDate(0, 0, 2), Open: 109, High: 112, Low: 108, Close: 111, Volume: 900},
	}

	if err := s.SaveCandles(ctx, "TCS", candles); err != nil {
		t.Fatalf("SaveCandles: %v", err)
	}

	got, err := s.GetCandles(ctx, "TCS", base, base.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("GetCandles: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d candles, want 3", len(got))
	}
	if got[0].Close != 104 || got[2].Close != 111 {
		t.Errorf("candles out of order or corrupted: %+v", got)
	}

	// Range query excludes out-of-window rows.
	got, err = s.GetCandles(ctx, "TCS", base.AddDate(0, 0, 1), base.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("GetCandles narrow range: %v", err)
	}
	if len(got) != 1 || got[0].Close != 109 {
		t.Errorf("narrow range = %+v, want single candle with close 109", got)
	}
}

func TestSaveCandles_UpsertOnDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ts := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	first := []models.Candle{{Timestamp: ts, Open: 100, High: 105, Low: 99, Close: 104, Volume: 1000}}
	second := []models.Candle{{Timestamp: ts, Open: 100, High: 106, Low: 99, Close: 105, Volume: 1200}}

	if err := s.SaveCandles(ctx, "TCS", first); err != nil {
		t.Fatalf("SaveCandles: %v", err)
	}
	if err := s.SaveCandles(ctx, "TCS", second); err != nil {
		t.Fatalf("SaveCandles replace: %v", err)
	}

	got, err := s.GetCandles(ctx, "TCS", ts, ts)
	if err != nil {
		t.Fatalf("GetCandles: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d candles, want 1 after upsert", len(got))
	}
	if got[0].Close != 105 {
		t.Errorf("close = %f, want replaced value 105", got[0].Close)
	}
}

func TestGetCandlesFreshness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fresh, err := s.GetCandlesFreshness(ctx, "NOPE")
	if err != nil {
		t.Fatalf("GetCandlesFreshness: %v", err)
	}
	if !fresh.IsZero() {
		t.Errorf("freshness for unknown symbol = %v, want zero", fresh)
	}

	latest := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	candles := []models.Candle{
		{Timestamp: latest.AddDate(0, 0, -1), Open: 1, High: 2, Low: 1, Close: 2, Volume: 10},
		{Timestamp: latest, Open: 2, High: 3, Low: 2, Close: 3, Volume: 10},
	}
	if err := s.SaveCandles(ctx, "TCS", candles); err != nil {
		t.Fatalf("SaveCandles: %v", err)
	}

	fresh, err = s.GetCandlesFreshness(ctx, "TCS")
	if err != nil {
		t.Fatalf("GetCandlesFreshness: %v", err)
	}
	if !fresh.Equal(latest) {
		t.Errorf("freshness = %v, want %v", fresh, latest)
	}
}

func TestScreeningRunRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := &ScreeningRun{
		RunDate:     "2025-01-06",
		Processed:   3,
		Passed:      1,
		Skipped:     1,
		Duration:    90 * time.Second,
		Interrupted: false,
	}
	rows := []models.ScreeningRow{
		{Symbol: "TCS", CompanyName: "Tata Consultancy Services", MarketCap: 1200000, NetProfit: 11000, ROCE: 55, PassesCriteria: true, ScreeningDate: "2025-01-06"},
		{Symbol: "SMALLCO", CompanyName: "Small Co", MarketCap: 800, NetProfit: 12, ROCE: 9, PassesCriteria: false, ScreeningDate: "2025-01-06"},
	}

	runID, err := s.SaveScreeningRun(ctx, run, rows)
	if err != nil {
		t.Fatalf("SaveScreeningRun: %v", err)
	}
	if runID <= 0 {
		t.Fatalf("runID = %d, want positive", runID)
	}

	runs, err := s.GetScreeningRuns(ctx, 10)
	if err != nil {
		t.Fatalf("GetScreeningRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].Processed != 3 || runs[0].Passed != 1 || runs[0].Duration != 90*time.Second {
		t.Errorf("run round-trip mismatch: %+v", runs[0])
	}

	all, err := s.GetRunRows(ctx, runID, false)
	if err != nil {
		t.Fatalf("GetRunRows: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d rows, want 2", len(all))
	}
	if all[0].Symbol != "TCS" {
		t.Errorf("rows not ordered by market cap desc: first = %s", all[0].Symbol)
	}

	passed, err := s.GetRunRows(ctx, runID, true)
	if err != nil {
		t.Fatalf("GetRunRows passedOnly: %v", err)
	}
	if len(passed) != 1 || passed[0].Symbol != "TCS" || !passed[0].PassesCriteria {
		t.Errorf("passedOnly = %+v, want just TCS", passed)
	}
}

func TestSignalsReplacePerDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := []models.SignalRow{
		{Symbol: "INFY", BuyDate: "2024-03-01", BuyPrice: 100, SellDate: "2024-03-05", SellPrice: 125, GainPercent: 25, Days: 5},
		{Symbol: "TCS", BuyDate: "2024-04-10", BuyPrice: 200, SellDate: "2024-04-12", SellPrice: 250, GainPercent: 25, Days: 3},
	}
	if err := s.SaveSignals(ctx, "2025-01-06", first); err != nil {
		t.Fatalf("SaveSignals: %v", err)
	}

	// Re-generating on the same date replaces the whole set.
	second := []models.SignalRow{
		{Symbol: "WIPRO", BuyDate: "2024-05-01", BuyPrice: 50, SellDate: "2024-05-04", SellPrice: 62, GainPercent: 24, Days: 4},
	}
	if err := s.SaveSignals(ctx, "2025-01-06", second); err != nil {
		t.Fatalf("SaveSignals replace: %v", err)
	}

	got, err := s.GetSignals(ctx, "2025-01-06")
	if err != nil {
		t.Fatalf("GetSignals: %v", err)
	}
	if len(got) != 1 || got[0].Symbol != "WIPRO" {
		t.Errorf("signals after replace = %+v, want just WIPRO", got)
	}

	// A different date keeps its own set.
	if err := s.SaveSignals(ctx, "2025-01-07", first); err != nil {
		t.Fatalf("SaveSignals other date: %v", err)
	}
	latest, err := s.LatestSignalDate(ctx)
	if err != nil {
		t.Fatalf("LatestSignalDate: %v", err)
	}
	if latest != "2025-01-07" {
		t.Errorf("LatestSignalDate = %q, want 2025-01-07", latest)
	}
}

func TestLatestSignalDate_Empty(t *testing.T) {
	s := newTestStore(t)
	date, err := s.LatestSignalDate(context.Background())
	if err != nil {
		t.Fatalf("LatestSignalDate: %v", err)
	}
	if date != "" {
		t.Errorf("LatestSignalDate on empty store = %q, want empty", date)
	}
}

func TestSyncStatus(t *testing.T) {
	s := newTestStore(t)

	if got := s.GetLastSync("candles"); !got.IsZero() {
		t.Errorf("GetLastSync before set = %v, want zero", got)
	}

	at := time.Date(2025, 1, 6, 10, 30, 0, 0, time.UTC)
	if err := s.SetLastSync("candles", at); err != nil {
		t.Fatalf("SetLastSync: %v", err)
	}
	if got := s.GetLastSync("candles"); !got.Equal(at) {
		t.Errorf("GetLastSync = %v, want %v", got, at)
	}
}
