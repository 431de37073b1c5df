package screener

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"nse-screener/internal/models"
)

func sampleRows() []models.ScreeningRow {
	return []models.ScreeningRow{
		{
			Symbol:              "TCS",
			CompanyName:         "Tata Consultancy Services",
			Sector:              "Technology",
			Industry:            "IT Services",
			MarketCap:           1400000,
			NetProfit:           450.25,
			ROCE:                52.1,
			ROE:                 46.8,
			LatestQuarterProfit: 120.5,
			Last3QProfits:       "110.00,105.50,98.25",
			PublicHolding:       27.6,
			PassesCriteria:      true,
			ScreeningDate:       "2025-06-01",
		},
		{
			Symbol:         "FAILCO",
			CompanyName:    "Fail Co",
			MarketCap:      5000,
			NetProfit:      50,
			Last3QProfits:  "N/A",
			PassesCriteria: false,
			ScreeningDate:  "2025-06-01",
		},
	}
}

func TestComprehensiveRoundTrip(t *testing.T) {
	artifacts, err := NewArtifacts(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifacts: %v", err)
	}

	rows := sampleRows()
	path, err := artifacts.WriteComprehensive(rows, "final")
	if err != nil {
		t.Fatalf("WriteComprehensive: %v", err)
	}

	back, err := ReadComprehensive(path)
	if err != nil {
		t.Fatalf("ReadComprehensive: %v", err)
	}
	if len(back) != len(rows) {
		t.Fatalf("row count = %d, want %d", len(back), len(rows))
	}
	if back[0] != rows[0] {
		t.Errorf("first row round-trip mismatch:\n got %+v\nwant %+v", back[0], rows[0])
	}
	if back[1].PassesCriteria {
		t.Error("failing row must stay failing after round-trip")
	}
}

func TestWriteScreened_PassOnlySortedByMarketCap(t *testing.T) {
	artifacts, err := NewArtifacts(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifacts: %v", err)
	}

	rows := sampleRows()
	rows = append(rows, models.ScreeningRow{
		Symbol: "BIGCO", MarketCap: 2000000, PassesCriteria: true,
		Last3QProfits: "N/A", ScreeningDate: "2025-06-01",
	})

	path, err := artifacts.WriteScreened(rows)
	if err != nil {
		t.Fatalf("WriteScreened: %v", err)
	}

	back, err := ReadComprehensive(path)
	if err != nil {
		t.Fatalf("reading screened artifact: %v", err)
	}
	if len(back) != 2 {
		t.Fatalf("screened rows = %d, want 2 passes", len(back))
	}
	if back[0].Symbol != "BIGCO" || back[1].Symbol != "TCS" {
		t.Errorf("order = [%s, %s], want market-cap descending [BIGCO, TCS]", back[0].Symbol, back[1].Symbol)
	}
}

func TestSignalsArtifactRoundTrip(t *testing.T) {
	artifacts, err := NewArtifacts(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifacts: %v", err)
	}

	rows := []models.SignalRow{
		{Symbol: "ACME", BuyDate: "2024-01-01", BuyPrice: 10, SellDate: "2024-01-02", SellPrice: 13, GainPercent: 30, Days: 2},
	}
	date := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	path, err := artifacts.WriteSignals(rows, date)
	if err != nil {
		t.Fatalf("WriteSignals: %v", err)
	}
	if filepath.Base(path) != "stock_candle_signals_from_listing_20250601.csv" {
		t.Errorf("unexpected artifact name %s", filepath.Base(path))
	}

	back, err := ReadSignals(path)
	if err != nil {
		t.Fatalf("ReadSignals: %v", err)
	}
	if len(back) != 1 || back[0] != rows[0] {
		t.Errorf("round-trip mismatch: %+v", back)
	}

	if got := artifacts.LatestSignalsFile(); got != path {
		t.Errorf("LatestSignalsFile = %s, want %s", got, path)
	}
}

func TestFindFresh(t *testing.T) {
	dir := t.TempDir()
	artifacts, err := NewArtifacts(dir)
	if err != nil {
		t.Fatalf("NewArtifacts: %v", err)
	}

	if got := artifacts.FindFresh(7 * 24 * time.Hour); got != "" {
		t.Errorf("empty dir should have no fresh artifact, got %s", got)
	}

	// Partial and interrupted checkpoints are never reuse candidates.
	for _, name := range []string{
		comprehensivePrefix + "partial_20250101_000000.csv",
		comprehensivePrefix + "interrupted_20250101_000000.csv",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("Symbol\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if got := artifacts.FindFresh(7 * 24 * time.Hour); got != "" {
		t.Errorf("checkpoints must not be reused, got %s", got)
	}

	final := filepath.Join(dir, comprehensivePrefix+"20250601_120000.csv")
	if err := os.WriteFile(final, []byte("Symbol\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := artifacts.FindFresh(7 * 24 * time.Hour); got != final {
		t.Errorf("FindFresh = %s, want %s", got, final)
	}

	if got := artifacts.FindFresh(-time.Hour); got != "" {
		t.Errorf("everything is stale with a negative window, got %s", got)
	}
}
