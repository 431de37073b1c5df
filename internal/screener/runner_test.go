package screener

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"nse-screener/internal/config"
	"nse-screener/internal/marketdata"
	"nse-screener/internal/models"
)

// stubProvider serves canned profiles; symbols absent from the map fail
// with ErrUnavailable.
type stubProvider struct {
	profiles map[string]*models.FinancialProfile
	calls    int
}

func (p *stubProvider) GetProfile(_ context.Context, symbol string) (*models.FinancialProfile, error) {
	p.calls++
	profile, ok := p.profiles[symbol]
	if !ok {
		return nil, marketdata.ErrUnavailable
	}
	return profile, nil
}

func (p *stubProvider) GetDailyHistory(context.Context, string, int) ([]models.Candle, error) {
	return nil, marketdata.ErrUnavailable
}

func (p *stubProvider) GetLatestClose(context.Context, string) (float64, error) {
	return 0, marketdata.ErrUnavailable
}

func runnerConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Fetch.ScrapeInterval = 0
	cfg.Screening.CheckpointInterval = 2
	cfg.Output.Dir = t.TempDir()
	return cfg
}

func passingProfile(symbol string) *models.FinancialProfile {
	return &models.FinancialProfile{
		Symbol:              symbol,
		CompanyName:         symbol + " Ltd",
		Sector:              "Technology",
		Industry:            "IT Services",
		MarketCap:           500000,
		NetProfit:           900,
		LatestQuarterProfit: 250,
		Last3QProfits:       []float64{240, 230, 220},
		ROCE:                35,
		ROE:                 28,
		PublicHolding:       25,
	}
}

func failingProfile(symbol string) *models.FinancialProfile {
	return &models.FinancialProfile{
		Symbol:      symbol,
		CompanyName: symbol + " Ltd",
		Sector:      "Technology",
		Industry:    "IT Services",
		MarketCap:   100,
		NetProfit:   5,
		ROCE:        4,
	}
}

func TestRunner_FullBatch(t *testing.T) {
	cfg := runnerConfig(t)
	provider := &stubProvider{profiles: map[string]*models.FinancialProfile{
		"GOODCO": passingProfile("GOODCO"),
		"BADCO":  failingProfile("BADCO"),
	}}
	artifacts, err := NewArtifacts(cfg.Output.Dir)
	if err != nil {
		t.Fatalf("NewArtifacts: %v", err)
	}

	runner := NewRunner(cfg, provider, artifacts, zerolog.Nop())

	var progressCalls int
	runner.OnProgress(func(done, total int, symbol string) {
		progressCalls++
		if total != 3 {
			t.Errorf("progress total = %d, want 3", total)
		}
	})

	rows, summary, err := runner.Run(context.Background(), []string{"GOODCO", "BADCO", "MISSING"}, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Processed != 2 || summary.Passed != 1 || summary.Skipped != 1 {
		t.Errorf("summary = %+v, want processed 2, passed 1, skipped 1", summary)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if progressCalls != 3 {
		t.Errorf("progress calls = %d, want 3", progressCalls)
	}

	// Both final artifacts are written; screened holds only the pass.
	fresh := artifacts.FindFresh(time.Hour)
	if fresh == "" {
		t.Fatal("final comprehensive artifact not found")
	}
	stored, err := ReadComprehensive(fresh)
	if err != nil {
		t.Fatalf("ReadComprehensive: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("comprehensive artifact has %d rows, want 2", len(stored))
	}
}

func TestRunner_ReusesFreshArtifact(t *testing.T) {
	cfg := runnerConfig(t)
	artifacts, err := NewArtifacts(cfg.Output.Dir)
	if err != nil {
		t.Fatalf("NewArtifacts: %v", err)
	}

	prior := []models.ScreeningRow{
		models.NewScreeningRow(passingProfile("GOODCO"), true, "2025-01-06"),
		models.NewScreeningRow(failingProfile("BADCO"), false, "2025-01-06"),
	}
	if _, err := artifacts.WriteComprehensive(prior, "final"); err != nil {
		t.Fatalf("WriteComprehensive: %v", err)
	}

	provider := &stubProvider{profiles: map[string]*models.FinancialProfile{}}
	runner := NewRunner(cfg, provider, artifacts, zerolog.Nop())

	rows, summary, err := runner.Run(context.Background(), []string{"GOODCO", "BADCO"}, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.ReusedFrom == "" {
		t.Error("expected run to reuse the fresh artifact")
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times during reuse, want 0", provider.calls)
	}
	if len(rows) != 2 || summary.Passed != 1 {
		t.Errorf("reused rows = %d passed = %d, want 2 and 1", len(rows), summary.Passed)
	}
}

func TestRunner_ForceIgnoresFreshArtifact(t *testing.T) {
	cfg := runnerConfig(t)
	artifacts, err := NewArtifacts(cfg.Output.Dir)
	if err != nil {
		t.Fatalf("NewArtifacts: %v", err)
	}

	prior := []models.ScreeningRow{models.NewScreeningRow(passingProfile("OLDCO"), true, "2025-01-01")}
	if _, err := artifacts.WriteComprehensive(prior, "final"); err != nil {
		t.Fatalf("WriteComprehensive: %v", err)
	}

	provider := &stubProvider{profiles: map[string]*models.FinancialProfile{
		"GOODCO": passingProfile("GOODCO"),
	}}
	runner := NewRunner(cfg, provider, artifacts, zerolog.Nop())

	_, summary, err := runner.Run(context.Background(), []string{"GOODCO"}, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.ReusedFrom != "" {
		t.Error("force run should not reuse prior artifact")
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

func TestRunner_CancelledContextFlushesPartial(t *testing.T) {
	cfg := runnerConfig(t)
	artifacts, err := NewArtifacts(cfg.Output.Dir)
	if err != nil {
		t.Fatalf("NewArtifacts: %v", err)
	}

	provider := &stubProvider{profiles: map[string]*models.FinancialProfile{}}
	runner := NewRunner(cfg, provider, artifacts, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, summary, err := runner.Run(ctx, []string{"A", "B", "C"}, true)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if !summary.Interrupted {
		t.Error("summary should be marked interrupted")
	}
	if provider.calls != 0 {
		t.Errorf("provider calls = %d, want 0 with pre-cancelled context", provider.calls)
	}
}

func TestSummary_PassRate(t *testing.T) {
	if rate := (Summary{Processed: 4, Passed: 1}).PassRate(); rate != 0.25 {
		t.Errorf("PassRate = %f, want 0.25", rate)
	}
	if rate := (Summary{}).PassRate(); rate != 0 {
		t.Errorf("PassRate on empty summary = %f, want 0", rate)
	}
}
