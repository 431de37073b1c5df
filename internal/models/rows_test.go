package models

import (
	"reflect"
	"testing"
)

func TestJoinQuarters(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want string
	}{
		{"empty", nil, "N/A"},
		{"single", []float64{110.5}, "110.50"},
		{"three", []float64{110, 105.5, 98.25}, "110.00,105.50,98.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinQuarters(tt.in); got != tt.want {
				t.Errorf("JoinQuarters(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitQuarters(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []float64
	}{
		{"na", "N/A", nil},
		{"empty", "", nil},
		{"three", "110.00,105.50,98.25", []float64{110, 105.5, 98.25}},
		{"garbage skipped", "110.00,abc,98.25", []float64{110, 98.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitQuarters(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitQuarters(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestQuartersRoundTrip(t *testing.T) {
	in := []float64{110.25, 105.5, 98}
	out := SplitQuarters(JoinQuarters(in))
	if !reflect.DeepEqual(out, in) {
		t.Errorf("round-trip = %v, want %v", out, in)
	}
}

func TestNewScreeningRowAndBack(t *testing.T) {
	p := &FinancialProfile{
		Symbol:              "TCS",
		CompanyName:         "Tata Consultancy Services",
		Sector:              "Technology",
		Industry:            "IT Services",
		MarketCap:           1400000,
		NetProfit:           450.256,
		LatestQuarterProfit: 120.5,
		Last3QProfits:       []float64{110, 105.5, 98.25},
		ROCE:                52.123,
		ROE:                 46.8,
		DebtToEquity:        0.02,
		PublicHolding:       27.6,
		IsBankFinance:       false,
		IsPSU:               false,
	}

	row := NewScreeningRow(p, true, "2025-06-01")
	if row.NetProfit != 450.26 {
		t.Errorf("net profit rounded = %v, want 450.26", row.NetProfit)
	}
	if row.ROCE != 52.12 {
		t.Errorf("roce rounded = %v, want 52.12", row.ROCE)
	}
	if !row.PassesCriteria || row.ScreeningDate != "2025-06-01" {
		t.Errorf("verdict fields wrong: %+v", row)
	}

	back := row.Profile()
	if back.Symbol != p.Symbol || back.CompanyName != p.CompanyName {
		t.Errorf("identity fields lost: %+v", back)
	}
	if !reflect.DeepEqual(back.Last3QProfits, p.Last3QProfits) {
		t.Errorf("quarters = %v, want %v", back.Last3QProfits, p.Last3QProfits)
	}
}

func TestCandleIsUp(t *testing.T) {
	if !(Candle{Open: 10, Close: 11}).IsUp() {
		t.Error("close above open is an up-day")
	}
	if (Candle{Open: 10, Close: 10}).IsUp() {
		t.Error("flat close is not an up-day")
	}
	if (Candle{Open: 10, Close: 9}).IsUp() {
		t.Error("close below open is not an up-day")
	}
}
