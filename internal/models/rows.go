package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ScreeningRow is one comprehensive-artifact CSV row: every processed symbol
// appears once, pass or fail, with all profile fields flattened.
type ScreeningRow struct {
	Symbol              string  `csv:"Symbol"`
	CompanyName         string  `csv:"Company Name"`
	Sector              string  `csv:"Sector"`
	Industry            string  `csv:"Industry"`
	MarketCap           float64 `csv:"Market Cap"`
	NetProfit           float64 `csv:"Net Profit (Cr)"`
	ROCE                float64 `csv:"ROCE (%)"`
	ROE                 float64 `csv:"ROE (%)"`
	DebtToEquity        float64 `csv:"Debt to Equity"`
	LatestQuarterProfit float64 `csv:"Latest Quarter Profit (Cr)"`
	Last3QProfits       string  `csv:"Last 3Q Profits (Cr)"`
	PublicHolding       float64 `csv:"Public Holding (%)"`
	IsBankFinance       bool    `csv:"Is Bank/Finance"`
	IsPSU               bool    `csv:"Is PSU"`
	PassesCriteria      bool    `csv:"Passes Criteria"`
	ScreeningDate       string  `csv:"Screening Date"`
}

// SignalRow is one candle-signal artifact CSV row.
type SignalRow struct {
	Symbol      string  `csv:"Symbol"`
	BuyDate     string  `csv:"Buy_Date"`
	BuyPrice    float64 `csv:"Buy_Price_Low"`
	SellDate    string  `csv:"Sell_Date"`
	SellPrice   float64 `csv:"Sell_Price_High"`
	GainPercent float64 `csv:"Sequence_Gain_Percent"`
	Days        int     `csv:"Days_in_Sequence"`
}

// ProximityRow is one live-ranked signal, ordered by closeness to entry.
type ProximityRow struct {
	Symbol        string  `csv:"Symbol"`
	BuyDate       string  `csv:"Signal Buy Date"`
	BuyPrice      float64 `csv:"Target Buy Price (Low)"`
	SellPrice     float64 `csv:"Sell_Price_High"`
	CurrentPrice  float64 `csv:"Latest Close Price"`
	Proximity     float64 `csv:"Proximity to Buy (%)"`
	Closeness     float64 `csv:"Closeness (%)"`
	PotentialGain float64 `csv:"Potential Gain (%)"`
}

// NewScreeningRow flattens a profile and its verdict into an artifact row.
func NewScreeningRow(p *FinancialProfile, passes bool, date string) ScreeningRow {
	return ScreeningRow{
		Symbol:              p.Symbol,
		CompanyName:         p.CompanyName,
		Sector:              p.Sector,
		Industry:            p.Industry,
		MarketCap:           p.MarketCap,
		NetProfit:           round2(p.NetProfit),
		ROCE:                round2(p.ROCE),
		ROE:                 round2(p.ROE),
		DebtToEquity:        p.DebtToEquity,
		LatestQuarterProfit: round2(p.LatestQuarterProfit),
		Last3QProfits:       JoinQuarters(p.Last3QProfits),
		PublicHolding:       round2(p.PublicHolding),
		IsBankFinance:       p.IsBankFinance,
		IsPSU:               p.IsPSU,
		PassesCriteria:      passes,
		ScreeningDate:       date,
	}
}

// Profile reconstructs a FinancialProfile from an artifact row. Provenance
// is not persisted, so the reconstructed profile carries none.
func (r ScreeningRow) Profile() *FinancialProfile {
	return &FinancialProfile{
		Symbol:              r.Symbol,
		CompanyName:         r.CompanyName,
		Sector:              r.Sector,
		Industry:            r.Industry,
		MarketCap:           r.MarketCap,
		NetProfit:           r.NetProfit,
		LatestQuarterProfit: r.LatestQuarterProfit,
		Last3QProfits:       SplitQuarters(r.Last3QProfits),
		ROCE:                r.ROCE,
		ROE:                 r.ROE,
		DebtToEquity:        r.DebtToEquity,
		PublicHolding:       r.PublicHolding,
		IsBankFinance:       r.IsBankFinance,
		IsPSU:               r.IsPSU,
	}
}

// JoinQuarters renders the preceding-quarter profits as a comma-joined list,
// or "N/A" when no quarterly history is available. The CSV writer quotes the
// field, so the embedded commas are safe.
func JoinQuarters(qs []float64) string {
	if len(qs) == 0 {
		return "N/A"
	}
	parts := make([]string, len(qs))
	for i, q := range qs {
		parts[i] = fmt.Sprintf("%.2f", q)
	}
	return strings.Join(parts, ",")
}

// SplitQuarters parses the comma-joined quarter list back into values.
func SplitQuarters(s string) []float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return nil
	}
	var qs []float64
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			continue
		}
		qs = append(qs, v)
	}
	return qs
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
