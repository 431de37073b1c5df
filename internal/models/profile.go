package models

// FieldSource identifies where a profile field's value came from.
type FieldSource string

const (
	SourcePrimary FieldSource = "primary" // market data provider
	SourceScrape  FieldSource = "scrape"  // HTML fallback
	SourceMissing FieldSource = "missing" // zero sentinel, nothing available
)

// FinancialProfile holds the per-symbol financial facts used by the rule
// evaluator. It is rebuilt fresh on each screening pass and never mutated
// after construction. Numeric fields that could not be fetched hold 0; zero
// is the documented "unknown" sentinel, never null.
type FinancialProfile struct {
	Symbol      string
	CompanyName string
	Sector      string
	Industry    string

	MarketCap float64 // in currency units

	// Profit figures are in crore.
	NetProfit           float64
	LatestQuarterProfit float64
	// Up to three quarterly profits preceding the latest quarter,
	// most recent first. May be shorter for young listings.
	Last3QProfits []float64

	ROCE          float64 // percent, ROA approximation
	ROE           float64 // percent
	DebtToEquity  float64 // dimensionless, clamped non-negative
	PublicHolding float64 // percent, 0-100

	// Independent classification flags. A company may be both.
	IsBankFinance bool
	IsPSU         bool

	// Provenance records which enrichment fields came from where,
	// keyed by field name ("debt_to_equity", "public_holding").
	Provenance map[string]FieldSource
}

// CandleSignal is a detected consecutive-up-candle run whose low-to-high
// gain cleared the retention threshold and which has not replayed later in
// the history.
type CandleSignal struct {
	Symbol      string
	BuyDate     string // YYYY-MM-DD
	BuyPrice    float64
	SellDate    string // YYYY-MM-DD
	SellPrice   float64
	GainPercent float64
	Days        int
}
