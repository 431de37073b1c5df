package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"nse-screener/internal/config"
	apperrors "nse-screener/internal/errors"
	"nse-screener/internal/logging"
	"nse-screener/internal/models"
	"nse-screener/pkg/utils"
)

const (
	chartBaseURL   = "https://query1.finance.yahoo.com/v8/finance/chart/"
	summaryBaseURL = "https://query1.finance.yahoo.com/v10/finance/quoteSummary/"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	crore = 1e7

	summaryModules = "price,summaryProfile,financialData,defaultKeyStatistics,incomeStatementHistory,incomeStatementHistoryQuarterly"
)

// YahooProvider implements Provider against the Yahoo Finance public
// endpoints, with bounded retry and an optional enrichment fallback for
// fields Yahoo often lacks on NSE listings.
type YahooProvider struct {
	client   *http.Client
	retry    utils.RetryConfig
	cache    *ttlCache
	enricher Enricher
	logger   zerolog.Logger
}

// NewYahooProvider creates a Yahoo Finance backed provider. The enricher
// may be nil to disable the scrape fallback.
func NewYahooProvider(cfg config.FetchConfig, enricher Enricher, logger zerolog.Logger) *YahooProvider {
	return &YahooProvider{
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		retry:    utils.FixedRetryConfig(cfg.MaxAttempts, cfg.RetryBackoff),
		cache:    newTTLCache(cfg.CacheTTL),
		enricher: enricher,
		logger:   logger,
	}
}

// nseTicker maps a bare symbol to Yahoo's NSE listing.
func nseTicker(symbol string) string {
	return symbol + ".NS"
}

// Yahoo wraps every numeric field in a raw/fmt pair.
type yfValue struct {
	Raw float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				LongName  string  `json:"longName"`
				MarketCap yfValue `json:"marketCap"`
			} `json:"price"`
			SummaryProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"summaryProfile"`
			FinancialData *struct {
				ReturnOnAssets yfValue `json:"returnOnAssets"`
				ReturnOnEquity yfValue `json:"returnOnEquity"`
				DebtToEquity   yfValue `json:"debtToEquity"`
			} `json:"financialData"`
			DefaultKeyStatistics *struct {
				FloatShares       yfValue `json:"floatShares"`
				SharesOutstanding yfValue `json:"sharesOutstanding"`
			} `json:"defaultKeyStatistics"`
			IncomeStatementHistory *struct {
				Statements []incomeStatement `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistory"`
			IncomeStatementHistoryQuarterly *struct {
				Statements []incomeStatement `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistoryQuarterly"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type incomeStatement struct {
	NetIncome yfValue `json:"netIncome"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetProfile fetches and assembles a FinancialProfile. Classification flags
// are left unset; the screener derives them after the fetch completes.
func (p *YahooProvider) GetProfile(ctx context.Context, symbol string) (*models.FinancialProfile, error) {
	if cached, ok := p.cache.get("profile:" + symbol); ok {
		return cached.(*models.FinancialProfile), nil
	}

	start := time.Now()
	resp, err := utils.RetryWithResult(ctx, p.retry, func() (*quoteSummaryResponse, error) {
		return p.fetchSummary(ctx, symbol)
	})
	logging.LogFetch(p.logger, "yahoo", symbol, time.Since(start), err)
	if err != nil {
		p.logger.Warn().Str("symbol", symbol).Err(err).Msg("Profile fetch exhausted retries")
		return nil, apperrors.NewDataError("profile", symbol, "fetch exhausted retries", ErrUnavailable)
	}

	profile := p.buildProfile(ctx, symbol, resp)
	p.cache.set("profile:"+symbol, profile)
	return profile, nil
}

func (p *YahooProvider) buildProfile(ctx context.Context, symbol string, resp *quoteSummaryResponse) *models.FinancialProfile {
	profile := &models.FinancialProfile{
		Symbol:      symbol,
		CompanyName: symbol,
		Sector:      "Unknown",
		Industry:    "Unknown",
		Provenance:  make(map[string]models.FieldSource),
	}

	if len(resp.QuoteSummary.Result) == 0 {
		return profile
	}
	r := resp.QuoteSummary.Result[0]

	if r.Price != nil {
		if r.Price.LongName != "" {
			profile.CompanyName = r.Price.LongName
		}
		profile.MarketCap = r.Price.MarketCap.Raw
	}
	if r.SummaryProfile != nil {
		if r.SummaryProfile.Sector != "" {
			profile.Sector = r.SummaryProfile.Sector
		}
		if r.SummaryProfile.Industry != "" {
			profile.Industry = r.SummaryProfile.Industry
		}
	}
	if r.FinancialData != nil {
		// Yahoo reports these as fractions; the rule set works in percent.
		profile.ROCE = r.FinancialData.ReturnOnAssets.Raw * 100
		profile.ROE = r.FinancialData.ReturnOnEquity.Raw * 100
		// debtToEquity arrives as a percentage figure.
		if de := r.FinancialData.DebtToEquity.Raw; de > 0 {
			profile.DebtToEquity = de / 100
		}
	}
	if r.DefaultKeyStatistics != nil {
		outstanding := r.DefaultKeyStatistics.SharesOutstanding.Raw
		if outstanding > 0 {
			profile.PublicHolding = r.DefaultKeyStatistics.FloatShares.Raw / outstanding * 100
		}
	}

	// Annual net profit: most recent fiscal year, converted to crore.
	// The original pipeline takes absolute values throughout.
	if r.IncomeStatementHistory != nil && len(r.IncomeStatementHistory.Statements) > 0 {
		profile.NetProfit = math.Abs(r.IncomeStatementHistory.Statements[0].NetIncome.Raw) / crore
	}

	// Quarterly history: latest quarter plus up to three preceding
	// quarters, most recent first.
	if r.IncomeStatementHistoryQuarterly != nil {
		stmts := r.IncomeStatementHistoryQuarterly.Statements
		if len(stmts) > 0 {
			profile.LatestQuarterProfit = math.Abs(stmts[0].NetIncome.Raw) / crore
		}
		for i := 1; i < len(stmts) && i <= 3; i++ {
			profile.Last3QProfits = append(profile.Last3QProfits, math.Abs(stmts[i].NetIncome.Raw)/crore)
		}
	}

	profile.Provenance["debt_to_equity"] = models.SourcePrimary
	profile.Provenance["public_holding"] = models.SourcePrimary
	p.enrich(ctx, profile)
	return profile
}

// enrich fills debt-to-equity and public-holding from the secondary scrape
// source when the primary value is the zero sentinel. Both sources failing
// leaves the sentinel in place.
func (p *YahooProvider) enrich(ctx context.Context, profile *models.FinancialProfile) {
	if p.enricher == nil {
		return
	}

	if profile.DebtToEquity == 0 {
		if v, ok := p.enricher.DebtToEquity(ctx, profile.Symbol); ok {
			profile.DebtToEquity = v
			profile.Provenance["debt_to_equity"] = models.SourceScrape
		} else {
			profile.Provenance["debt_to_equity"] = models.SourceMissing
		}
	}
	if profile.PublicHolding == 0 {
		if v, ok := p.enricher.PublicHolding(ctx, profile.Symbol); ok {
			profile.PublicHolding = v
			profile.Provenance["public_holding"] = models.SourceScrape
		} else {
			profile.Provenance["public_holding"] = models.SourceMissing
		}
	}
	if profile.DebtToEquity < 0 {
		profile.DebtToEquity = 0
	}
}

func (p *YahooProvider) fetchSummary(ctx context.Context, symbol string) (*quoteSummaryResponse, error) {
	u := summaryBaseURL + url.PathEscape(nseTicker(symbol)) + "?modules=" + url.QueryEscape(summaryModules)

	var out quoteSummaryResponse
	if err := p.getJSON(ctx, u, &out); err != nil {
		return nil, err
	}
	if out.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quoteSummary: %s", out.QuoteSummary.Error.Description)
	}
	return &out, nil
}

// GetDailyHistory fetches daily candles. The preferred window is tried
// first; an empty result degrades to half the window before returning
// ErrUnavailable (new listings rarely have a decade of bars).
func (p *YahooProvider) GetDailyHistory(ctx context.Context, symbol string, years int) ([]models.Candle, error) {
	if years <= 0 {
		years = 10
	}

	for _, window := range []int{years, (years + 1) / 2} {
		candles, err := p.fetchChart(ctx, symbol, fmt.Sprintf("%dy", window))
		if err == nil && len(candles) > 0 {
			return candles, nil
		}
		if err != nil {
			p.logger.Debug().Str("symbol", symbol).Int("years", window).Err(err).Msg("History window failed")
		}
	}
	return nil, apperrors.NewDataError("history", symbol, "no history in any window", ErrUnavailable)
}

// GetLatestClose returns the most recent daily close.
func (p *YahooProvider) GetLatestClose(ctx context.Context, symbol string) (float64, error) {
	if cached, ok := p.cache.get("close:" + symbol); ok {
		return cached.(float64), nil
	}

	candles, err := p.fetchChart(ctx, symbol, "5d")
	if err != nil || len(candles) == 0 {
		return 0, apperrors.NewDataError("quote", symbol, "no recent close", ErrUnavailable)
	}

	closePrice := candles[len(candles)-1].Close
	p.cache.set("close:"+symbol, closePrice)
	return closePrice, nil
}

func (p *YahooProvider) fetchChart(ctx context.Context, symbol, rng string) ([]models.Candle, error) {
	u := chartBaseURL + url.PathEscape(nseTicker(symbol)) + "?range=" + rng + "&interval=1d"

	resp, err := utils.RetryWithResult(ctx, p.retry, func() (*chartResponse, error) {
		var out chartResponse
		if err := p.getJSON(ctx, u, &out); err != nil {
			return nil, err
		}
		if out.Chart.Error != nil {
			return nil, fmt.Errorf("chart: %s", out.Chart.Error.Description)
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}
	r := resp.Chart.Result[0]
	q := r.Indicators.Quote[0]

	candles := make([]models.Candle, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(q.Open) || i >= len(q.High) || i >= len(q.Low) || i >= len(q.Close) {
			break
		}
		// Holiday rows come back as zeros; drop them like the original
		// drops NaN rows.
		if q.Open[i] == 0 || q.High[i] == 0 || q.Low[i] == 0 || q.Close[i] == 0 {
			continue
		}
		var vol int64
		if i < len(q.Volume) {
			vol = q.Volume[i]
		}
		candles = append(candles, models.Candle{
			Timestamp: time.Unix(ts, 0).In(utils.IndiaLocation),
			Open:      q.Open[i],
			High:      q.High[i],
			Low:       q.Low[i],
			Close:     q.Close[i],
			Volume:    vol,
		})
	}
	return candles, nil
}

func (p *YahooProvider) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w by %s", apperrors.ErrRateLimited, req.URL.Host)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
