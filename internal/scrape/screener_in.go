// Package scrape provides best-effort enrichment from screener.in company
// pages for ratios the primary provider often omits on NSE listings.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"nse-screener/internal/config"
	apperrors "nse-screener/internal/errors"
	"nse-screener/internal/logging"
	"nse-screener/internal/resilience"
	"nse-screener/pkg/utils"
)

const (
	companyBaseURL = "https://www.screener.in/company/"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Strategy is one named extraction attempt against a parsed company page.
// Strategies are tried in priority order; the first success wins. The site's
// markup changes often, so the multiplicity is deliberate.
type Strategy struct {
	Name    string
	Extract func(doc *goquery.Document) (float64, bool)
}

// Client fetches and parses screener.in company pages.
type Client struct {
	client  *http.Client
	retry   utils.RetryConfig
	breaker *resilience.CircuitBreaker
	logger  zerolog.Logger

	deStrategies []Strategy
	phStrategies []Strategy
}

// NewClient creates a screener.in scrape client. A circuit breaker guards
// the site: a batch run keeps moving through its symbols instead of
// retry-stalling on every one while the site is down.
func NewClient(cfg config.FetchConfig, logger zerolog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		retry:        utils.FixedRetryConfig(cfg.MaxAttempts, cfg.RetryBackoff),
		breaker:      resilience.NewCircuitBreaker("screener.in", resilience.DefaultCircuitBreakerConfig()),
		logger:       logger,
		deStrategies: debtEquityStrategies(),
		phStrategies: publicHoldingStrategies(),
	}
}

// DebtToEquity extracts the debt-to-equity ratio for a symbol.
func (c *Client) DebtToEquity(ctx context.Context, symbol string) (float64, bool) {
	return c.extract(ctx, symbol, "debt_to_equity", c.deStrategies)
}

// PublicHolding extracts the public shareholding percentage for a symbol.
func (c *Client) PublicHolding(ctx context.Context, symbol string) (float64, bool) {
	v, ok := c.extract(ctx, symbol, "public_holding", c.phStrategies)
	if !ok || v < 0 || v > 100 {
		return 0, false
	}
	return v, true
}

func (c *Client) extract(ctx context.Context, symbol, field string, strategies []Strategy) (float64, bool) {
	doc, err := c.fetchDoc(ctx, symbol)
	if err != nil {
		c.logger.Debug().Err(apperrors.NewScrapeError(field, symbol, err)).Msg("Scrape fetch failed")
		return 0, false
	}

	for _, s := range strategies {
		if v, ok := s.Extract(doc); ok {
			c.logger.Debug().
				Str("symbol", symbol).
				Str("strategy", s.Name).
				Float64("value", v).
				Msg("Scrape extraction succeeded")
			return v, true
		}
	}
	c.logger.Debug().Err(apperrors.NewScrapeError(field, symbol, nil)).Msg("No extraction strategy matched")
	return 0, false
}

func (c *Client) fetchDoc(ctx context.Context, symbol string) (*goquery.Document, error) {
	u := companyBaseURL + symbol + "/"

	start := time.Now()
	doc, err := resilience.ExecuteWithResult(c.breaker, func() (*goquery.Document, error) {
		return utils.RetryWithResult(ctx, c.retry, func() (*goquery.Document, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return nil, fmt.Errorf("creating request: %w", err)
			}
			req.Header.Set("User-Agent", userAgent)

			resp, err := c.client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("executing request: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, symbol)
			}
			return goquery.NewDocumentFromReader(resp.Body)
		})
	})
	logging.LogFetch(c.logger, "screener.in", symbol, time.Since(start), err)
	return doc, err
}

var debtEquityLabels = regexp.MustCompile(`(?i)debt\s+to\s+equity|debt-to-equity|d/e\s+ratio|debt\s+equity\s+ratio|total\s+debt/equity`)

// debtEquityStrategies returns the D/E extraction attempts in priority order.
func debtEquityStrategies() []Strategy {
	return []Strategy{
		{
			// The ratios list renders each metric as a name/number span pair.
			Name: "ratio-list",
			Extract: func(doc *goquery.Document) (float64, bool) {
				return findRatioByName(doc, debtEquityLabels)
			},
		},
		{
			// Older layout nests the number inside a value wrapper.
			Name: "labelled-span",
			Extract: func(doc *goquery.Document) (float64, bool) {
				var value float64
				var found bool
				doc.Find("span.name").EachWithBreak(func(_ int, name *goquery.Selection) bool {
					if !debtEquityLabels.MatchString(name.Text()) {
						return true
					}
					number := name.Parent().Find("span.number").First()
					if v, err := parseNumber(number.Text()); err == nil {
						value, found = v, true
						return false
					}
					return true
				})
				return value, found
			},
		},
		{
			// Last resort: pattern match over table rows anywhere on the page.
			Name: "table-row",
			Extract: func(doc *goquery.Document) (float64, bool) {
				return findTableValue(doc, debtEquityLabels)
			},
		},
	}
}

var publicHoldingLabels = regexp.MustCompile(`(?i)public\s+holding|public\s*$|public\s+share`)

// publicHoldingStrategies returns the public-holding extraction attempts in
// priority order.
func publicHoldingStrategies() []Strategy {
	return []Strategy{
		{
			// The shareholding pattern section tabulates holder classes;
			// the latest quarter's figure is the last cell of the row.
			Name: "shareholding-table",
			Extract: func(doc *goquery.Document) (float64, bool) {
				var value float64
				var found bool
				doc.Find("#shareholding tr, section#shareholding tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
					label := strings.TrimSpace(row.Find("td").First().Text())
					if !publicHoldingLabels.MatchString(label) {
						return true
					}
					last := row.Find("td").Last()
					if v, err := parseNumber(last.Text()); err == nil {
						value, found = v, true
						return false
					}
					return true
				})
				return value, found
			},
		},
		{
			Name: "ratio-list",
			Extract: func(doc *goquery.Document) (float64, bool) {
				return findRatioByName(doc, publicHoldingLabels)
			},
		},
		{
			Name: "table-row",
			Extract: func(doc *goquery.Document) (float64, bool) {
				return findTableValue(doc, publicHoldingLabels)
			},
		},
	}
}

// findRatioByName scans the name/number list items screener.in uses for its
// top-of-page ratios.
func findRatioByName(doc *goquery.Document, label *regexp.Regexp) (float64, bool) {
	var value float64
	var found bool
	doc.Find("li.flex.flex-space-between").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		name := strings.TrimSpace(li.Find("span.name").Text())
		if !label.MatchString(name) {
			return true
		}
		if v, err := parseNumber(li.Find("span.number").Text()); err == nil {
			value, found = v, true
			return false
		}
		return true
	})
	return value, found
}

// findTableValue scans generic tables for a labelled row, taking the last
// parseable cell as the most recent figure.
func findTableValue(doc *goquery.Document, label *regexp.Regexp) (float64, bool) {
	var value float64
	var found bool
	doc.Find("table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		first := strings.TrimSpace(row.Find("td, th").First().Text())
		if !label.MatchString(first) {
			return true
		}
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			if v, err := parseNumber(cell.Text()); err == nil {
				value, found = v, true
			}
		})
		return !found
	})
	return value, found
}

// parseNumber parses a screener.in display number: commas stripped, an
// optional trailing percent sign ignored.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(s, 64)
}
