// Package universe resolves the candidate symbol list for a screening or
// signal-generation run.
package universe

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "nse-screener/internal/errors"
	"nse-screener/pkg/utils"
)

const (
	equityListURL = "https://archives.nseindia.com/content/equities/EQUITY_L.csv"
	userAgent     = "Mozilla/5.0"
)

// Source resolves the symbol universe.
type Source struct {
	client *http.Client
	logger zerolog.Logger
}

// NewSource creates a universe source.
func NewSource(timeout time.Duration, logger zerolog.Logger) *Source {
	return &Source{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Symbols returns the symbol universe: the exchange-provided equity list
// when reachable, else the embedded fallback list. The result is deduped,
// uppercased and sorted.
func (s *Source) Symbols(ctx context.Context) []string {
	symbols, err := s.fetchExchangeList(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("NSE equity list unreachable, using fallback list")
		symbols = FallbackSymbols()
	} else {
		s.logger.Info().Int("count", len(symbols)).Msg("Fetched NSE equity list")
	}
	return normalize(symbols)
}

// FromFile loads an explicit symbol list from a CSV with a SYMBOL (or
// Symbol) column. A missing file is a fatal configuration error: the caller
// asked for a specific universe and must not silently screen a different one.
func FromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening symbol file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading symbol file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("symbol file %s is empty", path)
	}

	col := -1
	for i, h := range records[0] {
		if strings.EqualFold(strings.TrimSpace(h), "symbol") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, apperrors.NewValidationError("symbol_file", path, "no SYMBOL column in header")
	}

	var symbols []string
	for _, rec := range records[1:] {
		if col < len(rec) {
			symbols = append(symbols, rec[col])
		}
	}
	return normalize(symbols), nil
}

func (s *Source) fetchExchangeList(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, equityListURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	return utils.RetryWithResult(ctx, utils.FixedRetryConfig(2, 2*time.Second), func() ([]string, error) {
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching equity list: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d fetching equity list", resp.StatusCode)
		}

		r := csv.NewReader(resp.Body)
		r.FieldsPerRecord = -1
		records, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("parsing equity list: %w", err)
		}
		if len(records) < 2 {
			return nil, fmt.Errorf("equity list has no rows")
		}

		col := 0
		for i, h := range records[0] {
			if strings.EqualFold(strings.TrimSpace(h), "symbol") {
				col = i
				break
			}
		}

		symbols := make([]string, 0, len(records)-1)
		for _, rec := range records[1:] {
			if col < len(rec) {
				symbols = append(symbols, rec[col])
			}
		}
		return symbols, nil
	})
}

func normalize(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
