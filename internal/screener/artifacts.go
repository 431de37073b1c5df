package screener

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"nse-screener/internal/models"
)

const (
	comprehensivePrefix = "comprehensive_stock_analysis_"
	screenedPrefix      = "screened_stocks_"
	timestampLayout     = "20060102_150405"
)

// Artifacts manages the timestamped CSV files a screening run produces.
type Artifacts struct {
	dir string
}

// NewArtifacts creates an artifact manager rooted at dir.
func NewArtifacts(dir string) (*Artifacts, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Artifacts{dir: dir}, nil
}

// Dir returns the artifact directory.
func (a *Artifacts) Dir() string {
	return a.dir
}

// WriteComprehensive persists every processed row, pass or fail. The label
// tags partial and interrupted checkpoints; the final artifact uses
// "final" and bare prefix naming.
func (a *Artifacts) WriteComprehensive(rows []models.ScreeningRow, label string) (string, error) {
	name := comprehensivePrefix + time.Now().Format(timestampLayout) + ".csv"
	if label != "" && label != "final" {
		name = comprehensivePrefix + label + "_" + time.Now().Format(timestampLayout) + ".csv"
	}
	path := filepath.Join(a.dir, name)
	return path, writeCSV(path, &rows)
}

// WriteScreened persists only the passing rows, sorted by market cap
// descending the way the original published its recommendation list.
func (a *Artifacts) WriteScreened(rows []models.ScreeningRow) (string, error) {
	passed := make([]models.ScreeningRow, 0, len(rows))
	for _, r := range rows {
		if r.PassesCriteria {
			passed = append(passed, r)
		}
	}
	sort.SliceStable(passed, func(i, j int) bool {
		return passed[i].MarketCap > passed[j].MarketCap
	})

	path := filepath.Join(a.dir, screenedPrefix+time.Now().Format(timestampLayout)+".csv")
	return path, writeCSV(path, &passed)
}

// WriteSignals persists the dated candle-signal artifact, replacing any
// previous file for the same date.
func (a *Artifacts) WriteSignals(rows []models.SignalRow, date time.Time) (string, error) {
	name := fmt.Sprintf("stock_candle_signals_from_listing_%s.csv", date.Format("20060102"))
	path := filepath.Join(a.dir, name)
	return path, writeCSV(path, &rows)
}

// ReadComprehensive loads a comprehensive artifact.
func ReadComprehensive(path string) ([]models.ScreeningRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()

	var rows []models.ScreeningRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing artifact %s: %w", path, err)
	}
	return rows, nil
}

// ReadSignals loads a candle-signal artifact.
func ReadSignals(path string) ([]models.SignalRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening signals artifact: %w", err)
	}
	defer f.Close()

	var rows []models.SignalRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing signals artifact %s: %w", path, err)
	}
	return rows, nil
}

// LatestSignalsFile returns the newest dated signals artifact, or "" when
// none exists.
func (a *Artifacts) LatestSignalsFile() string {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return ""
	}
	var latest string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "stock_candle_signals_from_listing_") && strings.HasSuffix(name, ".csv") {
			if name > latest {
				latest = name
			}
		}
	}
	if latest == "" {
		return ""
	}
	return filepath.Join(a.dir, latest)
}

// FindFresh returns the newest final comprehensive artifact younger than
// maxAge, or "" when there is none. Partial and interrupted checkpoints
// are not candidates for reuse.
func (a *Artifacts) FindFresh(maxAge time.Duration) string {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return ""
	}

	var newest string
	var newestTime time.Time
	cutoff := time.Now().Add(-maxAge)

	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, comprehensivePrefix) || !strings.HasSuffix(name, ".csv") {
			continue
		}
		if strings.Contains(name, "partial") || strings.Contains(name, "interrupted") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			continue
		}
		if info.ModTime().After(newestTime) {
			newestTime = info.ModTime()
			newest = name
		}
	}

	if newest == "" {
		return ""
	}
	return filepath.Join(a.dir, newest)
}

func writeCSV(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
