package utils

import (
	"testing"
	"time"

	"nse-screener/internal/models"
)

func istTime(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, IndiaLocation)
}

func TestMarketStatusAt(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want models.MarketStatus
	}{
		// 2025-06-02 is a Monday.
		{"before pre-open", istTime(2025, time.June, 2, 8, 59), models.MarketClosed},
		{"pre-open start", istTime(2025, time.June, 2, 9, 0), models.MarketPreOpen},
		{"pre-open end", istTime(2025, time.June, 2, 9, 14), models.MarketPreOpen},
		{"open at bell", istTime(2025, time.June, 2, 9, 15), models.MarketOpen},
		{"midday", istTime(2025, time.June, 2, 12, 30), models.MarketOpen},
		{"last minute", istTime(2025, time.June, 2, 15, 29), models.MarketOpen},
		{"at close", istTime(2025, time.June, 2, 15, 30), models.MarketClosed},
		{"evening", istTime(2025, time.June, 2, 18, 0), models.MarketClosed},
		{"saturday midday", istTime(2025, time.June, 7, 12, 0), models.MarketClosed},
		{"sunday midday", istTime(2025, time.June, 8, 12, 0), models.MarketClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := marketStatusAt(tt.at); got != tt.want {
				t.Errorf("marketStatusAt(%s) = %s, want %s", tt.at, got, tt.want)
			}
		})
	}
}

func TestMarketStatusAt_UTCConversion(t *testing.T) {
	// 05:00 UTC on a weekday is 10:30 IST, mid-session.
	at := time.Date(2025, time.June, 3, 5, 0, 0, 0, time.UTC)
	if got := marketStatusAt(at); got != models.MarketOpen {
		t.Errorf("marketStatusAt(05:00 UTC Tuesday) = %s, want OPEN", got)
	}
}
