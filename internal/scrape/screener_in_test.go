package scrape

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc
}

const ratioListFixture = `
<html><body>
<ul id="top-ratios">
  <li class="flex flex-space-between">
    <span class="name">Market Cap</span>
    <span class="number">1,40,000</span>
  </li>
  <li class="flex flex-space-between">
    <span class="name">Debt to equity</span>
    <span class="number">0.85</span>
  </li>
</ul>
</body></html>`

func TestDebtEquity_RatioList(t *testing.T) {
	doc := docFrom(t, ratioListFixture)

	for _, s := range debtEquityStrategies() {
		if s.Name != "ratio-list" {
			continue
		}
		v, ok := s.Extract(doc)
		if !ok {
			t.Fatal("ratio-list strategy should match the fixture")
		}
		if v != 0.85 {
			t.Errorf("value = %v, want 0.85", v)
		}
		return
	}
	t.Fatal("ratio-list strategy not registered")
}

func TestDebtEquity_TableRowFallback(t *testing.T) {
	doc := docFrom(t, `
<html><body>
<table>
  <tr><td>Debt to Equity</td><td>1.20</td><td>1.35</td></tr>
</table>
</body></html>`)

	strategies := debtEquityStrategies()
	last := strategies[len(strategies)-1]
	if last.Name != "table-row" {
		t.Fatalf("expected table-row as last resort, got %s", last.Name)
	}
	v, ok := last.Extract(doc)
	if !ok {
		t.Fatal("table-row strategy should match the fixture")
	}
	// Last parseable cell is the most recent figure.
	if v != 1.35 {
		t.Errorf("value = %v, want 1.35", v)
	}
}

func TestPublicHolding_ShareholdingTable(t *testing.T) {
	doc := docFrom(t, `
<html><body>
<section id="shareholding">
<table>
  <tr><td>Promoters</td><td>55.00%</td><td>54.50%</td></tr>
  <tr><td>Public</td><td>28.10%</td><td>28.40%</td></tr>
</table>
</section>
</body></html>`)

	s := publicHoldingStrategies()[0]
	if s.Name != "shareholding-table" {
		t.Fatalf("expected shareholding-table first, got %s", s.Name)
	}
	v, ok := s.Extract(doc)
	if !ok {
		t.Fatal("shareholding-table strategy should match the fixture")
	}
	if v != 28.40 {
		t.Errorf("value = %v, want 28.40 (latest quarter)", v)
	}
}

func TestStrategies_NoMatch(t *testing.T) {
	doc := docFrom(t, `<html><body><p>page under maintenance</p></body></html>`)

	for _, s := range debtEquityStrategies() {
		if _, ok := s.Extract(doc); ok {
			t.Errorf("strategy %s matched an empty page", s.Name)
		}
	}
	for _, s := range publicHoldingStrategies() {
		if _, ok := s.Extract(doc); ok {
			t.Errorf("strategy %s matched an empty page", s.Name)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"0.85", 0.85, false},
		{" 1,234.50 ", 1234.5, false},
		{"28.4%", 28.4, false},
		{"", 0, true},
		{"--", 0, true},
	}

	for _, tt := range tests {
		got, err := parseNumber(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseNumber(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("parseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
