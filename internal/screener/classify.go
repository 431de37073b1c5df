// Package screener implements the fundamental screening engine: company
// classification, the threshold rule set and the batch runner.
package screener

import (
	"strings"

	"nse-screener/internal/models"
)

// bankFinanceKeywords match against sector+industry text.
var bankFinanceKeywords = []string{
	"bank", "finance", "financial", "insurance", "mutual fund",
}

// psuNameKeywords are organization-name fragments common to public sector
// undertakings.
var psuNameKeywords = []string{
	"bharat", "indian", "national", "state bank", "oil india", "coal india",
	"ntpc", "ongc", "sail", "bhel", "gail", "ioc", "bpcl", "hpcl",
}

// psuTickerPrefixes are ticker fragments of known PSU banks.
var psuTickerPrefixes = []string{
	"sbi", "pnb", "boi", "canara",
}

// Classify derives the classification flags on a profile. The two
// predicates are independent: a company may be both a finance company and
// a PSU.
func Classify(p *models.FinancialProfile) {
	if p == nil {
		return
	}
	p.IsBankFinance = IsBankFinance(p.Sector, p.Industry)
	p.IsPSU = IsPSU(p.CompanyName, p.Symbol)
}

// IsBankFinance reports whether the sector/industry text identifies a
// bank, finance, insurance or asset-management company.
func IsBankFinance(sector, industry string) bool {
	text := strings.ToLower(sector) + strings.ToLower(industry)
	for _, kw := range bankFinanceKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// IsPSU reports whether the company name or ticker matches the public
// sector lexicon.
func IsPSU(companyName, symbol string) bool {
	name := strings.ToLower(companyName)
	for _, kw := range psuNameKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	ticker := strings.ToLower(symbol)
	for _, prefix := range psuTickerPrefixes {
		if strings.Contains(ticker, prefix) {
			return true
		}
	}
	return false
}
