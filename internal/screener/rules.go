package screener

import (
	"nse-screener/internal/config"
	"nse-screener/internal/models"
)

// Evaluator applies the screening rule set to financial profiles. It is a
// pure function of the profile and the configured thresholds; evaluating
// the same profile twice yields the same verdict.
type Evaluator struct {
	cfg config.ScreeningConfig
}

// NewEvaluator creates an evaluator with the given thresholds.
func NewEvaluator(cfg config.ScreeningConfig) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Evaluate returns the pass/fail verdict for a profile. A nil profile
// always fails.
//
// Bank/finance companies pass on annual net profit and ROE alone; the
// ROCE, debt and public-holding fields do not influence that path. All
// other companies need net profit above the non-bank floor, the ROCE proxy
// above its floor, and a trailing net profit that strictly exceeds every
// available preceding quarterly profit. Private (non-PSU) companies
// additionally need public holding below the ceiling; PSUs are exempt
// from the ownership filter.
func (e *Evaluator) Evaluate(p *models.FinancialProfile) bool {
	if p == nil {
		return false
	}

	if p.IsBankFinance {
		return p.NetProfit > e.cfg.BankMinNetProfit && p.ROE > e.cfg.BankMinROE
	}

	base := p.NetProfit > e.cfg.NonBankMinNetProfit &&
		p.ROCE > e.cfg.NonBankMinROCE &&
		profitExceedsAllQuarters(p.NetProfit, p.Last3QProfits)

	if p.IsPSU {
		return base
	}
	return base && p.PublicHolding < e.cfg.MaxPublicHolding
}

// profitExceedsAllQuarters reports whether the trailing profit strictly
// exceeds every preceding quarterly profit. An empty quarter list is
// vacuously true: young listings with a short history are admitted rather
// than rejected.
func profitExceedsAllQuarters(netProfit float64, quarters []float64) bool {
	for _, q := range quarters {
		if netProfit <= q {
			return false
		}
	}
	return true
}
