package service

import (
	"context"

	"github.com/dompetkeluarga/backend/internal/pricing"
	"github.com/shopspring/decimal"
)

// NisabGoldGrams is the nisab threshold expressed in grams of gold.
const NisabGoldGrams = 85

// zakatRate is the zakat mal levy on qualifying wealth.
var zakatRate = decimal.NewFromFloat(0.025)

// ZakatReport is the outcome of one zakat mal evaluation. Wealth is
// liquid assets plus investment value; credit card debt is excluded
// from both sides of the nisab comparison (liabilities are not netted
// against assets, matching established practice in the app).
type ZakatReport struct {
	GoldPricePerGram decimal.Decimal `json:"goldPricePerGram"`
	PriceSource      pricing.Source  `json:"priceSource"`
	Nisab            decimal.Decimal `json:"nisab"`
	LiquidAssets     int64           `json:"liquidAssets"`
	InvestmentValue  int64           `json:"investmentValue"`
	Wealth           int64           `json:"wealth"`
	Obligated        bool            `json:"obligated"`
	Amount           decimal.Decimal `json:"amount"`
	Difference       decimal.Decimal `json:"difference"` // wealth minus nisab, negative when short
}

// EvaluateZakat applies the nisab threshold and 2.5% levy to the given
// asset totals. Obligation triggers at wealth >= nisab, inclusive.
func EvaluateZakat(quote pricing.GoldQuote, liquidAssets, investmentValue int64) ZakatReport {
	nisab := quote.PricePerGram.Mul(decimal.NewFromInt(NisabGoldGrams))
	wealth := liquidAssets + investmentValue
	wealthDec := decimal.NewFromInt(wealth)

	report := ZakatReport{
		GoldPricePerGram: quote.PricePerGram,
		PriceSource:      quote.Source,
		Nisab:            nisab,
		LiquidAssets:     liquidAssets,
		InvestmentValue:  investmentValue,
		Wealth:           wealth,
		Difference:       wealthDec.Sub(nisab),
	}
	if wealthDec.GreaterThanOrEqual(nisab) {
		report.Obligated = true
		report.Amount = wealthDec.Mul(zakatRate)
	}
	return report
}

// ZakatCalculator resolves the gold price and evaluates zakat mal for
// a summary. It can always produce a figure: manual override first,
// then the fetched spot price, then the static fallback inside the
// gold client.
type ZakatCalculator struct {
	gold *pricing.GoldClient
}

// NewZakatCalculator creates a calculator over the given price client.
func NewZakatCalculator(gold *pricing.GoldClient) *ZakatCalculator {
	return &ZakatCalculator{gold: gold}
}

// Calculate evaluates zakat for the summary. A positive manualPrice
// (rupiah per gram) overrides any fetched price.
func (z *ZakatCalculator) Calculate(ctx context.Context, summary Summary, manualPrice int64) ZakatReport {
	var quote pricing.GoldQuote
	if manualPrice > 0 {
		quote = pricing.GoldQuote{
			PricePerGram: decimal.NewFromInt(manualPrice),
			Source:       pricing.SourceManual,
		}
	} else {
		quote = z.gold.PricePerGram(ctx)
	}
	return EvaluateZakat(quote, summary.LiquidAssets, summary.InvestmentValue)
}
