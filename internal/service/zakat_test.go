package service

import (
	"context"
	"testing"

	"github.com/dompetkeluarga/backend/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func manualQuote(pricePerGram int64) pricing.GoldQuote {
	return pricing.GoldQuote{
		PricePerGram: decimal.NewFromInt(pricePerGram),
		Source:       pricing.SourceManual,
	}
}

func TestEvaluateZakatAboveNisab(t *testing.T) {
	// nisab = 85 g x 1,000,000 = 85,000,000
	report := EvaluateZakat(manualQuote(1_000_000), 80_000_000, 20_000_000)

	assert.True(t, report.Obligated)
	assert.Equal(t, int64(100_000_000), report.Wealth)
	assert.True(t, report.Nisab.Equal(decimal.NewFromInt(85_000_000)), "nisab = %s", report.Nisab)
	assert.True(t, report.Amount.Equal(decimal.NewFromInt(2_500_000)), "amount = %s", report.Amount)
	assert.True(t, report.Difference.Equal(decimal.NewFromInt(15_000_000)))
}

func TestEvaluateZakatNisabBoundaryInclusive(t *testing.T) {
	report := EvaluateZakat(manualQuote(1_000_000), 85_000_000, 0)

	assert.True(t, report.Obligated, "wealth exactly at nisab is obligated")
	assert.True(t, report.Amount.Equal(decimal.NewFromInt(2_125_000)))
	assert.True(t, report.Difference.IsZero())

	below := EvaluateZakat(manualQuote(1_000_000), 84_999_999, 0)
	assert.False(t, below.Obligated)
	assert.True(t, below.Amount.IsZero())
	assert.True(t, below.Difference.IsNegative())
}

func TestZakatCalculatorManualOverride(t *testing.T) {
	// Fallback-only gold client; the manual price must win over it.
	gold := pricing.NewGoldClient(pricing.NewExchangerWithBaseURL("http://127.0.0.1:0"), 700_000, testLogger()).
		WithBaseURL("http://127.0.0.1:0")
	calc := NewZakatCalculator(gold)

	summary := Summary{LiquidAssets: 90_000_000, InvestmentValue: 10_000_000}
	report := calc.Calculate(context.Background(), summary, 1_000_000)

	assert.Equal(t, pricing.SourceManual, report.PriceSource)
	assert.True(t, report.GoldPricePerGram.Equal(decimal.NewFromInt(1_000_000)))
	assert.True(t, report.Obligated)
}

func TestZakatCalculatorFallsBackWhenFetchFails(t *testing.T) {
	gold := pricing.NewGoldClient(pricing.NewExchangerWithBaseURL("http://127.0.0.1:0"), 700_000, testLogger()).
		WithBaseURL("http://127.0.0.1:0")
	calc := NewZakatCalculator(gold)

	report := calc.Calculate(context.Background(), Summary{LiquidAssets: 100_000_000}, 0)

	assert.Equal(t, pricing.SourceFallback, report.PriceSource)
	// nisab = 85 x 700,000 = 59,500,000, so 100,000,000 is obligated
	assert.True(t, report.Obligated)
	assert.True(t, report.Amount.Equal(decimal.NewFromInt(2_500_000)))
}
