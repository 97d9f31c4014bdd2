package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ChainResult holds the outcome of applying a discount chain to a base amount.
type ChainResult struct {
	Discount decimal.Decimal
	Net      decimal.Decimal
}

// EvaluateChain applies an ordered list of percentage discounts to the base
// amount. Each percentage applies to the remainder left by the previous one,
// so [10, 10] on 100 yields a discount of 19, not 20. Entries are assumed to
// be validated into [0, 100] by the caller.
func EvaluateChain(base decimal.Decimal, chain []decimal.Decimal) ChainResult {
	remaining := base
	discount := decimal.Zero
	for _, pct := range chain {
		amt := remaining.Mul(pct).Div(hundred)
		discount = discount.Add(amt)
		remaining = remaining.Sub(amt)
	}
	return ChainResult{Discount: discount, Net: remaining}
}

// LineInput describes a line as seen by the calculator.
type LineInput struct {
	Qty       int
	UnitPrice decimal.Decimal
	Chain     []decimal.Decimal
}

// LineResult aggregates the computed amounts for a single document line.
type LineResult struct {
	Gross    decimal.Decimal
	Discount decimal.Decimal
	Net      decimal.Decimal
}

// LineTotals derives the gross, discount and net amounts for one line. The
// computation is pure: identical inputs always produce identical outputs.
func LineTotals(in LineInput) LineResult {
	gross := decimal.NewFromInt(int64(in.Qty)).Mul(in.UnitPrice)
	res := EvaluateChain(gross, in.Chain)
	return LineResult{Gross: gross, Discount: res.Discount, Net: res.Net}
}

// Summary aggregates computed pricing components for a whole document.
type Summary struct {
	SubTotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxableAmount decimal.Decimal
	TaxAmount     decimal.Decimal
	GrandTotal    decimal.Decimal
}

// Summarize computes document totals from its lines. Tax only applies when
// the document kind carries a tax concept; otherwise TaxAmount stays zero and
// the grand total equals the taxable amount.
func Summarize(lines []LineInput, taxPct decimal.Decimal, taxable bool) Summary {
	subTotal := decimal.Zero
	discountTotal := decimal.Zero
	for _, line := range lines {
		res := LineTotals(line)
		subTotal = subTotal.Add(res.Gross)
		discountTotal = discountTotal.Add(res.Discount)
	}
	taxableAmount := subTotal.Sub(discountTotal)
	taxAmount := decimal.Zero
	if taxable && taxPct.IsPositive() {
		taxAmount = taxableAmount.Mul(taxPct).Div(hundred)
	}
	return Summary{
		SubTotal:      subTotal,
		DiscountTotal: discountTotal,
		TaxableAmount: taxableAmount,
		TaxAmount:     taxAmount,
		GrandTotal:    taxableAmount.Add(taxAmount),
	}
}

// RoundMoney rounds an amount to two decimal places for display or
// submission. Intermediate computation keeps full precision.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
