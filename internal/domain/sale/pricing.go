package sale

import (
	"github.com/shopspring/decimal"
)

// Totals holds the derived financial figures for a sale
type Totals struct {
	TotalCost    decimal.Decimal
	GrandTotal   decimal.Decimal
	TotalProfit  decimal.Decimal
	ProfitMargin decimal.Decimal
}

// ComputeTotals prices the given lines in place and returns the sale
// totals. Discount precedence: when any line carries a per-unit
// discount, line discounts win and the sale-level discount is ignored
// entirely. Otherwise a positive sale-level discount is distributed
// across lines in proportion to their pre-discount totals. Line totals
// never go below zero.
func ComputeTotals(lines []SaleLine, saleDiscount decimal.Decimal) Totals {
	totalCost := decimal.Zero
	for i := range lines {
		qty := decimal.NewFromInt(int64(lines[i].Quantity))
		totalCost = totalCost.Add(lines[i].CostPrice.Mul(qty))
	}

	switch {
	case anyLineDiscount(lines):
		priceWithLineDiscounts(lines)
	case saleDiscount.IsPositive():
		priceWithSaleDiscount(lines, saleDiscount)
	default:
		for i := range lines {
			qty := decimal.NewFromInt(int64(lines[i].Quantity))
			lines[i].TotalPrice = lines[i].Price.Mul(qty)
		}
	}

	grandTotal := decimal.Zero
	for i := range lines {
		grandTotal = grandTotal.Add(lines[i].TotalPrice)
	}

	totalProfit := grandTotal.Sub(totalCost)
	profitMargin := decimal.Zero
	if grandTotal.IsPositive() {
		profitMargin = totalProfit.Div(grandTotal).Mul(decimal.NewFromInt(100))
	}

	return Totals{
		TotalCost:    totalCost,
		GrandTotal:   grandTotal,
		TotalProfit:  totalProfit,
		ProfitMargin: profitMargin,
	}
}

func anyLineDiscount(lines []SaleLine) bool {
	for i := range lines {
		if lines[i].Discount.IsPositive() {
			return true
		}
	}
	return false
}

func priceWithLineDiscounts(lines []SaleLine) {
	for i := range lines {
		qty := decimal.NewFromInt(int64(lines[i].Quantity))
		total := lines[i].Price.Sub(lines[i].Discount).Mul(qty)
		if total.IsNegative() {
			total = decimal.Zero
		}
		lines[i].TotalPrice = total
	}
}

func priceWithSaleDiscount(lines []SaleLine, saleDiscount decimal.Decimal) {
	base := make([]decimal.Decimal, len(lines))
	sum := decimal.Zero
	for i := range lines {
		qty := decimal.NewFromInt(int64(lines[i].Quantity))
		base[i] = lines[i].Price.Mul(qty)
		sum = sum.Add(base[i])
	}

	if sum.IsZero() {
		for i := range lines {
			lines[i].TotalPrice = decimal.Zero
		}
		return
	}

	for i := range lines {
		share := saleDiscount.Mul(base[i]).Div(sum)
		total := base[i].Sub(share)
		if total.IsNegative() {
			total = decimal.Zero
		}
		lines[i].TotalPrice = total
	}
}
