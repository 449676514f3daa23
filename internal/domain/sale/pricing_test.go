package sale

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func line(price, cost, discount float64, qty int) SaleLine {
	return SaleLine{
		Quantity:  qty,
		Price:     decimal.NewFromFloat(price),
		CostPrice: decimal.NewFromFloat(cost),
		Discount:  decimal.NewFromFloat(discount),
	}
}

func TestComputeTotalsNoDiscount(t *testing.T) {
	lines := []SaleLine{
		line(100, 60, 0, 2),
		line(50, 30, 0, 1),
	}

	totals := ComputeTotals(lines, decimal.Zero)

	assert.Equal(t, "200", lines[0].TotalPrice.String())
	assert.Equal(t, "50", lines[1].TotalPrice.String())
	assert.Equal(t, "250", totals.GrandTotal.String())
	assert.Equal(t, "150", totals.TotalCost.String())
	assert.Equal(t, "100", totals.TotalProfit.String())
	assert.Equal(t, "40", totals.ProfitMargin.String())
}

func TestComputeTotalsLineDiscountWinsOverSaleDiscount(t *testing.T) {
	lines := []SaleLine{
		line(100, 60, 10, 2), // (100-10)*2 = 180
		line(50, 30, 0, 1),   // no line discount, but line mode applies: 50*1
	}

	totals := ComputeTotals(lines, decimal.NewFromInt(500))

	assert.Equal(t, "180", lines[0].TotalPrice.String())
	assert.Equal(t, "50", lines[1].TotalPrice.String())
	assert.Equal(t, "230", totals.GrandTotal.String(), "sale-level discount is ignored")
}

func TestComputeTotalsLineDiscountFloorsAtZero(t *testing.T) {
	lines := []SaleLine{
		line(100, 60, 150, 2),
	}

	totals := ComputeTotals(lines, decimal.Zero)

	assert.True(t, lines[0].TotalPrice.IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
	assert.Equal(t, "-120", totals.TotalProfit.String())
	assert.True(t, totals.ProfitMargin.IsZero(), "margin is zero when grand total is zero")
}

func TestComputeTotalsSaleDiscountProportional(t *testing.T) {
	lines := []SaleLine{
		line(100, 60, 0, 3), // base 300, 75% of pre-discount total
		line(100, 60, 0, 1), // base 100, 25%
	}

	totals := ComputeTotals(lines, decimal.NewFromInt(40))

	assert.Equal(t, "270", lines[0].TotalPrice.String())
	assert.Equal(t, "90", lines[1].TotalPrice.String())
	assert.Equal(t, "360", totals.GrandTotal.String())
}

func TestComputeTotalsSaleDiscountExceedsTotal(t *testing.T) {
	lines := []SaleLine{
		line(100, 60, 0, 1),
	}

	totals := ComputeTotals(lines, decimal.NewFromInt(500))

	assert.True(t, lines[0].TotalPrice.IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
	assert.True(t, totals.ProfitMargin.IsZero())
}

func TestComputeTotalsZeroPricedLines(t *testing.T) {
	lines := []SaleLine{
		line(0, 0, 0, 5),
	}

	totals := ComputeTotals(lines, decimal.NewFromInt(10))

	assert.True(t, lines[0].TotalPrice.IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
	assert.True(t, totals.TotalProfit.IsZero())
}
