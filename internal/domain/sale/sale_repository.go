package sale

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storepos/backend/internal/domain/shared"
)

// Summary holds aggregate financial figures across sales
type Summary struct {
	Count        int64
	TotalRevenue decimal.Decimal
	TotalCost    decimal.Decimal
	TotalProfit  decimal.Decimal
	TotalRefunds decimal.Decimal
	NetProfit    decimal.Decimal
}

// SaleRepository defines the persistence contract for sales
type SaleRepository interface {
	shared.Repository[Sale]

	// FindByInvoiceNumber finds a sale by its invoice number
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Sale, error)

	// Summarize aggregates revenue, cost, profit and refunds across all sales
	Summarize(ctx context.Context) (Summary, error)
}
