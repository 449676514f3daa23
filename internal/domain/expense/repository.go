package expense

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storepos/backend/internal/domain/shared"
)

// ExpenseRepository defines the persistence contract for expenses
type ExpenseRepository interface {
	shared.Repository[Expense]

	// SumAll returns the total of all recorded expenses
	SumAll(ctx context.Context) (decimal.Decimal, error)
}
