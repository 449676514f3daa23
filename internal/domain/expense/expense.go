package expense

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storepos/backend/internal/domain/shared"
)

// Expense is a simple back-office spending record
type Expense struct {
	shared.BaseAggregateRoot
	Title       string          `gorm:"type:varchar(200);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Category    string          `gorm:"type:varchar(100);index"`
	Note        string          `gorm:"type:text"`
	ExpenseDate time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Expense) TableName() string {
	return "expenses"
}

// NewExpense creates a new expense record
func NewExpense(title, category, note string, amount decimal.Decimal, expenseDate time.Time) (*Expense, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Expense title cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Expense amount must be greater than zero")
	}
	if expenseDate.IsZero() {
		expenseDate = time.Now()
	}

	return &Expense{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             title,
		Amount:            amount,
		Category:          category,
		Note:              note,
		ExpenseDate:       expenseDate,
	}, nil
}

// Update updates the expense record
func (e *Expense) Update(title, category, note string, amount decimal.Decimal, expenseDate time.Time) error {
	if strings.TrimSpace(title) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Expense title cannot be empty")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Expense amount must be greater than zero")
	}

	e.Title = title
	e.Category = category
	e.Note = note
	e.Amount = amount
	if !expenseDate.IsZero() {
		e.ExpenseDate = expenseDate
	}
	e.UpdatedAt = time.Now()
	return nil
}
