package expense

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExpense(t *testing.T) {
	e, err := NewExpense("Shop rent", "rent", "August", decimal.NewFromInt(45000), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Shop rent", e.Title)
	assert.False(t, e.ExpenseDate.IsZero(), "date defaults to now")

	_, err = NewExpense("", "rent", "", decimal.NewFromInt(100), time.Now())
	assert.Error(t, err)

	_, err = NewExpense("Shop rent", "rent", "", decimal.Zero, time.Now())
	assert.Error(t, err)
}

func TestExpenseUpdate(t *testing.T) {
	e, err := NewExpense("Shop rent", "rent", "", decimal.NewFromInt(45000), time.Now())
	require.NoError(t, err)

	require.NoError(t, e.Update("Shop rent (revised)", "rent", "new lease", decimal.NewFromInt(50000), time.Now()))
	assert.Equal(t, "50000", e.Amount.String())

	assert.Error(t, e.Update("", "", "", decimal.NewFromInt(1), time.Now()))
}
