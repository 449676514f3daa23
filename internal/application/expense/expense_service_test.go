package expense

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storepos/backend/internal/domain/expense"
	"github.com/storepos/backend/internal/domain/shared"
)

// MockExpenseRepository is a mock implementation of expense.ExpenseRepository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]expense.Expense, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Save(ctx context.Context, e *expense.Expense) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExpenseRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpenseRepository) SumAll(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func TestCreateExpense(t *testing.T) {
	repo := new(MockExpenseRepository)
	svc := NewExpenseService(repo)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*expense.Expense")).Return(nil)

	resp, err := svc.Create(context.Background(), CreateExpenseRequest{
		Title:  "Shop rent",
		Amount: decimal.NewFromInt(25000),
	})
	require.NoError(t, err)
	assert.Equal(t, "Shop rent", resp.Title)
	assert.False(t, resp.ExpenseDate.IsZero())
	repo.AssertExpectations(t)
}

func TestCreateExpenseRejectsZeroAmount(t *testing.T) {
	svc := NewExpenseService(new(MockExpenseRepository))

	_, err := svc.Create(context.Background(), CreateExpenseRequest{
		Title:  "Shop rent",
		Amount: decimal.Zero,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestListExpensesIncludesTotal(t *testing.T) {
	repo := new(MockExpenseRepository)
	svc := NewExpenseService(repo)

	rent, err := expense.NewExpense("Shop rent", "rent", "", decimal.NewFromInt(25000), time.Time{})
	require.NoError(t, err)
	repo.On("FindAll", mock.Anything, mock.Anything).Return([]expense.Expense{*rent}, nil)
	repo.On("SumAll", mock.Anything).Return(decimal.NewFromInt(31500), nil)

	resp, err := svc.List(context.Background(), shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, resp.Expenses, 1)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(31500)))
}

func TestUpdateExpenseNotFound(t *testing.T) {
	repo := new(MockExpenseRepository)
	svc := NewExpenseService(repo)
	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := svc.Update(context.Background(), id, UpdateExpenseRequest{
		Title: "Shop rent", Amount: decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
