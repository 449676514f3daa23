package expense

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storepos/backend/internal/domain/expense"
	"github.com/storepos/backend/internal/domain/shared"
)

// CreateExpenseRequest is the input for recording an expense
type CreateExpenseRequest struct {
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Note        string          `json:"note"`
	ExpenseDate *time.Time      `json:"expense_date"`
}

// UpdateExpenseRequest is the input for editing an expense
type UpdateExpenseRequest struct {
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Note        string          `json:"note"`
	ExpenseDate *time.Time      `json:"expense_date"`
}

// ExpenseResponse is the API representation of an expense
type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category,omitempty"`
	Note        string          `json:"note,omitempty"`
	ExpenseDate time.Time       `json:"expense_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ExpenseListResponse is a page of expenses with the all-time total
type ExpenseListResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
	Total    decimal.Decimal   `json:"total"`
}

// ExpenseService handles operating expense bookkeeping
type ExpenseService struct {
	expenseRepo expense.ExpenseRepository
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo expense.ExpenseRepository) *ExpenseService {
	return &ExpenseService{expenseRepo: expenseRepo}
}

// Create records a new expense
func (s *ExpenseService) Create(ctx context.Context, req CreateExpenseRequest) (*ExpenseResponse, error) {
	exp, err := expense.NewExpense(req.Title, req.Category, req.Note, req.Amount, timeOrZero(req.ExpenseDate))
	if err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, exp); err != nil {
		return nil, err
	}
	resp := ToExpenseResponse(exp)
	return &resp, nil
}

// Update edits an existing expense
func (s *ExpenseService) Update(ctx context.Context, id uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	exp, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := exp.Update(req.Title, req.Category, req.Note, req.Amount, timeOrZero(req.ExpenseDate)); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, exp); err != nil {
		return nil, err
	}
	resp := ToExpenseResponse(exp)
	return &resp, nil
}

// Delete removes an expense
func (s *ExpenseService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.expenseRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.expenseRepo.Delete(ctx, id)
}

// Get returns an expense by ID
func (s *ExpenseService) Get(ctx context.Context, id uuid.UUID) (*ExpenseResponse, error) {
	exp, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToExpenseResponse(exp)
	return &resp, nil
}

// List returns a page of expenses along with the all-time total spend
func (s *ExpenseService) List(ctx context.Context, filter shared.Filter) (*ExpenseListResponse, error) {
	expenses, err := s.expenseRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.expenseRepo.SumAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := &ExpenseListResponse{
		Expenses: make([]ExpenseResponse, 0, len(expenses)),
		Total:    total,
	}
	for i := range expenses {
		resp.Expenses = append(resp.Expenses, ToExpenseResponse(&expenses[i]))
	}
	return resp, nil
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// ToExpenseResponse converts an expense to its API representation
func ToExpenseResponse(exp *expense.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          exp.ID,
		Title:       exp.Title,
		Amount:      exp.Amount,
		Category:    exp.Category,
		Note:        exp.Note,
		ExpenseDate: exp.ExpenseDate,
		CreatedAt:   exp.CreatedAt,
	}
}
