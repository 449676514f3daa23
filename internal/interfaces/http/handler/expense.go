package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	expenseapp "github.com/storepos/backend/internal/application/expense"
)

// ExpenseHandler handles operating expense endpoints
type ExpenseHandler struct {
	BaseHandler
	expenseService *expenseapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *expenseapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// ExpenseRequest is the body for creating or updating an expense
type ExpenseRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	Category    string     `json:"category" binding:"omitempty,max=100"`
	Note        string     `json:"note" binding:"omitempty,max=500"`
	ExpenseDate *time.Time `json:"expense_date"`
}

// Create records an expense.
// POST /api/v1/expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	expense, err := h.expenseService.Create(c.Request.Context(), expenseapp.CreateExpenseRequest{
		Title:       req.Title,
		Amount:      decimal.NewFromFloat(req.Amount),
		Category:    req.Category,
		Note:        req.Note,
		ExpenseDate: req.ExpenseDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, expense)
}

// Update edits an expense.
// PUT /api/v1/expenses/:id
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid expense ID format")
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	expense, err := h.expenseService.Update(c.Request.Context(), id, expenseapp.UpdateExpenseRequest{
		Title:       req.Title,
		Amount:      decimal.NewFromFloat(req.Amount),
		Category:    req.Category,
		Note:        req.Note,
		ExpenseDate: req.ExpenseDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, expense)
}

// Delete removes an expense.
// DELETE /api/v1/expenses/:id
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid expense ID format")
		return
	}

	if err := h.expenseService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetByID returns an expense by ID.
// GET /api/v1/expenses/:id
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid expense ID format")
		return
	}

	expense, err := h.expenseService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, expense)
}

// List returns expenses matching the query plus the all-time total.
// GET /api/v1/expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BindError(c, err)
		return
	}
	if category := c.Query("category"); category != "" {
		filter.Filters["category"] = category
	}
	if from := c.Query("from"); from != "" {
		filter.Filters["from"] = from
	}
	if to := c.Query("to"); to != "" {
		filter.Filters["to"] = to
	}

	result, err := h.expenseService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
