package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	saleapp "github.com/storepos/backend/internal/application/sale"
)

// IdempotencyKeyHeader carries the client-supplied duplicate-submit guard
const IdempotencyKeyHeader = "Idempotency-Key"

// SaleHandler handles sale endpoints
type SaleHandler struct {
	BaseHandler
	saleService *saleapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *saleapp.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// SaleLineInput is one product position in a sale request. An omitted
// price uses the catalog price; an explicit zero sells the line for free.
type SaleLineInput struct {
	ProductCode string   `json:"product_code" binding:"required,min=1,max=50"`
	Size        string   `json:"size" binding:"omitempty,max=50"`
	Color       string   `json:"color" binding:"omitempty,max=50"`
	Quantity    int      `json:"quantity" binding:"required,gt=0"`
	Price       *float64 `json:"price" binding:"omitempty,min=0"`
	Discount    float64  `json:"discount" binding:"omitempty,min=0"`
}

// CreateSaleRequest is the body for creating a sale
type CreateSaleRequest struct {
	InvoiceNumber     string          `json:"invoice_number" binding:"omitempty,max=50"`
	CustomerName      string          `json:"customer_name" binding:"omitempty,max=200"`
	CustomerPhone     string          `json:"customer_phone" binding:"omitempty,max=30"`
	SoldBy            string          `json:"sold_by" binding:"omitempty,max=50"`
	CommissionPercent float64         `json:"commission_percent" binding:"omitempty,min=0,max=100"`
	Discount          float64         `json:"discount" binding:"omitempty,min=0"`
	Lines             []SaleLineInput `json:"lines" binding:"required,min=1,dive"`
	SaleDate          *time.Time      `json:"sale_date"`
}

// UpdateSaleRequest is the body for editing a sale
type UpdateSaleRequest struct {
	Reason       string          `json:"reason" binding:"required,min=1,max=500"`
	CustomerName string          `json:"customer_name" binding:"omitempty,max=200"`
	Discount     float64         `json:"discount" binding:"omitempty,min=0"`
	Lines        []SaleLineInput `json:"lines" binding:"required,min=1,dive"`
}

// ReturnedItemInput names one sold line position and the quantity coming back
type ReturnedItemInput struct {
	ProductCode string `json:"product_code" binding:"required,min=1,max=50"`
	Size        string `json:"size" binding:"omitempty,max=50"`
	Color       string `json:"color" binding:"omitempty,max=50"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
}

// ReturnSaleRequest is the body for returning a sale. Omitting the
// returned items returns every line in full.
type ReturnSaleRequest struct {
	ReturnedItems []ReturnedItemInput `json:"returned_items" binding:"omitempty,dive"`
	RefundAmount  *float64            `json:"refund_amount" binding:"omitempty,min=0"`
	ReturnDate    *time.Time          `json:"return_date"`
}

func toSaleLineInputs(lines []SaleLineInput) []saleapp.SaleLineInput {
	inputs := make([]saleapp.SaleLineInput, 0, len(lines))
	for _, l := range lines {
		input := saleapp.SaleLineInput{
			ProductCode: l.ProductCode,
			Size:        l.Size,
			Color:       l.Color,
			Quantity:    l.Quantity,
			Discount:    decimal.NewFromFloat(l.Discount),
		}
		if l.Price != nil {
			price := decimal.NewFromFloat(*l.Price)
			input.Price = &price
		}
		inputs = append(inputs, input)
	}
	return inputs
}

// Create records a sale and deducts stock.
// POST /api/v1/sales
func (h *SaleHandler) Create(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	appReq := saleapp.CreateSaleRequest{
		InvoiceNumber:     req.InvoiceNumber,
		CustomerName:      req.CustomerName,
		CustomerPhone:     req.CustomerPhone,
		SoldBy:            req.SoldBy,
		CommissionPercent: decimal.NewFromFloat(req.CommissionPercent),
		Discount:          decimal.NewFromFloat(req.Discount),
		Lines:             toSaleLineInputs(req.Lines),
		IdempotencyKey:    c.GetHeader(IdempotencyKeyHeader),
	}
	if req.SaleDate != nil {
		appReq.SaleDate = *req.SaleDate
	}

	sale, err := h.saleService.Create(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sale)
}

// Update edits a sale, re-running stock for changed lines. The edit
// reason is mandatory and lands in the sale's audit trail.
// PUT /api/v1/sales/:id
func (h *SaleHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	var req UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	sale, err := h.saleService.Update(c.Request.Context(), id, saleapp.UpdateSaleRequest{
		Reason:       req.Reason,
		CustomerName: req.CustomerName,
		Discount:     decimal.NewFromFloat(req.Discount),
		Lines:        toSaleLineInputs(req.Lines),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// Return marks a sale as returned, restores stock for the returned
// quantities and records the refund.
// POST /api/v1/sales/:id/return
func (h *SaleHandler) Return(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	var req ReturnSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	appReq := saleapp.ReturnSaleRequest{}
	for _, item := range req.ReturnedItems {
		appReq.ReturnedItems = append(appReq.ReturnedItems, saleapp.ReturnedItemInput{
			ProductCode: item.ProductCode,
			Size:        item.Size,
			Color:       item.Color,
			Quantity:    item.Quantity,
		})
	}
	if req.RefundAmount != nil {
		amount := decimal.NewFromFloat(*req.RefundAmount)
		appReq.RefundAmount = &amount
	}
	if req.ReturnDate != nil {
		appReq.ReturnDate = *req.ReturnDate
	}

	sale, err := h.saleService.Return(c.Request.Context(), id, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// Delete removes a sale, compensating stock unless it was already returned.
// DELETE /api/v1/sales/:id
func (h *SaleHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	if err := h.saleService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetByID returns a sale by ID.
// GET /api/v1/sales/:id
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	sale, err := h.saleService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// List returns sales matching the query.
// GET /api/v1/sales
func (h *SaleHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BindError(c, err)
		return
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if soldBy := c.Query("sold_by"); soldBy != "" {
		filter.Filters["sold_by"] = soldBy
	}
	if from := c.Query("from"); from != "" {
		filter.Filters["from"] = from
	}
	if to := c.Query("to"); to != "" {
		filter.Filters["to"] = to
	}

	page, err := h.saleService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Summary returns the profit and loss figures across all sales.
// GET /api/v1/sales/summary/profit-loss
func (h *SaleHandler) Summary(c *gin.Context) {
	summary, err := h.saleService.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}
