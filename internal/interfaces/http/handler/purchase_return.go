package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	purchaseapp "github.com/storepos/backend/internal/application/purchase"
)

// PurchaseReturnHandler handles purchase return endpoints
type PurchaseReturnHandler struct {
	BaseHandler
	returnService *purchaseapp.PurchaseReturnService
}

// NewPurchaseReturnHandler creates a new PurchaseReturnHandler
func NewPurchaseReturnHandler(returnService *purchaseapp.PurchaseReturnService) *PurchaseReturnHandler {
	return &PurchaseReturnHandler{returnService: returnService}
}

// PurchaseReturnItemInput is one returned product position
type PurchaseReturnItemInput struct {
	ProductCode string  `json:"product_code" binding:"required,min=1,max=50"`
	Size        string  `json:"size" binding:"omitempty,max=50"`
	Color       string  `json:"color" binding:"omitempty,max=50"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
	CostPrice   float64 `json:"cost_price" binding:"required,gt=0"`
}

// CreatePurchaseReturnRequest is the body for returning goods to a supplier
type CreatePurchaseReturnRequest struct {
	PurchaseID   *string                   `json:"purchase_id" binding:"omitempty,uuid"`
	SupplierName string                    `json:"supplier_name" binding:"required,min=1,max=200"`
	Reason       string                    `json:"reason" binding:"omitempty,max=500"`
	Items        []PurchaseReturnItemInput `json:"items" binding:"required,min=1,dive"`
	ReturnDate   *time.Time                `json:"return_date"`
}

// UpdatePurchaseReturnRequest is the body for replacing a return's items
type UpdatePurchaseReturnRequest struct {
	Reason string                    `json:"reason" binding:"omitempty,max=500"`
	Items  []PurchaseReturnItemInput `json:"items" binding:"required,min=1,dive"`
}

func toPurchaseReturnItemInputs(items []PurchaseReturnItemInput) []purchaseapp.PurchaseReturnItemInput {
	inputs := make([]purchaseapp.PurchaseReturnItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, purchaseapp.PurchaseReturnItemInput{
			ProductCode: item.ProductCode,
			Size:        item.Size,
			Color:       item.Color,
			Quantity:    item.Quantity,
			CostPrice:   decimal.NewFromFloat(item.CostPrice),
		})
	}
	return inputs
}

// Create records a purchase return and deducts the returned stock.
// POST /api/v1/purchase-returns
func (h *PurchaseReturnHandler) Create(c *gin.Context) {
	var req CreatePurchaseReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	appReq := purchaseapp.CreatePurchaseReturnRequest{
		SupplierName: req.SupplierName,
		Reason:       req.Reason,
		Items:        toPurchaseReturnItemInputs(req.Items),
	}
	if req.PurchaseID != nil && *req.PurchaseID != "" {
		purchaseID, err := uuid.Parse(*req.PurchaseID)
		if err != nil {
			h.BadRequest(c, "Invalid purchase ID format")
			return
		}
		appReq.PurchaseID = &purchaseID
	}
	if req.ReturnDate != nil {
		appReq.ReturnDate = *req.ReturnDate
	}

	ret, err := h.returnService.Create(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, ret)
}

// Update replaces a return's items, re-running the stock delta.
// PUT /api/v1/purchase-returns/:id
func (h *PurchaseReturnHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid purchase return ID format")
		return
	}

	var req UpdatePurchaseReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	ret, err := h.returnService.Update(c.Request.Context(), id, purchaseapp.UpdatePurchaseReturnRequest{
		Reason: req.Reason,
		Items:  toPurchaseReturnItemInputs(req.Items),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ret)
}

// Delete removes a purchase return and restores the returned stock.
// DELETE /api/v1/purchase-returns/:id
func (h *PurchaseReturnHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid purchase return ID format")
		return
	}

	if err := h.returnService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetByID returns a purchase return by ID.
// GET /api/v1/purchase-returns/:id
func (h *PurchaseReturnHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid purchase return ID format")
		return
	}

	ret, err := h.returnService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ret)
}

// List returns purchase returns matching the query.
// GET /api/v1/purchase-returns
func (h *PurchaseReturnHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.returnService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
