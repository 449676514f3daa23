package handler

import (
	"encoding/json"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	purchaseapp "github.com/storepos/backend/internal/application/purchase"
)

// billImageFormField is the multipart field carrying the supplier bill
const billImageFormField = "bill_image"

// PurchaseHandler handles purchase endpoints
type PurchaseHandler struct {
	BaseHandler
	purchaseService *purchaseapp.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchaseService *purchaseapp.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// PurchaseItemInput is one received product position in a purchase request
type PurchaseItemInput struct {
	ProductCode string  `json:"product_code" binding:"required,min=1,max=50"`
	Size        string  `json:"size" binding:"omitempty,max=50"`
	Color       string  `json:"color" binding:"omitempty,max=50"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
	CostPrice   float64 `json:"cost_price" binding:"required,gt=0"`
}

// CreatePurchaseRequest is the body for creating a purchase. Itemized and
// aggregate modes are mutually exclusive.
type CreatePurchaseRequest struct {
	SupplierName  string              `json:"supplier_name" binding:"required,min=1,max=200"`
	InvoiceNumber string              `json:"invoice_number" binding:"omitempty,max=50"`
	Items         []PurchaseItemInput `json:"items" binding:"omitempty,dive"`
	TotalQuantity int                 `json:"total_quantity" binding:"omitempty,min=0"`
	TotalCost     float64             `json:"total_cost" binding:"omitempty,min=0"`
	PurchaseDate  *time.Time          `json:"purchase_date"`
}

// UpdatePurchaseRequest is the body for editing a purchase's supplier details
type UpdatePurchaseRequest struct {
	SupplierName  string     `json:"supplier_name" binding:"required,min=1,max=200"`
	InvoiceNumber string     `json:"invoice_number" binding:"omitempty,max=50"`
	PurchaseDate  *time.Time `json:"purchase_date"`
}

// AddPaymentRequest is the body for recording a supplier payment
type AddPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Method string  `json:"method" binding:"omitempty,max=50"`
	Note   string  `json:"note" binding:"omitempty,max=500"`
}

// Create records a purchase and adds the received stock. Clients sending
// a bill image use multipart/form-data with the JSON fields as form
// values and the image under the bill_image field.
// POST /api/v1/purchases
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req CreatePurchaseRequest
	var bill *purchaseapp.BillImage

	if isMultipart(c) {
		parsed, billImage, closer, err := h.bindMultipartCreate(c)
		if err != nil {
			h.BindError(c, err)
			return
		}
		req = *parsed
		bill = billImage
		if closer != nil {
			defer closer.Close()
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	appReq := purchaseapp.CreatePurchaseRequest{
		SupplierName:  req.SupplierName,
		InvoiceNumber: req.InvoiceNumber,
		TotalQuantity: req.TotalQuantity,
		TotalCost:     decimal.NewFromFloat(req.TotalCost),
		BillImage:     bill,
	}
	for _, item := range req.Items {
		appReq.Items = append(appReq.Items, purchaseapp.PurchaseItemInput{
			ProductCode: item.ProductCode,
			Size:        item.Size,
			Color:       item.Color,
			Quantity:    item.Quantity,
			CostPrice:   decimal.NewFromFloat(item.CostPrice),
		})
	}
	if req.PurchaseDate != nil {
		appReq.PurchaseDate = *req.PurchaseDate
	}

	purchase, err := h.purchaseService.Create(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, purchase)
}

// Update edits supplier details on a purchase. Stock is not re-run.
// PUT /api/v1/purchases/:id
func (h *PurchaseHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid purchase ID format")
		return
	}

	var req UpdatePurchaseRequest
	var bill *purchaseapp.BillImage

	if isMultipart(c) {
		parsed, billImage, closer, err := h.bindMultipartUpdate(c)
		if err != nil {
			h.BindError(c, err)
			return
		}
		req = *parsed
		bill = billImage
		if closer != nil {
			defer closer.Close()
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	appReq := purchaseapp.UpdatePurchaseRequest{
		SupplierName:  req.SupplierName,
		InvoiceNumber: req.InvoiceNumber,
		BillImage:     bill,
	}
	if req.PurchaseDate != nil {
		appReq.PurchaseDate = *req.PurchaseDate
	}

	purchase, err := h.purchaseService.Update(c.Request.Context(), id, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, purchase)
}

// AddPayment records a supplier payment against a purchase.
// POST /api/v1/purchases/:id/payments
func (h *PurchaseHandler) AddPayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid purchase ID format")
		return
	}

	var req AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	purchase, err := h.purchaseService.AddPayment(c.Request.Context(), id, purchaseapp.AddPaymentRequest{
		Amount: decimal.NewFromFloat(req.Amount),
		Method: req.Method,
		Note:   req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, purchase)
}

// Delete removes a purchase without touching stock.
// DELETE /api/v1/purchases/:id
func (h *PurchaseHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid purchase ID format")
		return
	}

	if err := h.purchaseService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetByID returns a purchase by ID.
// GET /api/v1/purchases/:id
func (h *PurchaseHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid purchase ID format")
		return
	}

	purchase, err := h.purchaseService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, purchase)
}

// List returns purchases matching the query.
// GET /api/v1/purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BindError(c, err)
		return
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if supplier := c.Query("supplier"); supplier != "" {
		filter.Filters["supplier"] = supplier
	}

	page, err := h.purchaseService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func (h *PurchaseHandler) bindMultipartCreate(c *gin.Context) (*CreatePurchaseRequest, *purchaseapp.BillImage, multipart.File, error) {
	req := CreatePurchaseRequest{
		SupplierName:  c.PostForm("supplier_name"),
		InvoiceNumber: c.PostForm("invoice_number"),
	}

	if itemsJSON := c.PostForm("items"); itemsJSON != "" {
		if err := json.Unmarshal([]byte(itemsJSON), &req.Items); err != nil {
			return nil, nil, nil, err
		}
	}
	if qty := c.PostForm("total_quantity"); qty != "" {
		n, err := strconv.Atoi(qty)
		if err != nil {
			return nil, nil, nil, err
		}
		req.TotalQuantity = n
	}
	if cost := c.PostForm("total_cost"); cost != "" {
		f, err := strconv.ParseFloat(cost, 64)
		if err != nil {
			return nil, nil, nil, err
		}
		req.TotalCost = f
	}
	if date := c.PostForm("purchase_date"); date != "" {
		t, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, nil, nil, err
		}
		req.PurchaseDate = &t
	}

	bill, file := formBillImage(c)
	return &req, bill, file, nil
}

func (h *PurchaseHandler) bindMultipartUpdate(c *gin.Context) (*UpdatePurchaseRequest, *purchaseapp.BillImage, multipart.File, error) {
	req := UpdatePurchaseRequest{
		SupplierName:  c.PostForm("supplier_name"),
		InvoiceNumber: c.PostForm("invoice_number"),
	}
	if date := c.PostForm("purchase_date"); date != "" {
		t, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, nil, nil, err
		}
		req.PurchaseDate = &t
	}

	bill, file := formBillImage(c)
	return &req, bill, file, nil
}

// formBillImage reads the optional bill image from a multipart form
func formBillImage(c *gin.Context) (*purchaseapp.BillImage, multipart.File) {
	file, header, err := c.Request.FormFile(billImageFormField)
	if err != nil {
		return nil, nil
	}
	return &purchaseapp.BillImage{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	}, file
}
