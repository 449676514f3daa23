package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	catalogapp "github.com/storepos/backend/internal/application/catalog"
)

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// VariantInput is one size/color combination in a product request
type VariantInput struct {
	Size      string  `json:"size" binding:"required,min=1,max=50"`
	Color     string  `json:"color" binding:"required,min=1,max=50"`
	Stock     int     `json:"stock" binding:"omitempty,min=0"`
	CostPrice float64 `json:"cost_price" binding:"omitempty,min=0"`
}

// CreateProductRequest is the body for creating a product
type CreateProductRequest struct {
	Code      string         `json:"code" binding:"required,min=1,max=50"`
	Name      string         `json:"name" binding:"required,min=1,max=200"`
	Category  string         `json:"category" binding:"omitempty,max=100"`
	Price     float64        `json:"price" binding:"required,gt=0"`
	CostPrice float64        `json:"cost_price" binding:"omitempty,min=0"`
	Stock     int            `json:"stock" binding:"omitempty,min=0"`
	Variants  []VariantInput `json:"variants" binding:"omitempty,dive"`
}

// UpdateProductRequest is the body for updating a product
type UpdateProductRequest struct {
	Name      string  `json:"name" binding:"required,min=1,max=200"`
	Category  string  `json:"category" binding:"omitempty,max=100"`
	Price     float64 `json:"price" binding:"required,gt=0"`
	CostPrice float64 `json:"cost_price" binding:"omitempty,min=0"`
}

// Create creates a product with optional variants.
// POST /api/v1/catalog/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	appReq := catalogapp.CreateProductRequest{
		Code:      req.Code,
		Name:      req.Name,
		Category:  req.Category,
		Price:     decimal.NewFromFloat(req.Price),
		CostPrice: decimal.NewFromFloat(req.CostPrice),
		Stock:     req.Stock,
	}
	for _, v := range req.Variants {
		appReq.Variants = append(appReq.Variants, catalogapp.VariantInput{
			Size:      v.Size,
			Color:     v.Color,
			Stock:     v.Stock,
			CostPrice: decimal.NewFromFloat(v.CostPrice),
		})
	}

	product, err := h.productService.Create(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// Update edits a product's details.
// PUT /api/v1/catalog/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, catalogapp.UpdateProductRequest{
		Name:      req.Name,
		Category:  req.Category,
		Price:     decimal.NewFromFloat(req.Price),
		CostPrice: decimal.NewFromFloat(req.CostPrice),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete removes a product and its variants.
// DELETE /api/v1/catalog/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetByID returns a product by ID.
// GET /api/v1/catalog/products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// GetByCode returns a product by its unique code.
// GET /api/v1/catalog/products/code/:code
func (h *ProductHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Product code is required")
		return
	}

	product, err := h.productService.GetByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// List returns products matching the query.
// GET /api/v1/catalog/products
func (h *ProductHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BindError(c, err)
		return
	}
	if category := c.Query("category"); category != "" {
		filter.Filters["category"] = category
	}

	page, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
