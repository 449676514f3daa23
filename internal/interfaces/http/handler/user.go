package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	identityapp "github.com/storepos/backend/internal/application/identity"
)

// UserHandler handles staff user endpoints
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest is the body for creating a staff user
type CreateUserRequest struct {
	Name              string  `json:"name" binding:"required,min=1,max=200"`
	Email             string  `json:"email" binding:"required,email"`
	Password          string  `json:"password" binding:"required,min=6,max=72"`
	Role              string  `json:"role" binding:"omitempty,oneof=admin staff"`
	Phone             string  `json:"phone" binding:"omitempty,max=30"`
	Barcode           string  `json:"barcode" binding:"omitempty,max=50"`
	CommissionPercent float64 `json:"commission_percent" binding:"omitempty,min=0,max=100"`
}

// UpdateUserRequest is the body for updating a staff user
type UpdateUserRequest struct {
	Name              string  `json:"name" binding:"required,min=1,max=200"`
	Phone             string  `json:"phone" binding:"omitempty,max=30"`
	Barcode           string  `json:"barcode" binding:"omitempty,max=50"`
	Role              string  `json:"role" binding:"omitempty,oneof=admin staff"`
	CommissionPercent float64 `json:"commission_percent" binding:"omitempty,min=0,max=100"`
}

// Create creates a staff user.
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), identityapp.CreateUserRequest{
		Name:              req.Name,
		Email:             req.Email,
		Password:          req.Password,
		Role:              req.Role,
		Phone:             req.Phone,
		Barcode:           req.Barcode,
		CommissionPercent: decimal.NewFromFloat(req.CommissionPercent),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, user)
}

// Update edits a staff user.
// PUT /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, identityapp.UpdateUserRequest{
		Name:              req.Name,
		Phone:             req.Phone,
		Barcode:           req.Barcode,
		Role:              req.Role,
		CommissionPercent: decimal.NewFromFloat(req.CommissionPercent),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// Delete deactivates a staff user.
// DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetByID returns a staff user by ID.
// GET /api/v1/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// List returns staff users matching the query.
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
