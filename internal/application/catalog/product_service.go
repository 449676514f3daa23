package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storepos/backend/internal/domain/catalog"
	"github.com/storepos/backend/internal/domain/shared"
)

// VariantInput is one size/color combination on an incoming product
type VariantInput struct {
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Stock     int             `json:"stock"`
	CostPrice decimal.Decimal `json:"cost_price"`
}

// CreateProductRequest is the input for creating a product
type CreateProductRequest struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	CostPrice decimal.Decimal `json:"cost_price"`
	Stock     int             `json:"stock"` // Used only when the product has no variants
	Variants  []VariantInput  `json:"variants"`
}

// UpdateProductRequest is the input for updating a product's details.
// Stock is not editable here; it moves through sales and purchases.
type UpdateProductRequest struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	CostPrice decimal.Decimal `json:"cost_price"`
}

// VariantResponse is one variant on a product
type VariantResponse struct {
	ID        uuid.UUID       `json:"id"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Stock     int             `json:"stock"`
	CostPrice decimal.Decimal `json:"cost_price"`
}

// ProductResponse is the API representation of a product
type ProductResponse struct {
	ID        uuid.UUID         `json:"id"`
	Code      string            `json:"code"`
	Name      string            `json:"name"`
	Category  string            `json:"category,omitempty"`
	Price     decimal.Decimal   `json:"price"`
	CostPrice decimal.Decimal   `json:"cost_price"`
	Stock     int               `json:"stock"`
	Variants  []VariantResponse `json:"variants"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ProductService handles catalog CRUD
type ProductService struct {
	productRepo catalog.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// Create creates a new product with optional variants
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if existing, err := s.productRepo.FindByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	product, err := catalog.NewProduct(req.Code, req.Name, req.Category, req.Price, req.CostPrice)
	if err != nil {
		return nil, err
	}

	if len(req.Variants) > 0 {
		for _, v := range req.Variants {
			cost := v.CostPrice
			if cost.IsZero() {
				cost = req.CostPrice
			}
			if err := product.AddVariant(v.Size, v.Color, v.Stock, cost); err != nil {
				return nil, err
			}
		}
	} else if req.Stock > 0 {
		product.Stock = req.Stock
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// Update updates a product's details
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Update(req.Name, req.Category, req.Price, req.CostPrice); err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes a product and its variants
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// Get returns a product by ID
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByCode returns a product by its unique code
func (s *ProductService) GetByCode(ctx context.Context, code string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns products matching the filter
func (s *ProductService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[ProductResponse], error) {
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, ToProductResponse(&products[i]))
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ToProductResponse converts a product aggregate to its API representation
func ToProductResponse(p *catalog.Product) ProductResponse {
	variants := make([]VariantResponse, 0, len(p.Variants))
	for i := range p.Variants {
		v := p.Variants[i]
		variants = append(variants, VariantResponse{
			ID:        v.ID,
			Size:      v.Size,
			Color:     v.Color,
			Stock:     v.Stock,
			CostPrice: v.CostPrice,
		})
	}

	return ProductResponse{
		ID:        p.ID,
		Code:      p.Code,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
		CostPrice: p.CostPrice,
		Stock:     p.Stock,
		Variants:  variants,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
