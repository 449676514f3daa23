package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storepos/backend/internal/domain/shared"
)

// Product represents a sellable item and is the aggregate root for all
// stock movements. Stock lives on the variants when a product has any;
// the product-level Stock field is always the sum of variant stock and
// is recomputed before every persist.
type Product struct {
	shared.BaseAggregateRoot
	Code      string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name      string           `gorm:"type:varchar(200);not null"`
	Category  string           `gorm:"type:varchar(100);index"`
	Price     decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"` // Selling price per unit
	CostPrice decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"` // Cost price per unit
	Stock     int              `gorm:"not null;default:0"`
	Variants  []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// ProductVariant is a size/color combination with its own stock count.
// The (product, size, color) pair is unique.
type ProductVariant struct {
	shared.BaseEntity
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_variant_product_size_color,priority:1"`
	Size      string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_variant_product_size_color,priority:2"`
	Color     string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_variant_product_size_color,priority:3"`
	Stock     int             `gorm:"not null;default:0"`
	CostPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// TableName returns the table name for GORM
func (ProductVariant) TableName() string {
	return "product_variants"
}

// NewProduct creates a new product
func NewProduct(code, name, category string, price, costPrice decimal.Decimal) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() || costPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Prices cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Category:          category,
		Price:             price,
		CostPrice:         costPrice,
	}, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, category string, price, costPrice decimal.Decimal) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if price.IsNegative() || costPrice.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Prices cannot be negative")
	}

	p.Name = name
	p.Category = category
	p.Price = price
	p.CostPrice = costPrice
	p.UpdatedAt = time.Now()
	return nil
}

// AddVariant adds a new size/color variant with the given opening stock
func (p *Product) AddVariant(size, color string, stock int, costPrice decimal.Decimal) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_INPUT", "Variant stock cannot be negative")
	}
	if p.findVariant(size, color) != nil {
		return shared.ErrAlreadyExists
	}

	p.Variants = append(p.Variants, ProductVariant{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  p.ID,
		Size:       size,
		Color:      color,
		Stock:      stock,
		CostPrice:  costPrice,
	})
	p.RecomputeStock()
	return nil
}

// Reserve removes quantity from stock for a sale. With variants present
// the (size, color) pair must match exactly; a missing variant is an
// error, never an implicit fallback to product-level stock.
func (p *Product) Reserve(size, color string, quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Quantity must be greater than zero")
	}

	if len(p.Variants) == 0 {
		if p.Stock < quantity {
			return shared.ErrInsufficientStock
		}
		p.Stock -= quantity
		p.UpdatedAt = time.Now()
		return nil
	}

	variant := p.findVariant(size, color)
	if variant == nil {
		return shared.ErrVariantNotFound
	}
	if variant.Stock < quantity {
		return shared.ErrInsufficientStock
	}
	variant.Stock -= quantity
	p.RecomputeStock()
	return nil
}

// Release returns quantity to stock for a sale return. A missing variant
// falls back to product-level stock so returned goods are never lost.
func (p *Product) Release(size, color string, quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Quantity must be greater than zero")
	}

	if variant := p.findVariant(size, color); variant != nil {
		variant.Stock += quantity
		p.RecomputeStock()
		return nil
	}

	p.Stock += quantity
	p.UpdatedAt = time.Now()
	return nil
}

// Receive adds purchased quantity to stock. An unknown (size, color)
// pair creates the variant; receipts also refresh the cost price.
func (p *Product) Receive(size, color string, quantity int, costPrice decimal.Decimal) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Quantity must be greater than zero")
	}

	if !costPrice.IsZero() {
		p.CostPrice = costPrice
	}

	if size == "" && color == "" && len(p.Variants) == 0 {
		p.Stock += quantity
		p.UpdatedAt = time.Now()
		return nil
	}

	if variant := p.findVariant(size, color); variant != nil {
		variant.Stock += quantity
		if !costPrice.IsZero() {
			variant.CostPrice = costPrice
		}
		p.RecomputeStock()
		return nil
	}

	p.Variants = append(p.Variants, ProductVariant{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  p.ID,
		Size:       size,
		Color:      color,
		Stock:      quantity,
		CostPrice:  costPrice,
	})
	p.RecomputeStock()
	return nil
}

// Deduct removes quantity from stock for a purchase return, matching
// variant first and falling back to product-level stock. Stock never
// goes below zero.
func (p *Product) Deduct(size, color string, quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Quantity must be greater than zero")
	}

	if variant := p.findVariant(size, color); variant != nil {
		if variant.Stock < quantity {
			return shared.ErrInsufficientStock
		}
		variant.Stock -= quantity
		p.RecomputeStock()
		return nil
	}

	if p.Stock < quantity {
		return shared.ErrInsufficientStock
	}
	p.Stock -= quantity
	p.UpdatedAt = time.Now()
	return nil
}

// RecomputeStock resets product-level stock to the sum of variant stock.
// Called after every variant mutation and again before persisting.
func (p *Product) RecomputeStock() {
	if len(p.Variants) == 0 {
		return
	}
	total := 0
	for i := range p.Variants {
		total += p.Variants[i].Stock
	}
	p.Stock = total
	p.UpdatedAt = time.Now()
}

// HasVariant reports whether an exact (size, color) variant exists
func (p *Product) HasVariant(size, color string) bool {
	return p.findVariant(size, color) != nil
}

func (p *Product) findVariant(size, color string) *ProductVariant {
	for i := range p.Variants {
		if strings.EqualFold(p.Variants[i].Size, size) && strings.EqualFold(p.Variants[i].Color, color) {
			return &p.Variants[i]
		}
	}
	return nil
}

func validateProductCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_INPUT", "Product code cannot exceed 50 characters")
	}
	return nil
}

func validateProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_INPUT", "Product name cannot exceed 200 characters")
	}
	return nil
}
