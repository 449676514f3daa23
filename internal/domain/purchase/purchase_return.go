package purchase

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storepos/backend/internal/domain/shared"
)

// PurchaseReturn records goods sent back to a supplier. Creating one
// deducts stock; editing or deleting one compensates the earlier
// deduction before applying the new state.
type PurchaseReturn struct {
	shared.BaseAggregateRoot
	PurchaseID    *uuid.UUID           `gorm:"type:uuid;index"`
	SupplierName  string               `gorm:"type:varchar(200);not null"`
	Items         []PurchaseReturnItem `gorm:"foreignKey:PurchaseReturnID;constraint:OnDelete:CASCADE"`
	TotalQuantity int                  `gorm:"not null;default:0"`
	TotalAmount   decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Reason        string               `gorm:"type:text"`
	ReturnDate    time.Time            `gorm:"not null;index"`
}

// PurchaseReturnItem is a returned product position
type PurchaseReturnItem struct {
	shared.BaseEntity
	PurchaseReturnID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductCode      string          `gorm:"type:varchar(50);not null"`
	Size             string          `gorm:"type:varchar(50)"`
	Color            string          `gorm:"type:varchar(50)"`
	Quantity         int             `gorm:"not null"`
	CostPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Total            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PurchaseReturn) TableName() string {
	return "purchase_returns"
}

// TableName returns the table name for GORM
func (PurchaseReturnItem) TableName() string {
	return "purchase_return_items"
}

// NewPurchaseReturn creates a purchase return from validated items
func NewPurchaseReturn(purchaseID *uuid.UUID, supplierName, reason string, items []PurchaseReturnItem, returnDate time.Time) (*PurchaseReturn, error) {
	if strings.TrimSpace(supplierName) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier name cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.ErrEmptyProducts
	}
	if returnDate.IsZero() {
		returnDate = time.Now()
	}

	r := &PurchaseReturn{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PurchaseID:        purchaseID,
		SupplierName:      supplierName,
		Reason:            reason,
		ReturnDate:        returnDate,
	}
	if err := r.setItems(items); err != nil {
		return nil, err
	}
	return r, nil
}

// ReplaceItems swaps the return's items and recomputes its totals.
// Stock compensation for the old items is the caller's responsibility.
func (r *PurchaseReturn) ReplaceItems(items []PurchaseReturnItem) error {
	if len(items) == 0 {
		return shared.ErrEmptyProducts
	}
	if err := r.setItems(items); err != nil {
		return err
	}
	r.UpdatedAt = time.Now()
	return nil
}

func (r *PurchaseReturn) setItems(items []PurchaseReturnItem) error {
	totalQty := 0
	totalAmount := decimal.Zero
	for i := range items {
		if items[i].Quantity <= 0 {
			return shared.NewDomainError("INVALID_INPUT", "Return quantity must be greater than zero")
		}
		if items[i].CostPrice.IsNegative() {
			return shared.NewDomainError("INVALID_INPUT", "Return cost price cannot be negative")
		}
		items[i].Total = items[i].CostPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
		totalQty += items[i].Quantity
		totalAmount = totalAmount.Add(items[i].Total)
	}

	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].BaseEntity = shared.NewBaseEntity()
		}
		items[i].PurchaseReturnID = r.ID
	}
	r.Items = items
	r.TotalQuantity = totalQty
	r.TotalAmount = totalAmount
	return nil
}
