package purchase

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storepos/backend/internal/domain/shared"
)

// PurchaseStatus reflects how much of the purchase has been paid
type PurchaseStatus string

const (
	PurchaseStatusPending PurchaseStatus = "pending"
	PurchaseStatusPartial PurchaseStatus = "partial"
	PurchaseStatusPaid    PurchaseStatus = "paid"
)

// LineMode says how the purchase quantities were captured
type LineMode string

const (
	// LineModeItemized means per-product items with sizes and colors
	LineModeItemized LineMode = "itemized"
	// LineModeAggregate means a single total quantity and cost
	LineModeAggregate LineMode = "aggregate"
)

// Purchase is the aggregate root for a supplier purchase. Payments are
// append-only; paid and balance are always recomputed from the payment
// list, never stored independently.
type Purchase struct {
	shared.BaseAggregateRoot
	SupplierName  string          `gorm:"type:varchar(200);not null"`
	InvoiceNumber string          `gorm:"type:varchar(50);index"`
	Mode          LineMode        `gorm:"type:varchar(20);not null"`
	Items         []PurchaseItem  `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	TotalQuantity int             `gorm:"not null;default:0"`
	GrandTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Payments      []Payment       `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	Paid          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Balance       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status        PurchaseStatus  `gorm:"type:varchar(20);not null;default:'pending'"`
	BillImageURL  string          `gorm:"type:varchar(500)"`
	PurchaseDate  time.Time       `gorm:"not null;index"`
}

// PurchaseItem is a received product position on an itemized purchase
type PurchaseItem struct {
	shared.BaseEntity
	PurchaseID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductCode string          `gorm:"type:varchar(50);not null"`
	Size        string          `gorm:"type:varchar(50)"`
	Color       string          `gorm:"type:varchar(50)"`
	Quantity    int             `gorm:"not null"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// Payment is a single supplier payment record
type Payment struct {
	shared.BaseEntity
	PurchaseID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method     string          `gorm:"type:varchar(50)"`
	Note       string          `gorm:"type:text"`
	PaidAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Purchase) TableName() string {
	return "purchases"
}

// TableName returns the table name for GORM
func (PurchaseItem) TableName() string {
	return "purchase_items"
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "purchase_payments"
}

// NewItemizedPurchase creates a purchase from per-product items
func NewItemizedPurchase(supplierName, invoiceNumber string, items []PurchaseItem, purchaseDate time.Time) (*Purchase, error) {
	if strings.TrimSpace(supplierName) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier name cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.ErrEmptyProducts
	}

	totalQty := 0
	grandTotal := decimal.Zero
	for i := range items {
		if items[i].Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_INPUT", "Item quantity must be greater than zero")
		}
		if items[i].CostPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Item cost price cannot be negative")
		}
		items[i].Total = items[i].CostPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
		totalQty += items[i].Quantity
		grandTotal = grandTotal.Add(items[i].Total)
	}

	p := newPurchase(supplierName, invoiceNumber, LineModeItemized, purchaseDate)
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].BaseEntity = shared.NewBaseEntity()
		}
		items[i].PurchaseID = p.ID
	}
	p.Items = items
	p.TotalQuantity = totalQty
	p.GrandTotal = grandTotal
	p.RecalculatePayments()
	return p, nil
}

// NewAggregatePurchase creates a purchase from a single quantity and total cost
func NewAggregatePurchase(supplierName, invoiceNumber string, totalQuantity int, totalCost decimal.Decimal, purchaseDate time.Time) (*Purchase, error) {
	if strings.TrimSpace(supplierName) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier name cannot be empty")
	}
	if totalQuantity <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Total quantity must be greater than zero")
	}
	if totalCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Total cost cannot be negative")
	}

	p := newPurchase(supplierName, invoiceNumber, LineModeAggregate, purchaseDate)
	p.TotalQuantity = totalQuantity
	p.GrandTotal = totalCost
	p.RecalculatePayments()
	return p, nil
}

func newPurchase(supplierName, invoiceNumber string, mode LineMode, purchaseDate time.Time) *Purchase {
	if purchaseDate.IsZero() {
		purchaseDate = time.Now()
	}
	return &Purchase{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierName:      supplierName,
		InvoiceNumber:     invoiceNumber,
		Mode:              mode,
		PurchaseDate:      purchaseDate,
	}
}

// AddPayment appends a supplier payment and recomputes paid and balance.
// Zero and negative amounts are rejected.
func (p *Purchase) AddPayment(amount decimal.Decimal, method, note string) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidPaymentAmount
	}

	p.Payments = append(p.Payments, Payment{
		BaseEntity: shared.NewBaseEntity(),
		PurchaseID: p.ID,
		Amount:     amount,
		Method:     method,
		Note:       note,
		PaidAt:     time.Now(),
	})
	p.RecalculatePayments()
	return nil
}

// RecalculatePayments derives paid, balance and status from the payment
// list. Balance never goes below zero even when payments overshoot.
func (p *Purchase) RecalculatePayments() {
	paid := decimal.Zero
	for i := range p.Payments {
		paid = paid.Add(p.Payments[i].Amount)
	}
	p.Paid = paid

	balance := p.GrandTotal.Sub(paid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	p.Balance = balance

	switch {
	case paid.IsZero():
		p.Status = PurchaseStatusPending
	case balance.IsZero():
		p.Status = PurchaseStatusPaid
	default:
		p.Status = PurchaseStatusPartial
	}
	p.UpdatedAt = time.Now()
}

// SetBillImage records the uploaded bill image location
func (p *Purchase) SetBillImage(url string) {
	p.BillImageURL = url
	p.UpdatedAt = time.Now()
}

// UpdateDetails updates supplier fields without touching stock or payments
func (p *Purchase) UpdateDetails(supplierName, invoiceNumber string, purchaseDate time.Time) error {
	if strings.TrimSpace(supplierName) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Supplier name cannot be empty")
	}
	p.SupplierName = supplierName
	p.InvoiceNumber = invoiceNumber
	if !purchaseDate.IsZero() {
		p.PurchaseDate = purchaseDate
	}
	p.UpdatedAt = time.Now()
	return nil
}
