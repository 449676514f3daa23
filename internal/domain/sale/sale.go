package sale

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storepos/backend/internal/domain/shared"
)

// SaleStatus represents the lifecycle state of a sale
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusReturned  SaleStatus = "returned"
)

// Sale is the aggregate root for a point-of-sale transaction. Lines are
// priced once at creation and the financial fields are derived from them;
// a return keeps the original figures and records the refund separately.
type Sale struct {
	shared.BaseAggregateRoot
	InvoiceNumber     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerName      string          `gorm:"type:varchar(200)"`
	CustomerPhone     string          `gorm:"type:varchar(50)"`
	Lines             []SaleLine      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Discount          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Sale-level discount amount
	TotalCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalProfit       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ProfitMargin      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Percentage, 0 when grand total is 0
	Status            SaleStatus      `gorm:"type:varchar(20);not null;default:'completed'"`
	TotalRefundAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	NetProfit         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReturnedItems     []ReturnedItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	ReturnedAt        *time.Time
	SoldBy            string          `gorm:"type:varchar(50);index"` // Staff barcode, empty for walk-in counter sales
	CommissionPercent decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CommissionAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	EditReasons       []EditReason    `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	SaleDate          time.Time       `gorm:"not null;index"`
}

// SaleLine is a single product position on a sale
type SaleLine struct {
	shared.BaseEntity
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductCode string          `gorm:"type:varchar(50);not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Size        string          `gorm:"type:varchar(50)"`
	Color       string          `gorm:"type:varchar(50)"`
	Quantity    int             `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null"`           // Selling price per unit
	CostPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`           // Cost per unit at time of sale
	Discount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Per-unit discount amount
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// ReturnedItem records one returned line position and its quantity
type ReturnedItem struct {
	shared.BaseEntity
	SaleID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductCode string    `gorm:"type:varchar(50);not null"`
	Size        string    `gorm:"type:varchar(50)"`
	Color       string    `gorm:"type:varchar(50)"`
	Quantity    int       `gorm:"not null"`
	ReturnDate  time.Time `gorm:"not null"`
}

// EditReason is an append-only audit note attached when a sale is edited
type EditReason struct {
	shared.BaseEntity
	SaleID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Reason   string    `gorm:"type:text;not null"`
	EditedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// TableName returns the table name for GORM
func (SaleLine) TableName() string {
	return "sale_lines"
}

// TableName returns the table name for GORM
func (ReturnedItem) TableName() string {
	return "sale_returned_items"
}

// TableName returns the table name for GORM
func (EditReason) TableName() string {
	return "sale_edit_reasons"
}

// NewSale creates a sale from validated lines and prices it
func NewSale(invoiceNumber, customerName, customerPhone, soldBy string, lines []SaleLine, discount decimal.Decimal, saleDate time.Time) (*Sale, error) {
	if strings.TrimSpace(invoiceNumber) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice number cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.ErrEmptyProducts
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Discount cannot be negative")
	}
	for i := range lines {
		if lines[i].Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_INPUT", "Line quantity must be greater than zero")
		}
		if lines[i].Price.IsNegative() || lines[i].Discount.IsNegative() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Line price and discount cannot be negative")
		}
	}
	if saleDate.IsZero() {
		saleDate = time.Now()
	}

	s := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		CustomerName:      customerName,
		CustomerPhone:     customerPhone,
		SoldBy:            soldBy,
		Discount:          discount,
		Status:            SaleStatusCompleted,
		SaleDate:          saleDate,
	}

	totals := ComputeTotals(lines, discount)
	for i := range lines {
		if lines[i].ID == uuid.Nil {
			lines[i].BaseEntity = shared.NewBaseEntity()
		}
		lines[i].SaleID = s.ID
	}
	s.Lines = lines
	s.applyTotals(totals)

	return s, nil
}

// ReplaceLines swaps the sale's lines and discount and reprices it.
// Used by edits; the caller records the edit reason separately.
func (s *Sale) ReplaceLines(lines []SaleLine, discount decimal.Decimal) error {
	if len(lines) == 0 {
		return shared.ErrEmptyProducts
	}
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Discount cannot be negative")
	}

	totals := ComputeTotals(lines, discount)
	for i := range lines {
		if lines[i].ID == uuid.Nil {
			lines[i].BaseEntity = shared.NewBaseEntity()
		}
		lines[i].SaleID = s.ID
	}
	s.Lines = lines
	s.Discount = discount
	s.applyTotals(totals)
	s.UpdatedAt = time.Now()
	return nil
}

// MarkReturned records a return of the given items with the refund amount.
// Every returned item must match a sale line, the returned quantities per
// line cannot exceed the sold quantity and the refund cannot exceed the
// grand total. A sale can only be returned once.
func (s *Sale) MarkReturned(returned []ReturnedItem, refundAmount decimal.Decimal, returnDate time.Time) error {
	if s.Status == SaleStatusReturned {
		return shared.ErrInvalidState
	}
	if refundAmount.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Refund amount cannot be negative")
	}
	if refundAmount.GreaterThan(s.GrandTotal) {
		return shared.NewDomainError("INVALID_INPUT", "Refund amount cannot exceed the grand total")
	}
	if len(returned) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Returned items cannot be empty")
	}

	counted := make(map[lineKey]int)
	for i := range returned {
		if returned[i].Quantity <= 0 {
			return shared.NewDomainError("INVALID_INPUT", "Returned quantity must be greater than zero")
		}
		counted[keyOf(returned[i].ProductCode, returned[i].Size, returned[i].Color)] += returned[i].Quantity
	}
	for key, qty := range counted {
		line := s.findLine(key)
		if line == nil {
			return shared.NewDomainError("INVALID_INPUT", "Returned item does not match any sale line")
		}
		if qty > line.Quantity {
			return shared.NewDomainError("INVALID_INPUT", "Returned quantity exceeds the sold quantity")
		}
	}

	if returnDate.IsZero() {
		returnDate = time.Now()
	}
	for i := range returned {
		if returned[i].ID == uuid.Nil {
			returned[i].BaseEntity = shared.NewBaseEntity()
		}
		returned[i].SaleID = s.ID
		returned[i].ReturnDate = returnDate
	}

	s.ReturnedItems = returned
	s.Status = SaleStatusReturned
	s.TotalRefundAmount = refundAmount
	s.NetProfit = s.TotalProfit.Sub(refundAmount)
	s.ReturnedAt = &returnDate
	s.UpdatedAt = time.Now()
	return nil
}

// AllItemsReturned builds returned items covering every line in full
func (s *Sale) AllItemsReturned() []ReturnedItem {
	items := make([]ReturnedItem, 0, len(s.Lines))
	for i := range s.Lines {
		items = append(items, ReturnedItem{
			ProductCode: s.Lines[i].ProductCode,
			Size:        s.Lines[i].Size,
			Color:       s.Lines[i].Color,
			Quantity:    s.Lines[i].Quantity,
		})
	}
	return items
}

// OutstandingLines returns the line positions still held by the customer,
// net of any returned quantities.
func (s *Sale) OutstandingLines() []SaleLine {
	returnedQty := make(map[lineKey]int)
	for i := range s.ReturnedItems {
		r := s.ReturnedItems[i]
		returnedQty[keyOf(r.ProductCode, r.Size, r.Color)] += r.Quantity
	}

	var outstanding []SaleLine
	for i := range s.Lines {
		l := s.Lines[i]
		remaining := l.Quantity - returnedQty[keyOf(l.ProductCode, l.Size, l.Color)]
		if remaining > 0 {
			l.Quantity = remaining
			outstanding = append(outstanding, l)
		}
	}
	return outstanding
}

type lineKey struct {
	code  string
	size  string
	color string
}

func keyOf(code, size, color string) lineKey {
	return lineKey{code: code, size: size, color: color}
}

func (s *Sale) findLine(key lineKey) *SaleLine {
	for i := range s.Lines {
		if keyOf(s.Lines[i].ProductCode, s.Lines[i].Size, s.Lines[i].Color) == key {
			return &s.Lines[i]
		}
	}
	return nil
}

// SetCommission records the commission applied for this sale
func (s *Sale) SetCommission(percent, amount decimal.Decimal) {
	s.CommissionPercent = percent
	s.CommissionAmount = amount
}

// AppendEditReason adds an audit note for a sale edit
func (s *Sale) AppendEditReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Edit reason cannot be empty")
	}
	s.EditReasons = append(s.EditReasons, EditReason{
		BaseEntity: shared.NewBaseEntity(),
		SaleID:     s.ID,
		Reason:     reason,
		EditedAt:   time.Now(),
	})
	return nil
}

// IsReturned reports whether the sale has been returned
func (s *Sale) IsReturned() bool {
	return s.Status == SaleStatusReturned
}

func (s *Sale) applyTotals(t Totals) {
	s.TotalCost = t.TotalCost
	s.GrandTotal = t.GrandTotal
	s.TotalProfit = t.TotalProfit
	s.ProfitMargin = t.ProfitMargin
	if s.Status != SaleStatusReturned {
		s.NetProfit = t.TotalProfit
	}
}
