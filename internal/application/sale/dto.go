package sale

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storepos/backend/internal/domain/sale"
)

// SaleLineInput is one product position on an incoming sale
type SaleLineInput struct {
	ProductCode string           `json:"product_code"`
	Size        string           `json:"size"`
	Color       string           `json:"color"`
	Quantity    int              `json:"quantity"`
	Price       *decimal.Decimal `json:"price"`    // Nil means use the catalog price; zero is a free line
	Discount    decimal.Decimal  `json:"discount"` // Per-unit discount amount
}

// CreateSaleRequest is the input for creating a sale
type CreateSaleRequest struct {
	InvoiceNumber     string          `json:"invoice_number"`
	CustomerName      string          `json:"customer_name"`
	CustomerPhone     string          `json:"customer_phone"`
	SoldBy            string          `json:"sold_by"` // Staff barcode, optional
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	Discount          decimal.Decimal `json:"discount"` // Sale-level discount amount
	Lines             []SaleLineInput `json:"lines"`
	SaleDate          time.Time       `json:"sale_date"`
	IdempotencyKey    string          `json:"-"`
}

// UpdateSaleRequest is the input for editing a sale. Reason is mandatory
// and is appended to the sale's audit trail.
type UpdateSaleRequest struct {
	Reason       string          `json:"reason"`
	CustomerName string          `json:"customer_name"`
	Discount     decimal.Decimal `json:"discount"`
	Lines        []SaleLineInput `json:"lines"`
}

// ReturnedItemInput identifies one sold line position and the quantity
// coming back
type ReturnedItemInput struct {
	ProductCode string `json:"product_code"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	Quantity    int    `json:"quantity"`
}

// ReturnSaleRequest is the input for returning a sale. Empty returned
// items return every line in full; a nil refund amount refunds the full
// grand total. A zero return date means now.
type ReturnSaleRequest struct {
	ReturnedItems []ReturnedItemInput `json:"returned_items"`
	RefundAmount  *decimal.Decimal    `json:"refund_amount"`
	ReturnDate    time.Time           `json:"return_date"`
}

// SaleLineResponse is one priced line on a sale
type SaleLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Discount    decimal.Decimal `json:"discount"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// ReturnedItemResponse is one returned line position on a sale
type ReturnedItemResponse struct {
	ProductCode string    `json:"product_code"`
	Size        string    `json:"size,omitempty"`
	Color       string    `json:"color,omitempty"`
	Quantity    int       `json:"quantity"`
	ReturnDate  time.Time `json:"return_date"`
}

// EditReasonResponse is one audit note on a sale
type EditReasonResponse struct {
	Reason   string    `json:"reason"`
	EditedAt time.Time `json:"edited_at"`
}

// SaleResponse is the API representation of a sale
type SaleResponse struct {
	ID                uuid.UUID              `json:"id"`
	InvoiceNumber     string                 `json:"invoice_number"`
	CustomerName      string                 `json:"customer_name,omitempty"`
	CustomerPhone     string                 `json:"customer_phone,omitempty"`
	Lines             []SaleLineResponse     `json:"lines"`
	Discount          decimal.Decimal        `json:"discount"`
	TotalCost         decimal.Decimal        `json:"total_cost"`
	GrandTotal        decimal.Decimal        `json:"grand_total"`
	TotalProfit       decimal.Decimal        `json:"total_profit"`
	ProfitMargin      decimal.Decimal        `json:"profit_margin"`
	Status            string                 `json:"status"`
	TotalRefundAmount decimal.Decimal        `json:"total_refund_amount"`
	NetProfit         decimal.Decimal        `json:"net_profit"`
	ReturnedItems     []ReturnedItemResponse `json:"returned_items,omitempty"`
	ReturnedAt        *time.Time             `json:"returned_at,omitempty"`
	SoldBy            string                 `json:"sold_by,omitempty"`
	CommissionPercent decimal.Decimal        `json:"commission_percent"`
	CommissionAmount  decimal.Decimal        `json:"commission_amount"`
	EditReasons       []EditReasonResponse   `json:"edit_reasons,omitempty"`
	SaleDate          time.Time              `json:"sale_date"`
	CreatedAt         time.Time              `json:"created_at"`
}

// ProfitLossSummary aggregates financial figures across all sales
type ProfitLossSummary struct {
	TotalSales   int64           `json:"total_sales"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	TotalRefunds decimal.Decimal `json:"total_refunds"`
	NetProfit    decimal.Decimal `json:"net_profit"`
}

// ToSaleResponse converts a sale aggregate to its API representation
func ToSaleResponse(s *sale.Sale) SaleResponse {
	lines := make([]SaleLineResponse, 0, len(s.Lines))
	for i := range s.Lines {
		l := s.Lines[i]
		lines = append(lines, SaleLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductCode: l.ProductCode,
			ProductName: l.ProductName,
			Size:        l.Size,
			Color:       l.Color,
			Quantity:    l.Quantity,
			Price:       l.Price,
			CostPrice:   l.CostPrice,
			Discount:    l.Discount,
			TotalPrice:  l.TotalPrice,
		})
	}

	returned := make([]ReturnedItemResponse, 0, len(s.ReturnedItems))
	for i := range s.ReturnedItems {
		r := s.ReturnedItems[i]
		returned = append(returned, ReturnedItemResponse{
			ProductCode: r.ProductCode,
			Size:        r.Size,
			Color:       r.Color,
			Quantity:    r.Quantity,
			ReturnDate:  r.ReturnDate,
		})
	}

	reasons := make([]EditReasonResponse, 0, len(s.EditReasons))
	for i := range s.EditReasons {
		reasons = append(reasons, EditReasonResponse{
			Reason:   s.EditReasons[i].Reason,
			EditedAt: s.EditReasons[i].EditedAt,
		})
	}

	return SaleResponse{
		ID:                s.ID,
		InvoiceNumber:     s.InvoiceNumber,
		CustomerName:      s.CustomerName,
		CustomerPhone:     s.CustomerPhone,
		Lines:             lines,
		Discount:          s.Discount,
		TotalCost:         s.TotalCost,
		GrandTotal:        s.GrandTotal,
		TotalProfit:       s.TotalProfit,
		ProfitMargin:      s.ProfitMargin,
		Status:            string(s.Status),
		TotalRefundAmount: s.TotalRefundAmount,
		NetProfit:         s.NetProfit,
		ReturnedItems:     returned,
		ReturnedAt:        s.ReturnedAt,
		SoldBy:            s.SoldBy,
		CommissionPercent: s.CommissionPercent,
		CommissionAmount:  s.CommissionAmount,
		EditReasons:       reasons,
		SaleDate:          s.SaleDate,
		CreatedAt:         s.CreatedAt,
	}
}
