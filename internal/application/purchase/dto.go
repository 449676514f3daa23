package purchase

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storepos/backend/internal/domain/purchase"
)

// PurchaseItemInput is one received product position
type PurchaseItemInput struct {
	ProductCode string          `json:"product_code"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	Quantity    int             `json:"quantity"`
	CostPrice   decimal.Decimal `json:"cost_price"`
}

// BillImage is an uploaded supplier bill
type BillImage struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// CreatePurchaseRequest is the input for creating a purchase. Items and
// the aggregate quantity/cost pair are mutually exclusive line modes.
type CreatePurchaseRequest struct {
	SupplierName  string              `json:"supplier_name"`
	InvoiceNumber string              `json:"invoice_number"`
	Items         []PurchaseItemInput `json:"items"`
	TotalQuantity int                 `json:"total_quantity"`
	TotalCost     decimal.Decimal     `json:"total_cost"`
	PurchaseDate  time.Time           `json:"purchase_date"`
	BillImage     *BillImage          `json:"-"`
}

// UpdatePurchaseRequest edits supplier details. Stock is never re-run on
// update; corrections go through purchase returns.
type UpdatePurchaseRequest struct {
	SupplierName  string     `json:"supplier_name"`
	InvoiceNumber string     `json:"invoice_number"`
	PurchaseDate  time.Time  `json:"purchase_date"`
	BillImage     *BillImage `json:"-"`
}

// AddPaymentRequest records a supplier payment
type AddPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Note   string          `json:"note"`
}

// PurchaseReturnItemInput is one returned product position
type PurchaseReturnItemInput struct {
	ProductCode string          `json:"product_code"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	Quantity    int             `json:"quantity"`
	CostPrice   decimal.Decimal `json:"cost_price"`
}

// CreatePurchaseReturnRequest is the input for returning goods to a supplier
type CreatePurchaseReturnRequest struct {
	PurchaseID   *uuid.UUID                `json:"purchase_id"`
	SupplierName string                    `json:"supplier_name"`
	Reason       string                    `json:"reason"`
	Items        []PurchaseReturnItemInput `json:"items"`
	ReturnDate   time.Time                 `json:"return_date"`
}

// UpdatePurchaseReturnRequest replaces a return's items
type UpdatePurchaseReturnRequest struct {
	Reason string                    `json:"reason"`
	Items  []PurchaseReturnItemInput `json:"items"`
}

// PaymentResponse is one supplier payment on a purchase
type PaymentResponse struct {
	ID     uuid.UUID       `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method,omitempty"`
	Note   string          `json:"note,omitempty"`
	PaidAt time.Time       `json:"paid_at"`
}

// PurchaseItemResponse is one received item on a purchase
type PurchaseItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	Quantity    int             `json:"quantity"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Total       decimal.Decimal `json:"total"`
}

// PurchaseResponse is the API representation of a purchase
type PurchaseResponse struct {
	ID            uuid.UUID              `json:"id"`
	SupplierName  string                 `json:"supplier_name"`
	InvoiceNumber string                 `json:"invoice_number,omitempty"`
	Mode          string                 `json:"mode"`
	Items         []PurchaseItemResponse `json:"items,omitempty"`
	TotalQuantity int                    `json:"total_quantity"`
	GrandTotal    decimal.Decimal        `json:"grand_total"`
	Payments      []PaymentResponse      `json:"payments"`
	Paid          decimal.Decimal        `json:"paid"`
	Balance       decimal.Decimal        `json:"balance"`
	Status        string                 `json:"status"`
	BillImageURL  string                 `json:"bill_image_url,omitempty"`
	PurchaseDate  time.Time              `json:"purchase_date"`
	CreatedAt     time.Time              `json:"created_at"`
}

// PurchaseReturnItemResponse is one returned item
type PurchaseReturnItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	Quantity    int             `json:"quantity"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Total       decimal.Decimal `json:"total"`
}

// PurchaseReturnResponse is the API representation of a purchase return
type PurchaseReturnResponse struct {
	ID            uuid.UUID                    `json:"id"`
	PurchaseID    *uuid.UUID                   `json:"purchase_id,omitempty"`
	SupplierName  string                       `json:"supplier_name"`
	Items         []PurchaseReturnItemResponse `json:"items"`
	TotalQuantity int                          `json:"total_quantity"`
	TotalAmount   decimal.Decimal              `json:"total_amount"`
	Reason        string                       `json:"reason,omitempty"`
	ReturnDate    time.Time                    `json:"return_date"`
	CreatedAt     time.Time                    `json:"created_at"`
}

// ToPurchaseResponse converts a purchase aggregate to its API representation
func ToPurchaseResponse(p *purchase.Purchase) PurchaseResponse {
	items := make([]PurchaseItemResponse, 0, len(p.Items))
	for i := range p.Items {
		it := p.Items[i]
		items = append(items, PurchaseItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductCode: it.ProductCode,
			Size:        it.Size,
			Color:       it.Color,
			Quantity:    it.Quantity,
			CostPrice:   it.CostPrice,
			Total:       it.Total,
		})
	}

	payments := make([]PaymentResponse, 0, len(p.Payments))
	for i := range p.Payments {
		pay := p.Payments[i]
		payments = append(payments, PaymentResponse{
			ID:     pay.ID,
			Amount: pay.Amount,
			Method: pay.Method,
			Note:   pay.Note,
			PaidAt: pay.PaidAt,
		})
	}

	return PurchaseResponse{
		ID:            p.ID,
		SupplierName:  p.SupplierName,
		InvoiceNumber: p.InvoiceNumber,
		Mode:          string(p.Mode),
		Items:         items,
		TotalQuantity: p.TotalQuantity,
		GrandTotal:    p.GrandTotal,
		Payments:      payments,
		Paid:          p.Paid,
		Balance:       p.Balance,
		Status:        string(p.Status),
		BillImageURL:  p.BillImageURL,
		PurchaseDate:  p.PurchaseDate,
		CreatedAt:     p.CreatedAt,
	}
}

// ToPurchaseReturnResponse converts a purchase return to its API representation
func ToPurchaseReturnResponse(r *purchase.PurchaseReturn) PurchaseReturnResponse {
	items := make([]PurchaseReturnItemResponse, 0, len(r.Items))
	for i := range r.Items {
		it := r.Items[i]
		items = append(items, PurchaseReturnItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductCode: it.ProductCode,
			Size:        it.Size,
			Color:       it.Color,
			Quantity:    it.Quantity,
			CostPrice:   it.CostPrice,
			Total:       it.Total,
		})
	}

	return PurchaseReturnResponse{
		ID:            r.ID,
		PurchaseID:    r.PurchaseID,
		SupplierName:  r.SupplierName,
		Items:         items,
		TotalQuantity: r.TotalQuantity,
		TotalAmount:   r.TotalAmount,
		Reason:        r.Reason,
		ReturnDate:    r.ReturnDate,
		CreatedAt:     r.CreatedAt,
	}
}
