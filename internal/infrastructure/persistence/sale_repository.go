package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storepos/backend/internal/domain/sale"
	"github.com/storepos/backend/internal/domain/shared"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale with its lines, returns and edit history by ID
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	var s sale.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("ReturnedItems").
		Preload("EditReasons").
		First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByInvoiceNumber finds a sale by its invoice number
func (r *GormSaleRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*sale.Sale, error) {
	var s sale.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("ReturnedItems").
		Preload("EditReasons").
		First(&s, "invoice_number = ?", invoiceNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindAll finds all sales matching the filter
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sale.Sale, error) {
	var sales []sale.Sale
	query := r.db.WithContext(ctx).Model(&sale.Sale{}).Preload("Lines")
	query = r.applySearch(query, filter)
	query = applyFilter(query, filter)

	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// Save creates or updates a sale together with its lines
func (r *GormSaleRepository) Save(ctx context.Context, s *sale.Sale) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(s).Error
}

// Delete deletes a sale and its child rows
func (r *GormSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&sale.SaleLine{}, "sale_id = ?", id).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&sale.ReturnedItem{}, "sale_id = ?", id).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&sale.EditReason{}, "sale_id = ?", id).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&sale.Sale{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts sales matching the filter
func (r *GormSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&sale.Sale{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// saleSummaryRow is the scan target for the summary aggregation
type saleSummaryRow struct {
	Count        int64
	TotalRevenue decimal.Decimal
	TotalCost    decimal.Decimal
	TotalProfit  decimal.Decimal
	TotalRefunds decimal.Decimal
	NetProfit    decimal.Decimal
}

// Summarize aggregates revenue, cost, profit and refunds across all sales
func (r *GormSaleRepository) Summarize(ctx context.Context) (sale.Summary, error) {
	var row saleSummaryRow
	err := r.db.WithContext(ctx).Model(&sale.Sale{}).
		Select(`COUNT(*) AS count,
			COALESCE(SUM(grand_total), 0) AS total_revenue,
			COALESCE(SUM(total_cost), 0) AS total_cost,
			COALESCE(SUM(total_profit), 0) AS total_profit,
			COALESCE(SUM(total_refund_amount), 0) AS total_refunds,
			COALESCE(SUM(total_profit - total_refund_amount), 0) AS net_profit`).
		Scan(&row).Error
	if err != nil {
		return sale.Summary{}, err
	}

	return sale.Summary{
		Count:        row.Count,
		TotalRevenue: row.TotalRevenue,
		TotalCost:    row.TotalCost,
		TotalProfit:  row.TotalProfit,
		TotalRefunds: row.TotalRefunds,
		NetProfit:    row.NetProfit,
	}, nil
}

// applySearch applies the search term and known filter keys
func (r *GormSaleRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number LIKE ? OR customer_name LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "sold_by":
			query = query.Where("sold_by = ?", value)
		case "from":
			query = query.Where("sale_date >= ?", value)
		case "to":
			query = query.Where("sale_date <= ?", value)
		}
	}
	return query
}

// Ensure GormSaleRepository implements SaleRepository
var _ sale.SaleRepository = (*GormSaleRepository)(nil)
