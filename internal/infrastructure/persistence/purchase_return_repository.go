package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storepos/backend/internal/domain/purchase"
	"github.com/storepos/backend/internal/domain/shared"
)

// GormPurchaseReturnRepository implements PurchaseReturnRepository using GORM
type GormPurchaseReturnRepository struct {
	db *gorm.DB
}

// NewGormPurchaseReturnRepository creates a new GormPurchaseReturnRepository
func NewGormPurchaseReturnRepository(db *gorm.DB) *GormPurchaseReturnRepository {
	return &GormPurchaseReturnRepository{db: db}
}

// FindByID finds a purchase return with its items by ID
func (r *GormPurchaseReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchase.PurchaseReturn, error) {
	var ret purchase.PurchaseReturn
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&ret, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ret, nil
}

// FindAll finds all purchase returns matching the filter
func (r *GormPurchaseReturnRepository) FindAll(ctx context.Context, filter shared.Filter) ([]purchase.PurchaseReturn, error) {
	var returns []purchase.PurchaseReturn
	query := r.db.WithContext(ctx).Model(&purchase.PurchaseReturn{}).Preload("Items")
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("supplier_name LIKE ?", pattern)
	}
	query = applyFilter(query, filter)

	if err := query.Find(&returns).Error; err != nil {
		return nil, err
	}
	return returns, nil
}

// Save creates or updates a purchase return together with its items
func (r *GormPurchaseReturnRepository) Save(ctx context.Context, ret *purchase.PurchaseReturn) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(ret).Error
}

// Delete deletes a purchase return and its items
func (r *GormPurchaseReturnRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Delete(&purchase.PurchaseReturnItem{}, "purchase_return_id = ?", id).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&purchase.PurchaseReturn{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts purchase returns matching the filter
func (r *GormPurchaseReturnRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&purchase.PurchaseReturn{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("supplier_name LIKE ?", pattern)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormPurchaseReturnRepository implements PurchaseReturnRepository
var _ purchase.PurchaseReturnRepository = (*GormPurchaseReturnRepository)(nil)
