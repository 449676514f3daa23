package catalog

import (
	"context"

	"github.com/storepos/backend/internal/domain/shared"
)

// ProductRepository defines the persistence contract for products
type ProductRepository interface {
	shared.Repository[Product]

	// FindByCode finds a product by its unique code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// FindByCodes loads multiple products by code in one query
	FindByCodes(ctx context.Context, codes []string) ([]Product, error)

	// SaveWithLock persists the product only if its version is unchanged.
	// Returns shared.ErrConcurrencyConflict when another writer got there first.
	SaveWithLock(ctx context.Context, product *Product) error
}
