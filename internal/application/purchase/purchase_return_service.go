package purchase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storepos/backend/internal/application"
	"github.com/storepos/backend/internal/domain/catalog"
	"github.com/storepos/backend/internal/domain/purchase"
	"github.com/storepos/backend/internal/domain/shared"
)

// PurchaseReturnService handles goods sent back to suppliers. Every
// operation compensates stock in the same transaction that touches the
// return record: create deducts, delete restores, update reverses the
// old items before applying the new ones.
type PurchaseReturnService struct {
	scope      application.TransactionScope
	returnRepo purchase.PurchaseReturnRepository
	logger     *zap.Logger
}

// NewPurchaseReturnService creates a new PurchaseReturnService
func NewPurchaseReturnService(
	scope application.TransactionScope,
	returnRepo purchase.PurchaseReturnRepository,
	logger *zap.Logger,
) *PurchaseReturnService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseReturnService{
		scope:      scope,
		returnRepo: returnRepo,
		logger:     logger,
	}
}

// Create records a purchase return and deducts the returned stock
func (s *PurchaseReturnService) Create(ctx context.Context, req CreatePurchaseReturnRequest) (*PurchaseReturnResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.ErrEmptyProducts
	}

	var created *purchase.PurchaseReturn
	err := s.withConflictRetry(ctx, func(repos application.TransactionalRepositories) error {
		items, err := s.deductItems(ctx, repos, req.Items)
		if err != nil {
			return err
		}

		r, err := purchase.NewPurchaseReturn(req.PurchaseID, req.SupplierName, req.Reason, items, req.ReturnDate)
		if err != nil {
			return err
		}
		if err := repos.PurchaseReturns().Save(ctx, r); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := ToPurchaseReturnResponse(created)
	return &resp, nil
}

// Update replaces the returned items: the old quantities go back to
// stock first, then the new ones are deducted
func (s *PurchaseReturnService) Update(ctx context.Context, id uuid.UUID, req UpdatePurchaseReturnRequest) (*PurchaseReturnResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.ErrEmptyProducts
	}

	var updated *purchase.PurchaseReturn
	err := s.withConflictRetry(ctx, func(repos application.TransactionalRepositories) error {
		current, err := repos.PurchaseReturns().FindByID(ctx, id)
		if err != nil {
			return err
		}

		if err := s.restoreItems(ctx, repos, current.Items); err != nil {
			return err
		}

		items, err := s.deductItems(ctx, repos, req.Items)
		if err != nil {
			return err
		}

		if err := current.ReplaceItems(items); err != nil {
			return err
		}
		if req.Reason != "" {
			current.Reason = req.Reason
		}
		if err := repos.PurchaseReturns().Save(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := ToPurchaseReturnResponse(updated)
	return &resp, nil
}

// Delete removes a purchase return and restores the deducted stock
func (s *PurchaseReturnService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.withConflictRetry(ctx, func(repos application.TransactionalRepositories) error {
		current, err := repos.PurchaseReturns().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.restoreItems(ctx, repos, current.Items); err != nil {
			return err
		}
		return repos.PurchaseReturns().Delete(ctx, id)
	})
}

// Get returns a purchase return by ID
func (s *PurchaseReturnService) Get(ctx context.Context, id uuid.UUID) (*PurchaseReturnResponse, error) {
	found, err := s.returnRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseReturnResponse(found)
	return &resp, nil
}

// List returns purchase returns matching the filter
func (s *PurchaseReturnService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[PurchaseReturnResponse], error) {
	returns, err := s.returnRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.returnRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]PurchaseReturnResponse, 0, len(returns))
	for i := range returns {
		items = append(items, ToPurchaseReturnResponse(&returns[i]))
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// deductItems removes returned quantities from stock, variant-exact with
// fallback to product-level stock
func (s *PurchaseReturnService) deductItems(ctx context.Context, repos application.TransactionalRepositories, inputs []PurchaseReturnItemInput) ([]purchase.PurchaseReturnItem, error) {
	byCode := make(map[string]*catalog.Product)
	var touched []*catalog.Product
	items := make([]purchase.PurchaseReturnItem, 0, len(inputs))

	for _, in := range inputs {
		product, ok := byCode[in.ProductCode]
		if !ok {
			var err error
			product, err = repos.Products().FindByCode(ctx, in.ProductCode)
			if err != nil {
				return nil, err
			}
			byCode[in.ProductCode] = product
			touched = append(touched, product)
		}
		if err := product.Deduct(in.Size, in.Color, in.Quantity); err != nil {
			return nil, err
		}

		items = append(items, purchase.PurchaseReturnItem{
			ProductID:   product.ID,
			ProductCode: product.Code,
			Size:        in.Size,
			Color:       in.Color,
			Quantity:    in.Quantity,
			CostPrice:   in.CostPrice,
		})
	}

	for _, p := range touched {
		if err := repos.Products().SaveWithLock(ctx, p); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// restoreItems puts previously returned quantities back into stock.
// Products that have since been deleted are skipped.
func (s *PurchaseReturnService) restoreItems(ctx context.Context, repos application.TransactionalRepositories, items []purchase.PurchaseReturnItem) error {
	byCode := make(map[string]*catalog.Product)
	var touched []*catalog.Product

	for i := range items {
		product, ok := byCode[items[i].ProductCode]
		if !ok {
			var err error
			product, err = repos.Products().FindByCode(ctx, items[i].ProductCode)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					s.logger.Warn("product missing during return reversal",
						zap.String("product_code", items[i].ProductCode))
					continue
				}
				return err
			}
			byCode[items[i].ProductCode] = product
			touched = append(touched, product)
		}
		if err := product.Release(items[i].Size, items[i].Color, items[i].Quantity); err != nil {
			return err
		}
	}

	for _, p := range touched {
		if err := repos.Products().SaveWithLock(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *PurchaseReturnService) withConflictRetry(ctx context.Context, fn func(repos application.TransactionalRepositories) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = s.scope.Execute(ctx, fn)
		if err == nil || !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
		s.logger.Debug("retrying after concurrency conflict", zap.Int("attempt", attempt+1))
	}
	return err
}
