package purchase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storepos/backend/internal/application"
	"github.com/storepos/backend/internal/domain/catalog"
	"github.com/storepos/backend/internal/domain/purchase"
	"github.com/storepos/backend/internal/domain/shared"
)

const maxConflictRetries = 3

// BillImageStore uploads supplier bill images and returns a public URL
type BillImageStore interface {
	Upload(ctx context.Context, filename, contentType string, content io.Reader) (string, error)
}

// PurchaseService orchestrates purchase transactions: stock receipt and
// purchase persistence happen inside one database transaction. The bill
// image is uploaded before any stock effect so an upload failure aborts
// the whole operation cleanly.
type PurchaseService struct {
	scope        application.TransactionScope
	purchaseRepo purchase.PurchaseRepository
	billImages   BillImageStore
	logger       *zap.Logger
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(
	scope application.TransactionScope,
	purchaseRepo purchase.PurchaseRepository,
	logger *zap.Logger,
) *PurchaseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseService{
		scope:        scope,
		purchaseRepo: purchaseRepo,
		logger:       logger,
	}
}

// SetBillImageStore enables bill image uploads on create and update
func (s *PurchaseService) SetBillImageStore(store BillImageStore) {
	s.billImages = store
}

// Create creates a purchase. Itemized purchases receive stock per line,
// creating missing variants; aggregate purchases record totals only.
func (s *PurchaseService) Create(ctx context.Context, req CreatePurchaseRequest) (*PurchaseResponse, error) {
	if len(req.Items) == 0 && req.TotalQuantity <= 0 {
		return nil, shared.ErrEmptyProducts
	}

	billURL, err := s.uploadBillImage(ctx, req.BillImage)
	if err != nil {
		return nil, err
	}

	var created *purchase.Purchase
	err = s.withConflictRetry(ctx, func(repos application.TransactionalRepositories) error {
		var p *purchase.Purchase
		if len(req.Items) > 0 {
			items, err := s.receiveItems(ctx, repos, req.Items)
			if err != nil {
				return err
			}
			p, err = purchase.NewItemizedPurchase(req.SupplierName, req.InvoiceNumber, items, req.PurchaseDate)
			if err != nil {
				return err
			}
		} else {
			var err error
			p, err = purchase.NewAggregatePurchase(req.SupplierName, req.InvoiceNumber,
				req.TotalQuantity, req.TotalCost, req.PurchaseDate)
			if err != nil {
				return err
			}
		}

		if billURL != "" {
			p.SetBillImage(billURL)
		}
		if err := repos.Purchases().Save(ctx, p); err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := ToPurchaseResponse(created)
	return &resp, nil
}

// AddPayment appends a supplier payment and recomputes paid and balance
func (s *PurchaseService) AddPayment(ctx context.Context, id uuid.UUID, req AddPaymentRequest) (*PurchaseResponse, error) {
	var updated *purchase.Purchase
	err := s.scope.Execute(ctx, func(repos application.TransactionalRepositories) error {
		current, err := repos.Purchases().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := current.AddPayment(req.Amount, req.Method, req.Note); err != nil {
			return err
		}
		if err := repos.Purchases().Save(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := ToPurchaseResponse(updated)
	return &resp, nil
}

// Update edits supplier details and optionally replaces the bill image.
// Stock is deliberately not re-run; corrections go through returns.
func (s *PurchaseService) Update(ctx context.Context, id uuid.UUID, req UpdatePurchaseRequest) (*PurchaseResponse, error) {
	billURL, err := s.uploadBillImage(ctx, req.BillImage)
	if err != nil {
		return nil, err
	}

	var updated *purchase.Purchase
	err = s.scope.Execute(ctx, func(repos application.TransactionalRepositories) error {
		current, err := repos.Purchases().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := current.UpdateDetails(req.SupplierName, req.InvoiceNumber, req.PurchaseDate); err != nil {
			return err
		}
		if billURL != "" {
			current.SetBillImage(billURL)
		}
		if err := repos.Purchases().Save(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := ToPurchaseResponse(updated)
	return &resp, nil
}

// Delete removes a purchase record without touching stock
func (s *PurchaseService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.purchaseRepo.Delete(ctx, id)
}

// Get returns a purchase by ID
func (s *PurchaseService) Get(ctx context.Context, id uuid.UUID) (*PurchaseResponse, error) {
	found, err := s.purchaseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseResponse(found)
	return &resp, nil
}

// List returns purchases matching the filter
func (s *PurchaseService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[PurchaseResponse], error) {
	purchases, err := s.purchaseRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.purchaseRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		items = append(items, ToPurchaseResponse(&purchases[i]))
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// receiveItems adds purchased stock to each product and returns the
// purchase items with resolved product IDs
func (s *PurchaseService) receiveItems(ctx context.Context, repos application.TransactionalRepositories, inputs []PurchaseItemInput) ([]purchase.PurchaseItem, error) {
	byCode := make(map[string]*catalog.Product)
	var touched []*catalog.Product
	items := make([]purchase.PurchaseItem, 0, len(inputs))

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
		if err := product.Receive(in.Size, in.Color, in.Quantity, in.CostPrice); err != nil {
			return nil, err
		}

		items = append(items, purchase.PurchaseItem{
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

// uploadBillImage pushes the bill to object storage before any stock
// effect. An upload failure is an upstream failure and aborts the call.
func (s *PurchaseService) uploadBillImage(ctx context.Context, img *BillImage) (string, error) {
	if img == nil {
		return "", nil
	}
	if s.billImages == nil {
		return "", shared.NewDomainError("UPSTREAM_FAILURE", "Bill image storage is not configured")
	}
	url, err := s.billImages.Upload(ctx, img.Filename, img.ContentType, img.Content)
	if err != nil {
		s.logger.Error("bill image upload failed", zap.String("filename", img.Filename), zap.Error(err))
		return "", shared.NewDomainError("UPSTREAM_FAILURE", fmt.Sprintf("Bill image upload failed: %v", err))
	}
	return url, nil
}

func (s *PurchaseService) withConflictRetry(ctx context.Context, fn func(repos application.TransactionalRepositories) error) error {
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
