package sale

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storepos/backend/internal/application"
	"github.com/storepos/backend/internal/domain/catalog"
	"github.com/storepos/backend/internal/domain/identity"
	"github.com/storepos/backend/internal/domain/sale"
	"github.com/storepos/backend/internal/domain/shared"
)

// maxConflictRetries bounds how often a sale is retried after losing an
// optimistic-lock race on a product.
const maxConflictRetries = 3

// SaleService orchestrates sale transactions: stock reservation, pricing,
// commission and persistence happen inside one database transaction.
type SaleService struct {
	scope       application.TransactionScope
	saleRepo    sale.SaleRepository
	commissions *identity.CommissionEngine
	idempotency shared.IdempotencyStore
	idemCfg     shared.IdempotencyConfig
	logger      *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(
	scope application.TransactionScope,
	saleRepo sale.SaleRepository,
	commissions *identity.CommissionEngine,
	logger *zap.Logger,
) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		scope:       scope,
		saleRepo:    saleRepo,
		commissions: commissions,
		idemCfg:     shared.DefaultIdempotencyConfig(),
		logger:      logger,
	}
}

// SetIdempotencyStore enables duplicate-submit protection for CreateSale
func (s *SaleService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotency = store
	s.idemCfg = cfg
}

// Create creates a sale: reserves stock for every line, prices the sale,
// applies commission and persists everything atomically. A conflicting
// concurrent writer triggers a bounded retry with fresh product state.
func (s *SaleService) Create(ctx context.Context, req CreateSaleRequest) (*SaleResponse, error) {
	if len(req.Lines) == 0 {
		return nil, shared.ErrEmptyProducts
	}

	if req.IdempotencyKey != "" && s.idempotency != nil && s.idemCfg.Enabled {
		seen, err := s.idempotency.IsProcessed(ctx, req.IdempotencyKey)
		if err != nil {
			s.logger.Warn("idempotency check failed, continuing without it",
				zap.String("key", req.IdempotencyKey), zap.Error(err))
		} else if seen {
			return nil, shared.ErrAlreadyExists
		}
	}

	var created *sale.Sale
	err := s.withConflictRetry(ctx, func(repos application.TransactionalRepositories) error {
		lines, products, err := s.reserveLines(ctx, repos, req.Lines)
		if err != nil {
			return err
		}

		newSale, err := sale.NewSale(req.InvoiceNumber, req.CustomerName, req.CustomerPhone,
			req.SoldBy, lines, req.Discount, req.SaleDate)
		if err != nil {
			return err
		}

		for _, p := range products {
			if err := repos.Products().SaveWithLock(ctx, p); err != nil {
				return err
			}
		}

		s.applyCommission(ctx, repos, newSale, req.CommissionPercent)

		if err := repos.Sales().Save(ctx, newSale); err != nil {
			return err
		}
		created = newSale
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" && s.idempotency != nil && s.idemCfg.Enabled {
		if _, err := s.idempotency.MarkProcessed(ctx, req.IdempotencyKey, s.idemCfg.TTL); err != nil {
			s.logger.Warn("failed to record idempotency key",
				zap.String("key", req.IdempotencyKey), zap.Error(err))
		}
	}

	resp := ToSaleResponse(created)
	return &resp, nil
}

// Return marks a sale returned, restores stock for exactly the returned
// quantities and reverses the commission, all in one transaction. Empty
// returned items return every line in full. Returning twice fails.
func (s *SaleService) Return(ctx context.Context, id uuid.UUID, req ReturnSaleRequest) (*SaleResponse, error) {
	var returned *sale.Sale
	err := s.withConflictRetry(ctx, func(repos application.TransactionalRepositories) error {
		current, err := repos.Sales().FindByID(ctx, id)
		if err != nil {
			return err
		}

		refund := current.GrandTotal
		if req.RefundAmount != nil {
			refund = *req.RefundAmount
		}

		items := make([]sale.ReturnedItem, 0, len(req.ReturnedItems))
		for _, in := range req.ReturnedItems {
			items = append(items, sale.ReturnedItem{
				ProductCode: in.ProductCode,
				Size:        in.Size,
				Color:       in.Color,
				Quantity:    in.Quantity,
			})
		}
		if len(items) == 0 {
			items = current.AllItemsReturned()
		}

		if err := current.MarkReturned(items, refund, req.ReturnDate); err != nil {
			return err
		}

		if err := s.releaseReturnedItems(ctx, repos, current.ReturnedItems); err != nil {
			return err
		}

		s.reverseCommission(ctx, repos, current)

		if err := repos.Sales().Save(ctx, current); err != nil {
			return err
		}
		returned = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := ToSaleResponse(returned)
	return &resp, nil
}

// Update edits a sale's lines with a mandatory audit reason. Old stock
// is released and the new lines are reserved within the same transaction.
func (s *SaleService) Update(ctx context.Context, id uuid.UUID, req UpdateSaleRequest) (*SaleResponse, error) {
	if req.Reason == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Edit reason is required")
	}
	if len(req.Lines) == 0 {
		return nil, shared.ErrEmptyProducts
	}

	var updated *sale.Sale
	err := s.withConflictRetry(ctx, func(repos application.TransactionalRepositories) error {
		current, err := repos.Sales().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if current.IsReturned() {
			return shared.ErrInvalidState
		}

		if err := s.releaseLines(ctx, repos, current.Lines); err != nil {
			return err
		}

		lines, products, err := s.reserveLines(ctx, repos, req.Lines)
		if err != nil {
			return err
		}
		for _, p := range products {
			if err := repos.Products().SaveWithLock(ctx, p); err != nil {
				return err
			}
		}

		if err := current.ReplaceLines(lines, req.Discount); err != nil {
			return err
		}
		if req.CustomerName != "" {
			current.CustomerName = req.CustomerName
		}
		if err := current.AppendEditReason(req.Reason); err != nil {
			return err
		}

		if err := repos.Sales().Save(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := ToSaleResponse(updated)
	return &resp, nil
}

// Delete removes a sale. Quantities the customer still holds go back to
// stock; quantities already returned were restored at return time. The
// commission is reversed unless the return reversed it earlier.
func (s *SaleService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.withConflictRetry(ctx, func(repos application.TransactionalRepositories) error {
		current, err := repos.Sales().FindByID(ctx, id)
		if err != nil {
			return err
		}

		if outstanding := current.OutstandingLines(); len(outstanding) > 0 {
			if err := s.releaseLines(ctx, repos, outstanding); err != nil {
				return err
			}
		}
		if !current.IsReturned() {
			s.reverseCommission(ctx, repos, current)
		}

		return repos.Sales().Delete(ctx, id)
	})
}

// Get returns a sale by ID
func (s *SaleService) Get(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	found, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(found)
	return &resp, nil
}

// List returns sales matching the filter, newest first by default
func (s *SaleService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[SaleResponse], error) {
	sales, err := s.saleRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.saleRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, ToSaleResponse(&sales[i]))
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Summary returns the profit and loss figures across all sales
func (s *SaleService) Summary(ctx context.Context) (*ProfitLossSummary, error) {
	sum, err := s.saleRepo.Summarize(ctx)
	if err != nil {
		return nil, err
	}
	return &ProfitLossSummary{
		TotalSales:   sum.Count,
		TotalRevenue: sum.TotalRevenue,
		TotalCost:    sum.TotalCost,
		TotalProfit:  sum.TotalProfit,
		TotalRefunds: sum.TotalRefunds,
		NetProfit:    sum.NetProfit,
	}, nil
}

// reserveLines loads every product once, reserves stock for each line and
// returns the priced sale lines plus the touched products for saving.
func (s *SaleService) reserveLines(ctx context.Context, repos application.TransactionalRepositories, inputs []SaleLineInput) ([]sale.SaleLine, []*catalog.Product, error) {
	byCode := make(map[string]*catalog.Product)
	var touched []*catalog.Product

	lines := make([]sale.SaleLine, 0, len(inputs))
	for _, in := range inputs {
		product, ok := byCode[in.ProductCode]
		if !ok {
			var err error
			product, err = repos.Products().FindByCode(ctx, in.ProductCode)
			if err != nil {
				return nil, nil, err
			}
			byCode[in.ProductCode] = product
			touched = append(touched, product)
		}

		if err := product.Reserve(in.Size, in.Color, in.Quantity); err != nil {
			return nil, nil, err
		}

		price := product.Price
		if in.Price != nil {
			price = *in.Price
		}
		lines = append(lines, sale.SaleLine{
			ProductID:   product.ID,
			ProductCode: product.Code,
			ProductName: product.Name,
			Size:        in.Size,
			Color:       in.Color,
			Quantity:    in.Quantity,
			Price:       price,
			CostPrice:   product.CostPrice,
			Discount:    in.Discount,
		})
	}
	return lines, touched, nil
}

// releaseReturnedItems restores stock for exactly the returned quantities
func (s *SaleService) releaseReturnedItems(ctx context.Context, repos application.TransactionalRepositories, items []sale.ReturnedItem) error {
	lines := make([]sale.SaleLine, 0, len(items))
	for i := range items {
		lines = append(lines, sale.SaleLine{
			ProductCode: items[i].ProductCode,
			Size:        items[i].Size,
			Color:       items[i].Color,
			Quantity:    items[i].Quantity,
		})
	}
	return s.releaseLines(ctx, repos, lines)
}

// releaseLines returns sold quantities to stock. A product that has since
// been removed from the catalog is skipped with a warning.
func (s *SaleService) releaseLines(ctx context.Context, repos application.TransactionalRepositories, lines []sale.SaleLine) error {
	byCode := make(map[string]*catalog.Product)
	var touched []*catalog.Product

	for i := range lines {
		product, ok := byCode[lines[i].ProductCode]
		if !ok {
			var err error
			product, err = repos.Products().FindByCode(ctx, lines[i].ProductCode)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					s.logger.Warn("product missing during stock restore",
						zap.String("product_code", lines[i].ProductCode))
					continue
				}
				return err
			}
			byCode[lines[i].ProductCode] = product
			touched = append(touched, product)
		}
		if err := product.Release(lines[i].Size, lines[i].Color, lines[i].Quantity); err != nil {
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

// applyCommission credits the selling staff member. Commission is best
// effort: a missing or unloadable user never fails the sale.
func (s *SaleService) applyCommission(ctx context.Context, repos application.TransactionalRepositories, newSale *sale.Sale, explicitRate decimal.Decimal) {
	if newSale.SoldBy == "" || s.commissions == nil {
		return
	}

	user, err := repos.Users().FindByBarcode(ctx, newSale.SoldBy)
	if err != nil {
		s.logger.Warn("commission skipped, staff lookup failed",
			zap.String("barcode", newSale.SoldBy), zap.Error(err))
		return
	}

	rate := s.commissions.EffectiveRate(explicitRate, user)
	amount := s.commissions.Amount(newSale.GrandTotal, rate)
	if !amount.IsPositive() {
		return
	}

	user.ApplyCommission(amount)
	if err := repos.Users().Save(ctx, user); err != nil {
		s.logger.Warn("commission skipped, could not save staff ledger",
			zap.String("barcode", newSale.SoldBy), zap.Error(err))
		return
	}
	newSale.SetCommission(rate, amount)
}

// reverseCommission debits the earlier commission, also best effort
func (s *SaleService) reverseCommission(ctx context.Context, repos application.TransactionalRepositories, current *sale.Sale) {
	if current.SoldBy == "" || !current.CommissionAmount.IsPositive() {
		return
	}

	user, err := repos.Users().FindByBarcode(ctx, current.SoldBy)
	if err != nil {
		s.logger.Warn("commission reversal skipped, staff lookup failed",
			zap.String("barcode", current.SoldBy), zap.Error(err))
		return
	}
	user.ReverseCommission(current.CommissionAmount)
	if err := repos.Users().Save(ctx, user); err != nil {
		s.logger.Warn("commission reversal skipped, could not save staff ledger",
			zap.String("barcode", current.SoldBy), zap.Error(err))
	}
}

// withConflictRetry reruns the transaction when a product save loses an
// optimistic-lock race, so concurrent sales serialize instead of failing.
func (s *SaleService) withConflictRetry(ctx context.Context, fn func(repos application.TransactionalRepositories) error) error {
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
