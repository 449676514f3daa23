package sale

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storepos/backend/internal/application"
	"github.com/storepos/backend/internal/domain/identity"
	domainsale "github.com/storepos/backend/internal/domain/sale"
	"github.com/storepos/backend/internal/domain/shared"
)

type serviceFixture struct {
	products *MockProductRepository
	sales    *MockSaleRepository
	users    *MockUserRepository
	service  *SaleService
}

func newServiceFixture() *serviceFixture {
	products := new(MockProductRepository)
	sales := new(MockSaleRepository)
	users := new(MockUserRepository)
	scope := application.NewNoOpTransactionScope(products, sales, nil, nil, users)
	engine := identity.NewCommissionEngine(decimal.NewFromInt(5))
	return &serviceFixture{
		products: products,
		sales:    sales,
		users:    users,
		service:  NewSaleService(scope, sales, engine, nil),
	}
}

func createReq(qty int) CreateSaleRequest {
	return CreateSaleRequest{
		InvoiceNumber: "INV-1001",
		CustomerName:  "Ali",
		Lines: []SaleLineInput{
			{ProductCode: "SHIRT-01", Quantity: qty},
		},
		SaleDate: time.Now(),
	}
}

func TestCreateSaleReservesStockAndPersists(t *testing.T) {
	f := newServiceFixture()
	product := newProductWithStock("SHIRT-01", 10)

	f.products.On("FindByCode", mock.Anything, "SHIRT-01").Return(product, nil)
	f.products.On("SaveWithLock", mock.Anything, product).Return(nil)
	f.sales.On("Save", mock.Anything, mock.AnythingOfType("*sale.Sale")).Return(nil)

	resp, err := f.service.Create(context.Background(), createReq(4))
	require.NoError(t, err)

	assert.Equal(t, 6, product.Stock)
	assert.Equal(t, "400", resp.GrandTotal.String(), "catalog price is used when the line has none")
	assert.Equal(t, "completed", resp.Status)
	f.products.AssertExpectations(t)
	f.sales.AssertExpectations(t)
}

func TestCreateSaleExplicitZeroPriceIsFree(t *testing.T) {
	f := newServiceFixture()
	product := newProductWithStock("SHIRT-01", 10)

	f.products.On("FindByCode", mock.Anything, "SHIRT-01").Return(product, nil)
	f.products.On("SaveWithLock", mock.Anything, product).Return(nil)
	f.sales.On("Save", mock.Anything, mock.AnythingOfType("*sale.Sale")).Return(nil)

	free := decimal.Zero
	resp, err := f.service.Create(context.Background(), CreateSaleRequest{
		InvoiceNumber: "INV-1002",
		Lines: []SaleLineInput{
			{ProductCode: "SHIRT-01", Quantity: 2, Price: &free},
		},
		SaleDate: time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, "0", resp.GrandTotal.String(), "an explicit zero price is not overridden by the catalog")
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "0", resp.Lines[0].Price.String())
}

func TestCreateSaleInsufficientStockFailsWithoutPersisting(t *testing.T) {
	f := newServiceFixture()
	product := newProductWithStock("SHIRT-01", 2)

	f.products.On("FindByCode", mock.Anything, "SHIRT-01").Return(product, nil)

	_, err := f.service.Create(context.Background(), createReq(5))
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	f.sales.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.products.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestCreateSaleEmptyLines(t *testing.T) {
	f := newServiceFixture()
	_, err := f.service.Create(context.Background(), CreateSaleRequest{InvoiceNumber: "INV-1"})
	assert.ErrorIs(t, err, shared.ErrEmptyProducts)
}

func TestCreateSaleUnknownProduct(t *testing.T) {
	f := newServiceFixture()
	f.products.On("FindByCode", mock.Anything, "SHIRT-01").Return(nil, shared.ErrNotFound)

	_, err := f.service.Create(context.Background(), createReq(1))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateSaleAppliesCommission(t *testing.T) {
	f := newServiceFixture()
	product := newProductWithStock("SHIRT-01", 10)
	staff, err := identity.NewUser("Sana", "sana@store.pk", "hash", "EMP-7", identity.RoleStaff, decimal.Zero)
	require.NoError(t, err)

	f.products.On("FindByCode", mock.Anything, "SHIRT-01").Return(product, nil)
	f.products.On("SaveWithLock", mock.Anything, product).Return(nil)
	f.users.On("FindByBarcode", mock.Anything, "EMP-7").Return(staff, nil)
	f.users.On("Save", mock.Anything, staff).Return(nil)
	f.sales.On("Save", mock.Anything, mock.AnythingOfType("*sale.Sale")).Return(nil)

	req := createReq(4)
	req.SoldBy = "EMP-7"
	resp, err := f.service.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "20", resp.CommissionAmount.String(), "5 percent default rate on 400")
	assert.Equal(t, "20", staff.CommissionEarned.String())
}

func TestCreateSaleCommissionIsBestEffort(t *testing.T) {
	f := newServiceFixture()
	product := newProductWithStock("SHIRT-01", 10)

	f.products.On("FindByCode", mock.Anything, "SHIRT-01").Return(product, nil)
	f.products.On("SaveWithLock", mock.Anything, product).Return(nil)
	f.users.On("FindByBarcode", mock.Anything, "EMP-7").Return(nil, shared.ErrNotFound)
	f.sales.On("Save", mock.Anything, mock.AnythingOfType("*sale.Sale")).Return(nil)

	req := createReq(4)
	req.SoldBy = "EMP-7"
	resp, err := f.service.Create(context.Background(), req)
	require.NoError(t, err, "missing staff never fails the sale")
	assert.True(t, resp.CommissionAmount.IsZero())
}

func TestCreateSaleRetriesOnConcurrencyConflict(t *testing.T) {
	f := newServiceFixture()
	first := newProductWithStock("SHIRT-01", 10)
	second := newProductWithStock("SHIRT-01", 10)

	f.products.On("FindByCode", mock.Anything, "SHIRT-01").Return(first, nil).Once()
	f.products.On("FindByCode", mock.Anything, "SHIRT-01").Return(second, nil).Once()
	f.products.On("SaveWithLock", mock.Anything, first).Return(shared.ErrConcurrencyConflict).Once()
	f.products.On("SaveWithLock", mock.Anything, second).Return(nil).Once()
	f.sales.On("Save", mock.Anything, mock.AnythingOfType("*sale.Sale")).Return(nil)

	_, err := f.service.Create(context.Background(), createReq(4))
	require.NoError(t, err)
	assert.Equal(t, 6, second.Stock, "retry runs against freshly loaded state")
}

func TestCreateSaleGivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newServiceFixture()
	f.products.On("FindByCode", mock.Anything, "SHIRT-01").
		Return(newProductWithStock("SHIRT-01", 10), nil)
	f.products.On("SaveWithLock", mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict)

	_, err := f.service.Create(context.Background(), createReq(1))
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	f.sales.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestReturnSaleRestoresStockAndReversesCommission(t *testing.T) {
	f := newServiceFixture()

	existing, err := domainsale.NewSale("INV-1001", "Ali", "", "EMP-7", []domainsale.SaleLine{
		{ProductCode: "SHIRT-01", Quantity: 4,
			Price: decimal.NewFromInt(100), CostPrice: decimal.NewFromInt(60)},
	}, decimal.Zero, time.Now())
	require.NoError(t, err)
	existing.SetCommission(decimal.NewFromInt(5), decimal.NewFromInt(20))

	staff, err := identity.NewUser("Sana", "sana@store.pk", "hash", "EMP-7", identity.RoleStaff, decimal.Zero)
	require.NoError(t, err)
	staff.ApplyCommission(decimal.NewFromInt(20))

	product := newProductWithStock("SHIRT-01", 6)

	f.sales.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
	f.products.On("FindByCode", mock.Anything, "SHIRT-01").Return(product, nil)
	f.products.On("SaveWithLock", mock.Anything, product).Return(nil)
	f.users.On("FindByBarcode", mock.Anything, "EMP-7").Return(staff, nil)
	f.users.On("Save", mock.Anything, staff).Return(nil)
	f.sales.On("Save", mock.Anything, existing).Return(nil)

	resp, err := f.service.Return(context.Background(), existing.ID, ReturnSaleRequest{})
	require.NoError(t, err)

	assert.Equal(t, 10, product.Stock, "sold quantity is restored")
	assert.Equal(t, "returned", resp.Status)
	assert.Equal(t, "400", resp.TotalRefundAmount.String(), "full refund by default")
	assert.True(t, staff.CommissionEarned.IsZero())
	require.Len(t, resp.ReturnedItems, 1, "a full return records every line")
	assert.Equal(t, 4, resp.ReturnedItems[0].Quantity)
}

func TestReturnSalePartialItemsReleasesOnlyReturnedQuantities(t *testing.T) {
	f := newServiceFixture()

	existing, err := domainsale.NewSale("INV-1001", "Ali", "", "", []domainsale.SaleLine{
		{ProductCode: "SHIRT-01", Quantity: 3,
			Price: decimal.NewFromInt(100), CostPrice: decimal.NewFromInt(60)},
		{ProductCode: "PANT-02", Quantity: 5,
			Price: decimal.NewFromInt(200), CostPrice: decimal.NewFromInt(120)},
	}, decimal.Zero, time.Now())
	require.NoError(t, err)

	shirt := newProductWithStock("SHIRT-01", 7)
	pant := newProductWithStock("PANT-02", 0)

	f.sales.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
	f.products.On("FindByCode", mock.Anything, "SHIRT-01").Return(shirt, nil)
	f.products.On("SaveWithLock", mock.Anything, shirt).Return(nil)
	f.sales.On("Save", mock.Anything, existing).Return(nil)

	refund := decimal.NewFromInt(200)
	returnDate := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	resp, err := f.service.Return(context.Background(), existing.ID, ReturnSaleRequest{
		ReturnedItems: []ReturnedItemInput{{ProductCode: "SHIRT-01", Quantity: 2}},
		RefundAmount:  &refund,
		ReturnDate:    returnDate,
	})
	require.NoError(t, err)

	assert.Equal(t, 9, shirt.Stock, "exactly the returned quantity comes back")
	assert.Equal(t, 0, pant.Stock, "untouched lines release nothing")
	f.products.AssertNotCalled(t, "FindByCode", mock.Anything, "PANT-02")
	assert.Equal(t, "200", resp.TotalRefundAmount.String())
	require.Len(t, resp.ReturnedItems, 1)
	assert.Equal(t, 2, resp.ReturnedItems[0].Quantity)
	assert.True(t, resp.ReturnedItems[0].ReturnDate.Equal(returnDate))
}

func TestReturnSaleRejectsItemNotOnSale(t *testing.T) {
	f := newServiceFixture()

	existing, err := domainsale.NewSale("INV-1001", "Ali", "", "", []domainsale.SaleLine{
		{ProductCode: "SHIRT-01", Quantity: 2,
			Price: decimal.NewFromInt(100), CostPrice: decimal.NewFromInt(60)},
	}, decimal.Zero, time.Now())
	require.NoError(t, err)

	f.sales.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)

	_, err = f.service.Return(context.Background(), existing.ID, ReturnSaleRequest{
		ReturnedItems: []ReturnedItemInput{{ProductCode: "OTHER-99", Quantity: 1}},
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	f.sales.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.products.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestDeleteSaleAfterPartialReturnReleasesOutstanding(t *testing.T) {
	f := newServiceFixture()

	existing, err := domainsale.NewSale("INV-1001", "Ali", "", "", []domainsale.SaleLine{
		{ProductCode: "SHIRT-01", Quantity: 3,
			Price: decimal.NewFromInt(100), CostPrice: decimal.NewFromInt(60)},
	}, decimal.Zero, time.Now())
	require.NoError(t, err)
	require.NoError(t, existing.MarkReturned([]domainsale.ReturnedItem{
		{ProductCode: "SHIRT-01", Quantity: 2},
	}, decimal.NewFromInt(200), time.Time{}))

	product := newProductWithStock("SHIRT-01", 9)

	f.sales.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
	f.products.On("FindByCode", mock.Anything, "SHIRT-01").Return(product, nil)
	f.products.On("SaveWithLock", mock.Anything, product).Return(nil)
	f.sales.On("Delete", mock.Anything, existing.ID).Return(nil)

	require.NoError(t, f.service.Delete(context.Background(), existing.ID))
	assert.Equal(t, 10, product.Stock, "only the unreturned unit comes back")
}

func TestReturnSaleTwiceFails(t *testing.T) {
	f := newServiceFixture()

	existing, err := domainsale.NewSale("INV-1001", "Ali", "", "", []domainsale.SaleLine{
		{ProductCode: "SHIRT-01", Quantity: 1,
			Price: decimal.NewFromInt(100), CostPrice: decimal.NewFromInt(60)},
	}, decimal.Zero, time.Now())
	require.NoError(t, err)
	require.NoError(t, existing.MarkReturned(existing.AllItemsReturned(), decimal.NewFromInt(100), time.Time{}))

	f.sales.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)

	_, err = f.service.Return(context.Background(), existing.ID, ReturnSaleRequest{})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	f.sales.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateSaleRequiresReason(t *testing.T) {
	f := newServiceFixture()
	_, err := f.service.Update(context.Background(), uuid.Nil, UpdateSaleRequest{
		Lines: []SaleLineInput{{ProductCode: "SHIRT-01", Quantity: 1}},
	})
	assert.Error(t, err)
}

// fakeIdempotencyStore is an in-process IdempotencyStore for tests
type fakeIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (f *fakeIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[key], nil
}

func (f *fakeIdempotencyStore) Close() error { return nil }

func TestCreateSaleDuplicateIdempotencyKey(t *testing.T) {
	f := newServiceFixture()
	f.service.SetIdempotencyStore(&fakeIdempotencyStore{}, shared.DefaultIdempotencyConfig())

	product := newProductWithStock("SHIRT-01", 10)
	f.products.On("FindByCode", mock.Anything, "SHIRT-01").Return(product, nil)
	f.products.On("SaveWithLock", mock.Anything, product).Return(nil)
	f.sales.On("Save", mock.Anything, mock.AnythingOfType("*sale.Sale")).Return(nil)

	req := createReq(1)
	req.IdempotencyKey = "abc-123"

	_, err := f.service.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = f.service.Create(context.Background(), req)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}
