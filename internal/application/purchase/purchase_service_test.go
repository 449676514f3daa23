package purchase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storepos/backend/internal/application"
	domainpurchase "github.com/storepos/backend/internal/domain/purchase"
	"github.com/storepos/backend/internal/domain/shared"
)

type purchaseFixture struct {
	products   *MockProductRepository
	purchases  *MockPurchaseRepository
	returns    *MockPurchaseReturnRepository
	service    *PurchaseService
	retService *PurchaseReturnService
}

func newPurchaseFixture() *purchaseFixture {
	products := new(MockProductRepository)
	purchases := new(MockPurchaseRepository)
	returns := new(MockPurchaseReturnRepository)
	scope := application.NewNoOpTransactionScope(products, nil, purchases, returns, nil)
	return &purchaseFixture{
		products:   products,
		purchases:  purchases,
		returns:    returns,
		service:    NewPurchaseService(scope, purchases, nil),
		retService: NewPurchaseReturnService(scope, returns, nil),
	}
}

func TestCreateItemizedPurchaseReceivesStock(t *testing.T) {
	f := newPurchaseFixture()
	product := newProductWithVariant("SHIRT-01", "M", "blue", 5)

	f.products.On("FindByCode", mock.Anything, "SHIRT-01").Return(product, nil)
	f.products.On("SaveWithLock", mock.Anything, product).Return(nil)
	f.purchases.On("Save", mock.Anything, mock.AnythingOfType("*purchase.Purchase")).Return(nil)

	resp, err := f.service.Create(context.Background(), CreatePurchaseRequest{
		SupplierName: "Karachi Textiles",
		Items: []PurchaseItemInput{
			{ProductCode: "SHIRT-01", Size: "M", Color: "blue", Quantity: 10, CostPrice: decimal.NewFromInt(60)},
			{ProductCode: "SHIRT-01", Size: "XL", Color: "red", Quantity: 4, CostPrice: decimal.NewFromInt(60)},
		},
		PurchaseDate: time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, 19, product.Stock)
	assert.True(t, product.HasVariant("XL", "red"), "unknown variant is created on receipt")
	assert.Equal(t, "itemized", resp.Mode)
	assert.Equal(t, 14, resp.TotalQuantity)
	assert.Equal(t, "840", resp.GrandTotal.String())
	f.products.AssertNumberOfCalls(t, "SaveWithLock", 1)
}

func TestCreateAggregatePurchaseSkipsStock(t *testing.T) {
	f := newPurchaseFixture()
	f.purchases.On("Save", mock.Anything, mock.AnythingOfType("*purchase.Purchase")).Return(nil)

	resp, err := f.service.Create(context.Background(), CreatePurchaseRequest{
		SupplierName:  "Karachi Textiles",
		TotalQuantity: 100,
		TotalCost:     decimal.NewFromInt(50000),
	})
	require.NoError(t, err)

	assert.Equal(t, "aggregate", resp.Mode)
	f.products.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
}

func TestCreatePurchaseWithoutLinesFails(t *testing.T) {
	f := newPurchaseFixture()
	_, err := f.service.Create(context.Background(), CreatePurchaseRequest{SupplierName: "X"})
	assert.ErrorIs(t, err, shared.ErrEmptyProducts)
}

type fakeBillStore struct {
	url string
	err error
}

func (f *fakeBillStore) Upload(_ context.Context, _, _ string, _ io.Reader) (string, error) {
	return f.url, f.err
}

func TestCreatePurchaseBillUploadFailureAbortsBeforeStock(t *testing.T) {
	f := newPurchaseFixture()
	f.service.SetBillImageStore(&fakeBillStore{err: errors.New("bucket unreachable")})

	_, err := f.service.Create(context.Background(), CreatePurchaseRequest{
		SupplierName: "Karachi Textiles",
		Items: []PurchaseItemInput{
			{ProductCode: "SHIRT-01", Quantity: 5, CostPrice: decimal.NewFromInt(60)},
		},
		BillImage: &BillImage{Filename: "bill.jpg", ContentType: "image/jpeg", Content: strings.NewReader("img")},
	})
	require.Error(t, err)

	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "UPSTREAM_FAILURE", derr.Code)
	f.products.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
	f.purchases.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreatePurchaseStoresBillURL(t *testing.T) {
	f := newPurchaseFixture()
	f.service.SetBillImageStore(&fakeBillStore{url: "https://bucket/bills/bill.jpg"})
	f.purchases.On("Save", mock.Anything, mock.AnythingOfType("*purchase.Purchase")).Return(nil)

	resp, err := f.service.Create(context.Background(), CreatePurchaseRequest{
		SupplierName:  "Karachi Textiles",
		TotalQuantity: 10,
		TotalCost:     decimal.NewFromInt(500),
		BillImage:     &BillImage{Filename: "bill.jpg", ContentType: "image/jpeg", Content: strings.NewReader("img")},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://bucket/bills/bill.jpg", resp.BillImageURL)
}

func TestAddPayment(t *testing.T) {
	f := newPurchaseFixture()
	existing, err := domainpurchase.NewAggregatePurchase("Supplier", "", 10, decimal.NewFromInt(1000), time.Now())
	require.NoError(t, err)

	f.purchases.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
	f.purchases.On("Save", mock.Anything, existing).Return(nil)

	resp, err := f.service.AddPayment(context.Background(), existing.ID, AddPaymentRequest{
		Amount: decimal.NewFromInt(400), Method: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, "400", resp.Paid.String())
	assert.Equal(t, "600", resp.Balance.String())
}

func TestAddPaymentRejectsZeroAmount(t *testing.T) {
	f := newPurchaseFixture()
	existing, err := domainpurchase.NewAggregatePurchase("Supplier", "", 10, decimal.NewFromInt(1000), time.Now())
	require.NoError(t, err)

	f.purchases.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)

	_, err = f.service.AddPayment(context.Background(), existing.ID, AddPaymentRequest{Amount: decimal.Zero})
	assert.ErrorIs(t, err, shared.ErrInvalidPaymentAmount)
	f.purchases.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPurchaseUpdateDoesNotTouchStock(t *testing.T) {
	f := newPurchaseFixture()
	existing, err := domainpurchase.NewAggregatePurchase("Supplier", "PO-1", 10, decimal.NewFromInt(1000), time.Now())
	require.NoError(t, err)

	f.purchases.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
	f.purchases.On("Save", mock.Anything, existing).Return(nil)

	resp, err := f.service.Update(context.Background(), existing.ID, UpdatePurchaseRequest{
		SupplierName: "New Supplier", InvoiceNumber: "PO-2",
	})
	require.NoError(t, err)
	assert.Equal(t, "New Supplier", resp.SupplierName)
	f.products.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
}

func TestCreatePurchaseReturnDeductsStock(t *testing.T) {
	f := newPurchaseFixture()
	product := newProductWithVariant("SHIRT-01", "M", "blue", 10)

	f.products.On("FindByCode", mock.Anything, "SHIRT-01").Return(product, nil)
	f.products.On("SaveWithLock", mock.Anything, product).Return(nil)
	f.returns.On("Save", mock.Anything, mock.AnythingOfType("*purchase.PurchaseReturn")).Return(nil)

	resp, err := f.retService.Create(context.Background(), CreatePurchaseReturnRequest{
		SupplierName: "Karachi Textiles",
		Reason:       "damaged",
		Items: []PurchaseReturnItemInput{
			{ProductCode: "SHIRT-01", Size: "M", Color: "blue", Quantity: 4, CostPrice: decimal.NewFromInt(60)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 6, product.Stock)
	assert.Equal(t, 4, resp.TotalQuantity)
	assert.Equal(t, "240", resp.TotalAmount.String())
}

func TestCreatePurchaseReturnInsufficientStock(t *testing.T) {
	f := newPurchaseFixture()
	product := newProductWithVariant("SHIRT-01", "M", "blue", 2)

	f.products.On("FindByCode", mock.Anything, "SHIRT-01").Return(product, nil)

	_, err := f.retService.Create(context.Background(), CreatePurchaseReturnRequest{
		SupplierName: "Karachi Textiles",
		Items: []PurchaseReturnItemInput{
			{ProductCode: "SHIRT-01", Size: "M", Color: "blue", Quantity: 5, CostPrice: decimal.NewFromInt(60)},
		},
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	f.returns.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdatePurchaseReturnCompensatesOldItems(t *testing.T) {
	f := newPurchaseFixture()
	product := newProductWithVariant("SHIRT-01", "M", "blue", 6)

	existing, err := domainpurchase.NewPurchaseReturn(nil, "Karachi Textiles", "", []domainpurchase.PurchaseReturnItem{
		{ProductCode: "SHIRT-01", Size: "M", Color: "blue", Quantity: 4, CostPrice: decimal.NewFromInt(60)},
	}, time.Now())
	require.NoError(t, err)

	f.returns.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
	f.products.On("FindByCode", mock.Anything, "SHIRT-01").Return(product, nil)
	f.products.On("SaveWithLock", mock.Anything, product).Return(nil)
	f.returns.On("Save", mock.Anything, existing).Return(nil)

	resp, err := f.retService.Update(context.Background(), existing.ID, UpdatePurchaseReturnRequest{
		Items: []PurchaseReturnItemInput{
			{ProductCode: "SHIRT-01", Size: "M", Color: "blue", Quantity: 1, CostPrice: decimal.NewFromInt(60)},
		},
	})
	require.NoError(t, err)

	// 6 on hand, +4 restored from the old return, -1 for the new one.
	assert.Equal(t, 9, product.Stock)
	assert.Equal(t, 1, resp.TotalQuantity)
}

func TestDeletePurchaseReturnRestoresStock(t *testing.T) {
	f := newPurchaseFixture()
	product := newProductWithVariant("SHIRT-01", "M", "blue", 6)

	existing, err := domainpurchase.NewPurchaseReturn(nil, "Karachi Textiles", "", []domainpurchase.PurchaseReturnItem{
		{ProductCode: "SHIRT-01", Size: "M", Color: "blue", Quantity: 4, CostPrice: decimal.NewFromInt(60)},
	}, time.Now())
	require.NoError(t, err)

	f.returns.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
	f.products.On("FindByCode", mock.Anything, "SHIRT-01").Return(product, nil)
	f.products.On("SaveWithLock", mock.Anything, product).Return(nil)
	f.returns.On("Delete", mock.Anything, existing.ID).Return(nil)

	require.NoError(t, f.retService.Delete(context.Background(), existing.ID))
	assert.Equal(t, 10, product.Stock)
}
