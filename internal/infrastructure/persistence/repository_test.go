package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storepos/backend/internal/domain/catalog"
	"github.com/storepos/backend/internal/domain/expense"
	"github.com/storepos/backend/internal/domain/identity"
	"github.com/storepos/backend/internal/domain/sale"
	"github.com/storepos/backend/internal/domain/shared"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&catalog.Product{},
		&catalog.ProductVariant{},
		&sale.Sale{},
		&sale.SaleLine{},
		&sale.ReturnedItem{},
		&sale.EditReason{},
		&identity.User{},
		&expense.Expense{},
	))
	return db
}

func TestProductRepositoryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	product, err := catalog.NewProduct("shrt-01", "Dress Shirt", "apparel",
		decimal.NewFromInt(1500), decimal.NewFromInt(900))
	require.NoError(t, err)
	require.NoError(t, product.AddVariant("M", "Blue", 10, decimal.NewFromInt(900)))
	require.NoError(t, repo.Save(ctx, product))

	loaded, err := repo.FindByCode(ctx, "shrt-01")
	require.NoError(t, err)
	assert.Equal(t, "SHRT-01", loaded.Code)
	require.Len(t, loaded.Variants, 1)
	assert.Equal(t, 10, loaded.Variants[0].Stock)

	_, err = repo.FindByCode(ctx, "MISSING")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestProductRepositorySaveWithLock(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	product, err := catalog.NewProduct("SHRT-02", "Dress Shirt", "apparel",
		decimal.NewFromInt(1500), decimal.NewFromInt(900))
	require.NoError(t, err)
	product.Stock = 10
	require.NoError(t, repo.Save(ctx, product))

	first, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)

	first.Stock = 8
	require.NoError(t, repo.SaveWithLock(ctx, first))

	second.Stock = 5
	err = repo.SaveWithLock(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	// The losing writer must not have touched the row
	loaded, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, loaded.Stock)
	assert.Equal(t, 2, loaded.Version)
}

func TestSaleRepositorySummarize(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	lines := []sale.SaleLine{{
		ProductCode: "SHRT-01",
		ProductName: "Dress Shirt",
		Quantity:    2,
		Price:       decimal.NewFromInt(1500),
		CostPrice:   decimal.NewFromInt(900),
	}}
	s, err := sale.NewSale("INV-1001", "Walk-in", "", "", lines, decimal.Zero, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, s))

	summary, err := repo.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Count)
	assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromInt(3000)),
		"total revenue was %s", summary.TotalRevenue)
	assert.True(t, summary.TotalProfit.Equal(decimal.NewFromInt(1200)),
		"total profit was %s", summary.TotalProfit)

	loaded, err := repo.FindByInvoiceNumber(ctx, "INV-1001")
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
}

func TestExpenseRepositorySumAll(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormExpenseRepository(db)
	ctx := context.Background()

	for _, amount := range []int64{25000, 6500} {
		exp, err := expense.NewExpense("Utility", "bills", "", decimal.NewFromInt(amount), time.Time{})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, exp))
	}

	total, err := repo.SumAll(ctx)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(31500)), "total was %s", total)
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	user, err := identity.NewUser("Sana", "Sana@Store.PK", "hash", "EMP-7",
		identity.RoleStaff, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, user))

	loaded, err := repo.FindByEmail(ctx, "sana@store.pk")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.ID)

	_, err = repo.FindByBarcode(ctx, "")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
