package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storepos/backend/internal/domain/shared"
)

func newTestProduct(t *testing.T) *Product {
	t.Helper()
	p, err := NewProduct("SHIRT-01", "Cotton Shirt", "apparel",
		decimal.NewFromInt(1500), decimal.NewFromInt(900))
	require.NoError(t, err)
	return p
}

func TestNewProduct(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		prodName string
		price    decimal.Decimal
		wantErr  bool
	}{
		{
			name:     "valid product",
			code:     "shirt-01",
			prodName: "Cotton Shirt",
			price:    decimal.NewFromInt(1500),
		},
		{
			name:     "empty code rejected",
			code:     "  ",
			prodName: "Cotton Shirt",
			price:    decimal.NewFromInt(1500),
			wantErr:  true,
		},
		{
			name:     "empty name rejected",
			code:     "SHIRT-01",
			prodName: "",
			price:    decimal.NewFromInt(1500),
			wantErr:  true,
		},
		{
			name:     "negative price rejected",
			code:     "SHIRT-01",
			prodName: "Cotton Shirt",
			price:    decimal.NewFromInt(-1),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProduct(tt.code, tt.prodName, "apparel", tt.price, decimal.NewFromInt(900))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "SHIRT-01", p.Code, "code is uppercased")
			assert.Equal(t, 1, p.GetVersion())
		})
	}
}

func TestProductReserveWithoutVariants(t *testing.T) {
	p := newTestProduct(t)
	p.Stock = 10

	require.NoError(t, p.Reserve("", "", 4))
	assert.Equal(t, 6, p.Stock)

	err := p.Reserve("", "", 7)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, 6, p.Stock, "failed reserve leaves stock untouched")
}

func TestProductReserveWithVariants(t *testing.T) {
	p := newTestProduct(t)
	require.NoError(t, p.AddVariant("M", "blue", 5, decimal.NewFromInt(900)))
	require.NoError(t, p.AddVariant("L", "blue", 3, decimal.NewFromInt(900)))
	assert.Equal(t, 8, p.Stock, "product stock is the sum of variants")

	require.NoError(t, p.Reserve("M", "blue", 2))
	assert.Equal(t, 6, p.Stock)

	err := p.Reserve("XL", "red", 1)
	assert.ErrorIs(t, err, shared.ErrVariantNotFound, "sale side never falls back to product stock")

	err = p.Reserve("L", "blue", 4)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, 6, p.Stock)
}

func TestProductReleaseFallsBackToProductStock(t *testing.T) {
	p := newTestProduct(t)
	require.NoError(t, p.AddVariant("M", "blue", 5, decimal.NewFromInt(900)))

	require.NoError(t, p.Release("M", "blue", 2))
	assert.Equal(t, 7, p.Stock)

	require.NoError(t, p.Release("XL", "red", 3))
	assert.Equal(t, 10, p.Stock, "unknown variant returns to product-level stock")
}

func TestProductReceive(t *testing.T) {
	p := newTestProduct(t)
	require.NoError(t, p.AddVariant("M", "blue", 5, decimal.NewFromInt(900)))

	require.NoError(t, p.Receive("M", "blue", 10, decimal.NewFromInt(950)))
	assert.Equal(t, 15, p.Stock)
	assert.True(t, p.CostPrice.Equal(decimal.NewFromInt(950)))

	require.NoError(t, p.Receive("XL", "red", 4, decimal.NewFromInt(950)))
	assert.True(t, p.HasVariant("XL", "red"), "purchase side creates missing variants")
	assert.Equal(t, 19, p.Stock)
}

func TestProductDeduct(t *testing.T) {
	p := newTestProduct(t)
	require.NoError(t, p.AddVariant("M", "blue", 5, decimal.NewFromInt(900)))

	require.NoError(t, p.Deduct("M", "blue", 3))
	assert.Equal(t, 2, p.Stock)

	err := p.Deduct("M", "blue", 5)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
}

func TestProductVariantMatchIsCaseInsensitive(t *testing.T) {
	p := newTestProduct(t)
	require.NoError(t, p.AddVariant("M", "Blue", 5, decimal.NewFromInt(900)))

	require.NoError(t, p.Reserve("m", "blue", 1))
	assert.Equal(t, 4, p.Stock)
}

func TestAddVariantRejectsDuplicates(t *testing.T) {
	p := newTestProduct(t)
	require.NoError(t, p.AddVariant("M", "blue", 5, decimal.NewFromInt(900)))
	err := p.AddVariant("M", "blue", 2, decimal.NewFromInt(900))
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}
