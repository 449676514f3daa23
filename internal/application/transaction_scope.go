package application

import (
	"context"

	"github.com/storepos/backend/internal/domain/catalog"
	"github.com/storepos/backend/internal/domain/identity"
	"github.com/storepos/backend/internal/domain/purchase"
	"github.com/storepos/backend/internal/domain/sale"
)

// TransactionScope provides transactional access to the order-processing
// repositories. When a function is executed within a transaction scope,
// all repository operations are part of the same database transaction and
// commit or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a
// transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// Products returns the product repository scoped to the current transaction
	Products() catalog.ProductRepository
	// Sales returns the sale repository scoped to the current transaction
	Sales() sale.SaleRepository
	// Purchases returns the purchase repository scoped to the current transaction
	Purchases() purchase.PurchaseRepository
	// PurchaseReturns returns the purchase return repository scoped to the current transaction
	PurchaseReturns() purchase.PurchaseReturnRepository
	// Users returns the user repository scoped to the current transaction
	Users() identity.UserRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing or when transaction support is not
// required.
type NoOpTransactionScope struct {
	products        catalog.ProductRepository
	sales           sale.SaleRepository
	purchases       purchase.PurchaseRepository
	purchaseReturns purchase.PurchaseReturnRepository
	users           identity.UserRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	products catalog.ProductRepository,
	sales sale.SaleRepository,
	purchases purchase.PurchaseRepository,
	purchaseReturns purchase.PurchaseReturnRepository,
	users identity.UserRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		products:        products,
		sales:           sales,
		purchases:       purchases,
		purchaseReturns: purchaseReturns,
		users:           users,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Products returns the product repository
func (s *NoOpTransactionScope) Products() catalog.ProductRepository {
	return s.products
}

// Sales returns the sale repository
func (s *NoOpTransactionScope) Sales() sale.SaleRepository {
	return s.sales
}

// Purchases returns the purchase repository
func (s *NoOpTransactionScope) Purchases() purchase.PurchaseRepository {
	return s.purchases
}

// PurchaseReturns returns the purchase return repository
func (s *NoOpTransactionScope) PurchaseReturns() purchase.PurchaseReturnRepository {
	return s.purchaseReturns
}

// Users returns the user repository
func (s *NoOpTransactionScope) Users() identity.UserRepository {
	return s.users
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
