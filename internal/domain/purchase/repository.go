package purchase

import (
	"github.com/storepos/backend/internal/domain/shared"
)

// PurchaseRepository defines the persistence contract for purchases
type PurchaseRepository interface {
	shared.Repository[Purchase]
}

// PurchaseReturnRepository defines the persistence contract for purchase returns
type PurchaseReturnRepository interface {
	shared.Repository[PurchaseReturn]
}
