package identity

import (
	"context"

	"github.com/storepos/backend/internal/domain/shared"
)

// UserRepository defines the persistence contract for users
type UserRepository interface {
	shared.Repository[User]

	// FindByEmail finds a user by email address
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByBarcode finds a user by staff barcode
	FindByBarcode(ctx context.Context, barcode string) (*User, error)
}
