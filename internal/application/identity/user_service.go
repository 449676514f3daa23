package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storepos/backend/internal/domain/identity"
	"github.com/storepos/backend/internal/domain/shared"
)

// PasswordHasher hashes and verifies user passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

// CreateUserRequest is the input for creating a staff user
type CreateUserRequest struct {
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Password          string          `json:"password"`
	Role              string          `json:"role"`
	Phone             string          `json:"phone"`
	Barcode           string          `json:"barcode"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
}

// UpdateUserRequest is the input for updating a staff user
type UpdateUserRequest struct {
	Name              string          `json:"name"`
	Phone             string          `json:"phone"`
	Barcode           string          `json:"barcode"`
	Role              string          `json:"role"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
}

// UserResponse is the API representation of a user
type UserResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Role              string          `json:"role"`
	Phone             string          `json:"phone,omitempty"`
	Barcode           string          `json:"barcode,omitempty"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	CommissionEarned  decimal.Decimal `json:"commission_earned"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"created_at"`
}

// UserService handles staff user management
type UserService struct {
	userRepo identity.UserRepository
	hasher   PasswordHasher
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{userRepo: userRepo, hasher: hasher}
}

// Create creates a new staff user
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	if req.Password == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Password cannot be empty")
	}
	if existing, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := identity.NewUser(req.Name, req.Email, hash, req.Barcode,
		identity.UserRole(req.Role), req.CommissionPercent)
	if err != nil {
		return nil, err
	}
	user.Phone = req.Phone

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// Update updates a staff user's profile
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Update(req.Name, req.Phone, req.Barcode,
		identity.UserRole(req.Role), req.CommissionPercent); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// Delete removes a staff user
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

// Get returns a user by ID
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// List returns users matching the filter
func (s *UserService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[UserResponse], error) {
	users, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.userRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]UserResponse, 0, len(users))
	for i := range users {
		items = append(items, ToUserResponse(&users[i]))
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ToUserResponse converts a user aggregate to its API representation
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              string(u.Role),
		Phone:             u.Phone,
		Barcode:           u.Barcode,
		CommissionPercent: u.CommissionPercent,
		CommissionEarned:  u.CommissionEarned,
		Active:            u.Active,
		CreatedAt:         u.CreatedAt,
	}
}
