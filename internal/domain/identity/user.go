package identity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storepos/backend/internal/domain/shared"
)

// UserRole represents the role of a staff user
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleStaff   UserRole = "staff"
)

// User is a staff member. CommissionEarned is a running ledger mutated
// only through ApplyCommission and ReverseCommission.
type User struct {
	shared.BaseAggregateRoot
	Name              string          `gorm:"type:varchar(200);not null"`
	Email             string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash      string          `gorm:"type:varchar(200);not null" json:"-"`
	Role              UserRole        `gorm:"type:varchar(20);not null;default:'staff'"`
	Phone             string          `gorm:"type:varchar(50)"`
	Barcode           string          `gorm:"type:varchar(50);uniqueIndex"`
	CommissionPercent decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // 0 means use the configured default
	CommissionEarned  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active            bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new staff user
func NewUser(name, email, passwordHash, barcode string, role UserRole, commissionPercent decimal.Decimal) (*User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "User name cannot be empty")
	}
	if strings.TrimSpace(email) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Email cannot be empty")
	}
	if passwordHash == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Password hash cannot be empty")
	}
	if commissionPercent.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Commission percent cannot be negative")
	}
	if role == "" {
		role = RoleStaff
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             strings.ToLower(email),
		PasswordHash:      passwordHash,
		Role:              role,
		Barcode:           barcode,
		CommissionPercent: commissionPercent,
		CommissionEarned:  decimal.Zero,
		Active:            true,
	}, nil
}

// Update updates the user's editable profile fields
func (u *User) Update(name, phone, barcode string, role UserRole, commissionPercent decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_INPUT", "User name cannot be empty")
	}
	if commissionPercent.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Commission percent cannot be negative")
	}

	u.Name = name
	u.Phone = phone
	u.Barcode = barcode
	if role != "" {
		u.Role = role
	}
	u.CommissionPercent = commissionPercent
	u.UpdatedAt = time.Now()
	return nil
}

// ApplyCommission adds the amount to the user's earned commission
func (u *User) ApplyCommission(amount decimal.Decimal) {
	if !amount.IsPositive() {
		return
	}
	u.CommissionEarned = u.CommissionEarned.Add(amount)
	u.UpdatedAt = time.Now()
}

// ReverseCommission subtracts the amount, flooring the ledger at zero
func (u *User) ReverseCommission(amount decimal.Decimal) {
	if !amount.IsPositive() {
		return
	}
	u.CommissionEarned = u.CommissionEarned.Sub(amount)
	if u.CommissionEarned.IsNegative() {
		u.CommissionEarned = decimal.Zero
	}
	u.UpdatedAt = time.Now()
}

// Deactivate marks the user inactive without removing their records
func (u *User) Deactivate() {
	u.Active = false
	u.UpdatedAt = time.Now()
}
