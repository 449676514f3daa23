package identity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	tests := []struct {
		name    string
		uname   string
		email   string
		hash    string
		rate    decimal.Decimal
		wantErr bool
	}{
		{
			name:  "valid user",
			uname: "Sana",
			email: "Sana@Store.PK",
			hash:  "hashed",
			rate:  decimal.NewFromInt(3),
		},
		{
			name:    "empty name",
			uname:   " ",
			email:   "sana@store.pk",
			hash:    "hashed",
			rate:    decimal.Zero,
			wantErr: true,
		},
		{
			name:    "empty password hash",
			uname:   "Sana",
			email:   "sana@store.pk",
			hash:    "",
			rate:    decimal.Zero,
			wantErr: true,
		},
		{
			name:    "negative commission rate",
			uname:   "Sana",
			email:   "sana@store.pk",
			hash:    "hashed",
			rate:    decimal.NewFromInt(-1),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUser(tt.uname, tt.email, tt.hash, "EMP-1", "", tt.rate)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "sana@store.pk", u.Email, "email is lowercased")
			assert.Equal(t, RoleStaff, u.Role, "role defaults to staff")
			assert.True(t, u.Active)
			assert.True(t, u.CommissionEarned.IsZero())
		})
	}
}

func TestUserUpdate(t *testing.T) {
	u := newTestUser(t, decimal.Zero)

	require.NoError(t, u.Update("Sana K", "0300-1234567", "EMP-9", RoleManager, decimal.NewFromInt(4)))
	assert.Equal(t, "Sana K", u.Name)
	assert.Equal(t, RoleManager, u.Role)
	assert.Equal(t, "4", u.CommissionPercent.String())

	assert.Error(t, u.Update("", "", "", "", decimal.Zero))
}

func TestUserDeactivate(t *testing.T) {
	u := newTestUser(t, decimal.Zero)
	u.Deactivate()
	assert.False(t, u.Active)
}
