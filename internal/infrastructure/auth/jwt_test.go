package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storepos/backend/internal/infrastructure/config"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:          "0123456789abcdef0123456789abcdef",
		TokenExpiration: time.Hour,
		Issuer:          "pos-backend",
	})
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestService()

	token, expiresAt, err := svc.Issue("admin@store.pk", "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@store.pk", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "pos-backend", claims.Issuer)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := newTestService()

	_, err := svc.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	svc := newTestService()
	other := NewJWTService(config.JWTConfig{
		Secret:          "ffffffffffffffffffffffffffffffff",
		TokenExpiration: time.Hour,
		Issuer:          "pos-backend",
	})

	token, _, err := other.Issue("admin@store.pk", "admin")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:          "0123456789abcdef0123456789abcdef",
		TokenExpiration: -time.Minute,
		Issuer:          "pos-backend",
	})

	token, _, err := svc.Issue("admin@store.pk", "admin")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcryptTestCost)

	hash, err := hasher.Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	assert.NoError(t, hasher.Verify(hash, "secret"))
	assert.Error(t, hasher.Verify(hash, "wrong"))
}

// low cost keeps the test fast
const bcryptTestCost = 4
