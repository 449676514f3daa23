package identity

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/storepos/backend/internal/domain/identity"
	"github.com/storepos/backend/internal/domain/shared"
)

// TokenIssuer issues signed access tokens
type TokenIssuer interface {
	Issue(subject, role string) (token string, expiresAt time.Time, err error)
}

// LoginRequest is the input for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user,omitempty"`
	Role      string        `json:"role"`
}

// AuthService authenticates the configured admin account and staff users
type AuthService struct {
	userRepo      identity.UserRepository
	hasher        PasswordHasher
	issuer        TokenIssuer
	adminEmail    string
	adminPassword string
	logger        *zap.Logger
}

// NewAuthService creates a new AuthService. The admin credentials come
// from configuration.
func NewAuthService(
	userRepo identity.UserRepository,
	hasher PasswordHasher,
	issuer TokenIssuer,
	adminEmail, adminPassword string,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:      userRepo,
		hasher:        hasher,
		issuer:        issuer,
		adminEmail:    strings.ToLower(adminEmail),
		adminPassword: adminPassword,
		logger:        logger,
	}
}

// Login verifies credentials and issues a token. The configured admin
// account is checked first, then the staff user store.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Email and password are required")
	}

	if s.adminEmail != "" && email == s.adminEmail {
		if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.adminPassword)) == 1 {
			token, exp, err := s.issuer.Issue(email, string(identity.RoleAdmin))
			if err != nil {
				return nil, err
			}
			return &LoginResponse{Token: token, ExpiresAt: exp, Role: string(identity.RoleAdmin)}, nil
		}
		return nil, shared.ErrUnauthorized
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Debug("login failed, user not found", zap.String("email", email))
		return nil, shared.ErrUnauthorized
	}
	if !user.Active {
		return nil, shared.ErrUnauthorized
	}
	if err := s.hasher.Verify(user.PasswordHash, req.Password); err != nil {
		return nil, shared.ErrUnauthorized
	}

	token, exp, err := s.issuer.Issue(user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	resp := ToUserResponse(user)
	return &LoginResponse{Token: token, ExpiresAt: exp, User: &resp, Role: string(user.Role)}, nil
}
