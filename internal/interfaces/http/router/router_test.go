package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storepos/backend/internal/infrastructure/auth"
	"github.com/storepos/backend/internal/infrastructure/config"
	"github.com/storepos/backend/internal/interfaces/http/handler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = "test"
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:          "test-secret-at-least-32-characters!!",
		TokenExpiration: time.Hour,
		Issuer:          "pos-test",
	})

	handlers := Handlers{
		Auth:           handler.NewAuthHandler(nil),
		Product:        handler.NewProductHandler(nil),
		Sale:           handler.NewSaleHandler(nil),
		Purchase:       handler.NewPurchaseHandler(nil),
		PurchaseReturn: handler.NewPurchaseReturnHandler(nil),
		User:           handler.NewUserHandler(nil),
		Expense:        handler.NewExpenseHandler(nil),
		System:         handler.NewSystemHandler(nil),
	}

	return NewRouter(cfg, zap.NewNop(), jwtService, handlers).Setup()
}

func TestRouterRegistersRoutes(t *testing.T) {
	engine := newTestRouter(t)

	expected := []string{
		"POST /api/v1/auth/login",
		"POST /api/v1/sales",
		"GET /api/v1/sales/summary/profit-loss",
		"POST /api/v1/sales/:id/return",
		"POST /api/v1/purchases/:id/payments",
		"GET /api/v1/catalog/products/code/:code",
		"PUT /api/v1/purchase-returns/:id",
		"DELETE /api/v1/expenses/:id",
		"GET /api/v1/users",
		"GET /api/v1/system/health",
	}

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, key := range expected {
		assert.True(t, registered[key], "route %s not registered", key)
	}
}

func TestHealthSkipsAuthentication(t *testing.T) {
	engine := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	engine := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/catalog/products", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRouteRejectsGarbageToken(t *testing.T) {
	engine := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/catalog/products", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStaffRoleCannotManageUsers(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:          "test-secret-at-least-32-characters!!",
		TokenExpiration: time.Hour,
		Issuer:          "pos-test",
	})
	handlers := Handlers{
		Auth:           handler.NewAuthHandler(nil),
		Product:        handler.NewProductHandler(nil),
		Sale:           handler.NewSaleHandler(nil),
		Purchase:       handler.NewPurchaseHandler(nil),
		PurchaseReturn: handler.NewPurchaseReturnHandler(nil),
		User:           handler.NewUserHandler(nil),
		Expense:        handler.NewExpenseHandler(nil),
		System:         handler.NewSystemHandler(nil),
	}
	engine := NewRouter(cfg, zap.NewNop(), jwtService, handlers).Setup()

	token, _, err := jwtService.Issue("staff@store.pk", "staff")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
