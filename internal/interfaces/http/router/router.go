package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storepos/backend/internal/infrastructure/auth"
	"github.com/storepos/backend/internal/infrastructure/config"
	"github.com/storepos/backend/internal/infrastructure/logger"
	"github.com/storepos/backend/internal/interfaces/http/handler"
	"github.com/storepos/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every resource handler wired into the router
type Handlers struct {
	Auth           *handler.AuthHandler
	Product        *handler.ProductHandler
	Sale           *handler.SaleHandler
	Purchase       *handler.PurchaseHandler
	PurchaseReturn *handler.PurchaseReturnHandler
	User           *handler.UserHandler
	Expense        *handler.ExpenseHandler
	System         *handler.SystemHandler
}

// Router builds the gin engine with the full middleware chain and all
// API routes.
type Router struct {
	cfg        *config.Config
	log        *zap.Logger
	jwtService *auth.JWTService
	handlers   Handlers
	apiVersion string
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router
func NewRouter(cfg *config.Config, log *zap.Logger, jwtService *auth.JWTService, handlers Handlers, opts ...RouterOption) *Router {
	r := &Router{
		cfg:        cfg,
		log:        log,
		jwtService: jwtService,
		handlers:   handlers,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Setup builds the engine and registers all routes
func (r *Router) Setup() *gin.Engine {
	if r.cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(r.cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(r.cfg.HTTP.TrustedProxies)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(r.log))
	engine.Use(logger.Recovery(r.log))
	engine.Use(middleware.CORS(&r.cfg.HTTP))
	engine.Use(middleware.BodySizeLimit(r.cfg.HTTP.MaxBodySize))
	engine.Use(middleware.JWTAuthMiddleware(r.jwtService))

	engine.GET("/health", r.handlers.System.Health)

	api := engine.Group("/api/" + r.apiVersion)
	r.registerRoutes(api)
	return engine
}

func (r *Router) registerRoutes(api *gin.RouterGroup) {
	api.GET("/system/health", r.handlers.System.Health)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", r.handlers.Auth.Login)
	}

	products := api.Group("/catalog/products")
	{
		products.POST("", r.handlers.Product.Create)
		products.GET("", r.handlers.Product.List)
		products.GET("/code/:code", r.handlers.Product.GetByCode)
		products.GET("/:id", r.handlers.Product.GetByID)
		products.PUT("/:id", r.handlers.Product.Update)
		products.DELETE("/:id", r.handlers.Product.Delete)
	}

	sales := api.Group("/sales")
	{
		sales.POST("", r.handlers.Sale.Create)
		sales.GET("", r.handlers.Sale.List)
		sales.GET("/summary/profit-loss", r.handlers.Sale.Summary)
		sales.GET("/:id", r.handlers.Sale.GetByID)
		sales.PUT("/:id", r.handlers.Sale.Update)
		sales.DELETE("/:id", r.handlers.Sale.Delete)
		sales.POST("/:id/return", r.handlers.Sale.Return)
	}

	purchases := api.Group("/purchases")
	{
		purchases.POST("", r.handlers.Purchase.Create)
		purchases.GET("", r.handlers.Purchase.List)
		purchases.GET("/:id", r.handlers.Purchase.GetByID)
		purchases.PUT("/:id", r.handlers.Purchase.Update)
		purchases.DELETE("/:id", r.handlers.Purchase.Delete)
		purchases.POST("/:id/payments", r.handlers.Purchase.AddPayment)
	}

	purchaseReturns := api.Group("/purchase-returns")
	{
		purchaseReturns.POST("", r.handlers.PurchaseReturn.Create)
		purchaseReturns.GET("", r.handlers.PurchaseReturn.List)
		purchaseReturns.GET("/:id", r.handlers.PurchaseReturn.GetByID)
		purchaseReturns.PUT("/:id", r.handlers.PurchaseReturn.Update)
		purchaseReturns.DELETE("/:id", r.handlers.PurchaseReturn.Delete)
	}

	users := api.Group("/users")
	users.Use(middleware.RequireRole("admin"))
	{
		users.POST("", r.handlers.User.Create)
		users.GET("", r.handlers.User.List)
		users.GET("/:id", r.handlers.User.GetByID)
		users.PUT("/:id", r.handlers.User.Update)
		users.DELETE("/:id", r.handlers.User.Delete)
	}

	expenses := api.Group("/expenses")
	{
		expenses.POST("", r.handlers.Expense.Create)
		expenses.GET("", r.handlers.Expense.List)
		expenses.GET("/:id", r.handlers.Expense.GetByID)
		expenses.PUT("/:id", r.handlers.Expense.Update)
		expenses.DELETE("/:id", r.handlers.Expense.Delete)
	}
}
