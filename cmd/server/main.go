package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	catalogapp "github.com/storepos/backend/internal/application/catalog"
	expenseapp "github.com/storepos/backend/internal/application/expense"
	identityapp "github.com/storepos/backend/internal/application/identity"
	purchaseapp "github.com/storepos/backend/internal/application/purchase"
	saleapp "github.com/storepos/backend/internal/application/sale"
	"github.com/storepos/backend/internal/domain/identity"
	"github.com/storepos/backend/internal/domain/shared"
	"github.com/storepos/backend/internal/infrastructure/auth"
	"github.com/storepos/backend/internal/infrastructure/cache"
	"github.com/storepos/backend/internal/infrastructure/config"
	"github.com/storepos/backend/internal/infrastructure/logger"
	"github.com/storepos/backend/internal/infrastructure/persistence"
	"github.com/storepos/backend/internal/infrastructure/storage"
	"github.com/storepos/backend/internal/interfaces/http/handler"
	"github.com/storepos/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	purchaseRepo := persistence.NewGormPurchaseRepository(db.DB)
	purchaseReturnRepo := persistence.NewGormPurchaseReturnRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Idempotency store: Redis when configured, in-memory otherwise
	var idemStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisIdempotencyStore(&cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		idemStore = redisStore
		log.Info("Using Redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
	} else {
		idemStore = cache.NewInMemoryIdempotencyStore()
		log.Info("Using in-memory idempotency store")
	}
	defer idemStore.Close()

	// Application services
	commissions := identity.NewCommissionEngine(decimal.NewFromFloat(cfg.Commission.DefaultRate))

	productService := catalogapp.NewProductService(productRepo)
	saleService := saleapp.NewSaleService(txScope, saleRepo, commissions, log)
	saleService.SetIdempotencyStore(idemStore, shared.IdempotencyConfig{
		TTL:     cfg.Idempotency.TTL,
		Enabled: true,
	})
	purchaseService := purchaseapp.NewPurchaseService(txScope, purchaseRepo, log)
	purchaseReturnService := purchaseapp.NewPurchaseReturnService(txScope, purchaseReturnRepo, log)
	expenseService := expenseapp.NewExpenseService(expenseRepo)

	if cfg.Storage.Enabled {
		billStore, err := storage.NewS3BillImageStore(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize bill image storage", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := billStore.EnsureBucket(ctx); err != nil {
			cancel()
			log.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}
		cancel()
		purchaseService.SetBillImageStore(billStore)
		log.Info("Bill image storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	hasher := auth.NewBcryptHasher(0)
	authService := identityapp.NewAuthService(userRepo, hasher, jwtService, cfg.Admin.Email, cfg.Admin.Password, log)
	userService := identityapp.NewUserService(userRepo, hasher)

	// HTTP layer
	handlers := router.Handlers{
		Auth:           handler.NewAuthHandler(authService),
		Product:        handler.NewProductHandler(productService),
		Sale:           handler.NewSaleHandler(saleService),
		Purchase:       handler.NewPurchaseHandler(purchaseService),
		PurchaseReturn: handler.NewPurchaseReturnHandler(purchaseReturnService),
		User:           handler.NewUserHandler(userService),
		Expense:        handler.NewExpenseHandler(expenseService),
		System:         handler.NewSystemHandler(db),
	}
	engine := router.NewRouter(cfg, log, jwtService, handlers).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
