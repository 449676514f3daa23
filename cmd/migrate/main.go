package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/storepos/backend/internal/domain/catalog"
	"github.com/storepos/backend/internal/domain/expense"
	"github.com/storepos/backend/internal/domain/identity"
	"github.com/storepos/backend/internal/domain/purchase"
	"github.com/storepos/backend/internal/domain/sale"
	"github.com/storepos/backend/internal/infrastructure/config"
	"github.com/storepos/backend/internal/infrastructure/logger"
	"github.com/storepos/backend/internal/infrastructure/persistence"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	log.Info("Running schema migration",
		zap.String("database", cfg.Database.DBName),
		zap.String("host", cfg.Database.Host))

	err = db.DB.AutoMigrate(
		&catalog.Product{},
		&catalog.ProductVariant{},
		&sale.Sale{},
		&sale.SaleLine{},
		&sale.ReturnedItem{},
		&sale.EditReason{},
		&purchase.Purchase{},
		&purchase.PurchaseItem{},
		&purchase.Payment{},
		&purchase.PurchaseReturn{},
		&purchase.PurchaseReturnItem{},
		&identity.User{},
		&expense.Expense{},
	)
	if err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}

	log.Info("Migration completed")
}
