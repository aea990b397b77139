package infra

import (
	"fmt"

	"caixapos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate,
// then applies the idempotent SQL patches GORM cannot express: the partial
// unique indexes that let the database arbitrate the "one open register per
// store" and "one loyalty reversal per order" invariants across concurrent
// server instances.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies the schema. Also used by integration tooling so test
// databases get the same partial indexes as production.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Customer{},
		&model.StoreSettings{},
		&model.PaymentMethod{},
		&model.CashRegister{},
		&model.Order{},
		&model.OrderItem{},
		&model.LoyaltyTransaction{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot produce.
// Each statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// One open register per store. Conditional inserts race on this
		// index; the loser receives a unique violation.
		{"unique open register per store", `
CREATE UNIQUE INDEX IF NOT EXISTS uni_cash_registers_open_store
    ON cash_registers (store_id)
    WHERE closed_at IS NULL`},

		// At most one loyalty reversal per order: the storage-level
		// at-most-once guard for cancellation compensations under retry.
		{"unique loyalty reversal per order", `
CREATE UNIQUE INDEX IF NOT EXISTS uni_loyalty_reversal_order
    ON loyalty_transactions (order_id)
    WHERE is_reversal AND order_id IS NOT NULL`},

		// Register close scans the whole session; keep it indexed together
		// with the status filter.
		{"orders by register and status", `
CREATE INDEX IF NOT EXISTS idx_orders_register_status
    ON orders (cash_register_id, status)
    WHERE cash_register_id IS NOT NULL`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
