package infra

import (
	"fmt"

	"github.com/msakr99/pharmasky-backend-sub001/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// to create / update all tables, then applies the idempotent SQL patches
// that GORM cannot express (composite allocation index, pgcrypto for
// gen_random_uuid on Postgres < 13).
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

// RunMigrations applies the schema; also used by integration tests against
// a throwaway database.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Product{},
		&model.Warehouse{},
		&model.InventoryItem{},
		&model.Offer{},
		&model.PurchaseInvoice{},
		&model.PurchaseInvoiceItem{},
		&model.SaleInvoice{},
		&model.SaleInvoiceItem{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot fully
// handle. Each statement is guarded so re-running on an already-patched
// schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Allocation ordering index: the engine walks batches per
		// (warehouse, product) ordered by discount DESC, seq ASC under
		// FOR UPDATE; this index keeps that scan from sorting.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_inventory_items_allocation') THEN
		    CREATE INDEX idx_inventory_items_allocation
		        ON inventory_items (warehouse_id, product_id, selling_discount_pct DESC, seq ASC);
		  END IF;
		END $$`,
		// A single MAIN warehouse, enforced at the schema level.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_warehouses_single_main') THEN
		    CREATE UNIQUE INDEX idx_warehouses_single_main
		        ON warehouses (kind)
		        WHERE kind = 'main';
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
