package repository

import (
	"context"

	"github.com/msakr99/pharmasky-backend-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WarehouseRepository defines the data access contract for warehouses.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type WarehouseRepository interface {
	Create(ctx context.Context, w *model.Warehouse) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Warehouse, error)
	// FindMain returns the single MAIN warehouse or gorm.ErrRecordNotFound.
	FindMain(ctx context.Context) (*model.Warehouse, error)
	List(ctx context.Context) ([]model.Warehouse, error)

	// Tx-scoped methods — callers must pass the live transaction.
	// FindByIDTx takes a FOR UPDATE lock: the warehouse aggregate row is the
	// hot shared resource under concurrent allocation.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Warehouse, error)
	SaveTx(tx *gorm.DB, w *model.Warehouse) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type warehouseRepo struct{ db *gorm.DB }

func NewWarehouseRepository(db *gorm.DB) WarehouseRepository { return &warehouseRepo{db: db} }

func (r *warehouseRepo) Create(ctx context.Context, w *model.Warehouse) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *warehouseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Warehouse, error) {
	var w model.Warehouse
	err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error
	return &w, err
}

func (r *warehouseRepo) FindMain(ctx context.Context) (*model.Warehouse, error) {
	var w model.Warehouse
	err := r.db.WithContext(ctx).Where("kind = ?", model.WarehouseMain).First(&w).Error
	return &w, err
}

func (r *warehouseRepo) List(ctx context.Context) ([]model.Warehouse, error) {
	var warehouses []model.Warehouse
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&warehouses).Error
	return warehouses, err
}

func (r *warehouseRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Warehouse, error) {
	var w model.Warehouse
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, "id = ?", id).Error
	return &w, err
}

func (r *warehouseRepo) SaveTx(tx *gorm.DB, w *model.Warehouse) error {
	return tx.Save(w).Error
}

func (r *warehouseRepo) DB() *gorm.DB { return r.db }
