package repository

import (
	"context"

	"github.com/msakr99/pharmasky-backend-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryItemRepository defines the data access contract for batches.
type InventoryItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	FindByInvoiceItemID(ctx context.Context, invoiceItemID uuid.UUID) (*model.InventoryItem, error)
	ListByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]model.InventoryItem, error)
	// SumRemaining totals remaining_quantity over all batches of the product
	// in the warehouse. Read-only; no lock.
	SumRemaining(ctx context.Context, warehouseID, productID uuid.UUID) (int, error)

	// Tx-scoped methods — callers must pass the live transaction.
	CreateTx(tx *gorm.DB, item *model.InventoryItem) error
	SaveTx(tx *gorm.DB, item *model.InventoryItem) error
	DeleteTx(tx *gorm.DB, item *model.InventoryItem) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.InventoryItem, error)
	// ListForAllocationTx returns the allocation candidate set: all batches of
	// (warehouse, product) ordered by selling_discount_pct DESC then seq ASC
	// (insertion order breaks discount ties), locked FOR UPDATE so concurrent
	// deductions cannot both consume the same rows.
	ListForAllocationTx(tx *gorm.DB, warehouseID, productID uuid.UUID) ([]model.InventoryItem, error)

	DB() *gorm.DB
}

type inventoryItemRepo struct{ db *gorm.DB }

func NewInventoryItemRepository(db *gorm.DB) InventoryItemRepository {
	return &inventoryItemRepo{db: db}
}

func (r *inventoryItemRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	return &item, err
}

func (r *inventoryItemRepo) FindByInvoiceItemID(ctx context.Context, invoiceItemID uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.db.WithContext(ctx).Where("purchase_invoice_item_id = ?", invoiceItemID).First(&item).Error
	return &item, err
}

func (r *inventoryItemRepo) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := r.db.WithContext(ctx).Where("warehouse_id = ?", warehouseID).Order("seq ASC").Find(&items).Error
	return items, err
}

func (r *inventoryItemRepo) SumRemaining(ctx context.Context, warehouseID, productID uuid.UUID) (int, error) {
	var total *int
	err := r.db.WithContext(ctx).Model(&model.InventoryItem{}).
		Where("warehouse_id = ? AND product_id = ?", warehouseID, productID).
		Select("SUM(remaining_quantity)").Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

func (r *inventoryItemRepo) CreateTx(tx *gorm.DB, item *model.InventoryItem) error {
	return tx.Create(item).Error
}

func (r *inventoryItemRepo) SaveTx(tx *gorm.DB, item *model.InventoryItem) error {
	return tx.Save(item).Error
}

func (r *inventoryItemRepo) DeleteTx(tx *gorm.DB, item *model.InventoryItem) error {
	return tx.Delete(item).Error
}

func (r *inventoryItemRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, "id = ?", id).Error
	return &item, err
}

func (r *inventoryItemRepo) ListForAllocationTx(tx *gorm.DB, warehouseID, productID uuid.UUID) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("warehouse_id = ? AND product_id = ?", warehouseID, productID).
		Order("selling_discount_pct DESC, seq ASC").
		Find(&items).Error
	return items, err
}

func (r *inventoryItemRepo) DB() *gorm.DB { return r.db }
