package repository

import (
	"context"

	"github.com/msakr99/pharmasky-backend-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseInvoiceRepository defines data access for purchase invoices and
// their lines.
type PurchaseInvoiceRepository interface {
	Create(ctx context.Context, inv *model.PurchaseInvoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoice, error)
	// FindByIDWithItems preloads the invoice lines.
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoice, error)
	FindItemByID(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoiceItem, error)

	CreateTx(tx *gorm.DB, inv *model.PurchaseInvoice) error
	SaveTx(tx *gorm.DB, inv *model.PurchaseInvoice) error
	CreateItemTx(tx *gorm.DB, item *model.PurchaseInvoiceItem) error
	SaveItemTx(tx *gorm.DB, item *model.PurchaseInvoiceItem) error
	DeleteItemTx(tx *gorm.DB, item *model.PurchaseInvoiceItem) error

	DB() *gorm.DB
}

type purchaseInvoiceRepo struct{ db *gorm.DB }

func NewPurchaseInvoiceRepository(db *gorm.DB) PurchaseInvoiceRepository {
	return &purchaseInvoiceRepo{db: db}
}

func (r *purchaseInvoiceRepo) Create(ctx context.Context, inv *model.PurchaseInvoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *purchaseInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoice, error) {
	var inv model.PurchaseInvoice
	err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error
	return &inv, err
}

func (r *purchaseInvoiceRepo) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoice, error) {
	var inv model.PurchaseInvoice
	err := r.db.WithContext(ctx).Preload("Items").First(&inv, "id = ?", id).Error
	return &inv, err
}

func (r *purchaseInvoiceRepo) FindItemByID(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoiceItem, error) {
	var item model.PurchaseInvoiceItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	return &item, err
}

func (r *purchaseInvoiceRepo) CreateTx(tx *gorm.DB, inv *model.PurchaseInvoice) error {
	return tx.Create(inv).Error
}

func (r *purchaseInvoiceRepo) SaveTx(tx *gorm.DB, inv *model.PurchaseInvoice) error {
	return tx.Save(inv).Error
}

func (r *purchaseInvoiceRepo) CreateItemTx(tx *gorm.DB, item *model.PurchaseInvoiceItem) error {
	return tx.Create(item).Error
}

func (r *purchaseInvoiceRepo) SaveItemTx(tx *gorm.DB, item *model.PurchaseInvoiceItem) error {
	return tx.Save(item).Error
}

func (r *purchaseInvoiceRepo) DeleteItemTx(tx *gorm.DB, item *model.PurchaseInvoiceItem) error {
	return tx.Delete(item).Error
}

func (r *purchaseInvoiceRepo) DB() *gorm.DB { return r.db }

// SaleInvoiceRepository defines data access for sale invoices and their lines.
type SaleInvoiceRepository interface {
	Create(ctx context.Context, inv *model.SaleInvoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SaleInvoice, error)
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.SaleInvoice, error)

	CreateTx(tx *gorm.DB, inv *model.SaleInvoice) error
	SaveTx(tx *gorm.DB, inv *model.SaleInvoice) error
	CreateItemTx(tx *gorm.DB, item *model.SaleInvoiceItem) error

	DB() *gorm.DB
}

type saleInvoiceRepo struct{ db *gorm.DB }

func NewSaleInvoiceRepository(db *gorm.DB) SaleInvoiceRepository {
	return &saleInvoiceRepo{db: db}
}

func (r *saleInvoiceRepo) Create(ctx context.Context, inv *model.SaleInvoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *saleInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SaleInvoice, error) {
	var inv model.SaleInvoice
	err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error
	return &inv, err
}

func (r *saleInvoiceRepo) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.SaleInvoice, error) {
	var inv model.SaleInvoice
	err := r.db.WithContext(ctx).Preload("Items").First(&inv, "id = ?", id).Error
	return &inv, err
}

func (r *saleInvoiceRepo) CreateTx(tx *gorm.DB, inv *model.SaleInvoice) error {
	return tx.Create(inv).Error
}

func (r *saleInvoiceRepo) SaveTx(tx *gorm.DB, inv *model.SaleInvoice) error {
	return tx.Save(inv).Error
}

func (r *saleInvoiceRepo) CreateItemTx(tx *gorm.DB, item *model.SaleInvoiceItem) error {
	return tx.Create(item).Error
}

func (r *saleInvoiceRepo) DB() *gorm.DB { return r.db }
