package repository

import (
	"context"

	"github.com/msakr99/pharmasky-backend-sub001/internal/dto"
	"github.com/msakr99/pharmasky-backend-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OfferRepository defines the data access contract for seller offers.
type OfferRepository interface {
	Create(ctx context.Context, o *model.Offer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Offer, error)
	List(ctx context.Context, filter dto.OfferFilter) ([]model.Offer, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Tx-scoped methods — remaining_amount bookkeeping happens inside the
	// purchase-invoice transaction, with the offer row locked.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Offer, error)
	SaveTx(tx *gorm.DB, o *model.Offer) error

	DB() *gorm.DB
}

type offerRepo struct{ db *gorm.DB }

func NewOfferRepository(db *gorm.DB) OfferRepository { return &offerRepo{db: db} }

func (r *offerRepo) Create(ctx context.Context, o *model.Offer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *offerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Offer, error) {
	var o model.Offer
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	return &o, err
}

func (r *offerRepo) List(ctx context.Context, filter dto.OfferFilter) ([]model.Offer, int64, error) {
	var offers []model.Offer
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Offer{})

	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.SellerID != "" {
		q = q.Where("seller_id = ?", filter.SellerID)
	}
	if filter.InStockOnly {
		q = q.Where("remaining_amount > 0")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("selling_discount_pct DESC, created_at ASC").Limit(filter.Limit).Offset(offset).Find(&offers).Error
	return offers, total, err
}

func (r *offerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Offer{}, "id = ?", id).Error
}

func (r *offerRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Offer, error) {
	var o model.Offer
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, "id = ?", id).Error
	return &o, err
}

func (r *offerRepo) SaveTx(tx *gorm.DB, o *model.Offer) error {
	return tx.Save(o).Error
}

func (r *offerRepo) DB() *gorm.DB { return r.db }
