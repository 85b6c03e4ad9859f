package service

import (
	"context"
	"time"

	"github.com/msakr99/pharmasky-backend-sub001/internal/dto"
	"github.com/msakr99/pharmasky-backend-sub001/internal/model"
	"github.com/msakr99/pharmasky-backend-sub001/internal/pricing"
	"github.com/msakr99/pharmasky-backend-sub001/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OfferService manages seller offers: price derivation at creation time and
// remaining-amount bookkeeping while purchase-invoice lines consume them.
type OfferService interface {
	Create(ctx context.Context, req dto.CreateOfferRequest) (*dto.OfferResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.OfferResponse, error)
	List(ctx context.Context, filter dto.OfferFilter) (*dto.OfferListResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Tx-scoped bookkeeping, called from the purchase-invoice transaction
	// with the offer row locked. ConsumeTx fails with InsufficientOfferError
	// rather than letting remaining_amount go negative.
	ConsumeTx(tx *gorm.DB, offerID uuid.UUID, quantity int) error
	AdjustTx(tx *gorm.DB, offerID uuid.UUID, oldQuantity, newQuantity int) error
	ReleaseTx(tx *gorm.DB, offerID uuid.UUID, quantity int) error
}

type offerService struct {
	offers   repository.OfferRepository
	products repository.ProductRepository
}

func NewOfferService(offers repository.OfferRepository, products repository.ProductRepository) OfferService {
	return &offerService{offers: offers, products: products}
}

func (s *offerService) Create(ctx context.Context, req dto.CreateOfferRequest) (*dto.OfferResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, err
	}
	sellerID, err := uuid.Parse(req.SellerID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	sellingDiscountPct, sellingPrice, ok := pricing.SellingData(product.PublicPrice, req.PurchaseDiscountPct, req.ProfitPct)
	if !ok {
		return nil, ErrDiscountBelowProfit
	}

	var expiry *time.Time
	if req.ExpiryDate != nil {
		t, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			return nil, err
		}
		expiry = &t
	}

	offer := &model.Offer{
		SellerID:            sellerID,
		ProductID:           productID,
		StoreProductCode:    req.StoreProductCode,
		OperatingNumber:     req.OperatingNumber,
		AvailableAmount:     req.AvailableAmount,
		RemainingAmount:     req.AvailableAmount,
		MaxAmountPerInvoice: req.MaxAmountPerInvoice,
		ExpiryDate:          expiry,
		MinPurchase:         req.MinPurchase,
		PurchaseDiscountPct: req.PurchaseDiscountPct,
		PurchasePrice:       pricing.DiscountedUnitPrice(product.PublicPrice, req.PurchaseDiscountPct),
		SellingDiscountPct:  sellingDiscountPct,
		SellingPrice:        sellingPrice,
	}

	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, err
	}
	return offerToResponse(offer), nil
}

func (s *offerService) Get(ctx context.Context, id uuid.UUID) (*dto.OfferResponse, error) {
	offer, err := s.offers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return offerToResponse(offer), nil
}

func (s *offerService) List(ctx context.Context, filter dto.OfferFilter) (*dto.OfferListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	offers, total, err := s.offers.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.OfferListResponse{
		Data:  make([]dto.OfferResponse, 0, len(offers)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range offers {
		resp.Data = append(resp.Data, *offerToResponse(&offers[i]))
	}
	return resp, nil
}

func (s *offerService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.offers.Delete(ctx, id)
}

func (s *offerService) ConsumeTx(tx *gorm.DB, offerID uuid.UUID, quantity int) error {
	offer, err := s.offers.FindByIDTx(tx, offerID)
	if err != nil {
		return err
	}
	if offer.RemainingAmount < quantity {
		return &InsufficientOfferError{OfferID: offerID, Deficit: quantity - offer.RemainingAmount}
	}
	offer.RemainingAmount -= quantity
	return s.offers.SaveTx(tx, offer)
}

func (s *offerService) AdjustTx(tx *gorm.DB, offerID uuid.UUID, oldQuantity, newQuantity int) error {
	offer, err := s.offers.FindByIDTx(tx, offerID)
	if err != nil {
		return err
	}
	remaining := offer.RemainingAmount + oldQuantity - newQuantity
	if remaining < 0 {
		return &InsufficientOfferError{OfferID: offerID, Deficit: -remaining}
	}
	offer.RemainingAmount = remaining
	return s.offers.SaveTx(tx, offer)
}

func (s *offerService) ReleaseTx(tx *gorm.DB, offerID uuid.UUID, quantity int) error {
	offer, err := s.offers.FindByIDTx(tx, offerID)
	if err != nil {
		return err
	}
	offer.RemainingAmount += quantity
	// Giving back more than was ever consumed caps at the listed amount.
	if offer.RemainingAmount > offer.AvailableAmount {
		offer.RemainingAmount = offer.AvailableAmount
	}
	return s.offers.SaveTx(tx, offer)
}

func offerToResponse(o *model.Offer) *dto.OfferResponse {
	return &dto.OfferResponse{
		ID:                  o.ID.String(),
		SellerID:            o.SellerID.String(),
		ProductID:           o.ProductID.String(),
		StoreProductCode:    o.StoreProductCode,
		AvailableAmount:     o.AvailableAmount,
		RemainingAmount:     o.RemainingAmount,
		PurchaseDiscountPct: o.PurchaseDiscountPct,
		PurchasePrice:       o.PurchasePrice,
		SellingDiscountPct:  o.SellingDiscountPct,
		SellingPrice:        o.SellingPrice,
		IsMax:               o.IsMax,
	}
}
