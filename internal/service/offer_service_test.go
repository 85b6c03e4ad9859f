package service

import (
	"context"
	"testing"

	"github.com/msakr99/pharmasky-backend-sub001/internal/dto"
	"github.com/msakr99/pharmasky-backend-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOffers() (OfferService, *stubOfferRepo, *stubProductRepo) {
	offers := newStubOfferRepo()
	products := newStubProductRepo()
	return NewOfferService(offers, products), offers, products
}

func TestOfferCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("derives selling data from discount minus profit", func(t *testing.T) {
		svc, _, products := newTestOffers()
		product := seedProduct(t, products, "100.00")

		resp, err := svc.Create(ctx, dto.CreateOfferRequest{
			SellerID:            uuid.NewString(),
			ProductID:           product.ID.String(),
			AvailableAmount:     50,
			PurchaseDiscountPct: d("20"),
			ProfitPct:           d("5"),
		})
		require.NoError(t, err)

		assert.True(t, d("15").Equal(resp.SellingDiscountPct), "selling discount %s", resp.SellingDiscountPct)
		assert.True(t, d("85.00").Equal(resp.SellingPrice))
		assert.True(t, d("80.00").Equal(resp.PurchasePrice))
		assert.Equal(t, 50, resp.RemainingAmount, "remaining starts at the listed amount")
	})

	t.Run("rejects profit above the purchase discount", func(t *testing.T) {
		svc, offers, products := newTestOffers()
		product := seedProduct(t, products, "100.00")

		_, err := svc.Create(ctx, dto.CreateOfferRequest{
			SellerID:            uuid.NewString(),
			ProductID:           product.ID.String(),
			AvailableAmount:     10,
			PurchaseDiscountPct: d("5"),
			ProfitPct:           d("10"),
		})
		assert.ErrorIs(t, err, ErrDiscountBelowProfit)
		assert.Empty(t, offers.offers)
	})
}

func TestOfferBookkeeping(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (OfferService, *stubOfferRepo, uuid.UUID) {
		t.Helper()
		svc, offers, products := newTestOffers()
		product := seedProduct(t, products, "100.00")
		resp, err := svc.Create(ctx, dto.CreateOfferRequest{
			SellerID:            uuid.NewString(),
			ProductID:           product.ID.String(),
			AvailableAmount:     10,
			PurchaseDiscountPct: d("20"),
			ProfitPct:           d("0"),
		})
		require.NoError(t, err)
		id, err := uuid.Parse(resp.ID)
		require.NoError(t, err)
		return svc, offers, id
	}

	t.Run("consume decrements remaining", func(t *testing.T) {
		svc, offers, id := seed(t)
		require.NoError(t, svc.ConsumeTx(nil, id, 4))
		assert.Equal(t, 6, offers.offers[id].RemainingAmount)
	})

	t.Run("consume never goes negative", func(t *testing.T) {
		svc, offers, id := seed(t)
		err := svc.ConsumeTx(nil, id, 11)
		var offerErr *InsufficientOfferError
		require.ErrorAs(t, err, &offerErr)
		assert.Equal(t, 1, offerErr.Deficit)
		assert.Equal(t, 10, offers.offers[id].RemainingAmount)
	})

	t.Run("adjust applies the quantity delta", func(t *testing.T) {
		svc, offers, id := seed(t)
		require.NoError(t, svc.ConsumeTx(nil, id, 4)) // remaining 6
		require.NoError(t, svc.AdjustTx(nil, id, 4, 7))
		assert.Equal(t, 3, offers.offers[id].RemainingAmount)
	})

	t.Run("release caps at the listed amount", func(t *testing.T) {
		svc, offers, id := seed(t)
		require.NoError(t, svc.ConsumeTx(nil, id, 4))
		require.NoError(t, svc.ReleaseTx(nil, id, 9))
		assert.Equal(t, 10, offers.offers[id].RemainingAmount)
	})
}

func TestOfferList(t *testing.T) {
	ctx := context.Background()
	svc, offers, products := newTestOffers()
	product := seedProduct(t, products, "100.00")

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, dto.CreateOfferRequest{
			SellerID:            uuid.NewString(),
			ProductID:           product.ID.String(),
			AvailableAmount:     5,
			PurchaseDiscountPct: d("15"),
			ProfitPct:           d("3"),
		})
		require.NoError(t, err)
	}

	// Exhaust one offer so in_stock_only filters it out.
	var exhausted *model.Offer
	for _, o := range offers.offers {
		exhausted = o
		break
	}
	exhausted.RemainingAmount = 0

	resp, err := svc.List(ctx, dto.OfferFilter{InStockOnly: true})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, int64(2), resp.Total)
}
