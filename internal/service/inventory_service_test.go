package service

import (
	"context"
	"testing"

	"github.com/msakr99/pharmasky-backend-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newTestInventory() (InventoryService, *stubWarehouseRepo, *stubItemRepo, *stubProductRepo) {
	warehouses := newStubWarehouseRepo()
	items := newStubItemRepo()
	products := newStubProductRepo()
	svc := NewInventoryService(warehouses, items, products, nil, nil)
	return svc, warehouses, items, products
}

func seedProduct(t *testing.T, products *stubProductRepo, publicPrice string) *model.Product {
	t.Helper()
	p := &model.Product{Name: "Paracetamol 500mg", PublicPrice: d(publicPrice), Company: "Acme", Category: "analgesics", Active: true}
	require.NoError(t, products.Create(context.Background(), p))
	return p
}

// requireAggregatesConsistent asserts the warehouse counters equal the sums
// over its batches — the invariant every mutation must preserve.
func requireAggregatesConsistent(t *testing.T, warehouses *stubWarehouseRepo, items *stubItemRepo, warehouseID uuid.UUID) {
	t.Helper()
	w := warehouses.warehouses[warehouseID]
	require.NotNil(t, w)

	count, quantity := 0, 0
	purchase, selling := decimal.Zero, decimal.Zero
	for _, item := range items.items {
		if item.WarehouseID != warehouseID {
			continue
		}
		count++
		quantity += item.RemainingQuantity
		purchase = purchase.Add(item.PurchaseSubTotal)
		selling = selling.Add(item.SellingSubTotal)
	}

	assert.Equal(t, count, w.ItemCount, "item count")
	assert.Equal(t, quantity, w.TotalQuantity, "total quantity")
	assert.True(t, purchase.Equal(w.TotalPurchaseValue), "purchase value: counters %s, batches %s", w.TotalPurchaseValue, purchase)
	assert.True(t, selling.Equal(w.TotalSellingValue), "selling value: counters %s, batches %s", w.TotalSellingValue, selling)
}

func TestGetOrCreateMainWarehouse(t *testing.T) {
	ctx := context.Background()

	t.Run("auto-creates with zeroed counters", func(t *testing.T) {
		svc, warehouses, _, _ := newTestInventory()

		w, err := svc.GetOrCreateMainWarehouse(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, model.WarehouseMain, w.Kind)
		assert.Equal(t, 0, w.ItemCount)
		assert.True(t, w.TotalPurchaseValue.IsZero())

		// Second call returns the same warehouse, not another one.
		again, err := svc.GetOrCreateMainWarehouse(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, w.ID, again.ID)
		assert.Len(t, warehouses.warehouses, 1)
	})

	t.Run("raiseIfMissing reports instead of creating", func(t *testing.T) {
		svc, warehouses, _, _ := newTestInventory()

		_, err := svc.GetOrCreateMainWarehouse(ctx, true)
		assert.ErrorIs(t, err, ErrMainWarehouseMissing)
		assert.Empty(t, warehouses.warehouses)
	})
}

func TestCreateItem(t *testing.T) {
	ctx := context.Background()
	svc, warehouses, items, products := newTestInventory()
	product := seedProduct(t, products, "100.00")

	item, err := svc.CreateItem(ctx, ItemInput{
		ProductID:           product.ID,
		PurchaseDiscountPct: d("10"),
		SellingDiscountPct:  d("20"),
		Quantity:            10,
	})
	require.NoError(t, err)

	assert.True(t, d("90.00").Equal(item.PurchasePrice), "purchase price %s", item.PurchasePrice)
	assert.True(t, d("80.00").Equal(item.SellingPrice), "selling price %s", item.SellingPrice)
	assert.Equal(t, 10, item.Quantity)
	assert.Equal(t, 10, item.RemainingQuantity)
	assert.True(t, d("900.00").Equal(item.PurchaseSubTotal))
	assert.True(t, d("800.00").Equal(item.SellingSubTotal))

	// Landed in the auto-created main warehouse.
	main, err := warehouses.FindMain(ctx)
	require.NoError(t, err)
	assert.Equal(t, main.ID, item.WarehouseID)
	assert.Equal(t, 1, main.ItemCount)
	assert.Equal(t, 10, main.TotalQuantity)
	requireAggregatesConsistent(t, warehouses, items, main.ID)
}

func TestDeduct(t *testing.T) {
	ctx := context.Background()

	seedBatch := func(t *testing.T, svc InventoryService, productID uuid.UUID, sellingDiscount string, qty int) *model.InventoryItem {
		t.Helper()
		item, err := svc.CreateItem(ctx, ItemInput{
			ProductID:           productID,
			PurchaseDiscountPct: d("25"),
			SellingDiscountPct:  d(sellingDiscount),
			Quantity:            qty,
		})
		require.NoError(t, err)
		return item
	}

	t.Run("consumes most discounted batches first", func(t *testing.T) {
		svc, warehouses, items, products := newTestInventory()
		product := seedProduct(t, products, "100.00")

		a := seedBatch(t, svc, product.ID, "20", 5)
		b := seedBatch(t, svc, product.ID, "10", 5)

		require.NoError(t, svc.Deduct(ctx, product.ID, 7, nil))

		// A (20%) fully consumed and deleted; B (10%) covers the rest.
		_, ok := items.items[a.ID]
		assert.False(t, ok, "batch A should be gone")
		assert.Equal(t, 3, items.items[b.ID].RemainingQuantity)

		main, _ := warehouses.FindMain(ctx)
		requireAggregatesConsistent(t, warehouses, items, main.ID)
	})

	t.Run("equal discounts consumed in insertion order", func(t *testing.T) {
		svc, _, items, products := newTestInventory()
		product := seedProduct(t, products, "100.00")

		first := seedBatch(t, svc, product.ID, "15", 4)
		second := seedBatch(t, svc, product.ID, "15", 4)

		require.NoError(t, svc.Deduct(ctx, product.ID, 4, nil))

		_, ok := items.items[first.ID]
		assert.False(t, ok, "older batch consumed first")
		assert.Equal(t, 4, items.items[second.ID].RemainingQuantity)
	})

	t.Run("partial split recomputes sub-totals from remaining", func(t *testing.T) {
		svc, warehouses, items, products := newTestInventory()
		product := seedProduct(t, products, "100.00")

		batch, err := svc.CreateItem(ctx, ItemInput{
			ProductID:           product.ID,
			PurchaseDiscountPct: d("10"),
			SellingDiscountPct:  d("20"),
			Quantity:            10,
		})
		require.NoError(t, err)

		require.NoError(t, svc.Deduct(ctx, product.ID, 4, nil))

		got := items.items[batch.ID]
		assert.Equal(t, 6, got.RemainingQuantity)
		assert.Equal(t, 10, got.Quantity, "original quantity untouched")
		assert.True(t, d("540.00").Equal(got.PurchaseSubTotal), "purchase sub-total %s", got.PurchaseSubTotal)
		assert.True(t, d("480.00").Equal(got.SellingSubTotal), "selling sub-total %s", got.SellingSubTotal)

		main, _ := warehouses.FindMain(ctx)
		requireAggregatesConsistent(t, warehouses, items, main.ID)
	})

	t.Run("exact match deletes the batch, never keeps a zero row", func(t *testing.T) {
		svc, warehouses, items, products := newTestInventory()
		product := seedProduct(t, products, "100.00")

		batch := seedBatch(t, svc, product.ID, "10", 5)
		require.NoError(t, svc.Deduct(ctx, product.ID, 5, nil))

		assert.Empty(t, items.items)
		_, ok := items.items[batch.ID]
		assert.False(t, ok)

		main, _ := warehouses.FindMain(ctx)
		assert.Equal(t, 0, main.ItemCount)
		assert.Equal(t, 0, main.TotalQuantity)
		requireAggregatesConsistent(t, warehouses, items, main.ID)
	})

	t.Run("insufficient stock is all-or-nothing", func(t *testing.T) {
		svc, warehouses, items, products := newTestInventory()
		product := seedProduct(t, products, "100.00")

		seedBatch(t, svc, product.ID, "20", 5)
		b := seedBatch(t, svc, product.ID, "10", 5)

		err := svc.Deduct(ctx, product.ID, 11, nil)

		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 11, stockErr.Requested)
		assert.Equal(t, 10, stockErr.Available)
		assert.Equal(t, 1, stockErr.Shortfall())

		// Nothing was consumed, not even from the first batch.
		assert.Len(t, items.items, 2)
		assert.Equal(t, 5, items.items[b.ID].RemainingQuantity)
		main, _ := warehouses.FindMain(ctx)
		assert.Equal(t, 10, main.TotalQuantity)
	})

	t.Run("non-positive quantities are rejected", func(t *testing.T) {
		svc, warehouses, items, products := newTestInventory()
		product := seedProduct(t, products, "100.00")
		seedBatch(t, svc, product.ID, "10", 5)

		assert.ErrorIs(t, svc.Deduct(ctx, product.ID, 0, nil), ErrNonPositiveQuantity)
		// A negative request must never reach the split branch and add stock.
		assert.ErrorIs(t, svc.Deduct(ctx, product.ID, -3, nil), ErrNonPositiveQuantity)

		main, _ := warehouses.FindMain(ctx)
		assert.Equal(t, 5, main.TotalQuantity)
		requireAggregatesConsistent(t, warehouses, items, main.ID)
	})

	t.Run("zero-remaining batch in candidate set is an integrity error", func(t *testing.T) {
		svc, _, items, products := newTestInventory()
		product := seedProduct(t, products, "100.00")

		batch := seedBatch(t, svc, product.ID, "10", 5)
		items.items[batch.ID].RemainingQuantity = 0 // corrupt behind the service's back

		err := svc.Deduct(ctx, product.ID, 1, nil)
		var integrityErr *IntegrityError
		assert.ErrorAs(t, err, &integrityErr)
	})
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (InventoryService, *stubWarehouseRepo, *stubItemRepo, *model.Product, *model.InventoryItem) {
		t.Helper()
		svc, warehouses, items, products := newTestInventory()
		product := seedProduct(t, products, "100.00")
		item, err := svc.CreateItem(ctx, ItemInput{
			ProductID:           product.ID,
			PurchaseDiscountPct: d("10"),
			SellingDiscountPct:  d("20"),
			Quantity:            10,
		})
		require.NoError(t, err)
		return svc, warehouses, items, product, item
	}

	t.Run("quantity change passes the delta to remaining", func(t *testing.T) {
		svc, warehouses, items, product, item := setup(t)
		require.NoError(t, svc.Deduct(ctx, product.ID, 4, nil)) // remaining 6

		qty := 12
		updated, err := svc.UpdateItem(ctx, item.ID, ItemChanges{Quantity: &qty})
		require.NoError(t, err)

		assert.Equal(t, 12, updated.Quantity)
		assert.Equal(t, 8, updated.RemainingQuantity) // 6 + (12 − 10)
		assert.True(t, d("720.00").Equal(updated.PurchaseSubTotal))
		assert.True(t, d("640.00").Equal(updated.SellingSubTotal))

		main, _ := warehouses.FindMain(ctx)
		requireAggregatesConsistent(t, warehouses, items, main.ID)
	})

	t.Run("reducing quantity below consumption fails", func(t *testing.T) {
		svc, warehouses, items, product, item := setup(t)
		require.NoError(t, svc.Deduct(ctx, product.ID, 8, nil)) // remaining 2

		qty := 3 // 2 + (3 − 10) = −5
		_, err := svc.UpdateItem(ctx, item.ID, ItemChanges{Quantity: &qty})

		var negErr *NegativeRemainingError
		require.ErrorAs(t, err, &negErr)
		assert.Equal(t, 5, negErr.Deficit)

		// Batch unchanged.
		assert.Equal(t, 2, items.items[item.ID].RemainingQuantity)
		assert.Equal(t, 10, items.items[item.ID].Quantity)
		main, _ := warehouses.FindMain(ctx)
		requireAggregatesConsistent(t, warehouses, items, main.ID)
	})

	t.Run("discount change recomputes price and sub-totals", func(t *testing.T) {
		svc, warehouses, items, _, item := setup(t)

		newDiscount := d("30")
		updated, err := svc.UpdateItem(ctx, item.ID, ItemChanges{SellingDiscountPct: &newDiscount})
		require.NoError(t, err)

		assert.True(t, d("70.00").Equal(updated.SellingPrice))
		assert.True(t, d("700.00").Equal(updated.SellingSubTotal))
		// Purchase side untouched.
		assert.True(t, d("90.00").Equal(updated.PurchasePrice))

		main, _ := warehouses.FindMain(ctx)
		requireAggregatesConsistent(t, warehouses, items, main.ID)
	})

	t.Run("negative remaining override is rejected", func(t *testing.T) {
		svc, warehouses, items, _, item := setup(t)

		remaining := -5
		_, err := svc.UpdateItem(ctx, item.ID, ItemChanges{RemainingQuantity: &remaining})

		var remErr *InvalidRemainingError
		require.ErrorAs(t, err, &remErr)
		assert.Equal(t, -5, remErr.Remaining)

		// Neither the batch nor the warehouse counters moved.
		assert.Equal(t, 10, items.items[item.ID].RemainingQuantity)
		main, _ := warehouses.FindMain(ctx)
		assert.Equal(t, 10, main.TotalQuantity)
		assert.True(t, d("900.00").Equal(main.TotalPurchaseValue))
		requireAggregatesConsistent(t, warehouses, items, main.ID)
	})

	t.Run("remaining above the quantity is rejected", func(t *testing.T) {
		svc, _, items, _, item := setup(t)

		remaining := 11
		_, err := svc.UpdateItem(ctx, item.ID, ItemChanges{RemainingQuantity: &remaining})

		var remErr *InvalidRemainingError
		require.ErrorAs(t, err, &remErr)
		assert.Equal(t, 10, remErr.Quantity)
		assert.Equal(t, 10, items.items[item.ID].RemainingQuantity)
	})

	t.Run("explicit remaining override wins over the delta formula", func(t *testing.T) {
		svc, warehouses, items, _, item := setup(t)

		qty, remaining := 20, 15
		updated, err := svc.UpdateItem(ctx, item.ID, ItemChanges{Quantity: &qty, RemainingQuantity: &remaining})
		require.NoError(t, err)

		assert.Equal(t, 20, updated.Quantity)
		assert.Equal(t, 15, updated.RemainingQuantity)
		assert.True(t, d("1350.00").Equal(updated.PurchaseSubTotal))

		main, _ := warehouses.FindMain(ctx)
		requireAggregatesConsistent(t, warehouses, items, main.ID)
	})
}

func TestTransferItem(t *testing.T) {
	ctx := context.Background()
	svc, warehouses, items, products := newTestInventory()
	product := seedProduct(t, products, "100.00")

	item, err := svc.CreateItem(ctx, ItemInput{
		ProductID:           product.ID,
		PurchaseDiscountPct: d("10"),
		SellingDiscountPct:  d("20"),
		Quantity:            10,
	})
	require.NoError(t, err)

	branch, err := svc.CreateWarehouse(ctx, "Downtown branch", model.WarehouseSecondary)
	require.NoError(t, err)

	moved, err := svc.TransferItem(ctx, item.ID, branch.ID)
	require.NoError(t, err)

	assert.Equal(t, branch.ID, moved.WarehouseID)
	assert.Equal(t, 10, moved.RemainingQuantity, "quantities unchanged by transfer")
	assert.True(t, d("900.00").Equal(moved.PurchaseSubTotal))

	main, _ := warehouses.FindMain(ctx)
	assert.Equal(t, 0, main.ItemCount)
	assert.Equal(t, 10, warehouses.warehouses[branch.ID].TotalQuantity)
	requireAggregatesConsistent(t, warehouses, items, main.ID)
	requireAggregatesConsistent(t, warehouses, items, branch.ID)
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()
	svc, warehouses, items, products := newTestInventory()
	product := seedProduct(t, products, "100.00")

	item, err := svc.CreateItem(ctx, ItemInput{
		ProductID:           product.ID,
		PurchaseDiscountPct: d("10"),
		SellingDiscountPct:  d("20"),
		Quantity:            10,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteItem(ctx, item.ID))

	assert.Empty(t, items.items)
	main, _ := warehouses.FindMain(ctx)
	assert.Equal(t, 0, main.ItemCount)
	assert.Equal(t, 0, main.TotalQuantity)
	assert.True(t, main.TotalPurchaseValue.IsZero())
}

func TestCreateItemFromInvoiceLine(t *testing.T) {
	ctx := context.Background()
	svc, warehouses, items, products := newTestInventory()
	product := seedProduct(t, products, "100.00")

	line := &model.PurchaseInvoiceItem{
		ID:                  uuid.New(),
		InvoiceID:           uuid.New(),
		ProductID:           product.ID,
		Status:              model.PurchaseItemReceived,
		OperatingNumber:     "LOT-42",
		PurchaseDiscountPct: d("10"),
		PurchasePrice:       d("90.00"),
		SellingDiscountPct:  d("20"),
		SellingPrice:        d("80.00"),
		Quantity:            10,
		SubTotal:            d("900.00"),
	}

	item, err := svc.CreateItemFromInvoiceLine(ctx, line, nil)
	require.NoError(t, err)

	require.NotNil(t, item.PurchaseInvoiceItemID)
	assert.Equal(t, line.ID, *item.PurchaseInvoiceItemID)
	assert.Equal(t, "LOT-42", item.OperatingNumber)
	assert.Equal(t, 10, item.RemainingQuantity)
	assert.True(t, d("900.00").Equal(item.PurchaseSubTotal), "copied from the line")
	assert.True(t, d("800.00").Equal(item.SellingSubTotal), "derived from selling price")

	// Reachable through the back-reference lookup.
	found, err := items.FindByInvoiceItemID(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)

	main, _ := warehouses.FindMain(ctx)
	requireAggregatesConsistent(t, warehouses, items, main.ID)
}

func TestAvailability(t *testing.T) {
	ctx := context.Background()
	svc, _, _, products := newTestInventory()
	product := seedProduct(t, products, "100.00")

	available, err := svc.Availability(ctx, product.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, available)

	for _, qty := range []int{3, 4} {
		_, err := svc.CreateItem(ctx, ItemInput{
			ProductID:           product.ID,
			PurchaseDiscountPct: d("10"),
			SellingDiscountPct:  d("20"),
			Quantity:            qty,
		})
		require.NoError(t, err)
	}

	available, err = svc.Availability(ctx, product.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, available)
}
