package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/msakr99/pharmasky-backend-sub001/internal/model"
	"github.com/msakr99/pharmasky-backend-sub001/internal/pricing"
	"github.com/msakr99/pharmasky-backend-sub001/internal/repository"
	"github.com/msakr99/pharmasky-backend-sub001/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// aggregateOp selects which warehouse counter adjustment applies. Using a
// typed constant (instead of an operation string) makes an opUpdate call
// without its snapshot impossible to write by accident: updateAggregate
// rejects it before touching the counters.
type aggregateOp int

const (
	opAdd aggregateOp = iota
	opUpdate
	opRemove
)

// itemSnapshot captures the batch values that feed the warehouse counters.
// Callers take the snapshot BEFORE mutating the batch and hand it to
// updateAggregate for opUpdate; the bookkeeping never recomputes diffs
// itself.
type itemSnapshot struct {
	RemainingQuantity int
	PurchaseSubTotal  decimal.Decimal
	SellingSubTotal   decimal.Decimal
}

func snapshotOf(item *model.InventoryItem) itemSnapshot {
	return itemSnapshot{
		RemainingQuantity: item.RemainingQuantity,
		PurchaseSubTotal:  item.PurchaseSubTotal,
		SellingSubTotal:   item.SellingSubTotal,
	}
}

// ItemInput carries the caller-supplied fields for a direct batch creation.
// Unit prices and sub-totals are derived, never accepted from the caller.
type ItemInput struct {
	Warehouse           *model.Warehouse // nil = main warehouse
	ProductID           uuid.UUID
	ExpiryDate          *time.Time
	OperatingNumber     string
	PurchaseDiscountPct decimal.Decimal
	SellingDiscountPct  decimal.Decimal
	Quantity            int
}

// ItemChanges is the partial change-set accepted by UpdateItem. Warehouse,
// product, prices, sub-totals, and the invoice back-reference are immutable
// through this path by construction — they simply have no field here.
type ItemChanges struct {
	PurchaseDiscountPct *decimal.Decimal
	SellingDiscountPct  *decimal.Decimal
	Quantity            *int
	RemainingQuantity   *int
	ExpiryDate          *time.Time
	OperatingNumber     *string
}

// InventoryService owns warehouses, batches, and the allocation engine.
// Every mutating operation runs in a single database transaction and keeps
// the warehouse aggregate counters equal to the sum over its batches.
type InventoryService interface {
	// GetOrCreateMainWarehouse returns the single MAIN warehouse,
	// auto-creating it with zeroed counters unless raiseIfMissing is set,
	// in which case ErrMainWarehouseMissing is returned.
	GetOrCreateMainWarehouse(ctx context.Context, raiseIfMissing bool) (*model.Warehouse, error)
	CreateWarehouse(ctx context.Context, name string, kind model.WarehouseKind) (*model.Warehouse, error)
	GetWarehouse(ctx context.Context, id uuid.UUID) (*model.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]model.Warehouse, error)
	ListItems(ctx context.Context, warehouseID uuid.UUID) ([]model.InventoryItem, error)

	// Availability sums remaining quantity over the product's batches in the
	// warehouse (main when nil). Read-only.
	Availability(ctx context.Context, productID uuid.UUID, warehouse *model.Warehouse) (int, error)

	// Deduct consumes quantity from the warehouse's batches of the product,
	// most heavily discounted batches first. All-or-nothing: on an
	// InsufficientStockError no row or counter has changed.
	Deduct(ctx context.Context, productID uuid.UUID, quantity int, warehouse *model.Warehouse) error
	// DeductTx is Deduct within a caller-provided transaction, used by the
	// invoice workflow to keep deductions atomic with invoice state changes.
	DeductTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int, warehouse *model.Warehouse) error

	CreateItem(ctx context.Context, input ItemInput) (*model.InventoryItem, error)
	CreateItemFromInvoiceLine(ctx context.Context, line *model.PurchaseInvoiceItem, warehouse *model.Warehouse) (*model.InventoryItem, error)
	CreateItemFromInvoiceLineTx(ctx context.Context, tx *gorm.DB, line *model.PurchaseInvoiceItem, warehouse *model.Warehouse) (*model.InventoryItem, error)
	UpdateItem(ctx context.Context, id uuid.UUID, changes ItemChanges) (*model.InventoryItem, error)
	TransferItem(ctx context.Context, id, newWarehouseID uuid.UUID) (*model.InventoryItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	DeleteItemTx(ctx context.Context, tx *gorm.DB, item *model.InventoryItem) error
}

type inventoryService struct {
	warehouses repository.WarehouseRepository
	items      repository.InventoryItemRepository
	products   repository.ProductRepository
	rdb        *redis.Client      // availability cache invalidation — best effort, may be nil
	dispatcher *worker.Dispatcher // low-stock alert jobs — may be nil
}

func NewInventoryService(
	warehouses repository.WarehouseRepository,
	items repository.InventoryItemRepository,
	products repository.ProductRepository,
	rdb *redis.Client,
	dispatcher *worker.Dispatcher,
) InventoryService {
	return &inventoryService{
		warehouses: warehouses,
		items:      items,
		products:   products,
		rdb:        rdb,
		dispatcher: dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// StockCacheKey is the Redis key under which the stock-check endpoint
// caches a product's availability in a warehouse. The service deletes it
// on every mutation touching that product.
func StockCacheKey(warehouseID, productID uuid.UUID) string {
	return "stock:" + warehouseID.String() + ":" + productID.String()
}

// ── Warehouses ───────────────────────────────────────────────────────────────

func (s *inventoryService) GetOrCreateMainWarehouse(ctx context.Context, raiseIfMissing bool) (*model.Warehouse, error) {
	w, err := s.warehouses.FindMain(ctx)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if raiseIfMissing {
		return nil, ErrMainWarehouseMissing
	}

	w = &model.Warehouse{
		Name:               "Auto created main warehouse",
		Kind:               model.WarehouseMain,
		TotalPurchaseValue: decimal.Zero,
		TotalSellingValue:  decimal.Zero,
	}
	if err := s.warehouses.Create(ctx, w); err != nil {
		return nil, err
	}
	log.Info().Str("warehouse_id", w.ID.String()).Msg("auto-created main warehouse")
	return w, nil
}

func (s *inventoryService) CreateWarehouse(ctx context.Context, name string, kind model.WarehouseKind) (*model.Warehouse, error) {
	w := &model.Warehouse{
		Name:               name,
		Kind:               kind,
		TotalPurchaseValue: decimal.Zero,
		TotalSellingValue:  decimal.Zero,
	}
	if err := s.warehouses.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *inventoryService) GetWarehouse(ctx context.Context, id uuid.UUID) (*model.Warehouse, error) {
	return s.warehouses.FindByID(ctx, id)
}

func (s *inventoryService) ListWarehouses(ctx context.Context) ([]model.Warehouse, error) {
	return s.warehouses.List(ctx)
}

func (s *inventoryService) ListItems(ctx context.Context, warehouseID uuid.UUID) ([]model.InventoryItem, error) {
	return s.items.ListByWarehouse(ctx, warehouseID)
}

func (s *inventoryService) Availability(ctx context.Context, productID uuid.UUID, warehouse *model.Warehouse) (int, error) {
	if warehouse == nil {
		w, err := s.GetOrCreateMainWarehouse(ctx, false)
		if err != nil {
			return 0, err
		}
		warehouse = w
	}
	return s.items.SumRemaining(ctx, warehouse.ID, productID)
}

// ── Aggregate bookkeeping ────────────────────────────────────────────────────

// updateAggregate applies one batch mutation to the warehouse counters and
// persists the warehouse row immediately. opUpdate requires the caller's
// pre-mutation snapshot; ItemCount is only touched by add/remove.
func (s *inventoryService) updateAggregate(tx *gorm.DB, w *model.Warehouse, op aggregateOp, item *model.InventoryItem, old *itemSnapshot) error {
	switch op {
	case opAdd:
		w.ItemCount++
		w.TotalQuantity += item.RemainingQuantity
		w.TotalPurchaseValue = w.TotalPurchaseValue.Add(item.PurchaseSubTotal)
		w.TotalSellingValue = w.TotalSellingValue.Add(item.SellingSubTotal)

	case opUpdate:
		if old == nil {
			return &IntegrityError{Msg: "aggregate update without pre-mutation snapshot"}
		}
		w.TotalQuantity += item.RemainingQuantity - old.RemainingQuantity
		w.TotalPurchaseValue = w.TotalPurchaseValue.Add(item.PurchaseSubTotal.Sub(old.PurchaseSubTotal))
		w.TotalSellingValue = w.TotalSellingValue.Add(item.SellingSubTotal.Sub(old.SellingSubTotal))

	case opRemove:
		w.ItemCount--
		w.TotalQuantity -= item.RemainingQuantity
		w.TotalPurchaseValue = w.TotalPurchaseValue.Sub(item.PurchaseSubTotal)
		w.TotalSellingValue = w.TotalSellingValue.Sub(item.SellingSubTotal)
	}

	return s.warehouses.SaveTx(tx, w)
}

// ── Allocation engine ────────────────────────────────────────────────────────

func (s *inventoryService) Deduct(ctx context.Context, productID uuid.UUID, quantity int, warehouse *model.Warehouse) error {
	return runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		return s.DeductTx(ctx, tx, productID, quantity, warehouse)
	})
}

// DeductTx walks the product's batches in selling-discount-descending order
// (seq ascending on ties) and consumes quantity across them. The warehouse
// row is locked before the batch rows, giving concurrent deductions a fixed
// lock order; the sum pre-check makes the operation all-or-nothing at the
// product level.
func (s *inventoryService) DeductTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int, warehouse *model.Warehouse) error {
	if quantity <= 0 {
		return ErrNonPositiveQuantity
	}
	if warehouse == nil {
		w, err := s.GetOrCreateMainWarehouse(ctx, false)
		if err != nil {
			return err
		}
		warehouse = w
	}

	w, err := s.warehouses.FindByIDTx(tx, warehouse.ID)
	if err != nil {
		return err
	}

	items, err := s.items.ListForAllocationTx(tx, w.ID, productID)
	if err != nil {
		return err
	}

	available := 0
	for i := range items {
		// Exhausted batches are deleted on consumption; one surviving here
		// means a previous mutation bypassed the bookkeeping.
		if items[i].RemainingQuantity <= 0 {
			return &IntegrityError{Msg: fmt.Sprintf(
				"batch %s in allocation set has remaining quantity %d", items[i].ID, items[i].RemainingQuantity)}
		}
		available += items[i].RemainingQuantity
	}
	if available < quantity {
		return &InsufficientStockError{ProductID: productID, Requested: quantity, Available: available}
	}

	remaining := quantity
	for i := range items {
		if remaining == 0 {
			break
		}
		item := &items[i]

		switch {
		case item.RemainingQuantity == remaining:
			// Exact match: the batch goes away entirely, never a zero row.
			if err := s.updateAggregate(tx, w, opRemove, item, nil); err != nil {
				return err
			}
			if err := s.items.DeleteTx(tx, item); err != nil {
				return err
			}
			remaining = 0

		case item.RemainingQuantity > remaining:
			// Partial split: shrink the batch and recompute its sub-totals
			// from the new remaining quantity.
			old := snapshotOf(item)
			item.RemainingQuantity -= remaining
			item.PurchaseSubTotal = pricing.SubTotal(item.PurchasePrice, item.RemainingQuantity)
			item.SellingSubTotal = pricing.SubTotal(item.SellingPrice, item.RemainingQuantity)
			if err := s.items.SaveTx(tx, item); err != nil {
				return err
			}
			if err := s.updateAggregate(tx, w, opUpdate, item, &old); err != nil {
				return err
			}
			remaining = 0

		default:
			// Batch fully insufficient: consume it whole and move on.
			remaining -= item.RemainingQuantity
			if err := s.updateAggregate(tx, w, opRemove, item, nil); err != nil {
				return err
			}
			if err := s.items.DeleteTx(tx, item); err != nil {
				return err
			}
		}
	}

	s.invalidateStockCache(ctx, w.ID, productID)
	s.maybeAlertOutOfStock(ctx, w.ID, productID, available-quantity)
	return nil
}

// ── Item lifecycle ───────────────────────────────────────────────────────────

func (s *inventoryService) CreateItem(ctx context.Context, input ItemInput) (*model.InventoryItem, error) {
	warehouse := input.Warehouse
	if warehouse == nil {
		w, err := s.GetOrCreateMainWarehouse(ctx, false)
		if err != nil {
			return nil, err
		}
		warehouse = w
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	purchasePrice := pricing.DiscountedUnitPrice(product.PublicPrice, input.PurchaseDiscountPct)
	sellingPrice := pricing.DiscountedUnitPrice(product.PublicPrice, input.SellingDiscountPct)

	item := &model.InventoryItem{
		WarehouseID:         warehouse.ID,
		ProductID:           input.ProductID,
		ExpiryDate:          input.ExpiryDate,
		OperatingNumber:     input.OperatingNumber,
		PurchaseDiscountPct: input.PurchaseDiscountPct,
		PurchasePrice:       purchasePrice,
		SellingDiscountPct:  input.SellingDiscountPct,
		SellingPrice:        sellingPrice,
		Quantity:            input.Quantity,
		RemainingQuantity:   input.Quantity,
		PurchaseSubTotal:    pricing.SubTotal(purchasePrice, input.Quantity),
		SellingSubTotal:     pricing.SubTotal(sellingPrice, input.Quantity),
	}

	err = runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		w, err := s.warehouses.FindByIDTx(tx, warehouse.ID)
		if err != nil {
			return err
		}
		if err := s.items.CreateTx(tx, item); err != nil {
			return err
		}
		return s.updateAggregate(tx, w, opAdd, item, nil)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStockCache(ctx, warehouse.ID, input.ProductID)
	return item, nil
}

func (s *inventoryService) CreateItemFromInvoiceLine(ctx context.Context, line *model.PurchaseInvoiceItem, warehouse *model.Warehouse) (*model.InventoryItem, error) {
	var item *model.InventoryItem
	err := runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		var err error
		item, err = s.CreateItemFromInvoiceLineTx(ctx, tx, line, warehouse)
		return err
	})
	return item, err
}

// CreateItemFromInvoiceLineTx copies quantity, discounts, expiry, and lot
// number from the invoice line and stamps the back-reference. The batch
// starts with remaining = ordered quantity regardless of any later
// consumption recorded on the invoice.
func (s *inventoryService) CreateItemFromInvoiceLineTx(ctx context.Context, tx *gorm.DB, line *model.PurchaseInvoiceItem, warehouse *model.Warehouse) (*model.InventoryItem, error) {
	if warehouse == nil {
		w, err := s.GetOrCreateMainWarehouse(ctx, false)
		if err != nil {
			return nil, err
		}
		warehouse = w
	}

	w, err := s.warehouses.FindByIDTx(tx, warehouse.ID)
	if err != nil {
		return nil, err
	}

	lineID := line.ID
	item := &model.InventoryItem{
		WarehouseID:           w.ID,
		ProductID:             line.ProductID,
		PurchaseInvoiceItemID: &lineID,
		ExpiryDate:            line.ExpiryDate,
		OperatingNumber:       line.OperatingNumber,
		PurchaseDiscountPct:   line.PurchaseDiscountPct,
		PurchasePrice:         line.PurchasePrice,
		SellingDiscountPct:    line.SellingDiscountPct,
		SellingPrice:          line.SellingPrice,
		Quantity:              line.Quantity,
		RemainingQuantity:     line.Quantity,
		PurchaseSubTotal:      line.SubTotal,
		SellingSubTotal:       pricing.SubTotal(line.SellingPrice, line.Quantity),
	}

	if err := s.items.CreateTx(tx, item); err != nil {
		return nil, err
	}
	if err := s.updateAggregate(tx, w, opAdd, item, nil); err != nil {
		return nil, err
	}

	s.invalidateStockCache(ctx, w.ID, line.ProductID)
	return item, nil
}

// UpdateItem applies a partial change-set to a batch. A discount change
// recomputes the corresponding unit price from the product's public price;
// a quantity change without an explicit remaining quantity passes the delta
// through to the remaining quantity (failing when that would go negative —
// more was already consumed than the reduced quantity allows). The row lock
// held for the duration keeps the delta arithmetic safe against concurrent
// consumption, though the formula itself assumes the caller read a current
// quantity.
func (s *inventoryService) UpdateItem(ctx context.Context, id uuid.UUID, changes ItemChanges) (*model.InventoryItem, error) {
	var item *model.InventoryItem

	err := runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		var err error
		item, err = s.items.FindByIDTx(tx, id)
		if err != nil {
			return err
		}
		w, err := s.warehouses.FindByIDTx(tx, item.WarehouseID)
		if err != nil {
			return err
		}

		old := snapshotOf(item)
		recompute := false

		if changes.PurchaseDiscountPct != nil || changes.SellingDiscountPct != nil {
			product, err := s.products.FindByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if changes.PurchaseDiscountPct != nil {
				item.PurchaseDiscountPct = *changes.PurchaseDiscountPct
				item.PurchasePrice = pricing.DiscountedUnitPrice(product.PublicPrice, item.PurchaseDiscountPct)
				recompute = true
			}
			if changes.SellingDiscountPct != nil {
				item.SellingDiscountPct = *changes.SellingDiscountPct
				item.SellingPrice = pricing.DiscountedUnitPrice(product.PublicPrice, item.SellingDiscountPct)
				recompute = true
			}
		}

		if changes.Quantity != nil && changes.RemainingQuantity == nil {
			newRemaining := item.RemainingQuantity + *changes.Quantity - item.Quantity
			if newRemaining < 0 {
				return &NegativeRemainingError{ItemID: item.ID, Quantity: *changes.Quantity, Deficit: -newRemaining}
			}
			item.Quantity = *changes.Quantity
			item.RemainingQuantity = newRemaining
			recompute = true
		}

		if changes.RemainingQuantity != nil {
			if changes.Quantity != nil {
				item.Quantity = *changes.Quantity
			}
			if *changes.RemainingQuantity < 0 || *changes.RemainingQuantity > item.Quantity {
				return &InvalidRemainingError{ItemID: item.ID, Remaining: *changes.RemainingQuantity, Quantity: item.Quantity}
			}
			item.RemainingQuantity = *changes.RemainingQuantity
			recompute = true
		}

		if changes.ExpiryDate != nil {
			item.ExpiryDate = changes.ExpiryDate
		}
		if changes.OperatingNumber != nil {
			item.OperatingNumber = *changes.OperatingNumber
		}

		if recompute {
			item.PurchaseSubTotal = pricing.SubTotal(item.PurchasePrice, item.RemainingQuantity)
			item.SellingSubTotal = pricing.SubTotal(item.SellingPrice, item.RemainingQuantity)
		}

		if err := s.items.SaveTx(tx, item); err != nil {
			return err
		}
		if recompute {
			return s.updateAggregate(tx, w, opUpdate, item, &old)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStockCache(ctx, item.WarehouseID, item.ProductID)
	return item, nil
}

// TransferItem moves a batch to a different warehouse without changing any
// of its quantities or prices: remove from the old aggregate, reassign,
// add to the new — all inside one transaction so the intermediate state is
// never observable.
func (s *inventoryService) TransferItem(ctx context.Context, id, newWarehouseID uuid.UUID) (*model.InventoryItem, error) {
	var item *model.InventoryItem
	var oldWarehouseID uuid.UUID

	err := runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		var err error
		item, err = s.items.FindByIDTx(tx, id)
		if err != nil {
			return err
		}
		oldWarehouseID = item.WarehouseID

		oldW, err := s.warehouses.FindByIDTx(tx, item.WarehouseID)
		if err != nil {
			return err
		}
		newW, err := s.warehouses.FindByIDTx(tx, newWarehouseID)
		if err != nil {
			return err
		}

		if err := s.updateAggregate(tx, oldW, opRemove, item, nil); err != nil {
			return err
		}
		item.WarehouseID = newW.ID
		if err := s.items.SaveTx(tx, item); err != nil {
			return err
		}
		return s.updateAggregate(tx, newW, opAdd, item, nil)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStockCache(ctx, oldWarehouseID, item.ProductID)
	s.invalidateStockCache(ctx, newWarehouseID, item.ProductID)
	return item, nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		item, err := s.items.FindByIDTx(tx, id)
		if err != nil {
			return err
		}
		return s.DeleteItemTx(ctx, tx, item)
	})
}

func (s *inventoryService) DeleteItemTx(ctx context.Context, tx *gorm.DB, item *model.InventoryItem) error {
	w, err := s.warehouses.FindByIDTx(tx, item.WarehouseID)
	if err != nil {
		return err
	}
	if err := s.updateAggregate(tx, w, opRemove, item, nil); err != nil {
		return err
	}
	if err := s.items.DeleteTx(tx, item); err != nil {
		return err
	}
	s.invalidateStockCache(ctx, w.ID, item.ProductID)
	return nil
}

// ── Cache / alerts ───────────────────────────────────────────────────────────

func (s *inventoryService) invalidateStockCache(ctx context.Context, warehouseID, productID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, StockCacheKey(warehouseID, productID)).Err(); err != nil {
		log.Warn().Err(err).Str("product_id", productID.String()).Msg("stock cache invalidation failed")
	}
}

// maybeAlertOutOfStock enqueues a low-stock job once a deduction exhausts a
// product. Best effort — the alert may fire even if the surrounding
// transaction later rolls back, which only costs a spurious notification.
func (s *inventoryService) maybeAlertOutOfStock(ctx context.Context, warehouseID, productID uuid.UUID, remainingAfter int) {
	if s.dispatcher == nil || remainingAfter > 0 {
		return
	}
	payload := worker.StockAlertPayload{
		ProductID:   productID.String(),
		WarehouseID: warehouseID.String(),
	}
	if err := s.dispatcher.EnqueueStockAlert(ctx, payload); err != nil {
		log.Warn().Err(err).Str("product_id", productID.String()).Msg("failed to enqueue stock alert")
	}
}
