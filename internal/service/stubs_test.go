package service

import (
	"context"
	"sort"

	"github.com/msakr99/pharmasky-backend-sub001/internal/dto"
	"github.com/msakr99/pharmasky-backend-sub001/internal/model"
	"github.com/msakr99/pharmasky-backend-sub001/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository stubs. Tx-scoped methods accept the nil tx that
// runTx passes when no database is configured.

// ── WarehouseRepository ──────────────────────────────────────────────────────

type stubWarehouseRepo struct {
	warehouses map[uuid.UUID]*model.Warehouse
}

var _ repository.WarehouseRepository = (*stubWarehouseRepo)(nil)

func newStubWarehouseRepo() *stubWarehouseRepo {
	return &stubWarehouseRepo{warehouses: make(map[uuid.UUID]*model.Warehouse)}
}

func (r *stubWarehouseRepo) Create(_ context.Context, w *model.Warehouse) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	r.warehouses[w.ID] = w
	return nil
}

func (r *stubWarehouseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Warehouse, error) {
	w, ok := r.warehouses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return w, nil
}

func (r *stubWarehouseRepo) FindMain(_ context.Context) (*model.Warehouse, error) {
	for _, w := range r.warehouses {
		if w.Kind == model.WarehouseMain {
			return w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubWarehouseRepo) List(_ context.Context) ([]model.Warehouse, error) {
	result := make([]model.Warehouse, 0, len(r.warehouses))
	for _, w := range r.warehouses {
		result = append(result, *w)
	}
	return result, nil
}

func (r *stubWarehouseRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Warehouse, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubWarehouseRepo) SaveTx(_ *gorm.DB, w *model.Warehouse) error {
	r.warehouses[w.ID] = w
	return nil
}

func (r *stubWarehouseRepo) DB() *gorm.DB { return nil }

// ── InventoryItemRepository ──────────────────────────────────────────────────

type stubItemRepo struct {
	items   map[uuid.UUID]*model.InventoryItem
	nextSeq int64
}

var _ repository.InventoryItemRepository = (*stubItemRepo)(nil)

func newStubItemRepo() *stubItemRepo {
	return &stubItemRepo{items: make(map[uuid.UUID]*model.InventoryItem)}
}

func (r *stubItemRepo) FindByID(_ context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *item
	return &clone, nil
}

func (r *stubItemRepo) FindByInvoiceItemID(_ context.Context, invoiceItemID uuid.UUID) (*model.InventoryItem, error) {
	for _, item := range r.items {
		if item.PurchaseInvoiceItemID != nil && *item.PurchaseInvoiceItemID == invoiceItemID {
			clone := *item
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubItemRepo) ListByWarehouse(_ context.Context, warehouseID uuid.UUID) ([]model.InventoryItem, error) {
	var result []model.InventoryItem
	for _, item := range r.items {
		if item.WarehouseID == warehouseID {
			result = append(result, *item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })
	return result, nil
}

func (r *stubItemRepo) SumRemaining(_ context.Context, warehouseID, productID uuid.UUID) (int, error) {
	total := 0
	for _, item := range r.items {
		if item.WarehouseID == warehouseID && item.ProductID == productID {
			total += item.RemainingQuantity
		}
	}
	return total, nil
}

func (r *stubItemRepo) CreateTx(_ *gorm.DB, item *model.InventoryItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.nextSeq++
	item.Seq = r.nextSeq
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *stubItemRepo) SaveTx(_ *gorm.DB, item *model.InventoryItem) error {
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *stubItemRepo) DeleteTx(_ *gorm.DB, item *model.InventoryItem) error {
	delete(r.items, item.ID)
	return nil
}

func (r *stubItemRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.InventoryItem, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubItemRepo) ListForAllocationTx(_ *gorm.DB, warehouseID, productID uuid.UUID) ([]model.InventoryItem, error) {
	var result []model.InventoryItem
	for _, item := range r.items {
		if item.WarehouseID == warehouseID && item.ProductID == productID {
			result = append(result, *item)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		cmp := result[i].SellingDiscountPct.Cmp(result[j].SellingDiscountPct)
		if cmp != 0 {
			return cmp > 0
		}
		return result[i].Seq < result[j].Seq
	})
	return result, nil
}

func (r *stubItemRepo) DB() *gorm.DB { return nil }

// ── ProductRepository ────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	var result []model.Product
	for _, p := range r.products {
		if p.Active {
			result = append(result, *p)
		}
	}
	return result, int64(len(result)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Active = false
	return nil
}

// ── OfferRepository ──────────────────────────────────────────────────────────

type stubOfferRepo struct {
	offers map[uuid.UUID]*model.Offer
}

var _ repository.OfferRepository = (*stubOfferRepo)(nil)

func newStubOfferRepo() *stubOfferRepo {
	return &stubOfferRepo{offers: make(map[uuid.UUID]*model.Offer)}
}

func (r *stubOfferRepo) Create(_ context.Context, o *model.Offer) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	r.offers[o.ID] = o
	return nil
}

func (r *stubOfferRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Offer, error) {
	o, ok := r.offers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOfferRepo) List(_ context.Context, filter dto.OfferFilter) ([]model.Offer, int64, error) {
	var result []model.Offer
	for _, o := range r.offers {
		if filter.InStockOnly && o.RemainingAmount <= 0 {
			continue
		}
		result = append(result, *o)
	}
	return result, int64(len(result)), nil
}

func (r *stubOfferRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.offers, id)
	return nil
}

func (r *stubOfferRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Offer, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubOfferRepo) SaveTx(_ *gorm.DB, o *model.Offer) error {
	r.offers[o.ID] = o
	return nil
}

func (r *stubOfferRepo) DB() *gorm.DB { return nil }

// ── PurchaseInvoiceRepository ────────────────────────────────────────────────

type stubPurchaseRepo struct {
	invoices map[uuid.UUID]*model.PurchaseInvoice
	items    map[uuid.UUID]*model.PurchaseInvoiceItem
}

var _ repository.PurchaseInvoiceRepository = (*stubPurchaseRepo)(nil)

func newStubPurchaseRepo() *stubPurchaseRepo {
	return &stubPurchaseRepo{
		invoices: make(map[uuid.UUID]*model.PurchaseInvoice),
		items:    make(map[uuid.UUID]*model.PurchaseInvoiceItem),
	}
}

func (r *stubPurchaseRepo) Create(_ context.Context, inv *model.PurchaseInvoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubPurchaseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseInvoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

func (r *stubPurchaseRepo) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoice, error) {
	inv, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	clone := *inv
	clone.Items = nil
	for _, item := range r.items {
		if item.InvoiceID == id {
			clone.Items = append(clone.Items, *item)
		}
	}
	return &clone, nil
}

func (r *stubPurchaseRepo) FindItemByID(_ context.Context, id uuid.UUID) (*model.PurchaseInvoiceItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (r *stubPurchaseRepo) CreateTx(_ *gorm.DB, inv *model.PurchaseInvoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubPurchaseRepo) SaveTx(_ *gorm.DB, inv *model.PurchaseInvoice) error {
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubPurchaseRepo) CreateItemTx(_ *gorm.DB, item *model.PurchaseInvoiceItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items[item.ID] = item
	return nil
}

func (r *stubPurchaseRepo) SaveItemTx(_ *gorm.DB, item *model.PurchaseInvoiceItem) error {
	r.items[item.ID] = item
	return nil
}

func (r *stubPurchaseRepo) DeleteItemTx(_ *gorm.DB, item *model.PurchaseInvoiceItem) error {
	delete(r.items, item.ID)
	return nil
}

func (r *stubPurchaseRepo) DB() *gorm.DB { return nil }

// ── SaleInvoiceRepository ────────────────────────────────────────────────────

type stubSaleRepo struct {
	invoices map[uuid.UUID]*model.SaleInvoice
	items    map[uuid.UUID]*model.SaleInvoiceItem
}

var _ repository.SaleInvoiceRepository = (*stubSaleRepo)(nil)

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{
		invoices: make(map[uuid.UUID]*model.SaleInvoice),
		items:    make(map[uuid.UUID]*model.SaleInvoiceItem),
	}
}

func (r *stubSaleRepo) Create(_ context.Context, inv *model.SaleInvoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SaleInvoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

func (r *stubSaleRepo) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.SaleInvoice, error) {
	inv, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	clone := *inv
	clone.Items = nil
	for _, item := range r.items {
		if item.InvoiceID == id {
			clone.Items = append(clone.Items, *item)
		}
	}
	return &clone, nil
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, inv *model.SaleInvoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubSaleRepo) SaveTx(_ *gorm.DB, inv *model.SaleInvoice) error {
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubSaleRepo) CreateItemTx(_ *gorm.DB, item *model.SaleInvoiceItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items[item.ID] = item
	return nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }
