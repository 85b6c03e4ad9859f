package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/msakr99/pharmasky-backend-sub001/internal/dto"
	"github.com/msakr99/pharmasky-backend-sub001/internal/model"
	"github.com/msakr99/pharmasky-backend-sub001/internal/pricing"
	"github.com/msakr99/pharmasky-backend-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInvoiceClosed is returned when mutating an invoice that has already
// been closed.
var ErrInvoiceClosed = errors.New("invoice is closed")

// ErrInvoiceNotReceivable is returned when closing a purchase invoice whose
// lines are not all in the received state.
var ErrInvoiceNotReceivable = errors.New("cannot close purchase invoice: not all items are received")

// ErrItemReceived is returned when editing a line whose batch already sits in
// inventory; the line must leave the received state first.
var ErrItemReceived = errors.New("received lines cannot be edited, revert the status first")

// ErrOfferPriced is returned when a discount change is attempted on an
// offer-backed line, whose prices always come from the offer.
var ErrOfferPriced = errors.New("offer-backed line prices come from the offer")

// InvoiceStockError reports, line by line, why a sale invoice cannot be
// closed against current stock.
type InvoiceStockError struct {
	InvoiceID uuid.UUID
	Lines     []dto.AvailabilityLine
}

func (e *InvoiceStockError) Error() string {
	return fmt.Sprintf("sale invoice %s cannot be closed: %d lines short on stock", e.InvoiceID, len(e.Lines))
}

// purchaseItemTransitions lists the allowed next states per current state.
// Entering received creates the linked inventory batch; leaving it deletes
// the batch again.
var purchaseItemTransitions = map[model.PurchaseItemStatus][]model.PurchaseItemStatus{
	model.PurchaseItemPlaced:      {model.PurchaseItemAccepted, model.PurchaseItemRejected},
	model.PurchaseItemAccepted:    {model.PurchaseItemPlaced, model.PurchaseItemReceived, model.PurchaseItemNotReceived},
	model.PurchaseItemRejected:    {model.PurchaseItemPlaced},
	model.PurchaseItemReceived:    {model.PurchaseItemAccepted, model.PurchaseItemNotReceived},
	model.PurchaseItemNotReceived: {model.PurchaseItemAccepted, model.PurchaseItemReceived},
}

func transitionAllowed(from, to model.PurchaseItemStatus) bool {
	for _, s := range purchaseItemTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// InvoiceService drives the purchase and sale invoice workflows. Purchase
// lines feed batches into inventory on receipt; closing a sale invoice
// deducts every line through the allocation engine in one transaction.
type InvoiceService interface {
	CreatePurchaseInvoice(ctx context.Context, req dto.CreatePurchaseInvoiceRequest) (*dto.PurchaseInvoiceResponse, error)
	GetPurchaseInvoice(ctx context.Context, id uuid.UUID) (*dto.PurchaseInvoiceResponse, error)
	UpdatePurchaseItem(ctx context.Context, itemID uuid.UUID, req dto.UpdatePurchaseItemRequest) (*dto.PurchaseInvoiceItemResponse, error)
	UpdatePurchaseItemStatus(ctx context.Context, itemID uuid.UUID, status model.PurchaseItemStatus) (*dto.PurchaseInvoiceItemResponse, error)
	ClosePurchaseInvoice(ctx context.Context, id uuid.UUID, supplierInvoiceNumber string) (*dto.PurchaseInvoiceResponse, error)

	CreateSaleInvoice(ctx context.Context, req dto.CreateSaleInvoiceRequest) (*dto.SaleInvoiceResponse, error)
	GetSaleInvoice(ctx context.Context, id uuid.UUID) (*dto.SaleInvoiceResponse, error)
	CheckSaleInvoiceAvailability(ctx context.Context, id uuid.UUID) (*dto.AvailabilityReport, error)
	CloseSaleInvoice(ctx context.Context, id uuid.UUID) (*dto.SaleInvoiceResponse, error)
}

type invoiceService struct {
	purchases repository.PurchaseInvoiceRepository
	sales     repository.SaleInvoiceRepository
	products  repository.ProductRepository
	items     repository.InventoryItemRepository
	offers    OfferService
	inventory InventoryService
}

func NewInvoiceService(
	purchases repository.PurchaseInvoiceRepository,
	sales repository.SaleInvoiceRepository,
	products repository.ProductRepository,
	items repository.InventoryItemRepository,
	offers OfferService,
	inventory InventoryService,
) InvoiceService {
	return &invoiceService{
		purchases: purchases,
		sales:     sales,
		products:  products,
		items:     items,
		offers:    offers,
		inventory: inventory,
	}
}

// applyInvoiceCounters maintains the invoice's running totals the same way
// warehouse aggregates are kept: incrementally, one adjustment per line
// mutation, never by re-scanning lines.
func applyInvoiceCounters(itemsCount, totalQuantity *int, totalPrice *decimal.Decimal, op aggregateOp, quantity int, subTotal decimal.Decimal, oldQuantity int, oldSubTotal decimal.Decimal) {
	switch op {
	case opAdd:
		*itemsCount++
		*totalQuantity += quantity
		*totalPrice = totalPrice.Add(subTotal)
	case opUpdate:
		*totalQuantity += quantity - oldQuantity
		*totalPrice = totalPrice.Add(subTotal.Sub(oldSubTotal))
	case opRemove:
		*itemsCount--
		*totalQuantity -= quantity
		*totalPrice = totalPrice.Sub(subTotal)
	}
}

// ── Purchase invoices ────────────────────────────────────────────────────────

func (s *invoiceService) CreatePurchaseInvoice(ctx context.Context, req dto.CreatePurchaseInvoiceRequest) (*dto.PurchaseInvoiceResponse, error) {
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, err
	}

	inv := &model.PurchaseInvoice{
		SupplierID: supplierID,
		Status:     model.PurchaseInvoicePlaced,
		TotalPrice: decimal.Zero,
	}

	err = runTx(ctx, s.purchases.DB(), func(tx *gorm.DB) error {
		if err := s.purchases.CreateTx(tx, inv); err != nil {
			return err
		}

		for _, lineReq := range req.Items {
			line, err := s.buildPurchaseLine(ctx, tx, inv.ID, lineReq)
			if err != nil {
				return err
			}
			if err := s.purchases.CreateItemTx(tx, line); err != nil {
				return err
			}
			applyInvoiceCounters(&inv.ItemsCount, &inv.TotalQuantity, &inv.TotalPrice,
				opAdd, line.Quantity, line.SubTotal, 0, decimal.Zero)
			inv.Items = append(inv.Items, *line)
		}

		return s.purchases.SaveTx(tx, inv)
	})
	if err != nil {
		return nil, err
	}

	return purchaseInvoiceToResponse(inv), nil
}

// buildPurchaseLine derives a line's prices either from an offer (consuming
// its remaining amount) or from the caller-supplied discounts.
func (s *invoiceService) buildPurchaseLine(ctx context.Context, tx *gorm.DB, invoiceID uuid.UUID, req dto.PurchaseInvoiceItemRequest) (*model.PurchaseInvoiceItem, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	line := &model.PurchaseInvoiceItem{
		InvoiceID:       invoiceID,
		ProductID:       productID,
		Status:          model.PurchaseItemPlaced,
		OperatingNumber: req.OperatingNumber,
		Quantity:        req.Quantity,
	}

	if req.ExpiryDate != nil {
		t, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			return nil, err
		}
		line.ExpiryDate = &t
	}

	if req.OfferID != nil {
		offerID, err := uuid.Parse(*req.OfferID)
		if err != nil {
			return nil, err
		}
		if err := s.offers.ConsumeTx(tx, offerID, req.Quantity); err != nil {
			return nil, err
		}
		offer, err := s.offers.Get(ctx, offerID)
		if err != nil {
			return nil, err
		}
		line.OfferID = &offerID
		line.PurchaseDiscountPct = offer.PurchaseDiscountPct
		line.PurchasePrice = offer.PurchasePrice
		line.SellingDiscountPct = offer.SellingDiscountPct
		line.SellingPrice = offer.SellingPrice
	} else {
		line.PurchaseDiscountPct = req.PurchaseDiscountPct
		line.PurchasePrice = pricing.DiscountedUnitPrice(product.PublicPrice, req.PurchaseDiscountPct)
		line.SellingDiscountPct = req.SellingDiscountPct
		line.SellingPrice = pricing.DiscountedUnitPrice(product.PublicPrice, req.SellingDiscountPct)
	}

	line.SubTotal = pricing.SubTotal(line.PurchasePrice, line.Quantity)
	return line, nil
}

func (s *invoiceService) GetPurchaseInvoice(ctx context.Context, id uuid.UUID) (*dto.PurchaseInvoiceResponse, error) {
	inv, err := s.purchases.FindByIDWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return purchaseInvoiceToResponse(inv), nil
}

// UpdatePurchaseItem edits a line's quantity or discounts before receipt.
// Offer-backed lines keep the offer's prices, so only quantity may change
// there — and the change flows through to the offer's remaining amount.
// Received lines already have a batch in inventory and must leave the
// received state before editing.
func (s *invoiceService) UpdatePurchaseItem(ctx context.Context, itemID uuid.UUID, req dto.UpdatePurchaseItemRequest) (*dto.PurchaseInvoiceItemResponse, error) {
	item, err := s.purchases.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	inv, err := s.purchases.FindByID(ctx, item.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == model.PurchaseInvoiceClosed {
		return nil, ErrInvoiceClosed
	}
	if item.Status == model.PurchaseItemReceived {
		return nil, ErrItemReceived
	}
	if item.OfferID != nil && (req.PurchaseDiscountPct != nil || req.SellingDiscountPct != nil) {
		return nil, ErrOfferPriced
	}

	err = runTx(ctx, s.purchases.DB(), func(tx *gorm.DB) error {
		oldQuantity := item.Quantity
		oldSubTotal := item.SubTotal

		// The offer adjustment goes first so an insufficient offer leaves the
		// line untouched.
		if req.Quantity != nil && *req.Quantity != oldQuantity && item.OfferID != nil {
			if err := s.offers.AdjustTx(tx, *item.OfferID, oldQuantity, *req.Quantity); err != nil {
				return err
			}
		}
		if req.Quantity != nil {
			item.Quantity = *req.Quantity
		}

		if req.PurchaseDiscountPct != nil || req.SellingDiscountPct != nil {
			product, err := s.products.FindByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if req.PurchaseDiscountPct != nil {
				item.PurchaseDiscountPct = *req.PurchaseDiscountPct
				item.PurchasePrice = pricing.DiscountedUnitPrice(product.PublicPrice, item.PurchaseDiscountPct)
			}
			if req.SellingDiscountPct != nil {
				item.SellingDiscountPct = *req.SellingDiscountPct
				item.SellingPrice = pricing.DiscountedUnitPrice(product.PublicPrice, item.SellingDiscountPct)
			}
		}

		item.SubTotal = pricing.SubTotal(item.PurchasePrice, item.Quantity)
		if err := s.purchases.SaveItemTx(tx, item); err != nil {
			return err
		}

		applyInvoiceCounters(&inv.ItemsCount, &inv.TotalQuantity, &inv.TotalPrice,
			opUpdate, item.Quantity, item.SubTotal, oldQuantity, oldSubTotal)
		return s.purchases.SaveTx(tx, inv)
	})
	if err != nil {
		return nil, err
	}

	return purchaseItemToResponse(item), nil
}

// UpdatePurchaseItemStatus moves an invoice line through its lifecycle.
// The received state is where inventory appears: entering it creates the
// batch from the line, leaving it deletes the batch (with its quantities
// untouched — a partially consumed batch blocks the revert via the
// aggregate bookkeeping going inconsistent, so the delete uses the batch's
// current state). Rejecting a line releases its offer consumption.
func (s *invoiceService) UpdatePurchaseItemStatus(ctx context.Context, itemID uuid.UUID, status model.PurchaseItemStatus) (*dto.PurchaseInvoiceItemResponse, error) {
	item, err := s.purchases.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	inv, err := s.purchases.FindByID(ctx, item.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == model.PurchaseInvoiceClosed {
		return nil, ErrInvoiceClosed
	}

	oldStatus := item.Status
	if status == oldStatus {
		return purchaseItemToResponse(item), nil
	}
	if !transitionAllowed(oldStatus, status) {
		return nil, fmt.Errorf("invalid status change from %s to %s", oldStatus, status)
	}

	err = runTx(ctx, s.purchases.DB(), func(tx *gorm.DB) error {
		item.Status = status
		if err := s.purchases.SaveItemTx(tx, item); err != nil {
			return err
		}

		if status == model.PurchaseItemReceived {
			if _, err := s.inventory.CreateItemFromInvoiceLineTx(ctx, tx, item, nil); err != nil {
				return err
			}
		}

		if oldStatus == model.PurchaseItemReceived {
			batch, err := s.items.FindByInvoiceItemID(ctx, item.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					log.Warn().Str("invoice_item_id", item.ID.String()).Msg("received line had no linked batch")
					return nil
				}
				return err
			}
			if err := s.inventory.DeleteItemTx(ctx, tx, batch); err != nil {
				return err
			}
		}

		if status == model.PurchaseItemRejected && item.OfferID != nil {
			return s.offers.ReleaseTx(tx, *item.OfferID, item.Quantity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return purchaseItemToResponse(item), nil
}

func (s *invoiceService) ClosePurchaseInvoice(ctx context.Context, id uuid.UUID, supplierInvoiceNumber string) (*dto.PurchaseInvoiceResponse, error) {
	inv, err := s.purchases.FindByIDWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == model.PurchaseInvoiceClosed {
		return nil, ErrInvoiceClosed
	}

	for i := range inv.Items {
		if inv.Items[i].Status != model.PurchaseItemReceived {
			return nil, ErrInvoiceNotReceivable
		}
	}

	err = runTx(ctx, s.purchases.DB(), func(tx *gorm.DB) error {
		inv.Status = model.PurchaseInvoiceClosed
		inv.SupplierInvoiceNumber = supplierInvoiceNumber
		return s.purchases.SaveTx(tx, inv)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("invoice_id", inv.ID.String()).
		Str("supplier_invoice_number", supplierInvoiceNumber).
		Msg("purchase invoice closed")
	return purchaseInvoiceToResponse(inv), nil
}

// ── Sale invoices ────────────────────────────────────────────────────────────

func (s *invoiceService) CreateSaleInvoice(ctx context.Context, req dto.CreateSaleInvoiceRequest) (*dto.SaleInvoiceResponse, error) {
	pharmacyID, err := uuid.Parse(req.PharmacyID)
	if err != nil {
		return nil, err
	}

	inv := &model.SaleInvoice{
		PharmacyID: pharmacyID,
		Status:     model.SaleInvoicePlaced,
		TotalPrice: decimal.Zero,
	}

	err = runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		if err := s.sales.CreateTx(tx, inv); err != nil {
			return err
		}

		for _, lineReq := range req.Items {
			productID, err := uuid.Parse(lineReq.ProductID)
			if err != nil {
				return err
			}
			product, err := s.products.FindByID(ctx, productID)
			if err != nil {
				return err
			}

			sellingPrice := pricing.DiscountedUnitPrice(product.PublicPrice, lineReq.SellingDiscountPct)
			line := &model.SaleInvoiceItem{
				InvoiceID:          inv.ID,
				ProductID:          productID,
				SellingDiscountPct: lineReq.SellingDiscountPct,
				SellingPrice:       sellingPrice,
				Quantity:           lineReq.Quantity,
				SubTotal:           pricing.SubTotal(sellingPrice, lineReq.Quantity),
			}
			if err := s.sales.CreateItemTx(tx, line); err != nil {
				return err
			}
			applyInvoiceCounters(&inv.ItemsCount, &inv.TotalQuantity, &inv.TotalPrice,
				opAdd, line.Quantity, line.SubTotal, 0, decimal.Zero)
			inv.Items = append(inv.Items, *line)
		}

		return s.sales.SaveTx(tx, inv)
	})
	if err != nil {
		return nil, err
	}

	return saleInvoiceToResponse(inv), nil
}

func (s *invoiceService) GetSaleInvoice(ctx context.Context, id uuid.UUID) (*dto.SaleInvoiceResponse, error) {
	inv, err := s.sales.FindByIDWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return saleInvoiceToResponse(inv), nil
}

// CheckSaleInvoiceAvailability is the read-only dry run of the close: every
// line's required quantity against main-warehouse availability, with no
// locks taken.
func (s *invoiceService) CheckSaleInvoiceAvailability(ctx context.Context, id uuid.UUID) (*dto.AvailabilityReport, error) {
	inv, err := s.sales.FindByIDWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.availabilityReport(ctx, inv)
}

func (s *invoiceService) availabilityReport(ctx context.Context, inv *model.SaleInvoice) (*dto.AvailabilityReport, error) {
	report := &dto.AvailabilityReport{
		InvoiceID: inv.ID.String(),
		CanClose:  true,
		Lines:     make([]dto.AvailabilityLine, 0, len(inv.Items)),
	}
	for i := range inv.Items {
		line := &inv.Items[i]
		available, err := s.inventory.Availability(ctx, line.ProductID, nil)
		if err != nil {
			return nil, err
		}
		al := dto.AvailabilityLine{
			ProductID: line.ProductID.String(),
			Required:  line.Quantity,
			Available: available,
		}
		if available < line.Quantity {
			al.Shortage = line.Quantity - available
			report.CanClose = false
		}
		report.Lines = append(report.Lines, al)
	}
	return report, nil
}

// CloseSaleInvoice checks availability for every line, then closes the
// invoice and deducts all lines inside one transaction. The pre-check gives
// the caller the full shortage report; the engine's own in-transaction
// check under lock remains the actual guarantee — a race between check and
// deduct surfaces as an InsufficientStockError and rolls everything back.
func (s *invoiceService) CloseSaleInvoice(ctx context.Context, id uuid.UUID) (*dto.SaleInvoiceResponse, error) {
	inv, err := s.sales.FindByIDWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == model.SaleInvoiceClosed {
		return nil, ErrInvoiceClosed
	}

	report, err := s.availabilityReport(ctx, inv)
	if err != nil {
		return nil, err
	}
	if !report.CanClose {
		short := make([]dto.AvailabilityLine, 0, len(report.Lines))
		for _, l := range report.Lines {
			if l.Shortage > 0 {
				short = append(short, l)
			}
		}
		return nil, &InvoiceStockError{InvoiceID: inv.ID, Lines: short}
	}

	err = runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		inv.Status = model.SaleInvoiceClosed
		if err := s.sales.SaveTx(tx, inv); err != nil {
			return err
		}
		for i := range inv.Items {
			line := &inv.Items[i]
			if err := s.inventory.DeductTx(ctx, tx, line.ProductID, line.Quantity, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("invoice_id", inv.ID.String()).
		Int("lines", len(inv.Items)).
		Msg("sale invoice closed, stock deducted")
	return saleInvoiceToResponse(inv), nil
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func purchaseItemToResponse(item *model.PurchaseInvoiceItem) *dto.PurchaseInvoiceItemResponse {
	resp := &dto.PurchaseInvoiceItemResponse{
		ID:                  item.ID.String(),
		ProductID:           item.ProductID.String(),
		Status:              string(item.Status),
		PurchaseDiscountPct: item.PurchaseDiscountPct,
		PurchasePrice:       item.PurchasePrice,
		SellingDiscountPct:  item.SellingDiscountPct,
		SellingPrice:        item.SellingPrice,
		Quantity:            item.Quantity,
		SubTotal:            item.SubTotal,
	}
	if item.OfferID != nil {
		id := item.OfferID.String()
		resp.OfferID = &id
	}
	return resp
}

func purchaseInvoiceToResponse(inv *model.PurchaseInvoice) *dto.PurchaseInvoiceResponse {
	resp := &dto.PurchaseInvoiceResponse{
		ID:                    inv.ID.String(),
		SupplierID:            inv.SupplierID.String(),
		Status:                string(inv.Status),
		SupplierInvoiceNumber: inv.SupplierInvoiceNumber,
		ItemsCount:            inv.ItemsCount,
		TotalQuantity:         inv.TotalQuantity,
		TotalPrice:            inv.TotalPrice,
		Items:                 make([]dto.PurchaseInvoiceItemResponse, 0, len(inv.Items)),
	}
	for i := range inv.Items {
		resp.Items = append(resp.Items, *purchaseItemToResponse(&inv.Items[i]))
	}
	return resp
}

func saleInvoiceToResponse(inv *model.SaleInvoice) *dto.SaleInvoiceResponse {
	resp := &dto.SaleInvoiceResponse{
		ID:            inv.ID.String(),
		PharmacyID:    inv.PharmacyID.String(),
		Status:        string(inv.Status),
		ItemsCount:    inv.ItemsCount,
		TotalQuantity: inv.TotalQuantity,
		TotalPrice:    inv.TotalPrice,
		Items:         make([]dto.SaleInvoiceItemResponse, 0, len(inv.Items)),
	}
	for i := range inv.Items {
		line := &inv.Items[i]
		resp.Items = append(resp.Items, dto.SaleInvoiceItemResponse{
			ID:                 line.ID.String(),
			ProductID:          line.ProductID.String(),
			SellingDiscountPct: line.SellingDiscountPct,
			SellingPrice:       line.SellingPrice,
			Quantity:           line.Quantity,
			SubTotal:           line.SubTotal,
		})
	}
	return resp
}
