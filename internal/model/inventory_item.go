package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItem is one batch of a product received into a warehouse at a
// specific discount/price/expiry. RemainingQuantity only ever decreases;
// the row is deleted once it reaches zero. PurchaseSubTotal and
// SellingSubTotal are always recomputed as price × RemainingQuantity
// rounded to 2 decimals — they are never mutated independently.
type InventoryItem struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// Seq preserves insertion order; the allocation engine uses it as the
	// deterministic tie-break between batches with equal selling discount.
	Seq         int64     `gorm:"autoIncrement;uniqueIndex;not null"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index:idx_inventory_items_wh_product,priority:2"`
	// At most one batch per purchase-invoice line.
	PurchaseInvoiceItemID *uuid.UUID `gorm:"type:uuid;uniqueIndex"`

	ExpiryDate      *time.Time
	OperatingNumber string `gorm:"default:''"`

	PurchaseDiscountPct decimal.Decimal `gorm:"type:decimal(4,2);not null"`
	PurchasePrice       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SellingDiscountPct  decimal.Decimal `gorm:"type:decimal(4,2);not null"`
	SellingPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Quantity          int `gorm:"not null"`
	RemainingQuantity int `gorm:"not null"`

	PurchaseSubTotal decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SellingSubTotal  decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	CreatedAt time.Time

	Warehouse *Warehouse `gorm:"foreignKey:WarehouseID"`
	Product   *Product   `gorm:"foreignKey:ProductID"`
}
