package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseInvoiceStatus string

const (
	PurchaseInvoicePlaced PurchaseInvoiceStatus = "placed"
	PurchaseInvoiceLocked PurchaseInvoiceStatus = "locked"
	PurchaseInvoiceClosed PurchaseInvoiceStatus = "closed"
)

type PurchaseItemStatus string

const (
	PurchaseItemPlaced      PurchaseItemStatus = "placed"
	PurchaseItemAccepted    PurchaseItemStatus = "accepted"
	PurchaseItemRejected    PurchaseItemStatus = "rejected"
	PurchaseItemReceived    PurchaseItemStatus = "received"
	PurchaseItemNotReceived PurchaseItemStatus = "not_received"
)

// PurchaseInvoice records stock entering from a supplier. ItemsCount,
// TotalQuantity, and TotalPrice are running counters maintained the same
// way as warehouse aggregates — incrementally, one write per mutation.
type PurchaseInvoice struct {
	ID         uuid.UUID             `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SupplierID uuid.UUID             `gorm:"type:uuid;not null;index"`
	Status     PurchaseInvoiceStatus `gorm:"not null;default:'placed';index"`
	// Supplier's own invoice number, stamped when the invoice is closed.
	SupplierInvoiceNumber string `gorm:"default:''"`

	ItemsCount    int             `gorm:"not null;default:0"`
	TotalQuantity int             `gorm:"not null;default:0"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Items []PurchaseInvoiceItem `gorm:"foreignKey:InvoiceID"`
}

// PurchaseInvoiceItem is one invoice line. Marking it RECEIVED creates the
// linked inventory batch; moving it back out of RECEIVED deletes the batch.
type PurchaseInvoiceItem struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID uuid.UUID          `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID          `gorm:"type:uuid;not null;index"`
	OfferID   *uuid.UUID         `gorm:"type:uuid;index"`
	Status    PurchaseItemStatus `gorm:"not null;default:'placed'"`

	ExpiryDate      *time.Time
	OperatingNumber string `gorm:"default:''"`

	PurchaseDiscountPct decimal.Decimal `gorm:"type:decimal(4,2);not null"`
	PurchasePrice       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SellingDiscountPct  decimal.Decimal `gorm:"type:decimal(4,2);not null"`
	SellingPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Quantity int             `gorm:"not null"`
	SubTotal decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
	Offer   *Offer   `gorm:"foreignKey:OfferID"`
}
