package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaleInvoiceStatus string

const (
	SaleInvoicePlaced SaleInvoiceStatus = "placed"
	SaleInvoiceClosed SaleInvoiceStatus = "closed"
)

// SaleInvoice records stock leaving to a pharmacy. Closing it deducts every
// line's quantity from inventory through the allocation engine; the close
// fails up front when any line lacks sufficient stock.
type SaleInvoice struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PharmacyID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status     SaleInvoiceStatus `gorm:"not null;default:'placed';index"`

	ItemsCount    int             `gorm:"not null;default:0"`
	TotalQuantity int             `gorm:"not null;default:0"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Items []SaleInvoiceItem `gorm:"foreignKey:InvoiceID"`
}

type SaleInvoiceItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`

	SellingDiscountPct decimal.Decimal `gorm:"type:decimal(4,2);not null"`
	SellingPrice       decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Quantity int             `gorm:"not null"`
	SubTotal decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
