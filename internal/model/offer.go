package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Offer is a seller's priced listing of a product. It is independent of
// inventory batches but follows the same discount → price derivation.
// RemainingAmount is decremented as purchase-invoice lines consume the
// offer and must never go negative.
type Offer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SellerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Seller's own catalog code for the product, when they track one.
	StoreProductCode string `gorm:"default:''"`

	OperatingNumber     string `gorm:"default:''"`
	AvailableAmount     int    `gorm:"not null"`
	RemainingAmount     int    `gorm:"not null"`
	MaxAmountPerInvoice *int
	ExpiryDate          *time.Time
	MinPurchase         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`

	PurchaseDiscountPct decimal.Decimal `gorm:"type:decimal(4,2);not null"`
	PurchasePrice       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SellingDiscountPct  decimal.Decimal `gorm:"type:decimal(4,2);not null"`
	SellingPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	IsMax     bool `gorm:"not null;default:false"`
	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
