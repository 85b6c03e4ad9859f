package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WarehouseKind distinguishes the single auto-creatable MAIN warehouse
// from explicitly created secondary locations.
type WarehouseKind string

const (
	WarehouseMain      WarehouseKind = "main"
	WarehouseSecondary WarehouseKind = "secondary"
)

// Warehouse is a stock location with running aggregate counters.
// The counters are maintained incrementally by the inventory service's
// bookkeeping operation — never recomputed by scanning batches — so they
// must equal the sum over all batches owned by the warehouse at all times:
//
//	ItemCount          = number of batches
//	TotalQuantity      = Σ batch.RemainingQuantity
//	TotalPurchaseValue = Σ batch.PurchaseSubTotal
//	TotalSellingValue  = Σ batch.SellingSubTotal
type Warehouse struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name               string          `gorm:"not null"`
	Kind               WarehouseKind   `gorm:"index;not null"`
	ItemCount          int             `gorm:"not null;default:0"`
	TotalQuantity      int             `gorm:"not null;default:0"`
	TotalPurchaseValue decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalSellingValue  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
