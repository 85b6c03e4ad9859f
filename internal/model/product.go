package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry shared by offers, invoices, and inventory
// batches. PublicPrice is the manufacturer list price all discount-derived
// prices start from; this subsystem treats products as read-only.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string          `gorm:"index;not null"`
	AltName     string          `gorm:"index"`
	PublicPrice decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	Company     string          `gorm:"not null"`
	Category    string          `gorm:"not null"`
	Letter      string
	Fridge      bool `gorm:"not null;default:false"`
	Active      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
