package dto

import "github.com/shopspring/decimal"

type CreateWarehouseRequest struct {
	Name string `json:"name" validate:"required"`
	Kind string `json:"kind" validate:"required,oneof=main secondary"`
}

type WarehouseResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Kind               string          `json:"kind"`
	ItemCount          int             `json:"item_count"`
	TotalQuantity      int             `json:"total_quantity"`
	TotalPurchaseValue decimal.Decimal `json:"total_purchase_value"`
	TotalSellingValue  decimal.Decimal `json:"total_selling_value"`
}

type CreateInventoryItemRequest struct {
	WarehouseID         string          `json:"warehouse_id"` // empty = main warehouse
	ProductID           string          `json:"product_id" validate:"required"`
	ExpiryDate          *string         `json:"expiry_date"` // YYYY-MM-DD
	OperatingNumber     string          `json:"operating_number"`
	PurchaseDiscountPct decimal.Decimal `json:"purchase_discount_pct" validate:"min=0,max=99.99"`
	SellingDiscountPct  decimal.Decimal `json:"selling_discount_pct" validate:"min=0,max=99.99"`
	Quantity            int             `json:"quantity" validate:"required,gt=0"`
}

type UpdateInventoryItemRequest struct {
	PurchaseDiscountPct *decimal.Decimal `json:"purchase_discount_pct" validate:"omitempty,min=0,max=99.99"`
	SellingDiscountPct  *decimal.Decimal `json:"selling_discount_pct" validate:"omitempty,min=0,max=99.99"`
	Quantity            *int             `json:"quantity" validate:"omitempty,gt=0"`
	RemainingQuantity   *int             `json:"remaining_quantity" validate:"omitempty,min=0"`
	ExpiryDate          *string          `json:"expiry_date"`
	OperatingNumber     *string          `json:"operating_number"`
}

type TransferInventoryItemRequest struct {
	WarehouseID string `json:"warehouse_id" validate:"required,uuid"`
}

type DeductRequest struct {
	ProductID   string `json:"product_id" validate:"required,uuid"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
	WarehouseID string `json:"warehouse_id"` // empty = main warehouse
}

type InventoryItemResponse struct {
	ID                  string          `json:"id"`
	WarehouseID         string          `json:"warehouse_id"`
	ProductID           string          `json:"product_id"`
	ExpiryDate          *string         `json:"expiry_date"`
	OperatingNumber     string          `json:"operating_number"`
	PurchaseDiscountPct decimal.Decimal `json:"purchase_discount_pct"`
	PurchasePrice       decimal.Decimal `json:"purchase_price"`
	SellingDiscountPct  decimal.Decimal `json:"selling_discount_pct"`
	SellingPrice        decimal.Decimal `json:"selling_price"`
	Quantity            int             `json:"quantity"`
	RemainingQuantity   int             `json:"remaining_quantity"`
	PurchaseSubTotal    decimal.Decimal `json:"purchase_sub_total"`
	SellingSubTotal     decimal.Decimal `json:"selling_sub_total"`
}

// StockResponse is the cached availability answer served by the
// stock-check endpoint. Summary statistics only — no batch detail.
type StockResponse struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Available   int    `json:"available"`
}
