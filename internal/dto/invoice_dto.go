package dto

import "github.com/shopspring/decimal"

type PurchaseInvoiceItemRequest struct {
	ProductID           string          `json:"product_id" validate:"required,uuid"`
	OfferID             *string         `json:"offer_id"`
	ExpiryDate          *string         `json:"expiry_date"`
	OperatingNumber     string          `json:"operating_number"`
	PurchaseDiscountPct decimal.Decimal `json:"purchase_discount_pct" validate:"min=0,max=99.99"`
	SellingDiscountPct  decimal.Decimal `json:"selling_discount_pct" validate:"min=0,max=99.99"`
	Quantity            int             `json:"quantity" validate:"required,gt=0"`
}

type CreatePurchaseInvoiceRequest struct {
	SupplierID string                       `json:"supplier_id" validate:"required,uuid"`
	Items      []PurchaseInvoiceItemRequest `json:"items" validate:"dive"`
}

type ClosePurchaseInvoiceRequest struct {
	SupplierInvoiceNumber string `json:"supplier_invoice_number" validate:"required"`
}

type UpdatePurchaseItemRequest struct {
	Quantity            *int             `json:"quantity" validate:"omitempty,gt=0"`
	PurchaseDiscountPct *decimal.Decimal `json:"purchase_discount_pct" validate:"omitempty,min=0,max=99.99"`
	SellingDiscountPct  *decimal.Decimal `json:"selling_discount_pct" validate:"omitempty,min=0,max=99.99"`
}

type UpdatePurchaseItemStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=placed accepted rejected received not_received"`
}

type PurchaseInvoiceItemResponse struct {
	ID                  string          `json:"id"`
	ProductID           string          `json:"product_id"`
	OfferID             *string         `json:"offer_id"`
	Status              string          `json:"status"`
	PurchaseDiscountPct decimal.Decimal `json:"purchase_discount_pct"`
	PurchasePrice       decimal.Decimal `json:"purchase_price"`
	SellingDiscountPct  decimal.Decimal `json:"selling_discount_pct"`
	SellingPrice        decimal.Decimal `json:"selling_price"`
	Quantity            int             `json:"quantity"`
	SubTotal            decimal.Decimal `json:"sub_total"`
}

type PurchaseInvoiceResponse struct {
	ID                    string                        `json:"id"`
	SupplierID            string                        `json:"supplier_id"`
	Status                string                        `json:"status"`
	SupplierInvoiceNumber string                        `json:"supplier_invoice_number"`
	ItemsCount            int                           `json:"items_count"`
	TotalQuantity         int                           `json:"total_quantity"`
	TotalPrice            decimal.Decimal               `json:"total_price"`
	Items                 []PurchaseInvoiceItemResponse `json:"items"`
}

type SaleInvoiceItemRequest struct {
	ProductID          string          `json:"product_id" validate:"required,uuid"`
	SellingDiscountPct decimal.Decimal `json:"selling_discount_pct" validate:"min=0,max=99.99"`
	Quantity           int             `json:"quantity" validate:"required,gt=0"`
}

type CreateSaleInvoiceRequest struct {
	PharmacyID string                   `json:"pharmacy_id" validate:"required,uuid"`
	Items      []SaleInvoiceItemRequest `json:"items" validate:"dive"`
}

type SaleInvoiceItemResponse struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"product_id"`
	SellingDiscountPct decimal.Decimal `json:"selling_discount_pct"`
	SellingPrice       decimal.Decimal `json:"selling_price"`
	Quantity           int             `json:"quantity"`
	SubTotal           decimal.Decimal `json:"sub_total"`
}

type SaleInvoiceResponse struct {
	ID            string                    `json:"id"`
	PharmacyID    string                    `json:"pharmacy_id"`
	Status        string                    `json:"status"`
	ItemsCount    int                       `json:"items_count"`
	TotalQuantity int                       `json:"total_quantity"`
	TotalPrice    decimal.Decimal           `json:"total_price"`
	Items         []SaleInvoiceItemResponse `json:"items"`
}

// AvailabilityLine reports stock coverage for one sale-invoice line.
type AvailabilityLine struct {
	ProductID string `json:"product_id"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
	Shortage  int    `json:"shortage"`
}

type AvailabilityReport struct {
	InvoiceID string             `json:"invoice_id"`
	CanClose  bool               `json:"can_close"`
	Lines     []AvailabilityLine `json:"lines"`
}
