package dto

import "github.com/shopspring/decimal"

type CreateOfferRequest struct {
	SellerID            string          `json:"seller_id" validate:"required,uuid"`
	ProductID           string          `json:"product_id" validate:"required,uuid"`
	StoreProductCode    string          `json:"store_product_code"`
	OperatingNumber     string          `json:"operating_number"`
	AvailableAmount     int             `json:"available_amount" validate:"required,gt=0"`
	MaxAmountPerInvoice *int            `json:"max_amount_per_invoice"`
	ExpiryDate          *string         `json:"expiry_date"`
	MinPurchase         decimal.Decimal `json:"min_purchase"`
	PurchaseDiscountPct decimal.Decimal `json:"purchase_discount_pct" validate:"min=0,max=99.99"`
	// Seller margin retained out of the purchase discount; the rest is
	// passed on as the selling discount.
	ProfitPct decimal.Decimal `json:"profit_pct" validate:"min=0"`
}

type OfferFilter struct {
	ProductID   string `form:"product_id"`
	SellerID    string `form:"seller_id"`
	InStockOnly bool   `form:"in_stock_only"`
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
}

type OfferResponse struct {
	ID                  string          `json:"id"`
	SellerID            string          `json:"seller_id"`
	ProductID           string          `json:"product_id"`
	StoreProductCode    string          `json:"store_product_code"`
	AvailableAmount     int             `json:"available_amount"`
	RemainingAmount     int             `json:"remaining_amount"`
	PurchaseDiscountPct decimal.Decimal `json:"purchase_discount_pct"`
	PurchasePrice       decimal.Decimal `json:"purchase_price"`
	SellingDiscountPct  decimal.Decimal `json:"selling_discount_pct"`
	SellingPrice        decimal.Decimal `json:"selling_price"`
	IsMax               bool            `json:"is_max"`
}

type OfferListResponse struct {
	Data  []OfferResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
