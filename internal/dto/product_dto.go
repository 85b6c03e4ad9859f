package dto

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	AltName     string          `json:"alt_name"`
	PublicPrice decimal.Decimal `json:"public_price" validate:"required,gt=0"`
	Company     string          `json:"company" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Letter      string          `json:"letter"`
	Fridge      bool            `json:"fridge"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	AltName     *string          `json:"alt_name"`
	PublicPrice *decimal.Decimal `json:"public_price"`
	Company     *string          `json:"company"`
	Category    *string          `json:"category"`
	Fridge      *bool            `json:"fridge"`
}

type ProductFilter struct {
	Name            string `form:"name"`
	Company         string `form:"company"`
	Category        string `form:"category"`
	IncludeInactive bool   `form:"include_inactive"`
	Page            int    `form:"page"`
	Limit           int    `form:"limit"`
}

type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	AltName     string          `json:"alt_name"`
	PublicPrice decimal.Decimal `json:"public_price"`
	Company     string          `json:"company"`
	Category    string          `json:"category"`
	Fridge      bool            `json:"fridge"`
	Active      bool            `json:"active"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
