package service

import (
	"context"

	"github.com/msakr99/pharmasky-backend-sub001/internal/dto"
	"github.com/msakr99/pharmasky-backend-sub001/internal/model"
	"github.com/msakr99/pharmasky-backend-sub001/internal/repository"

	"github.com/google/uuid"
)

// ProductService is thin catalog CRUD. Pricing always derives from
// PublicPrice at the moment a batch, offer, or invoice line is created, so
// a price update here never rewrites existing derived prices.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	products repository.ProductRepository
}

func NewProductService(products repository.ProductRepository) ProductService {
	return &productService{products: products}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := &model.Product{
		Name:        req.Name,
		AltName:     req.AltName,
		PublicPrice: req.PublicPrice,
		Company:     req.Company,
		Category:    req.Category,
		Letter:      req.Letter,
		Fridge:      req.Fridge,
		Active:      true,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProductListResponse{
		Data:  make([]dto.ProductResponse, 0, len(products)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range products {
		resp.Data = append(resp.Data, *productToResponse(&products[i]))
	}
	return resp, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.AltName != nil {
		p.AltName = *req.AltName
	}
	if req.PublicPrice != nil {
		p.PublicPrice = *req.PublicPrice
	}
	if req.Company != nil {
		p.Company = *req.Company
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Fridge != nil {
		p.Fridge = *req.Fridge
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.products.Deactivate(ctx, id)
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		AltName:     p.AltName,
		PublicPrice: p.PublicPrice,
		Company:     p.Company,
		Category:    p.Category,
		Fridge:      p.Fridge,
		Active:      p.Active,
	}
}
