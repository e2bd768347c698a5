package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/models"
	"storefront/internal/uuid"
)

// productService handles catalog product administration.
type productService struct {
	db *gorm.DB
}

// NewProductService creates a new ProductServicer.
func NewProductService(db *gorm.DB) ProductServicer {
	return &productService{db: db}
}

// CreateProduct adds a product to the catalog.
func (s *productService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        in.Name,
		Brand:       in.Brand,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
	}
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return product, nil
}

// UpdateProduct replaces the writable fields of a product.
func (s *productService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	product, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(product).Updates(map[string]interface{}{
		"name":        in.Name,
		"brand":       in.Brand,
		"description": in.Description,
		"price":       in.Price,
		"stock":       in.Stock,
		"category_id": in.CategoryID,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.getProduct(ctx, id)
}

// DeleteProduct soft-deletes a product.
func (s *productService) DeleteProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(product).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return product, nil
}

func (s *productService) getProduct(ctx context.Context, id string) (*models.Product, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrProductNotFound
	}
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &product, nil
}

func (s *productService) validate(ctx context.Context, in *ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	if in.Name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "product name is required")
	}
	if in.Price < 0 || in.Stock < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "price and stock cannot be negative")
	}
	if in.CategoryID == nil {
		return nil
	}
	if !uuid.IsValid(*in.CategoryID) {
		return apperrors.ErrCategoryNotFound
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", *in.CategoryID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}
