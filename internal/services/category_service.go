package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/models"
	"storefront/internal/uuid"
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// ListCategories returns all categories ordered by name.
func (s *categoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	slug := Slugify(name)
	if slug == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name must contain letters or digits")
	}
	if err := s.ensureUnique(ctx, name, slug, ""); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(description),
	}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// UpdateCategory renames a category and/or changes its description.
func (s *categoryService) UpdateCategory(ctx context.Context, id string, name, description *string) (*models.Category, error) {
	category, err := s.getCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name cannot be empty")
		}
		slug := Slugify(n)
		if slug == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name must contain letters or digits")
		}
		if err := s.ensureUnique(ctx, n, slug, category.ID); err != nil {
			return nil, err
		}
		updates["name"] = n
		updates["slug"] = slug
	}
	if description != nil {
		updates["description"] = strings.TrimSpace(*description)
	}
	if len(updates) == 0 {
		return category, nil
	}

	if err := s.db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.getCategory(ctx, id)
}

// DeleteCategory soft-deletes a category and detaches its products.
func (s *categoryService) DeleteCategory(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.getCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(category).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

func (s *categoryService) getCategory(ctx context.Context, id string) (*models.Category, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrCategoryNotFound
	}
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

func (s *categoryService) ensureUnique(ctx context.Context, name, slug, exceptID string) error {
	q := s.db.WithContext(ctx).Unscoped().Model(&models.Category{}).
		Where("(LOWER(name) = ? OR slug = ?)", strings.ToLower(name), slug)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategory
	}
	return nil
}

// Slugify converts a display name into a URL slug.
func Slugify(name string) string {
	return strings.Trim(slugInvalidChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
