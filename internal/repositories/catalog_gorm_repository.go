package repositories

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/apperror"
	"storefront/internal/models"

	"gorm.io/gorm"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

func (r *GORMCategoryRepository) CreateParent(ctx context.Context, category *models.ParentCategory) error {
	if err := r.db.WithContext(ctx).Omit("SubCategories").Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.AlreadyExists("Category already exists")
		}
		return fmt.Errorf("failed to create parent category: %w", err)
	}
	return nil
}

func (r *GORMCategoryRepository) CreateSub(ctx context.Context, category *models.SubCategory) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.AlreadyExists("Category already exists")
		}
		return fmt.Errorf("failed to create sub category: %w", err)
	}
	return nil
}

func (r *GORMCategoryRepository) GetParentByID(ctx context.Context, id string) (*models.ParentCategory, error) {
	var category models.ParentCategory
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("parent category", id)
		}
		return nil, fmt.Errorf("failed to get parent category %s: %w", id, err)
	}
	return &category, nil
}

func (r *GORMCategoryRepository) GetSubByID(ctx context.Context, id string) (*models.SubCategory, error) {
	var category models.SubCategory
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("sub category", id)
		}
		return nil, fmt.Errorf("failed to get sub category %s: %w", id, err)
	}
	return &category, nil
}

// List returns every parent category with its subcategories, by name.
func (r *GORMCategoryRepository) List(ctx context.Context) ([]models.ParentCategory, error) {
	var categories []models.ParentCategory
	err := r.db.WithContext(ctx).
		Preload("SubCategories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GORMBrandRepository is a GORM implementation of BrandRepository.
type GORMBrandRepository struct {
	db *gorm.DB
}

// NewGORMBrandRepository creates a new instance of GORMBrandRepository.
func NewGORMBrandRepository(db *gorm.DB) *GORMBrandRepository {
	return &GORMBrandRepository{db: db}
}

func (r *GORMBrandRepository) Create(ctx context.Context, brand *models.Brand) error {
	if err := r.db.WithContext(ctx).Create(brand).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.AlreadyExists("Brand already exists")
		}
		return fmt.Errorf("failed to create brand: %w", err)
	}
	return nil
}

func (r *GORMBrandRepository) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("brand", id)
		}
		return nil, fmt.Errorf("failed to get brand %s: %w", id, err)
	}
	return &brand, nil
}

// Delete removes a brand. Products keep existing with their brand cleared.
func (r *GORMBrandRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("brand_id = ?", id).Update("brand_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Brand{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("brand", id)
		}
		return nil
	})
	return wrapTxError("delete brand", err)
}

func (r *GORMBrandRepository) List(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&brands).Error; err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	return brands, nil
}
