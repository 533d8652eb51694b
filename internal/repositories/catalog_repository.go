package repositories

import (
	"context"

	"storefront/internal/models"
)

// CategoryRepository defines the interface for the category tree.
type CategoryRepository interface {
	CreateParent(ctx context.Context, category *models.ParentCategory) error
	CreateSub(ctx context.Context, category *models.SubCategory) error
	GetParentByID(ctx context.Context, id string) (*models.ParentCategory, error)
	GetSubByID(ctx context.Context, id string) (*models.SubCategory, error)
	List(ctx context.Context) ([]models.ParentCategory, error)
}

// BrandRepository defines the interface for brand data access.
type BrandRepository interface {
	Create(ctx context.Context, brand *models.Brand) error
	GetByID(ctx context.Context, id string) (*models.Brand, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Brand, error)
}
