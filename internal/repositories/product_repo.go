package repositories

import (
	"context"

	"storefront/internal/models"
	"storefront/internal/search"
)

// ProductRepository defines the interface for product data access.
// It is also the store the search engine runs against.
type ProductRepository interface {
	search.Store
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	IncrementViews(ctx context.Context, id string) error
	Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	AddDetail(ctx context.Context, productID string, detail *models.ProductDetail) error
	ReplaceTags(ctx context.Context, productID string, tags []models.Tag) (*models.Product, error)
}
