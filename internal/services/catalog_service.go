package services

import (
	"context"
	"strings"

	"storefront/internal/apperror"
	"storefront/internal/cache"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/sirupsen/logrus"
)

const (
	categoriesCacheKey = "catalog:categories"
	brandsCacheKey     = "catalog:brands"
)

// CategoryService manages the two level category tree.
type CategoryService struct {
	repo    repositories.CategoryRepository
	cache   cache.Cache
	metrics *metrics.Metrics
	log     *logrus.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository, c cache.Cache, m *metrics.Metrics, log *logrus.Logger) *CategoryService {
	return &CategoryService{repo: repo, cache: c, metrics: m, log: log}
}

// CreateParentCategory stores a lower-cased top level category.
func (s *CategoryService) CreateParentCategory(ctx context.Context, name string) (*models.ParentCategory, error) {
	category := &models.ParentCategory{Name: normalizeName(name)}
	if category.Name == "" {
		return nil, apperror.InvalidInput("category name is required")
	}
	if err := s.repo.CreateParent(ctx, category); err != nil {
		return nil, apperror.FromStorage(err)
	}
	invalidate(ctx, s.cache, s.log, categoriesCacheKey)
	return category, nil
}

// AddSubCategory stores a lower-cased subcategory under an existing parent.
func (s *CategoryService) AddSubCategory(ctx context.Context, name, parentID string) (*models.SubCategory, error) {
	category := &models.SubCategory{Name: normalizeName(name), ParentCategoryID: parentID}
	if category.Name == "" {
		return nil, apperror.InvalidInput("category name is required")
	}
	if _, err := s.repo.GetParentByID(ctx, parentID); err != nil {
		return nil, apperror.FromStorage(err)
	}
	if err := s.repo.CreateSub(ctx, category); err != nil {
		return nil, apperror.FromStorage(err)
	}
	invalidate(ctx, s.cache, s.log, categoriesCacheKey)
	return category, nil
}

// ListCategories returns every parent category with its subcategories.
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.ParentCategory, error) {
	var categories []models.ParentCategory
	if readCache(ctx, s.cache, s.metrics, s.log, categoriesCacheKey, &categories) {
		return categories, nil
	}
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	writeCache(ctx, s.cache, s.log, categoriesCacheKey, categories)
	return categories, nil
}

// BrandService manages brands.
type BrandService struct {
	repo    repositories.BrandRepository
	cache   cache.Cache
	metrics *metrics.Metrics
	log     *logrus.Logger
}

// NewBrandService creates a new BrandService.
func NewBrandService(repo repositories.BrandRepository, c cache.Cache, m *metrics.Metrics, log *logrus.Logger) *BrandService {
	return &BrandService{repo: repo, cache: c, metrics: m, log: log}
}

func (s *BrandService) AddBrand(ctx context.Context, name string) (*models.Brand, error) {
	brand := &models.Brand{Name: normalizeName(name)}
	if brand.Name == "" {
		return nil, apperror.InvalidInput("brand name is required")
	}
	if err := s.repo.Create(ctx, brand); err != nil {
		return nil, apperror.FromStorage(err)
	}
	invalidate(ctx, s.cache, s.log, brandsCacheKey)
	return brand, nil
}

func (s *BrandService) RemoveBrand(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.FromStorage(err)
	}
	invalidate(ctx, s.cache, s.log, brandsCacheKey)
	return nil
}

func (s *BrandService) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	if readCache(ctx, s.cache, s.metrics, s.log, brandsCacheKey, &brands) {
		return brands, nil
	}
	brands, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	writeCache(ctx, s.cache, s.log, brandsCacheKey, brands)
	return brands, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Cache failures never fail a request; the database stays the source of truth.

func readCache(ctx context.Context, c cache.Cache, m *metrics.Metrics, log *logrus.Logger, key string, dest interface{}) bool {
	found, err := c.Get(ctx, key, dest)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("cache read failed")
		found = false
	}
	m.ObserveCache(key, found)
	return found
}

func writeCache(ctx context.Context, c cache.Cache, log *logrus.Logger, key string, value interface{}) {
	if err := c.Set(ctx, key, value); err != nil {
		log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func invalidate(ctx context.Context, c cache.Cache, log *logrus.Logger, key string) {
	if err := c.Delete(ctx, key); err != nil {
		log.WithError(err).WithField("key", key).Warn("cache invalidation failed")
	}
}
