package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/search"

	"github.com/sirupsen/logrus"
)

const (
	maxDetails = 5
	maxImages  = 10
	maxTags    = 10
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
	brands     repositories.BrandRepository
	engine     *search.Engine
	metrics    *metrics.Metrics
	log        *logrus.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(
	repo repositories.ProductRepository,
	categories repositories.CategoryRepository,
	brands repositories.BrandRepository,
	m *metrics.Metrics,
	log *logrus.Logger,
) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		brands:     brands,
		engine:     search.NewEngine(repo),
		metrics:    m,
		log:        log,
	}
}

// AddProduct creates a product with its details, images and tags. When a
// subcategory is given its parent replaces any parent supplied by the caller.
func (s *ProductService) AddProduct(ctx context.Context, product *models.Product) error {
	if err := checkCount("details", len(product.Details), 1, maxDetails); err != nil {
		return err
	}
	if err := checkCount("images", len(product.Images), 1, maxImages); err != nil {
		return err
	}
	if err := checkCount("tags", len(product.Tags), 1, maxTags); err != nil {
		return err
	}
	if err := s.resolveReferences(ctx, &product.ParentCategoryID, &product.SubCategoryID, product.BrandID); err != nil {
		return err
	}

	product.ID = ""
	product.Views = 0
	for i := range product.Details {
		normalizeDetail(&product.Details[i])
	}
	for i := range product.Tags {
		product.Tags[i].Name = strings.TrimSpace(product.Tags[i].Name)
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return apperror.FromStorage(err)
	}
	s.log.WithField("product_id", product.ID).Info("product created")
	return nil
}

// UpdateProduct patches the listed details and the product fields present in patch.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	if err := s.resolveReferences(ctx, &patch.ParentCategoryID, &patch.SubCategoryID, patch.BrandID); err != nil {
		return nil, err
	}
	for i := range patch.Details {
		d := &patch.Details[i]
		if d.Size != nil {
			size := strings.ToUpper(*d.Size)
			d.Size = &size
		}
		if d.Color != nil {
			color := strings.ToLower(*d.Color)
			d.Color = &color
		}
	}
	product, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	return product, nil
}

// AddVariation appends one priced variant to a product.
func (s *ProductService) AddVariation(ctx context.Context, productID string, detail *models.ProductDetail) error {
	detail.ID = ""
	normalizeDetail(detail)
	return apperror.FromStorage(s.repo.AddDetail(ctx, productID, detail))
}

// GetProduct returns the full product and counts the view.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		return nil, apperror.FromStorage(err)
	}
	product.Views++
	return product, nil
}

// UpdateTags replaces every tag of a product.
func (s *ProductService) UpdateTags(ctx context.Context, id string, names []string) (*models.Product, error) {
	if err := checkCount("tags", len(names), 1, maxTags); err != nil {
		return nil, err
	}
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, apperror.InvalidInput("tag names must not be empty")
		}
		tags = append(tags, models.Tag{Name: name})
	}
	product, err := s.repo.ReplaceTags(ctx, id, tags)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	return product, nil
}

// Search returns one page of matching products.
func (s *ProductService) Search(ctx context.Context, p search.Params) ([]search.Hit, error) {
	start := time.Now()
	hits, err := s.engine.Search(ctx, p)
	s.metrics.ObserveSearch("search", start, err)
	if err != nil {
		s.log.WithError(err).WithField("query", p.Query).Error("product search failed")
		return nil, err
	}
	s.metrics.ObserveResults(len(hits))
	return hits, nil
}

// SearchCount returns how many products Search would match without paging.
func (s *ProductService) SearchCount(ctx context.Context, query string, priceMin, priceMax float64) (int64, error) {
	start := time.Now()
	n, err := s.engine.Count(ctx, query, priceMin, priceMax)
	s.metrics.ObserveSearch("count", start, err)
	if err != nil {
		s.log.WithError(err).WithField("query", query).Error("product count failed")
		return 0, err
	}
	return n, nil
}

// resolveReferences checks that referenced rows exist and makes the parent
// category follow the subcategory.
func (s *ProductService) resolveReferences(ctx context.Context, parentID, subID **string, brandID *string) error {
	if *subID != nil {
		sub, err := s.categories.GetSubByID(ctx, **subID)
		if err != nil {
			return referenceError(err)
		}
		parent := sub.ParentCategoryID
		*parentID = &parent
	} else if *parentID != nil {
		if _, err := s.categories.GetParentByID(ctx, **parentID); err != nil {
			return referenceError(err)
		}
	}
	if brandID != nil {
		if _, err := s.brands.GetByID(ctx, *brandID); err != nil {
			return referenceError(err)
		}
	}
	return nil
}

// A dangling reference is a bad request rather than a missing product.
func referenceError(err error) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.InvalidInput(apperror.Message(err))
	}
	return apperror.FromStorage(err)
}

func normalizeDetail(d *models.ProductDetail) {
	if d.Size != nil {
		size := strings.ToUpper(*d.Size)
		d.Size = &size
	}
	if d.Color != nil {
		color := strings.ToLower(*d.Color)
		d.Color = &color
	}
}

func checkCount(what string, n, min, max int) error {
	if n < min || n > max {
		return apperror.InvalidInput(fmt.Sprintf("between %d and %d %s required", min, max, what))
	}
	return nil
}
