package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/search"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// Relations used by search (brand, categories, tags) are kept as given to Create.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	stamp(&product.Base, now)
	for i := range product.Details {
		stamp(&product.Details[i].Base, now)
		product.Details[i].ProductID = product.ID
	}
	for i := range product.Images {
		stamp(&product.Images[i].Base, now)
		product.Images[i].ProductID = product.ID
	}
	for i := range product.Tags {
		stamp(&product.Tags[i].Base, now)
		product.Tags[i].ProductID = product.ID
	}
	r.products[product.ID] = clone(*product)
	return nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperror.NotFound("product", id)
	}
	out := clone(product)
	sortDetails(out.Details)
	return &out, nil
}

// IncrementViews adds one to the view counter.
func (r *MemoryProductRepository) IncrementViews(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return apperror.NotFound("product", id)
	}
	product.Views++
	r.products[id] = product
	return nil
}

// Update applies the patch. Nothing changes when any listed detail is unknown.
func (r *MemoryProductRepository) Update(_ context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[id]
	if !ok {
		return nil, apperror.NotFound("product", id)
	}
	product := clone(stored)
	for _, dp := range patch.Details {
		i := detailIndex(product.Details, dp.ID)
		if i < 0 {
			return nil, apperror.NotFound("product detail", dp.ID)
		}
		d := &product.Details[i]
		if dp.Price != nil {
			d.Price = *dp.Price
		}
		if dp.Discount != nil {
			d.Discount = dp.Discount
		}
		if dp.Size != nil {
			d.Size = dp.Size
		}
		if dp.Color != nil {
			d.Color = dp.Color
		}
		if dp.Quantity != nil {
			d.Quantity = *dp.Quantity
		}
	}
	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.ParentCategoryID != nil {
		product.ParentCategoryID = patch.ParentCategoryID
	}
	if patch.SubCategoryID != nil {
		product.SubCategoryID = patch.SubCategoryID
	}
	if patch.BrandID != nil {
		product.BrandID = patch.BrandID
	}
	product.UpdatedAt = time.Now()
	r.products[id] = product

	out := clone(product)
	sortDetails(out.Details)
	return &out, nil
}

// AddDetail appends a priced variant.
func (r *MemoryProductRepository) AddDetail(_ context.Context, productID string, detail *models.ProductDetail) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[productID]
	if !ok {
		return apperror.NotFound("product", productID)
	}
	stamp(&detail.Base, time.Now())
	detail.ProductID = productID
	product.Details = append(append([]models.ProductDetail(nil), product.Details...), *detail)
	r.products[productID] = product
	return nil
}

// ReplaceTags swaps the tag set of a product.
func (r *MemoryProductRepository) ReplaceTags(_ context.Context, productID string, tags []models.Tag) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[productID]
	if !ok {
		return nil, apperror.NotFound("product", productID)
	}
	now := time.Now()
	replaced := make([]models.Tag, len(tags))
	for i, t := range tags {
		t.ID = ""
		stamp(&t.Base, now)
		t.ProductID = productID
		replaced[i] = t
	}
	product.Tags = replaced
	r.products[productID] = product

	out := clone(product)
	return &out, nil
}

// FindProducts executes one search page by scanning every product.
func (r *MemoryProductRepository) FindProducts(_ context.Context, q search.Query) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ordered := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if q.SortByViews != "" && a.Views != b.Views {
			if q.SortByViews == search.Descending {
				return a.Views > b.Views
			}
			return a.Views < b.Views
		}
		return a.ID < b.ID
	})

	start := 0
	if q.Cursor != "" {
		start = -1
		for i, p := range ordered {
			if p.ID == q.Cursor {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return []models.Product{}, nil
		}
	}

	page := []models.Product{}
	for i := start; i < len(ordered); i++ {
		if !search.Match(q.Filter, &ordered[i]) {
			continue
		}
		hit := clone(ordered[i])
		hit.Details = search.DetailsInRange(hit.Details, q.DetailMin, q.DetailMax)
		sortDetails(hit.Details)
		hit.Brand, hit.ParentCategory, hit.SubCategory, hit.Tags = nil, nil, nil, nil
		page = append(page, hit)
		if q.Limit > 0 && len(page) == q.Limit {
			break
		}
	}
	return page, nil
}

// CountProducts counts the products matching filter.
func (r *MemoryProductRepository) CountProducts(_ context.Context, filter search.Predicate) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, p := range r.products {
		if search.Match(filter, &p) {
			n++
		}
	}
	return n, nil
}

func stamp(b *models.Base, now time.Time) {
	if b.ID == "" {
		b.ID = models.NewID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

func detailIndex(details []models.ProductDetail, id string) int {
	for i := range details {
		if details[i].ID == id {
			return i
		}
	}
	return -1
}

func sortDetails(details []models.ProductDetail) {
	sort.SliceStable(details, func(i, j int) bool {
		if details[i].Price != details[j].Price {
			return details[i].Price < details[j].Price
		}
		return details[i].ID < details[j].ID
	})
}

// clone copies the slices of p so callers cannot mutate stored state.
func clone(p models.Product) models.Product {
	p.Details = append([]models.ProductDetail(nil), p.Details...)
	p.Images = append([]models.ProductImage(nil), p.Images...)
	p.Tags = append([]models.Tag(nil), p.Tags...)
	return p
}
