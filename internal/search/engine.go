package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"storefront/internal/apperror"
	"storefront/internal/models"
)

// Direction orders a column ascending or descending.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection accepts "asc" or "desc" in any case. An empty string means no ordering.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case string(Ascending):
		return Ascending, nil
	case string(Descending):
		return Descending, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q", s)
	}
}

// Params are the caller supplied search inputs.
type Params struct {
	PriceMin    float64
	PriceMax    float64
	Query       string
	Limit       int
	Cursor      string
	SortByViews Direction
	SortByPrice bool
}

// Query is what a Store executes for one page.
//
// The store returns at most Limit products (no limit when Limit is 0) matching
// Filter, ordered by views in SortByViews direction when set and by id
// otherwise, with id as the final tie breaker. When Cursor is set the page
// starts strictly after the cursor product in that order; an unknown cursor
// yields an empty page. Each product carries its images and only the details
// priced in [DetailMin, DetailMax], sorted by ascending price.
type Query struct {
	Filter      Predicate
	DetailMin   float64
	DetailMax   float64
	Limit       int
	Cursor      string
	SortByViews Direction
}

// Store is the persistence side of search.
type Store interface {
	FindProducts(ctx context.Context, q Query) ([]models.Product, error)
	CountProducts(ctx context.Context, filter Predicate) (int64, error)
}

// Hit is a product in a search page. AveragePrice is only set when the
// caller asked for price ordering.
type Hit struct {
	models.Product
	AveragePrice *int64 `json:"average_price,omitempty"`
}

// Engine runs searches against a Store. It keeps no state between calls.
type Engine struct {
	store Store
}

// NewEngine creates a new Engine.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Search returns one page of products matching p.
func (e *Engine) Search(ctx context.Context, p Params) ([]Hit, error) {
	products, err := e.store.FindProducts(ctx, Query{
		Filter:      BuildFilter(p.Query, p.PriceMin, p.PriceMax),
		DetailMin:   p.PriceMin,
		DetailMax:   p.PriceMax,
		Limit:       p.Limit,
		Cursor:      p.Cursor,
		SortByViews: p.SortByViews,
	})
	if err != nil {
		return nil, apperror.Storage(err)
	}

	hits := make([]Hit, len(products))
	for i := range products {
		hits[i] = Hit{Product: products[i]}
	}

	if p.SortByPrice {
		for i := range hits {
			hits[i].AveragePrice = averagePrice(hits[i].Details)
		}
		SortByAveragePrice(hits, p.SortByViews != "")
	}
	return hits, nil
}

// Count returns how many products match the same filter as Search, ignoring
// pagination and ordering.
func (e *Engine) Count(ctx context.Context, query string, priceMin, priceMax float64) (int64, error) {
	n, err := e.store.CountProducts(ctx, BuildFilter(query, priceMin, priceMax))
	if err != nil {
		return 0, apperror.Storage(err)
	}
	return n, nil
}

// SortByAveragePrice reorders one page by average price ascending. With
// byViews the page is ordered by views descending first. Only the order within
// the page changes.
func SortByAveragePrice(hits []Hit, byViews bool) {
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if byViews && a.Views != b.Views {
			return a.Views > b.Views
		}
		return priceKey(a) < priceKey(b)
	})
}

// averagePrice rounds half up, so 12.5 becomes 13.
func averagePrice(details []models.ProductDetail) *int64 {
	if len(details) == 0 {
		return nil
	}
	var sum float64
	for _, d := range details {
		sum += d.Price
	}
	avg := int64(math.Floor(sum/float64(len(details)) + 0.5))
	return &avg
}

// Hits without details sort after every priced hit.
func priceKey(h Hit) float64 {
	if h.AveragePrice == nil {
		return math.Inf(1)
	}
	return float64(*h.AveragePrice)
}
