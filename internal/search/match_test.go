package search_test

import (
	"testing"

	"storefront/internal/models"
	"storefront/internal/search"

	"github.com/stretchr/testify/assert"
)

func catalogProduct() *models.Product {
	return &models.Product{
		Base:           models.Base{ID: "p3"},
		Name:           "Running Shoe",
		Brand:          &models.Brand{Name: "nike"},
		ParentCategory: &models.ParentCategory{Name: "footwear"},
		SubCategory:    &models.SubCategory{Name: "sneakers"},
		Tags:           []models.Tag{{Name: "navy-blue"}, {Name: "sport"}},
		Details:        []models.ProductDetail{{Price: 200}, {Price: 600}},
	}
}

func TestBuildFilter(t *testing.T) {
	f := search.BuildFilter("", 1, 2)
	assert.Equal(t, search.KindAnd, f.Kind)
	assert.Len(t, f.Children, 1)
	assert.Equal(t, search.KindRange, f.Children[0].Kind)

	f = search.BuildFilter("blue", 1, 2)
	assert.Len(t, f.Children, 2)
	text := f.Children[0]
	assert.Equal(t, search.KindOr, text.Kind)
	assert.Len(t, text.Children, 5)
	assert.Equal(t,
		`and(or(contains(tag.name, "blue"), equals(parent_category.name, "blue"), equals(sub_category.name, "blue"), contains(product.name, "blue"), equals(brand.name, "blue")), range(detail.price, 1, 2))`,
		f.String())
}

func TestMatch(t *testing.T) {
	p := catalogProduct()

	tests := []struct {
		name  string
		query string
		min   float64
		max   float64
		want  bool
	}{
		{"tag substring", "BLUE", 0, 1000, true},
		{"product name substring", "shoe", 0, 1000, true},
		{"brand equals", "Nike", 0, 1000, true},
		{"brand substring does not match", "nik", 0, 1000, false},
		{"parent category equals", "footwear", 0, 1000, true},
		{"subcategory equals", "SNEAKERS", 0, 1000, true},
		{"no text clause matches", "jacket", 0, 1000, false},
		{"empty query matches by price", "", 100, 300, true},
		{"price band excludes every detail", "", 250, 500, false},
		{"inclusive upper bound", "", 600, 600, true},
		{"text matches but price does not", "shoe", 700, 800, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, search.Match(search.BuildFilter(tt.query, tt.min, tt.max), p))
		})
	}
}

func TestMatch_EmptyCombinators(t *testing.T) {
	p := catalogProduct()
	assert.True(t, search.Match(search.And(), p))
	assert.False(t, search.Match(search.Or(), p))
}

func TestDetailsInRange(t *testing.T) {
	details := []models.ProductDetail{{Price: 600}, {Price: 200}, {Price: 99.99}}
	got := search.DetailsInRange(details, 100, 500)
	assert.Len(t, got, 1)
	assert.Equal(t, 200.0, got[0].Price)
}
