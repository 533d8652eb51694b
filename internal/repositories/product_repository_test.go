package repositories_test

import (
	"context"
	"strings"
	"testing"

	"storefront/internal/apperror"
	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenTest(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

// seedCatalog writes brands and categories to db and returns products that
// reference them both by id and by pointer, so the same values can seed the
// GORM and the in-memory store.
func seedCatalog(t *testing.T, db *gorm.DB) []models.Product {
	t.Helper()
	nike := models.Brand{Base: models.Base{ID: "b-nike"}, Name: "nike"}
	adidas := models.Brand{Base: models.Base{ID: "b-adidas"}, Name: "adidas"}
	footwear := models.ParentCategory{Base: models.Base{ID: "pc-footwear"}, Name: "footwear"}
	sneakers := models.SubCategory{Base: models.Base{ID: "sc-sneakers"}, Name: "sneakers", ParentCategoryID: footwear.ID}
	if db != nil {
		require.NoError(t, db.Create(&nike).Error)
		require.NoError(t, db.Create(&adidas).Error)
		require.NoError(t, db.Omit("SubCategories").Create(&footwear).Error)
		require.NoError(t, db.Create(&sneakers).Error)
	}

	return []models.Product{
		{
			Base: models.Base{ID: "p1"}, Name: "Trail Runner", Views: 5,
			BrandID: &nike.ID, Brand: &nike,
			Details: []models.ProductDetail{{Price: 600, Quantity: 1}, {Price: 200, Quantity: 3}},
			Tags:    []models.Tag{{Name: "red"}},
			Images:  []models.ProductImage{{AssetID: "a1", PublicID: "img1", Format: "png", SecureURL: "https://cdn/img1.png"}},
		},
		{
			Base: models.Base{ID: "p2"}, Name: "City Walker", Views: 10,
			BrandID: &adidas.ID, Brand: &adidas,
			Details: []models.ProductDetail{{Price: 150, Quantity: 2}},
			Tags:    []models.Tag{{Name: "black"}},
		},
		{
			Base: models.Base{ID: "p3"}, Name: "Canvas Low", Views: 5,
			ParentCategoryID: &footwear.ID, ParentCategory: &footwear,
			SubCategoryID: &sneakers.ID, SubCategory: &sneakers,
			Details: []models.ProductDetail{{Price: 300, Quantity: 1}},
			Tags:    []models.Tag{{Name: "navy blue"}},
		},
		{
			Base: models.Base{ID: "p4"}, Name: "Luxury Boot", Views: 1,
			Details: []models.ProductDetail{{Price: 900, Quantity: 1}},
			Tags:    []models.Tag{{Name: "leather"}},
		},
	}
}

// productStores returns a GORM store and an in-memory store holding the same catalog.
func productStores(t *testing.T) map[string]repositories.ProductRepository {
	t.Helper()
	ctx := context.Background()

	db := newTestDB(t)
	gormRepo := repositories.NewGORMProductRepository(db)
	for _, p := range seedCatalog(t, db) {
		p := p
		require.NoError(t, gormRepo.Create(ctx, &p))
	}

	memRepo := repositories.NewMemoryProductRepository()
	for _, p := range seedCatalog(t, nil) {
		p := p
		require.NoError(t, memRepo.Create(ctx, &p))
	}

	return map[string]repositories.ProductRepository{"gorm": gormRepo, "memory": memRepo}
}

func productIDs(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFindProducts(t *testing.T) {
	tests := []struct {
		name  string
		query search.Query
		want  []string
	}{
		{
			name:  "price band only",
			query: search.Query{Filter: search.BuildFilter("", 100, 500), DetailMin: 100, DetailMax: 500},
			want:  []string{"p1", "p2", "p3"},
		},
		{
			name:  "tag substring",
			query: search.Query{Filter: search.BuildFilter("blue", 0, 1000), DetailMax: 1000},
			want:  []string{"p3"},
		},
		{
			name:  "brand equals ignoring case",
			query: search.Query{Filter: search.BuildFilter("NIKE", 0, 1000), DetailMax: 1000},
			want:  []string{"p1"},
		},
		{
			name:  "subcategory must match whole name",
			query: search.Query{Filter: search.BuildFilter("sneak", 0, 1000), DetailMax: 1000},
			want:  []string{},
		},
		{
			name:  "parent category",
			query: search.Query{Filter: search.BuildFilter("Footwear", 0, 1000), DetailMax: 1000},
			want:  []string{"p3"},
		},
		{
			name:  "product name substring",
			query: search.Query{Filter: search.BuildFilter("walk", 0, 1000), DetailMax: 1000},
			want:  []string{"p2"},
		},
		{
			name:  "like wildcards are literal",
			query: search.Query{Filter: search.BuildFilter("%", 0, 1000), DetailMax: 1000},
			want:  []string{},
		},
		{
			name:  "views descending with id tie break",
			query: search.Query{Filter: search.BuildFilter("", 0, 1000), DetailMax: 1000, SortByViews: search.Descending},
			want:  []string{"p2", "p1", "p3", "p4"},
		},
		{
			name:  "views ascending",
			query: search.Query{Filter: search.BuildFilter("", 0, 1000), DetailMax: 1000, SortByViews: search.Ascending},
			want:  []string{"p4", "p1", "p3", "p2"},
		},
		{
			name:  "limit",
			query: search.Query{Filter: search.BuildFilter("", 0, 1000), DetailMax: 1000, Limit: 2},
			want:  []string{"p1", "p2"},
		},
		{
			name:  "cursor by id",
			query: search.Query{Filter: search.BuildFilter("", 0, 1000), DetailMax: 1000, Cursor: "p2", Limit: 1},
			want:  []string{"p3"},
		},
		{
			name: "cursor within equal views",
			query: search.Query{
				Filter: search.BuildFilter("", 0, 1000), DetailMax: 1000,
				SortByViews: search.Descending, Cursor: "p1",
			},
			want: []string{"p3", "p4"},
		},
		{
			name: "cursor row outside the filter still anchors",
			query: search.Query{
				Filter: search.BuildFilter("", 100, 500), DetailMin: 100, DetailMax: 500,
				SortByViews: search.Ascending, Cursor: "p4",
			},
			want: []string{"p1", "p3", "p2"},
		},
		{
			name:  "unknown cursor",
			query: search.Query{Filter: search.BuildFilter("", 0, 1000), DetailMax: 1000, Cursor: "nope"},
			want:  []string{},
		},
	}

	for name, store := range productStores(t) {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				products, err := store.FindProducts(context.Background(), tt.query)
				require.NoError(t, err)
				assert.Equal(t, tt.want, productIDs(products))
			})
		}
	}
}

func TestFindProducts_OnlyDetailsInBand(t *testing.T) {
	for name, store := range productStores(t) {
		t.Run(name, func(t *testing.T) {
			products, err := store.FindProducts(context.Background(), search.Query{
				Filter:    search.BuildFilter("runner", 100, 500),
				DetailMin: 100,
				DetailMax: 500,
			})
			require.NoError(t, err)
			require.Len(t, products, 1)
			require.Len(t, products[0].Details, 1)
			assert.Equal(t, 200.0, products[0].Details[0].Price)
			assert.Len(t, products[0].Images, 1)
		})
	}
}

func TestCountProducts(t *testing.T) {
	tests := []struct {
		query    string
		min, max float64
		want     int64
	}{
		{"", 100, 500, 3},
		{"blue", 0, 1000, 1},
		{"", 800, 1000, 1},
		{"jacket", 0, 1000, 0},
	}
	for name, store := range productStores(t) {
		for _, tt := range tests {
			n, err := store.CountProducts(context.Background(), search.BuildFilter(tt.query, tt.min, tt.max))
			require.NoError(t, err)
			assert.Equal(t, tt.want, n, "%s query=%q [%g,%g]", name, tt.query, tt.min, tt.max)
		}
	}
}

func TestEngineOverStores(t *testing.T) {
	for name, store := range productStores(t) {
		t.Run(name, func(t *testing.T) {
			hits, err := search.NewEngine(store).Search(context.Background(), search.Params{
				PriceMin:    100,
				PriceMax:    500,
				SortByPrice: true,
			})
			require.NoError(t, err)
			require.Len(t, hits, 3)
			assert.Equal(t, "p2", hits[0].ID)
			assert.Equal(t, int64(150), *hits[0].AveragePrice)
			assert.Equal(t, "p1", hits[1].ID)
			assert.Equal(t, int64(200), *hits[1].AveragePrice)
			assert.Equal(t, "p3", hits[2].ID)
		})
	}
}

func TestProductRepository_GetByIDAndViews(t *testing.T) {
	ctx := context.Background()
	for name, store := range productStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.IncrementViews(ctx, "p1"))
			require.NoError(t, store.IncrementViews(ctx, "p1"))

			p, err := store.GetByID(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, int64(7), p.Views)
			assert.Len(t, p.Details, 2)
			assert.Equal(t, 200.0, p.Details[0].Price)
			assert.Len(t, p.Tags, 1)
			require.NotNil(t, p.Brand)
			assert.Equal(t, "nike", p.Brand.Name)

			_, err = store.GetByID(ctx, "missing")
			assert.ErrorIs(t, err, apperror.ErrNotFound)
			assert.ErrorIs(t, store.IncrementViews(ctx, "missing"), apperror.ErrNotFound)
		})
	}
}

func TestProductRepository_Update(t *testing.T) {
	ctx := context.Background()
	for name, store := range productStores(t) {
		t.Run(name, func(t *testing.T) {
			p, err := store.GetByID(ctx, "p2")
			require.NoError(t, err)
			detailID := p.Details[0].ID

			price := 175.0
			qty := 9
			updated, err := store.Update(ctx, "p2", models.ProductPatch{
				Name:    strPtr("City Walker II"),
				Details: []models.DetailPatch{{ID: detailID, Price: &price, Quantity: &qty}},
			})
			require.NoError(t, err)
			assert.Equal(t, "City Walker II", updated.Name)
			require.Len(t, updated.Details, 1)
			assert.Equal(t, 175.0, updated.Details[0].Price)
			assert.Equal(t, 9, updated.Details[0].Quantity)
			assert.Equal(t, "", updated.Description)

			_, err = store.Update(ctx, "p2", models.ProductPatch{
				Name:    strPtr("should not stick"),
				Details: []models.DetailPatch{{ID: "unknown", Price: &price}},
			})
			assert.ErrorIs(t, err, apperror.ErrNotFound)

			again, err := store.GetByID(ctx, "p2")
			require.NoError(t, err)
			assert.Equal(t, "City Walker II", again.Name)

			_, err = store.Update(ctx, "missing", models.ProductPatch{})
			assert.ErrorIs(t, err, apperror.ErrNotFound)
		})
	}
}

func TestProductRepository_AddDetailAndReplaceTags(t *testing.T) {
	ctx := context.Background()
	for name, store := range productStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.AddDetail(ctx, "p4", &models.ProductDetail{Price: 450, Quantity: 2}))
			n, err := store.CountProducts(ctx, search.BuildFilter("", 400, 500))
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			assert.ErrorIs(t, store.AddDetail(ctx, "missing", &models.ProductDetail{Price: 1}), apperror.ErrNotFound)

			p, err := store.ReplaceTags(ctx, "p4", []models.Tag{{Name: "winter"}, {Name: "suede"}})
			require.NoError(t, err)
			assert.Len(t, p.Tags, 2)

			n, err = store.CountProducts(ctx, search.BuildFilter("leather", 0, 1000))
			require.NoError(t, err)
			assert.Zero(t, n)
			n, err = store.CountProducts(ctx, search.BuildFilter("suede", 0, 1000))
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			_, err = store.ReplaceTags(ctx, "missing", []models.Tag{{Name: "x"}})
			assert.ErrorIs(t, err, apperror.ErrNotFound)
		})
	}
}
