package repositories

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/search"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Create inserts the product together with its details, images and tags.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Brand", "ParentCategory", "SubCategory").Create(product).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID loads a product with every relation.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Brand").
		Preload("ParentCategory").
		Preload("SubCategory").
		Preload("Images").
		Preload("Tags").
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("price ASC") }).
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// IncrementViews adds one to the view counter in a single statement.
func (r *GORMProductRepository) IncrementViews(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to increment views of product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("product", id)
	}
	return nil
}

// Update applies the patch in one transaction: listed details first, then the
// product's own columns.
func (r *GORMProductRepository) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("product", id)
			}
			return err
		}

		for _, dp := range patch.Details {
			var detail models.ProductDetail
			if err := tx.First(&detail, "id = ? AND product_id = ?", dp.ID, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.NotFound("product detail", dp.ID)
				}
				return err
			}
			if updates := detailUpdates(dp); len(updates) > 0 {
				if err := tx.Model(&detail).Updates(updates).Error; err != nil {
					return err
				}
			}
		}

		if updates := productUpdates(patch); len(updates) > 0 {
			if err := tx.Model(&product).Updates(updates).Error; err != nil {
				return err
			}
		}

		return tx.Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("price ASC") }).
			First(&product, "id = ?", id).Error
	})
	if err != nil {
		return nil, wrapTxError("update product", err)
	}
	return &product, nil
}

// AddDetail appends a priced variant to an existing product.
func (r *GORMProductRepository) AddDetail(ctx context.Context, productID string, detail *models.ProductDetail) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureProduct(tx, productID); err != nil {
			return err
		}
		detail.ProductID = productID
		return tx.Create(detail).Error
	})
	return wrapTxError("add product detail", err)
}

// ReplaceTags deletes every tag of the product and creates the given ones.
func (r *GORMProductRepository) ReplaceTags(ctx context.Context, productID string, tags []models.Tag) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureProduct(tx, productID); err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&models.Tag{}).Error; err != nil {
			return err
		}
		for i := range tags {
			tags[i].ID = ""
			tags[i].ProductID = productID
		}
		if len(tags) > 0 {
			if err := tx.Create(&tags).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Tags").First(&product, "id = ?", productID).Error
	})
	if err != nil {
		return nil, wrapTxError("replace product tags", err)
	}
	return &product, nil
}

// FindProducts executes one search page.
func (r *GORMProductRepository) FindProducts(ctx context.Context, q search.Query) ([]models.Product, error) {
	where, args, err := compilePredicate(q.Filter)
	if err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)
	tx := db.Model(&models.Product{}).Where("("+where+")", args...)

	if q.Cursor != "" {
		var anchor models.Product
		err := db.Select("id", "views").First(&anchor, "id = ?", q.Cursor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.Product{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve search cursor %s: %w", q.Cursor, err)
		}
		switch q.SortByViews {
		case search.Ascending:
			tx = tx.Where("(products.views > ? OR (products.views = ? AND products.id > ?))", anchor.Views, anchor.Views, anchor.ID)
		case search.Descending:
			tx = tx.Where("(products.views < ? OR (products.views = ? AND products.id > ?))", anchor.Views, anchor.Views, anchor.ID)
		default:
			tx = tx.Where("products.id > ?", anchor.ID)
		}
	}

	if q.SortByViews != "" {
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Table: "products", Name: "views"},
			Desc:   q.SortByViews == search.Descending,
		})
	}
	tx = tx.Order("products.id ASC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var products []models.Product
	err = tx.
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Where("price BETWEEN ? AND ?", q.DetailMin, q.DetailMax).Order("price ASC").Order("id ASC")
		}).
		Preload("Images").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// CountProducts counts the products matching filter.
func (r *GORMProductRepository) CountProducts(ctx context.Context, filter search.Predicate) (int64, error) {
	where, args, err := compilePredicate(filter)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("("+where+")", args...).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func ensureProduct(tx *gorm.DB, id string) error {
	var n int64
	if err := tx.Model(&models.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("product", id)
	}
	return nil
}

func detailUpdates(p models.DetailPatch) map[string]interface{} {
	updates := map[string]interface{}{}
	if p.Price != nil {
		updates["price"] = *p.Price
	}
	if p.Discount != nil {
		updates["discount"] = *p.Discount
	}
	if p.Size != nil {
		updates["size"] = *p.Size
	}
	if p.Color != nil {
		updates["color"] = *p.Color
	}
	if p.Quantity != nil {
		updates["quantity"] = *p.Quantity
	}
	return updates
}

func productUpdates(p models.ProductPatch) map[string]interface{} {
	updates := map[string]interface{}{}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.ParentCategoryID != nil {
		updates["parent_category_id"] = *p.ParentCategoryID
	}
	if p.SubCategoryID != nil {
		updates["sub_category_id"] = *p.SubCategoryID
	}
	if p.BrandID != nil {
		updates["brand_id"] = *p.BrandID
	}
	return updates
}

// wrapTxError keeps classified errors raised inside a transaction intact.
func wrapTxError(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
