package models

// Product is a catalog entry. Every product owns at least one ProductDetail.
type Product struct {
	Base
	Name             string          `json:"name" gorm:"type:varchar(255);not null"`
	Description      string          `json:"description" gorm:"type:text"`
	Views            int64           `json:"views" gorm:"not null;default:0;index"`
	BrandID          *string         `json:"brand_id,omitempty" gorm:"type:varchar(36);index"`
	Brand            *Brand          `json:"brand,omitempty"`
	ParentCategoryID *string         `json:"parent_category_id,omitempty" gorm:"type:varchar(36);index"`
	ParentCategory   *ParentCategory `json:"parent_category,omitempty"`
	SubCategoryID    *string         `json:"sub_category_id,omitempty" gorm:"type:varchar(36);index"`
	SubCategory      *SubCategory    `json:"sub_category,omitempty"`
	Details          []ProductDetail `json:"details" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Images           []ProductImage  `json:"images,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Tags             []Tag           `json:"tags,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// ProductDetail is one priced variant of a product.
type ProductDetail struct {
	Base
	ProductID string   `json:"product_id" gorm:"type:varchar(36);index;not null"`
	Price     float64  `json:"price" gorm:"not null;index"`
	Discount  *float64 `json:"discount,omitempty"`
	Size      *string  `json:"size,omitempty" gorm:"type:varchar(3)"`
	Color     *string  `json:"color,omitempty" gorm:"type:varchar(9)"`
	Quantity  int      `json:"quantity" gorm:"not null"`
}

// ProductImage references an object stored by the image service.
type ProductImage struct {
	Base
	ProductID string `json:"product_id" gorm:"type:varchar(36);index;not null"`
	AssetID   string `json:"asset_id" gorm:"type:varchar(255);not null"`
	PublicID  string `json:"public_id" gorm:"type:varchar(255);not null"`
	Format    string `json:"format" gorm:"type:varchar(16);not null"`
	SecureURL string `json:"secure_url" gorm:"type:text;not null"`
}

// Tag is a free text label of a single product.
type Tag struct {
	Base
	ProductID string `json:"product_id,omitempty" gorm:"type:varchar(36);index;not null"`
	Name      string `json:"name" gorm:"type:varchar(100);not null"`
}
