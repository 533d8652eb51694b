package models

// Brand names are stored lower-cased and are unique.
type Brand struct {
	Base
	Name string `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
}

// ParentCategory is the top level of the two level category tree.
type ParentCategory struct {
	Base
	Name          string        `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	SubCategories []SubCategory `json:"sub_categories,omitempty" gorm:"foreignKey:ParentCategoryID"`
}

// SubCategory always belongs to an existing ParentCategory.
type SubCategory struct {
	Base
	Name             string `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	ParentCategoryID string `json:"parent_category_id" gorm:"type:varchar(36);index;not null"`
}
