package search

// TextFilter matches a free text query against tag names (substring), the
// parent category, the subcategory and the brand (whole name) and the
// product name (substring).
func TextFilter(query string) Predicate {
	return Or(
		Contains(FieldTagName, query),
		Equals(FieldParentCategoryName, query),
		Equals(FieldSubCategoryName, query),
		Contains(FieldProductName, query),
		Equals(FieldBrandName, query),
	)
}

// PriceFilter matches products with at least one detail priced in [min, max].
func PriceFilter(min, max float64) Predicate {
	return Range(FieldDetailPrice, min, max)
}

// BuildFilter returns the predicate shared by search and count.
// An empty query leaves only the price band.
func BuildFilter(query string, min, max float64) Predicate {
	if query == "" {
		return And(PriceFilter(min, max))
	}
	return And(TextFilter(query), PriceFilter(min, max))
}
