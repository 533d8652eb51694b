package search

import (
	"strings"

	"storefront/internal/models"
)

// Match evaluates p against an in-memory product with its relations loaded.
func Match(p Predicate, product *models.Product) bool {
	switch p.Kind {
	case KindAnd:
		for _, c := range p.Children {
			if !Match(c, product) {
				return false
			}
		}
		return true
	case KindOr:
		for _, c := range p.Children {
			if Match(c, product) {
				return true
			}
		}
		return false
	case KindRange:
		if p.Field != FieldDetailPrice {
			return false
		}
		for _, d := range product.Details {
			if d.Price >= p.Min && d.Price <= p.Max {
				return true
			}
		}
		return false
	case KindContains, KindEquals:
		for _, v := range textValues(p.Field, product) {
			if matchText(p.Kind, v, p.Text) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func matchText(kind Kind, value, text string) bool {
	if kind == KindEquals {
		return strings.EqualFold(value, text)
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(text))
}

func textValues(field Field, product *models.Product) []string {
	switch field {
	case FieldProductName:
		return []string{product.Name}
	case FieldTagName:
		names := make([]string, 0, len(product.Tags))
		for _, t := range product.Tags {
			names = append(names, t.Name)
		}
		return names
	case FieldBrandName:
		if product.Brand != nil {
			return []string{product.Brand.Name}
		}
	case FieldParentCategoryName:
		if product.ParentCategory != nil {
			return []string{product.ParentCategory.Name}
		}
	case FieldSubCategoryName:
		if product.SubCategory != nil {
			return []string{product.SubCategory.Name}
		}
	}
	return nil
}

// DetailsInRange returns the details priced in [min, max], in their original order.
func DetailsInRange(details []models.ProductDetail, min, max float64) []models.ProductDetail {
	out := make([]models.ProductDetail, 0, len(details))
	for _, d := range details {
		if d.Price >= min && d.Price <= max {
			out = append(out, d)
		}
	}
	return out
}
