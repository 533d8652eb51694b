// Package search implements product search: filter construction, the store
// contract it runs against and the page-local price ordering applied to results.
package search

import "fmt"

// Field names a searchable product attribute, possibly on a related row.
type Field string

const (
	FieldTagName            Field = "tag.name"
	FieldParentCategoryName Field = "parent_category.name"
	FieldSubCategoryName    Field = "sub_category.name"
	FieldProductName        Field = "product.name"
	FieldBrandName          Field = "brand.name"
	FieldDetailPrice        Field = "detail.price"
)

// Kind tags the variant held by a Predicate.
type Kind int

const (
	KindContains Kind = iota + 1
	KindEquals
	KindRange
	KindAnd
	KindOr
)

func (k Kind) String() string {
	switch k {
	case KindContains:
		return "contains"
	case KindEquals:
		return "equals"
	case KindRange:
		return "range"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Predicate is a node of a filter tree. Text comparisons are case-insensitive,
// ranges are inclusive on both ends. Fields on one-to-many relations (tags,
// details) match when at least one related row matches.
type Predicate struct {
	Kind     Kind
	Field    Field
	Text     string
	Min      float64
	Max      float64
	Children []Predicate
}

// Contains matches when the field contains text as a substring.
func Contains(field Field, text string) Predicate {
	return Predicate{Kind: KindContains, Field: field, Text: text}
}

// Equals matches when the field equals text.
func Equals(field Field, text string) Predicate {
	return Predicate{Kind: KindEquals, Field: field, Text: text}
}

// Range matches when the numeric field lies in [min, max].
func Range(field Field, min, max float64) Predicate {
	return Predicate{Kind: KindRange, Field: field, Min: min, Max: max}
}

// And matches when every child matches. An empty And matches everything.
func And(children ...Predicate) Predicate {
	return Predicate{Kind: KindAnd, Children: children}
}

// Or matches when any child matches. An empty Or matches nothing.
func Or(children ...Predicate) Predicate {
	return Predicate{Kind: KindOr, Children: children}
}

func (p Predicate) String() string {
	switch p.Kind {
	case KindContains, KindEquals:
		return fmt.Sprintf("%s(%s, %q)", p.Kind, p.Field, p.Text)
	case KindRange:
		return fmt.Sprintf("range(%s, %g, %g)", p.Field, p.Min, p.Max)
	case KindAnd, KindOr:
		s := p.Kind.String() + "("
		for i, c := range p.Children {
			if i > 0 {
				s += ", "
			}
			s += c.String()
		}
		return s + ")"
	default:
		return p.Kind.String()
	}
}
