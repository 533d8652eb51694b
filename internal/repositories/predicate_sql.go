package repositories

import (
	"fmt"
	"strings"

	"storefront/internal/search"
)

// relationClause maps each text field to an EXISTS subquery over the related
// table. The %s placeholder receives the comparison on the related column.
var relationClause = map[search.Field]string{
	search.FieldTagName:            "EXISTS (SELECT 1 FROM tags t WHERE t.product_id = products.id AND %s)",
	search.FieldBrandName:          "EXISTS (SELECT 1 FROM brands b WHERE b.id = products.brand_id AND %s)",
	search.FieldParentCategoryName: "EXISTS (SELECT 1 FROM parent_categories pc WHERE pc.id = products.parent_category_id AND %s)",
	search.FieldSubCategoryName:    "EXISTS (SELECT 1 FROM sub_categories sc WHERE sc.id = products.sub_category_id AND %s)",
	search.FieldProductName:        "%s",
}

var relationColumn = map[search.Field]string{
	search.FieldTagName:            "t.name",
	search.FieldBrandName:          "b.name",
	search.FieldParentCategoryName: "pc.name",
	search.FieldSubCategoryName:    "sc.name",
	search.FieldProductName:        "products.name",
}

// compilePredicate turns a filter tree into a WHERE fragment over the
// products table with positional arguments.
func compilePredicate(p search.Predicate) (string, []interface{}, error) {
	switch p.Kind {
	case search.KindAnd, search.KindOr:
		if len(p.Children) == 0 {
			if p.Kind == search.KindAnd {
				return "1 = 1", nil, nil
			}
			return "1 = 0", nil, nil
		}
		joiner := " AND "
		if p.Kind == search.KindOr {
			joiner = " OR "
		}
		parts := make([]string, 0, len(p.Children))
		var args []interface{}
		for _, c := range p.Children {
			sql, childArgs, err := compilePredicate(c)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, "("+sql+")")
			args = append(args, childArgs...)
		}
		return strings.Join(parts, joiner), args, nil

	case search.KindRange:
		if p.Field != search.FieldDetailPrice {
			return "", nil, fmt.Errorf("range on unsupported field %s", p.Field)
		}
		return "EXISTS (SELECT 1 FROM product_details d WHERE d.product_id = products.id AND d.price BETWEEN ? AND ?)",
			[]interface{}{p.Min, p.Max}, nil

	case search.KindContains, search.KindEquals:
		clause, ok := relationClause[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("text match on unsupported field %s", p.Field)
		}
		column := relationColumn[p.Field]
		if p.Kind == search.KindEquals {
			return fmt.Sprintf(clause, "LOWER("+column+") = ?"), []interface{}{strings.ToLower(p.Text)}, nil
		}
		pattern := "%" + escapeLike(strings.ToLower(p.Text)) + "%"
		return fmt.Sprintf(clause, "LOWER("+column+`) LIKE ? ESCAPE '\'`), []interface{}{pattern}, nil

	default:
		return "", nil, fmt.Errorf("unknown predicate kind %s", p.Kind)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
