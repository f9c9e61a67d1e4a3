package solver

import (
	"strings"

	"github.com/syssam/exocore/internal/absql"
	"github.com/syssam/exocore/internal/column"
)

// FilterOp is the fixed set of user-facing filter operators, per-operator
// mapped onto an absql.Predicate kind.
type FilterOp int

const (
	OpEq FilterOp = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpLike
	OpILike
	OpStartsWith
	OpEndsWith
	OpContains
	OpContainedBy
	OpMatchKey
	OpMatchAnyKey
	OpMatchAllKeys
)

// Filter is a single field's filter clause: one or more operator/value
// pairs (IntFilter{eq: 1, gt: 0} style — all present operators AND
// together), grounded on the fixed operator-to-predicate mapping the
// solver contract specifies.
type Filter struct {
	Clauses []FilterClause
}

// FilterClause is one operator/value pair within a Filter.
type FilterClause struct {
	Op    FilterOp
	Value any
}

// CompositeFilter is a filter over an entity's fields plus its own logical
// combinators (ConcertFilter{ and: [...], or: [...], not: ... } style).
type CompositeFilter struct {
	Fields map[string]Filter
	Nested map[string]CompositeFilter // for relation-field filters, e.g. mainVenue: { city: { eq: "SF" } }.
	And    []CompositeFilter
	Or     []CompositeFilter
	Not    *CompositeFilter
}

// ToPredicate lowers f into an absql.Predicate against the given table's
// columns, resolving relation-field sub-filters by extending the column
// path through relLookup.
func ToPredicate(f CompositeFilter, base column.ColumnPath, relLookup func(field string) (column.ColumnPathLink, bool)) absql.Predicate {
	var parts []absql.Predicate

	for field, filt := range f.Fields {
		path := extend(base, field)
		parts = append(parts, filterToPredicate(filt, path))
	}

	for field, nested := range f.Nested {
		link, ok := relLookup(field)
		if !ok {
			parts = append(parts, absql.False())
			continue
		}
		nestedBase := column.ColumnPath{Links: append(append([]column.ColumnPathLink{}, base.Links...), link)}
		parts = append(parts, ToPredicate(nested, nestedBase, relLookup))
	}

	for _, and := range f.And {
		parts = append(parts, ToPredicate(and, base, relLookup))
	}
	if len(f.Or) > 0 {
		ors := make([]absql.Predicate, len(f.Or))
		for i, or := range f.Or {
			ors[i] = ToPredicate(or, base, relLookup)
		}
		parts = append(parts, absql.Or(ors...))
	}
	if f.Not != nil {
		parts = append(parts, absql.Not(ToPredicate(*f.Not, base, relLookup)))
	}

	return absql.And(parts...)
}

func extend(base column.ColumnPath, field string) column.ColumnPath {
	leaf := column.ColumnPathLink{Kind: column.LinkLeaf, Column: field}
	if len(base.Links) > 0 {
		leaf.Table = base.LeafTable()
	}
	return column.ColumnPath{Links: append(append([]column.ColumnPathLink{}, base.Links...), leaf)}
}

func filterToPredicate(f Filter, path column.ColumnPath) absql.Predicate {
	col := absql.ColumnOperand(path)
	preds := make([]absql.Predicate, 0, len(f.Clauses))
	for _, c := range f.Clauses {
		preds = append(preds, clauseToPredicate(c, col))
	}
	return absql.And(preds...)
}

func clauseToPredicate(c FilterClause, col absql.Operand) absql.Predicate {
	val := absql.ParamOperand(c.Value)
	switch c.Op {
	case OpEq:
		return absql.Eq(col, val)
	case OpNeq:
		return absql.Neq(col, val)
	case OpLt:
		return absql.Lt(col, val)
	case OpLte:
		return absql.Lte(col, val)
	case OpGt:
		return absql.Gt(col, val)
	case OpGte:
		return absql.Gte(col, val)
	case OpLike:
		return absql.Predicate{Kind: absql.PredicateLike, Left: col, Right: val}
	case OpILike:
		return absql.Predicate{Kind: absql.PredicateILike, Left: col, Right: val}
	case OpStartsWith:
		return likeWith(col, toStr(c.Value)+"%")
	case OpEndsWith:
		return likeWith(col, "%"+toStr(c.Value))
	case OpContains:
		if isContainerOp(c.Value) {
			return absql.Predicate{Kind: absql.PredicateContains, Left: col, Right: val}
		}
		return likeWith(col, "%"+toStr(c.Value)+"%")
	case OpContainedBy:
		return absql.Predicate{Kind: absql.PredicateContainedBy, Left: col, Right: val}
	case OpMatchKey:
		return absql.Predicate{Kind: absql.PredicateMatchKey, Left: col, Right: val}
	case OpMatchAnyKey:
		return absql.Predicate{Kind: absql.PredicateMatchAnyKey, Left: col, Right: val}
	case OpMatchAllKeys:
		return absql.Predicate{Kind: absql.PredicateMatchAllKeys, Left: col, Right: val}
	default:
		return absql.False()
	}
}

func likeWith(col absql.Operand, pattern string) absql.Predicate {
	return absql.Predicate{Kind: absql.PredicateLike, Left: col, Right: absql.ParamOperand(pattern)}
}

func isContainerOp(v any) bool {
	switch v.(type) {
	case []any, map[string]any:
		return true
	default:
		return false
	}
}

func toStr(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
