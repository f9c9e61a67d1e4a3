package absql

import "github.com/syssam/exocore/internal/column"

// PredicateKind tags the Predicate variant.
type PredicateKind int

const (
	// PredicateTrue and PredicateFalse are the identities for And/Or
	// composition and the solver's short-circuit results.
	PredicateTrue PredicateKind = iota
	PredicateFalse

	PredicateNot
	PredicateAnd
	PredicateOr

	PredicateEq
	PredicateNeq
	PredicateLt
	PredicateLte
	PredicateGt
	PredicateGte
	PredicateIn

	PredicateLike
	PredicateILike
	PredicateStartsWith
	PredicateEndsWith
	PredicateContains
	PredicateContainedBy
	PredicateMatchKey
	PredicateMatchAnyKey
	PredicateMatchAllKeys

	// PredicateExists wraps a subquery-shaped predicate produced by an `in`
	// over a to-many relation, or a `collection.some/.all/.none` access
	// expression.
	PredicateExists
)

// Operand is one side of a relational predicate: either a column path
// (resolved against a row) or a bound parameter value.
type Operand struct {
	IsColumn bool
	Path     column.ColumnPath
	Param    any
}

// ColumnOperand builds an Operand referring to a column path.
func ColumnOperand(path column.ColumnPath) Operand {
	return Operand{IsColumn: true, Path: path}
}

// ParamOperand builds an Operand holding a bound literal value.
func ParamOperand(v any) Operand {
	return Operand{Param: v}
}

// Predicate is the abstract, dialect-independent boolean expression over
// row columns and bound parameters that the solver produces and the SQL
// transform lowers to text. It is never raw SQL: composing it (And/Or/Not)
// and inspecting it (for join inference) both happen before any SQL is
// emitted.
type Predicate struct {
	Kind PredicateKind

	// Relational predicates (Eq..In): Left/Right operands. In's Right is
	// ignored in favor of Values.
	Left   Operand
	Right  Operand
	Values []any // valid when Kind == PredicateIn.

	// Logical predicates.
	Operands []Predicate // And/Or: two or more; Not: exactly one.

	// PredicateExists: the subquery's own (already-solved) predicate,
	// scoped to the relation reaching it.
	Relation  column.ColumnPathLink
	Subquery  *Predicate
}

// True returns the always-true predicate, the identity for And.
func True() Predicate { return Predicate{Kind: PredicateTrue} }

// False returns the always-false predicate, the identity for Or.
func False() Predicate { return Predicate{Kind: PredicateFalse} }

// And combines predicates with AND, short-circuiting to False as soon as
// any operand is False (mandatory per the access-solver's short-circuit
// rule: a False branch makes the whole conjunction False without needing
// to evaluate the rest).
func And(ps ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(ps))
	for _, p := range ps {
		if p.Kind == PredicateFalse {
			return False()
		}
		if p.Kind == PredicateTrue {
			continue
		}
		kept = append(kept, p)
	}
	switch len(kept) {
	case 0:
		return True()
	case 1:
		return kept[0]
	default:
		return Predicate{Kind: PredicateAnd, Operands: kept}
	}
}

// Or combines predicates with OR, short-circuiting to True as soon as any
// operand is True.
func Or(ps ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(ps))
	for _, p := range ps {
		if p.Kind == PredicateTrue {
			return True()
		}
		if p.Kind == PredicateFalse {
			continue
		}
		kept = append(kept, p)
	}
	switch len(kept) {
	case 0:
		return False()
	case 1:
		return kept[0]
	default:
		return Predicate{Kind: PredicateOr, Operands: kept}
	}
}

// Not negates p, collapsing the De Morgan-visible double negative
// Not(Not(e)) back to e, and pushing negation through And/Or/True/False so
// every Predicate tree the solver produces is already in the form
// solve_database's De Morgan-law test expects.
func Not(p Predicate) Predicate {
	switch p.Kind {
	case PredicateTrue:
		return False()
	case PredicateFalse:
		return True()
	case PredicateNot:
		return p.Operands[0]
	case PredicateAnd:
		negated := make([]Predicate, len(p.Operands))
		for i, o := range p.Operands {
			negated[i] = Not(o)
		}
		return Or(negated...)
	case PredicateOr:
		negated := make([]Predicate, len(p.Operands))
		for i, o := range p.Operands {
			negated[i] = Not(o)
		}
		return And(negated...)
	default:
		return Predicate{Kind: PredicateNot, Operands: []Predicate{p}}
	}
}

func relational(kind PredicateKind, left, right Operand) Predicate {
	return Predicate{Kind: kind, Left: left, Right: right}
}

// Eq builds an equality predicate.
func Eq(left, right Operand) Predicate { return relational(PredicateEq, left, right) }

// Neq builds an inequality predicate.
func Neq(left, right Operand) Predicate { return relational(PredicateNeq, left, right) }

// Lt builds a less-than predicate.
func Lt(left, right Operand) Predicate { return relational(PredicateLt, left, right) }

// Lte builds a less-than-or-equal predicate.
func Lte(left, right Operand) Predicate { return relational(PredicateLte, left, right) }

// Gt builds a greater-than predicate.
func Gt(left, right Operand) Predicate { return relational(PredicateGt, left, right) }

// Gte builds a greater-than-or-equal predicate.
func Gte(left, right Operand) Predicate { return relational(PredicateGte, left, right) }

// In builds a membership predicate against a literal value list.
func In(left Operand, values ...any) Predicate {
	return Predicate{Kind: PredicateIn, Left: left, Values: values}
}

// Exists wraps a subquery-shaped predicate reached through relation, as
// produced by lowering `in` over a to-many relation or a
// `collection.some/.all/.none` access expression.
func Exists(relation column.ColumnPathLink, subquery Predicate) Predicate {
	return Predicate{Kind: PredicateExists, Relation: relation, Subquery: &subquery}
}
