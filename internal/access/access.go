// Package access defines the access-expression IR: the side-effect-free
// predicate language over request context and row columns that an entity's
// Access block references. internal/solver lowers these trees into
// internal/absql predicates (or short-circuits them to a plain boolean).
package access

import "github.com/syssam/exocore/internal/column"

// ExprKind tags the Expr variant.
type ExprKind int

const (
	// Logical.
	ExprNot ExprKind = iota
	ExprAnd
	ExprOr
	ExprBoolLiteral

	// Relational.
	ExprEq
	ExprNeq
	ExprLt
	ExprLte
	ExprGt
	ExprGte
	ExprIn

	// Primitive.
	ExprContextSelection
	ExprColumnRef
	ExprLiteral
	ExprCollectionSome
	ExprCollectionAll
	ExprCollectionNone
)

// LiteralKind tags Expr.Literal's Go-side representation.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralBool
	LiteralNumber
	LiteralNull
)

// Literal is a literal value: string, bool, number, or null.
type Literal struct {
	Kind   LiteralKind
	String string
	Bool   bool
	Number float64
}

// ContextSelection is a path through a named context type, e.g.
// `AuthContext.role`.
type ContextSelection struct {
	ContextType string
	FieldPath   []string
}

// Expr is the tagged-union access expression tree. Exactly the fields
// matching Kind are meaningful; the rest are zero.
type Expr struct {
	Kind ExprKind

	// ExprNot: Operands[0]. ExprAnd/ExprOr: two or more.
	Operands []Expr

	// ExprBoolLiteral.
	Bool bool

	// ExprEq..ExprIn: Left/Right. In's Right is conventionally a
	// ExprColumnRef or ExprContextSelection naming a to-many relation.
	Left  *Expr
	Right *Expr

	// ExprContextSelection.
	Context ContextSelection

	// ExprColumnRef.
	Column column.ColumnPath

	// ExprLiteral.
	Literal Literal

	// ExprCollectionSome/All/None: the collection being quantified over
	// (a column path to a to-many relation) and the body expression,
	// evaluated with Var bound to each element of the collection.
	Collection column.ColumnPath
	Var        string
	Body       *Expr
}

// Not builds a logical negation.
func Not(e Expr) Expr { return Expr{Kind: ExprNot, Operands: []Expr{e}} }

// And builds a logical conjunction.
func And(es ...Expr) Expr { return Expr{Kind: ExprAnd, Operands: es} }

// Or builds a logical disjunction.
func Or(es ...Expr) Expr { return Expr{Kind: ExprOr, Operands: es} }

// BoolLiteral builds a boolean literal access expression.
func BoolLiteral(b bool) Expr { return Expr{Kind: ExprBoolLiteral, Bool: b} }

func relational(kind ExprKind, left, right Expr) Expr {
	return Expr{Kind: kind, Left: &left, Right: &right}
}

// Eq builds an equality comparison.
func Eq(left, right Expr) Expr { return relational(ExprEq, left, right) }

// Neq builds an inequality comparison.
func Neq(left, right Expr) Expr { return relational(ExprNeq, left, right) }

// Lt builds a less-than comparison.
func Lt(left, right Expr) Expr { return relational(ExprLt, left, right) }

// Lte builds a less-than-or-equal comparison.
func Lte(left, right Expr) Expr { return relational(ExprLte, left, right) }

// Gt builds a greater-than comparison.
func Gt(left, right Expr) Expr { return relational(ExprGt, left, right) }

// Gte builds a greater-than-or-equal comparison.
func Gte(left, right Expr) Expr { return relational(ExprGte, left, right) }

// In builds a membership comparison.
func In(value, collection Expr) Expr { return relational(ExprIn, value, collection) }

// ContextSelect builds a context-field selection expression, e.g.
// ContextSelect("AuthContext", "role").
func ContextSelect(contextType string, fieldPath ...string) Expr {
	return Expr{Kind: ExprContextSelection, Context: ContextSelection{ContextType: contextType, FieldPath: fieldPath}}
}

// ColumnRef builds a column-path reference expression.
func ColumnRef(path column.ColumnPath) Expr {
	return Expr{Kind: ExprColumnRef, Column: path}
}

// StringLiteral builds a string literal expression.
func StringLiteral(s string) Expr {
	return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LiteralString, String: s}}
}

// NumberLiteral builds a numeric literal expression.
func NumberLiteral(n float64) Expr {
	return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LiteralNumber, Number: n}}
}

// NullLiteral builds a null literal expression.
func NullLiteral() Expr {
	return Expr{Kind: ExprLiteral, Literal: Literal{Kind: LiteralNull}}
}

// Some builds a `collection.some(var => body)` quantifier expression.
func Some(collection column.ColumnPath, v string, body Expr) Expr {
	return Expr{Kind: ExprCollectionSome, Collection: collection, Var: v, Body: &body}
}

// All builds a `collection.all(var => body)` quantifier expression.
func All(collection column.ColumnPath, v string, body Expr) Expr {
	return Expr{Kind: ExprCollectionAll, Collection: collection, Var: v, Body: &body}
}

// None builds a `collection.none(var => body)` quantifier expression.
func None(collection column.ColumnPath, v string, body Expr) Expr {
	return Expr{Kind: ExprCollectionNone, Collection: collection, Var: v, Body: &body}
}

// IsPrecheckEvaluable reports whether e can be evaluated purely from
// context and input, without touching the database — i.e. it contains no
// ExprColumnRef and no collection quantifier (which always ranges over
// persisted rows).
func (e Expr) IsPrecheckEvaluable() bool {
	switch e.Kind {
	case ExprColumnRef, ExprCollectionSome, ExprCollectionAll, ExprCollectionNone:
		return false
	case ExprNot:
		return e.Operands[0].IsPrecheckEvaluable()
	case ExprAnd, ExprOr:
		for _, o := range e.Operands {
			if !o.IsPrecheckEvaluable() {
				return false
			}
		}
		return true
	case ExprEq, ExprNeq, ExprLt, ExprLte, ExprGt, ExprGte, ExprIn:
		return e.Left.IsPrecheckEvaluable() && e.Right.IsPrecheckEvaluable()
	default:
		return true
	}
}
