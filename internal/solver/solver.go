// Package solver lowers access expressions (internal/access) and
// user-supplied filter parameters into internal/absql predicates, the
// contract C11 of the compile-then-serve core: "solve_precheck" runs
// before touching the database, "solve_database" compiles into SQL.
package solver

import (
	"context"
	"fmt"

	"github.com/syssam/exocore/internal/absql"
	"github.com/syssam/exocore/internal/access"
	"github.com/syssam/exocore/internal/column"
)

// ContextAccessor extracts a context field by type name and field path,
// the same extraction internal/reqcontext.Context performs; the solver
// depends only on this narrow interface rather than importing the
// request-context package.
type ContextAccessor interface {
	Extract(ctx context.Context, contextType string, fieldPath []string) (any, error)
}

// RowAccessor resolves a column path against "self" — the row being
// created/updated, for precheck expressions that compare against
// caller-supplied input rather than a persisted row.
type RowAccessor interface {
	Field(path column.ColumnPath) (any, bool)
}

// PrecheckResult is the three-valued outcome of solve_precheck.
type PrecheckResult struct {
	// Decided is true when the expression resolved to a plain boolean
	// without residue.
	Decided bool
	Allow   bool
	// Residue holds the database predicate that must additionally hold on
	// the row, valid only when !Decided.
	Residue absql.Predicate
}

// ErrUnresolvedContext is returned by SolvePrecheck when the expression
// references a context field that cannot be extracted, following the
// collapse-to-False rule of SolveDatabase applied at precheck time too:
// callers should treat a resulting error the same as a denied precheck.
var ErrUnresolvedContext = fmt.Errorf("access: referenced context field could not be resolved")

// SolvePrecheck evaluates expr against ctx (context extraction) and input
// (the row being created/updated). It returns Decided=true with Allow=true
// or Allow=false when the expression short-circuits to a plain boolean;
// otherwise it returns a Residue predicate that must additionally hold on
// the row once persisted.
func SolvePrecheck(ctx context.Context, expr access.Expr, accessor ContextAccessor, input RowAccessor) (PrecheckResult, error) {
	v, residue, err := evalPrecheck(ctx, expr, accessor, input)
	if err != nil {
		return PrecheckResult{}, err
	}
	if residue != nil {
		return PrecheckResult{Decided: false, Residue: *residue}, nil
	}
	b, ok := v.(bool)
	if !ok {
		return PrecheckResult{}, fmt.Errorf("access: precheck expression did not resolve to a boolean, got %T", v)
	}
	return PrecheckResult{Decided: true, Allow: b}, nil
}

// evalPrecheck returns either a concrete value, or — when the expression
// touches something only resolvable against a persisted row — a residue
// predicate and a nil value.
func evalPrecheck(ctx context.Context, e access.Expr, accessor ContextAccessor, input RowAccessor) (any, *absql.Predicate, error) {
	switch e.Kind {
	case access.ExprBoolLiteral:
		return e.Bool, nil, nil
	case access.ExprLiteral:
		return literalValue(e.Literal), nil, nil
	case access.ExprContextSelection:
		v, err := accessor.Extract(ctx, e.Context.ContextType, e.Context.FieldPath)
		if err != nil {
			return nil, nil, ErrUnresolvedContext
		}
		return v, nil, nil
	case access.ExprColumnRef:
		if v, ok := input.Field(e.Column); ok {
			return v, nil, nil
		}
		// Not resolvable purely from input: defer to the database as residue.
		p := absql.ColumnOperand(e.Column)
		_ = p
		residue := exprToDatabasePredicate(e, accessor, ctx)
		return nil, &residue, nil
	case access.ExprNot:
		v, residue, err := evalPrecheck(ctx, e.Operands[0], accessor, input)
		if err != nil {
			return nil, nil, err
		}
		if residue != nil {
			r := absql.Not(*residue)
			return nil, &r, nil
		}
		return !v.(bool), nil, nil
	case access.ExprAnd:
		var residues []absql.Predicate
		for _, o := range e.Operands {
			v, residue, err := evalPrecheck(ctx, o, accessor, input)
			if err != nil {
				return nil, nil, err
			}
			if residue != nil {
				residues = append(residues, *residue)
				continue
			}
			if b := v.(bool); !b {
				return false, nil, nil // And with a concrete False short-circuits.
			}
		}
		if len(residues) == 0 {
			return true, nil, nil
		}
		r := absql.And(residues...)
		return nil, &r, nil
	case access.ExprOr:
		var residues []absql.Predicate
		for _, o := range e.Operands {
			v, residue, err := evalPrecheck(ctx, o, accessor, input)
			if err != nil {
				return nil, nil, err
			}
			if residue != nil {
				residues = append(residues, *residue)
				continue
			}
			if b := v.(bool); b {
				return true, nil, nil // Or with a concrete True short-circuits.
			}
		}
		if len(residues) == 0 {
			return false, nil, nil
		}
		r := absql.Or(residues...)
		return nil, &r, nil
	case access.ExprEq, access.ExprNeq, access.ExprLt, access.ExprLte, access.ExprGt, access.ExprGte:
		lv, lr, err := evalPrecheck(ctx, *e.Left, accessor, input)
		if err != nil {
			return nil, nil, err
		}
		rv, rr, err := evalPrecheck(ctx, *e.Right, accessor, input)
		if err != nil {
			return nil, nil, err
		}
		if lr == nil && rr == nil {
			b, err := compareValues(e.Kind, lv, rv)
			return b, nil, err
		}
		residue := exprToDatabasePredicate(e, accessor, ctx)
		return nil, &residue, nil
	default:
		residue := exprToDatabasePredicate(e, accessor, ctx)
		return nil, &residue, nil
	}
}

func literalValue(l access.Literal) any {
	switch l.Kind {
	case access.LiteralString:
		return l.String
	case access.LiteralBool:
		return l.Bool
	case access.LiteralNumber:
		return l.Number
	default:
		return nil
	}
}

func compareValues(kind access.ExprKind, left, right any) (bool, error) {
	ln, lok := asNumber(left)
	rn, rok := asNumber(right)
	if lok && rok {
		ord := Compare(ln, rn)
		if ord == Incomparable {
			return false, nil
		}
		return orderSatisfies(kind, ord), nil
	}
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		switch kind {
		case access.ExprEq:
			return ls == rs, nil
		case access.ExprNeq:
			return ls != rs, nil
		default:
			return false, fmt.Errorf("access: ordered comparison on string operands")
		}
	}
	switch kind {
	case access.ExprEq:
		return left == right, nil
	case access.ExprNeq:
		return left != right, nil
	default:
		return false, fmt.Errorf("access: cannot order-compare %T and %T", left, right)
	}
}

func orderSatisfies(kind access.ExprKind, ord Ordering) bool {
	switch kind {
	case access.ExprEq:
		return ord == Equal
	case access.ExprNeq:
		return ord != Equal
	case access.ExprLt:
		return ord == Less
	case access.ExprLte:
		return ord == Less || ord == Equal
	case access.ExprGt:
		return ord == Greater
	case access.ExprGte:
		return ord == Greater || ord == Equal
	default:
		return false
	}
}

func asNumber(v any) (Number, bool) {
	switch n := v.(type) {
	case int:
		return FromInt64(int64(n)), true
	case int64:
		return FromInt64(n), true
	case uint64:
		return FromUint64(n), true
	case float64:
		return FromFloat64(n), true
	default:
		return Number{}, false
	}
}

// SolveDatabase compiles expr into an absql.Predicate evaluable as SQL over
// row columns, given a context accessor for the non-column side of
// comparisons. Any sub-expression that cannot be resolved at request time
// (e.g. a missing context field) collapses to False rather than failing
// the whole compile, matching the source's "missing ⇒ deny" posture.
func SolveDatabase(ctx context.Context, expr access.Expr, accessor ContextAccessor) absql.Predicate {
	return exprToDatabasePredicate(expr, accessor, ctx)
}

func exprToDatabasePredicate(e access.Expr, accessor ContextAccessor, ctx context.Context) absql.Predicate {
	switch e.Kind {
	case access.ExprBoolLiteral:
		if e.Bool {
			return absql.True()
		}
		return absql.False()
	case access.ExprNot:
		return absql.Not(exprToDatabasePredicate(e.Operands[0], accessor, ctx))
	case access.ExprAnd:
		ps := make([]absql.Predicate, len(e.Operands))
		for i, o := range e.Operands {
			ps[i] = exprToDatabasePredicate(o, accessor, ctx)
		}
		return absql.And(ps...)
	case access.ExprOr:
		ps := make([]absql.Predicate, len(e.Operands))
		for i, o := range e.Operands {
			ps[i] = exprToDatabasePredicate(o, accessor, ctx)
		}
		return absql.Or(ps...)
	case access.ExprEq, access.ExprNeq, access.ExprLt, access.ExprLte, access.ExprGt, access.ExprGte:
		left, leftOK := operandToAbsql(*e.Left, accessor, ctx)
		right, rightOK := operandToAbsql(*e.Right, accessor, ctx)
		if !leftOK || !rightOK {
			return absql.False()
		}
		return relationalKind(e.Kind, left, right)
	case access.ExprIn:
		// In(value, Column(path)) where path navigates a to-many relation
		// lowers to an Exists-shaped subquery over that relation.
		if e.Right.Kind == access.ExprColumnRef {
			value, ok := operandToAbsql(*e.Left, accessor, ctx)
			if !ok {
				return absql.False()
			}
			link := lastLink(e.Right.Column)
			inner := absql.Eq(absql.ColumnOperand(trimLast(e.Right.Column)), value)
			return absql.Exists(link, inner)
		}
		return absql.False()
	case access.ExprCollectionSome, access.ExprCollectionAll, access.ExprCollectionNone:
		inner := exprToDatabasePredicate(*e.Body, accessor, ctx)
		if e.Kind == access.ExprCollectionNone {
			return absql.Not(absql.Exists(lastLink(e.Collection), inner))
		}
		if e.Kind == access.ExprCollectionAll {
			inner = absql.Not(inner) // Exists(Not(body)) negated below == All(body).
			return absql.Not(absql.Exists(lastLink(e.Collection), inner))
		}
		return absql.Exists(lastLink(e.Collection), inner)
	default:
		return absql.False()
	}
}

func relationalKind(kind access.ExprKind, left, right absql.Operand) absql.Predicate {
	switch kind {
	case access.ExprEq:
		return absql.Eq(left, right)
	case access.ExprNeq:
		return absql.Neq(left, right)
	case access.ExprLt:
		return absql.Lt(left, right)
	case access.ExprLte:
		return absql.Lte(left, right)
	case access.ExprGt:
		return absql.Gt(left, right)
	case access.ExprGte:
		return absql.Gte(left, right)
	default:
		return absql.False()
	}
}

func operandToAbsql(e access.Expr, accessor ContextAccessor, ctx context.Context) (absql.Operand, bool) {
	switch e.Kind {
	case access.ExprColumnRef:
		return absql.ColumnOperand(e.Column), true
	case access.ExprLiteral:
		return absql.ParamOperand(literalValue(e.Literal)), true
	case access.ExprContextSelection:
		v, err := accessor.Extract(ctx, e.Context.ContextType, e.Context.FieldPath)
		if err != nil {
			return absql.Operand{}, false
		}
		return absql.ParamOperand(v), true
	default:
		return absql.Operand{}, false
	}
}

func lastLink(path column.ColumnPath) column.ColumnPathLink {
	if len(path.Links) == 0 {
		return column.ColumnPathLink{}
	}
	return path.Links[len(path.Links)-1]
}

func trimLast(path column.ColumnPath) column.ColumnPath {
	if len(path.Links) == 0 {
		return path
	}
	return column.ColumnPath{Links: path.Links[:len(path.Links)-1]}
}
