// Package sqltransform is the final stage (C12): given a combined predicate
// and a selection shape from internal/absql, it infers the join tree from
// the column paths involved, picks a selection strategy, and emits SQL
// through dialect/sql's builder.
package sqltransform

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/syssam/exocore/dialect"
	sqlb "github.com/syssam/exocore/dialect/sql"
	"github.com/syssam/exocore/internal/absql"
	"github.com/syssam/exocore/internal/column"
)

// Strategy tags which of the three selection shapes a plan uses.
type Strategy int

const (
	// StrategyPlainSubquery is suitable when the predicate and order-by
	// touch only many-to-one paths, so no row duplication can occur.
	StrategyPlainSubquery Strategy = iota
	// StrategyUnconditionalPK is used when a one-to-many path is touched:
	// rows would duplicate across the join, so limit/offset must apply to
	// a PK-only subquery before the join expands it.
	StrategyUnconditionalPK
	// StrategyNested recurses for a selection containing a sub-select
	// against another table.
	StrategyNested
)

// Plan is the input to Emit: a root table, the predicate to filter by, the
// columns to select, and optional order/limit/offset.
type Plan struct {
	Root      column.Table
	Predicate absql.Predicate
	Columns   []string
	OrderBy   []absql.OrderBy
	Limit     *int
	Offset    *int
	// HasToManyPath is set by the caller when building Predicate/OrderBy
	// revealed a one-to-many hop; the builder pipeline tracks this as it
	// walks paths rather than sqltransform re-deriving it from scratch.
	HasToManyPath bool
	// SubSelects are other relations selected alongside Root, each rendered
	// as its own correlated, recursively-emitted subquery expression.
	// Non-empty SubSelects drives ChooseStrategy to StrategyNested.
	SubSelects []NestedSelect
}

// NestedSelect is one relation selected as a column of its parent: Plan's
// own Predicate is expected to already carry the correlation condition
// tying it back to the parent row, and Alias is the column name the
// correlated subquery is projected under.
type NestedSelect struct {
	Alias string
	Plan  Plan
}

// ChooseStrategy returns the first suitable strategy for plan, per the
// fixed precedence plain-subquery < unconditional-pk < nested: a predicate
// touching a one-to-many path always needs StrategyUnconditionalPK even
// when the shape would otherwise qualify as a plain subquery, since a plain
// join would duplicate parent rows.
func ChooseStrategy(plan Plan, hasNestedSelect bool) Strategy {
	if hasNestedSelect {
		return StrategyNested
	}
	if plan.HasToManyPath {
		return StrategyUnconditionalPK
	}
	return StrategyPlainSubquery
}

// joinKey identifies one inferred join by the path prefix that reaches it,
// so two column paths sharing a prefix share the same join.
type joinKey string

type inferredJoin struct {
	key          joinKey
	self         column.Table
	foreign      string // table name or alias
	foreignTable string
	pairs        []column.ColumnPair
}

// InferJoins walks every column path referenced by the predicate and
// order-by, builds a dependency tree keyed by the first link, and returns a
// left-deep ordered chain of LEFT JOINs — two paths sharing a prefix share a
// join, and a link carrying ForeignAlias produces a distinct aliased join
// even when the underlying table repeats (the mainVenue/altVenue case).
func InferJoins(root column.Table, paths []column.ColumnPath) []inferredJoin {
	seen := map[joinKey]bool{}
	var joins []inferredJoin

	for _, path := range paths {
		prefix := ""
		current := root
		for _, link := range path.Links {
			if link.Kind != column.LinkRelation {
				break
			}
			alias := link.ForeignAlias
			if alias == "" {
				alias = link.ForeignTable
			}
			key := joinKey(prefix + ">" + alias)
			if !seen[key] {
				seen[key] = true
				joins = append(joins, inferredJoin{
					key:          key,
					self:         current,
					foreign:      alias,
					foreignTable: link.ForeignTable,
					pairs:        link.ColumnPairs,
				})
			}
			prefix = string(key)
			current = column.Table{Name: alias}
		}
	}
	return joins
}

// Emit lowers plan into a SQL string and argument list, choosing among the
// three selection shapes via ChooseStrategy: StrategyPlainSubquery wraps a
// single join-expanded select in json_agg; StrategyUnconditionalPK applies
// limit/offset to a primary-key-only subquery before the join expands it,
// so a one-to-many path can't duplicate the wrong rows out of the page; and
// StrategyNested recurses into each of Plan's SubSelects, splicing each in
// as its own correlated subquery column. Two plans suitable for either of
// the first two strategies produce equivalent rows; which one runs is only
// an optimization for the one-to-many case. dialectName is one of
// dialect.Postgres/MySQL/SQLite.
func Emit(dialectName string, plan Plan) (string, []any) {
	switch ChooseStrategy(plan, len(plan.SubSelects) > 0) {
	case StrategyNested:
		return emitNested(dialectName, plan)
	case StrategyUnconditionalPK:
		return emitUnconditionalPK(dialectName, plan)
	default:
		return emitPlainSubquery(dialectName, plan)
	}
}

// buildSelector assembles the shared FROM/JOIN/WHERE/ORDER BY shape that
// every strategy starts from, selecting the given columns.
func buildSelector(dialectName string, plan Plan, columns []string) *sqlb.Selector {
	sel := sqlb.Dialect(dialectName).Select(columns...).From(sqlb.Table(plan.Root.QualifiedName()))

	paths := collectPaths(plan.Predicate, plan.OrderBy)
	for _, j := range InferJoins(plan.Root, paths) {
		joinTable := sqlb.Table(j.foreignTable).As(j.foreign)
		sel = sel.LeftJoin(joinTable)
		for _, pair := range j.pairs {
			sel = sel.On(j.self.Name+"."+pair.SelfColumn, j.foreign+"."+pair.ForeignColumn)
		}
	}

	if w := lowerPredicate(plan.Predicate); w != nil {
		sel = sel.Where(w)
	}
	for _, ob := range plan.OrderBy {
		col := pathToQualified(ob.Path)
		if ob.Direction == absql.Desc {
			col += " DESC"
		}
		sel = sel.OrderBy(col)
	}
	return sel
}

// emitPlainSubquery is suitable when no one-to-many path is touched: the
// join can't duplicate rows, so limit/offset applies directly to it.
func emitPlainSubquery(dialectName string, plan Plan) (string, []any) {
	sel := buildSelector(dialectName, plan, qualifyAll(plan.Root.Name, plan.Columns))
	if plan.Limit != nil {
		sel = sel.Limit(*plan.Limit)
	}
	if plan.Offset != nil {
		sel = sel.Offset(*plan.Offset)
	}
	innerSQL, args := sel.Query()
	return wrapJSONAgg(innerSQL), args
}

// emitUnconditionalPK applies limit/offset to a subquery selecting only
// Root's primary key, then selects the full columns for just those keys —
// the join that expands one-to-many paths runs after paging, not before,
// so it can't throw away or duplicate rows within the page.
func emitUnconditionalPK(dialectName string, plan Plan) (string, []any) {
	pk, _ := plan.Root.PK()
	pkCol := plan.Root.Name + "." + pk.Name

	pkSel := buildSelector(dialectName, plan, []string{pkCol})
	if plan.Limit != nil {
		pkSel = pkSel.Limit(*plan.Limit)
	}
	if plan.Offset != nil {
		pkSel = pkSel.Offset(*plan.Offset)
	}
	pkSQL, args := pkSel.Query()

	outer := sqlb.Dialect(dialectName).Select(qualifyAll(plan.Root.Name, plan.Columns)...).
		From(sqlb.Table(plan.Root.QualifiedName())).
		Where(sqlb.P(func(b *sqlb.Builder) {
			b.Ident(pkCol)
			b.WriteString(" IN (" + pkSQL + ")")
		}))
	for _, ob := range plan.OrderBy {
		col := pathToQualified(ob.Path)
		if ob.Direction == absql.Desc {
			col += " DESC"
		}
		outer = outer.OrderBy(col)
	}
	outerSQL, _ := outer.Query() // the IN predicate embeds pkSQL's own placeholders verbatim; outer adds none of its own.
	return wrapJSONAgg(outerSQL), args
}

// emitNested recurses: it emits plan as if it had no SubSelects, then
// splices each SubSelect's own recursively-emitted SQL in as a correlated
// subquery column of the parent's inner select, shifting its placeholder
// numbers so the combined statement numbers them continuously.
func emitNested(dialectName string, plan Plan) (string, []any) {
	base := plan
	base.SubSelects = nil
	baseSQL, args := Emit(dialectName, base)

	inner := unwrapJSONAgg(baseSQL)
	fromIdx := strings.Index(inner, " FROM ")
	cols := []string{inner[len("SELECT "):fromIdx]}
	rest := inner[fromIdx:]

	nextPlaceholder := len(args) + 1
	for _, sub := range plan.SubSelects {
		subSQL, subArgs := Emit(dialectName, sub.Plan)
		if dialectName == dialect.Postgres {
			subSQL = renumberPlaceholders(subSQL, nextPlaceholder)
		}
		cols = append(cols, "("+subSQL+") AS \""+sub.Alias+"\"")
		args = append(args, subArgs...)
		nextPlaceholder += len(subArgs)
	}
	return wrapJSONAgg("SELECT " + strings.Join(cols, ", ") + rest), args
}

func wrapJSONAgg(innerSQL string) string {
	return "SELECT json_agg(t)::text FROM (" + innerSQL + ") t"
}

// unwrapJSONAgg reverses wrapJSONAgg, recovering the inner SELECT so its
// column list can be rewritten.
func unwrapJSONAgg(sql string) string {
	open := strings.IndexByte(sql, '(')
	end := strings.LastIndex(sql, ") t")
	return sql[open+1 : end]
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// renumberPlaceholders shifts a Postgres-dialect query's $N placeholders so
// the first one becomes $startAt, keeping their relative order, for
// splicing into a larger statement that already has startAt-1 of its own.
func renumberPlaceholders(sql string, startAt int) string {
	return placeholderRe.ReplaceAllStringFunc(sql, func(m string) string {
		n, _ := strconv.Atoi(m[1:])
		return "$" + strconv.Itoa(n+startAt-1)
	})
}

func qualifyAll(table string, cols []string) []string {
	if len(cols) == 0 {
		return []string{table + ".*"}
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = table + "." + c
	}
	return out
}

func collectPaths(p absql.Predicate, orderBy []absql.OrderBy) []column.ColumnPath {
	var paths []column.ColumnPath
	var walk func(p absql.Predicate)
	walk = func(p absql.Predicate) {
		if p.Left.IsColumn {
			paths = append(paths, p.Left.Path)
		}
		if p.Right.IsColumn {
			paths = append(paths, p.Right.Path)
		}
		for _, o := range p.Operands {
			walk(o)
		}
		if p.Subquery != nil {
			walk(*p.Subquery)
		}
	}
	walk(p)
	for _, ob := range orderBy {
		paths = append(paths, ob.Path)
	}
	return paths
}

func pathToQualified(path column.ColumnPath) string {
	if len(path.Links) == 0 {
		return ""
	}
	last := path.Links[len(path.Links)-1]
	return last.Table + "." + last.Column
}

// lowerPredicate translates an absql.Predicate into the dialect/sql
// builder's Predicate form.
func lowerPredicate(p absql.Predicate) *sqlb.Predicate {
	switch p.Kind {
	case absql.PredicateTrue:
		return sqlb.P(func(b *sqlb.Builder) { b.WriteString("TRUE") })
	case absql.PredicateFalse:
		return sqlb.P(func(b *sqlb.Builder) { b.WriteString("FALSE") })
	case absql.PredicateNot:
		return sqlb.Not(lowerPredicate(p.Operands[0]))
	case absql.PredicateAnd:
		return sqlb.And(lowerAll(p.Operands)...)
	case absql.PredicateOr:
		return sqlb.Or(lowerAll(p.Operands)...)
	case absql.PredicateEq, absql.PredicateNeq, absql.PredicateLt, absql.PredicateLte, absql.PredicateGt, absql.PredicateGte:
		return relational(p)
	case absql.PredicateIn:
		col := operandSQL(p.Left)
		return sqlb.In(col, p.Values...)
	case absql.PredicateLike:
		return sqlb.P(func(b *sqlb.Builder) {
			b.Ident(operandSQL(p.Left))
			b.WriteString(" LIKE ")
			writeOperand(b, p.Right)
		})
	case absql.PredicateILike:
		return sqlb.P(func(b *sqlb.Builder) {
			b.Ident(operandSQL(p.Left))
			b.WriteString(" ILIKE ")
			writeOperand(b, p.Right)
		})
	case absql.PredicateContains:
		return sqlb.P(func(b *sqlb.Builder) {
			b.Ident(operandSQL(p.Left))
			b.WriteString(" @> ")
			writeOperand(b, p.Right)
		})
	case absql.PredicateContainedBy:
		return sqlb.P(func(b *sqlb.Builder) {
			b.Ident(operandSQL(p.Left))
			b.WriteString(" <@ ")
			writeOperand(b, p.Right)
		})
	case absql.PredicateMatchKey:
		return sqlb.P(func(b *sqlb.Builder) {
			b.Ident(operandSQL(p.Left))
			b.WriteString(" ? ")
			writeOperand(b, p.Right)
		})
	case absql.PredicateMatchAnyKey:
		return sqlb.P(func(b *sqlb.Builder) {
			b.Ident(operandSQL(p.Left))
			b.WriteString(" ?| ")
			writeOperand(b, p.Right)
		})
	case absql.PredicateMatchAllKeys:
		return sqlb.P(func(b *sqlb.Builder) {
			b.Ident(operandSQL(p.Left))
			b.WriteString(" ?& ")
			writeOperand(b, p.Right)
		})
	case absql.PredicateExists:
		foreignTable := foreignTableOf(p.Relation)
		return sqlb.P(func(b *sqlb.Builder) {
			b.WriteString("EXISTS (SELECT 1 FROM ")
			b.Ident(foreignTable)
			if p.Subquery != nil {
				b.WriteString(" WHERE ")
				lowerPredicate(*p.Subquery).WriteTo(b)
			}
			b.WriteByte(')')
		})
	default:
		return sqlb.P(func(b *sqlb.Builder) { b.WriteString("FALSE") })
	}
}

func foreignTableOf(link column.ColumnPathLink) string {
	if link.ForeignAlias != "" {
		return link.ForeignAlias
	}
	return link.ForeignTable
}

func lowerAll(ps []absql.Predicate) []*sqlb.Predicate {
	out := make([]*sqlb.Predicate, len(ps))
	for i, p := range ps {
		out[i] = lowerPredicate(p)
	}
	return out
}

func relational(p absql.Predicate) *sqlb.Predicate {
	op := map[absql.PredicateKind]string{
		absql.PredicateEq:  " = ",
		absql.PredicateNeq: " <> ",
		absql.PredicateLt:  " < ",
		absql.PredicateLte: " <= ",
		absql.PredicateGt:  " > ",
		absql.PredicateGte: " >= ",
	}[p.Kind]
	return sqlb.P(func(b *sqlb.Builder) {
		writeOperand(b, p.Left)
		b.WriteString(op)
		writeOperand(b, p.Right)
	})
}

func operandSQL(op absql.Operand) string {
	if op.IsColumn {
		return pathToQualified(op.Path)
	}
	return ""
}

func writeOperand(b *sqlb.Builder, op absql.Operand) {
	if op.IsColumn {
		b.Ident(pathToQualified(op.Path))
		return
	}
	b.Arg(op.Param)
}
