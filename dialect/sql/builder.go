package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/exocore/dialect"
)

// Querier wraps the method used to build a SQL query from its internal builder state.
type Querier interface {
	// Query returns the query representation of the element and its arguments (if any).
	Query() (string, []any)
}

// Builder is the base SQL builder every statement builder embeds. It
// accumulates the growing SQL string and its bound arguments, and knows how
// to format identifiers and placeholders for the dialect it was built for.
type Builder struct {
	sb            strings.Builder
	args          []any
	dialect       string
	total         int  // total number of placeholders written so far, used for $N numbering.
	qualifyColumn bool // whether bare column references get table-qualified by Selector.
}

// String returns the accumulated SQL string.
func (b *Builder) String() string { return b.sb.String() }

// Args returns the bound arguments collected so far.
func (b *Builder) Args() []any { return b.args }

// WriteString writes a raw string to the builder and returns the builder for chaining.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// WriteByte writes a single byte to the builder.
func (b *Builder) WriteByte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Ident writes a dialect-quoted identifier. Identifiers containing a dot
// (e.g. "u.id") are split and each part is quoted separately.
func (b *Builder) Ident(name string) *Builder {
	if name == "" {
		return b
	}
	if name == "*" {
		return b.WriteString(name)
	}
	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 {
		b.quote(parts[0])
		b.WriteByte('.')
		if parts[1] == "*" {
			return b.WriteString("*")
		}
		b.quote(parts[1])
		return b
	}
	b.quote(name)
	return b
}

func (b *Builder) quote(ident string) {
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(ident, `"`, `""`))
	b.WriteByte('"')
}

// Arg appends a bound argument and writes its placeholder.
func (b *Builder) Arg(a any) *Builder {
	b.total++
	b.args = append(b.args, a)
	switch b.dialect {
	case dialect.Postgres:
		b.WriteString("$" + strconv.Itoa(b.total))
	default:
		b.WriteByte('?')
	}
	return b
}

// Args2 appends a list of arguments as a comma-separated list of placeholders.
func (b *Builder) Args2(as ...any) *Builder {
	for i, a := range as {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Arg(a)
	}
	return b
}

// join writes the given columns separated by ", ".
func (b *Builder) join(cols []string) *Builder {
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(c)
	}
	return b
}

// Predicate represents a (possibly compound) boolean expression usable in a
// WHERE clause. It is a thin deferred closure over a Builder so that AND/OR
// composition can add its own parentheses lazily.
type Predicate struct {
	fns []func(*Builder)
}

// P creates a new predicate from writer functions.
func P(fns ...func(*Builder)) *Predicate {
	return &Predicate{fns: fns}
}

// Query implements the Querier interface, useful for standalone inspection/testing.
func (p *Predicate) Query() (string, []any) {
	b := &Builder{dialect: dialect.Postgres}
	p.writeTo(b)
	return b.String(), b.Args()
}

func (p *Predicate) writeTo(b *Builder) {
	for _, fn := range p.fns {
		fn(b)
	}
}

// WriteTo appends this predicate's SQL into an in-progress Builder, for
// callers composing a predicate into a larger statement they're already
// writing (e.g. an EXISTS subquery nested inside another builder's WHERE).
func (p *Predicate) WriteTo(b *Builder) {
	p.writeTo(b)
}

func binaryPredicate(op string, col string, arg any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col)
		b.WriteString(op)
		b.Arg(arg)
	})
}

// EQ returns a predicate for "col = arg".
func EQ(col string, arg any) *Predicate { return binaryPredicate(" = ", col, arg) }

// NEQ returns a predicate for "col <> arg".
func NEQ(col string, arg any) *Predicate { return binaryPredicate(" <> ", col, arg) }

// GT returns a predicate for "col > arg".
func GT(col string, arg any) *Predicate { return binaryPredicate(" > ", col, arg) }

// GTE returns a predicate for "col >= arg".
func GTE(col string, arg any) *Predicate { return binaryPredicate(" >= ", col, arg) }

// LT returns a predicate for "col < arg".
func LT(col string, arg any) *Predicate { return binaryPredicate(" < ", col, arg) }

// LTE returns a predicate for "col <= arg".
func LTE(col string, arg any) *Predicate { return binaryPredicate(" <= ", col, arg) }

// In returns a predicate for "col IN (args...)". An empty args list produces
// a predicate that is always false ("1 = 0").
func In(col string, args ...any) *Predicate {
	if len(args) == 0 {
		return P(func(b *Builder) { b.WriteString("1 = 0") })
	}
	return P(func(b *Builder) {
		b.Ident(col)
		b.WriteString(" IN (")
		b.Args2(args...)
		b.WriteByte(')')
	})
}

// NotIn returns a predicate for "col NOT IN (args...)". An empty args list
// produces a predicate that is always true ("1 = 1").
func NotIn(col string, args ...any) *Predicate {
	if len(args) == 0 {
		return P(func(b *Builder) { b.WriteString("1 = 1") })
	}
	return P(func(b *Builder) {
		b.Ident(col)
		b.WriteString(" NOT IN (")
		b.Args2(args...)
		b.WriteByte(')')
	})
}

// Contains returns a predicate for "col LIKE %arg%".
func Contains(col string, substr string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col)
		b.WriteString(" LIKE ")
		b.Arg("%" + escapeLike(substr) + "%")
	})
}

// ContainsFold is like Contains but case-insensitive (ILIKE on Postgres,
// LOWER(...) LIKE LOWER(...) elsewhere).
func ContainsFold(col string, substr string) *Predicate {
	return P(func(b *Builder) {
		if b.dialect == dialect.Postgres {
			b.Ident(col)
			b.WriteString(" ILIKE ")
			b.Arg("%" + escapeLike(substr) + "%")
			return
		}
		b.WriteString("LOWER(")
		b.Ident(col)
		b.WriteString(") LIKE LOWER(")
		b.Arg("%" + escapeLike(substr) + "%")
		b.WriteByte(')')
	})
}

// HasPrefix returns a predicate for "col LIKE arg%".
func HasPrefix(col string, prefix string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col)
		b.WriteString(" LIKE ")
		b.Arg(escapeLike(prefix) + "%")
	})
}

// HasSuffix returns a predicate for "col LIKE %arg".
func HasSuffix(col string, suffix string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col)
		b.WriteString(" LIKE ")
		b.Arg("%" + escapeLike(suffix))
	})
}

// EqualFold returns a case-insensitive equality predicate.
func EqualFold(col string, v string) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("LOWER(")
		b.Ident(col)
		b.WriteString(") = LOWER(")
		b.Arg(v)
		b.WriteByte(')')
	})
}

// IsNull returns a predicate for "col IS NULL".
func IsNull(col string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col)
		b.WriteString(" IS NULL")
	})
}

// NotNull returns a predicate for "col IS NOT NULL".
func NotNull(col string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col)
		b.WriteString(" IS NOT NULL")
	})
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}

// And combines the given predicates with AND, parenthesizing the result
// when there is more than one.
func And(preds ...*Predicate) *Predicate {
	return combine(" AND ", preds)
}

// Or combines the given predicates with OR, parenthesizing the result
// when there is more than one.
func Or(preds ...*Predicate) *Predicate {
	return combine(" OR ", preds)
}

func combine(sep string, preds []*Predicate) *Predicate {
	preds = nonNil(preds)
	switch len(preds) {
	case 0:
		return P(func(*Builder) {})
	case 1:
		return preds[0]
	}
	return P(func(b *Builder) {
		b.WriteByte('(')
		for i, p := range preds {
			if i > 0 {
				b.WriteString(sep)
			}
			p.writeTo(b)
		}
		b.WriteByte(')')
	})
}

func nonNil(preds []*Predicate) []*Predicate {
	out := preds[:0:0]
	for _, p := range preds {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Not negates the given predicate.
func Not(p *Predicate) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("NOT (")
		p.writeTo(b)
		b.WriteByte(')')
	})
}

// SelectTable represents a table reference used in a FROM/JOIN clause,
// optionally aliased.
type SelectTable struct {
	name  string
	alias string
}

// Table returns a new table reference for the given table name.
func Table(name string) *SelectTable {
	return &SelectTable{name: name}
}

// As sets the table alias and returns the receiver for chaining.
func (t *SelectTable) As(alias string) *SelectTable {
	t.alias = alias
	return t
}

// C qualifies a column name with this table's alias (or name, if unaliased).
func (t *SelectTable) C(column string) string {
	return t.ref() + "." + column
}

func (t *SelectTable) ref() string {
	if t.alias != "" {
		return t.alias
	}
	return t.name
}

func (t *SelectTable) writeTo(b *Builder) {
	b.Ident(t.name)
	if t.alias != "" {
		b.WriteString(" AS ")
		b.Ident(t.alias)
	}
}

type joinClause struct {
	kind  string
	table *SelectTable
	on    *Predicate
}

// DialectBuilder is the dialect-bound entry point for constructing statement builders.
type DialectBuilder struct {
	dialect string
}

// Dialect returns a new DialectBuilder bound to the given dialect name.
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{dialect: name}
}

// Select starts a SELECT statement over the given columns.
func (d *DialectBuilder) Select(columns ...string) *Selector {
	return &Selector{Builder: Builder{dialect: d.dialect}, columns: columns}
}

// Insert starts an INSERT statement into the given table.
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	return &InsertBuilder{Builder: Builder{dialect: d.dialect}, table: table}
}

// Update starts an UPDATE statement on the given table.
func (d *DialectBuilder) Update(table string) *UpdateBuilder {
	return &UpdateBuilder{Builder: Builder{dialect: d.dialect}, table: table}
}

// Delete starts a DELETE statement on the given table.
func (d *DialectBuilder) Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{Builder: Builder{dialect: d.dialect}, table: table}
}

// Selector builds a SELECT statement.
type Selector struct {
	Builder
	columns []string
	from    *SelectTable
	joins   []joinClause
	where   *Predicate
	order   []string
	limit   *int
	offset  *int
}

// From sets the table the selection reads from.
func (s *Selector) From(t *SelectTable) *Selector {
	s.from = t
	return s
}

// Join adds an INNER JOIN against the given table.
func (s *Selector) Join(t *SelectTable) *Selector {
	s.joins = append(s.joins, joinClause{kind: "JOIN", table: t})
	return s
}

// LeftJoin adds a LEFT JOIN against the given table.
func (s *Selector) LeftJoin(t *SelectTable) *Selector {
	s.joins = append(s.joins, joinClause{kind: "LEFT JOIN", table: t})
	return s
}

// On sets the ON clause of the most recently added join, given as two
// column references to equate.
func (s *Selector) On(left, right string) *Selector {
	if n := len(s.joins); n > 0 {
		s.joins[n-1].on = columnEQ(left, right)
	}
	return s
}

func columnEQ(left, right string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(left)
		b.WriteString(" = ")
		b.Ident(right)
	})
}

// Where sets (or AND-combines with) the selector's filter predicate.
func (s *Selector) Where(p *Predicate) *Selector {
	if s.where == nil {
		s.where = p
	} else {
		s.where = And(s.where, p)
	}
	return s
}

// C qualifies a bare column name with this selector's source table, if any.
func (s *Selector) C(column string) string {
	if s.from != nil {
		return s.from.C(column)
	}
	return column
}

// OrderBy appends columns to the ORDER BY clause.
func (s *Selector) OrderBy(columns ...string) *Selector {
	s.order = append(s.order, columns...)
	return s
}

// Limit sets the LIMIT clause.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// Offset sets the OFFSET clause.
func (s *Selector) Offset(n int) *Selector {
	s.offset = &n
	return s
}

// Query builds the final SQL string and argument list.
func (s *Selector) Query() (string, []any) {
	s.sb.Reset()
	s.args = nil
	s.total = 0
	s.WriteString("SELECT ")
	cols := s.columns
	if len(cols) == 0 {
		cols = []string{"*"}
	}
	s.join(cols)
	if s.from != nil {
		s.WriteString(" FROM ")
		s.from.writeTo(&s.Builder)
	}
	for _, j := range s.joins {
		s.WriteString(" " + j.kind + " ")
		j.table.writeTo(&s.Builder)
		if j.on != nil {
			s.WriteString(" ON ")
			j.on.writeTo(&s.Builder)
		}
	}
	if s.where != nil {
		s.WriteString(" WHERE ")
		s.where.writeTo(&s.Builder)
	}
	if len(s.order) > 0 {
		s.WriteString(" ORDER BY ")
		s.join(s.order)
	}
	if s.limit != nil {
		s.WriteString(fmt.Sprintf(" LIMIT %d", *s.limit))
	}
	if s.offset != nil {
		s.WriteString(fmt.Sprintf(" OFFSET %d", *s.offset))
	}
	return s.String(), s.Args()
}

// InsertBuilder builds an INSERT statement.
type InsertBuilder struct {
	Builder
	table      string
	columns    []string
	values     [][]any
	defaults   bool
	returning  []string
}

// Columns sets the columns being inserted.
func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = columns
	return i
}

// Values appends one row of values, matching the order of Columns.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.values = append(i.values, values)
	return i
}

// Default marks the insert as using all-default values (no column list).
func (i *InsertBuilder) Default() *InsertBuilder {
	i.defaults = true
	return i
}

// Returning sets the RETURNING clause (Postgres/SQLite) columns.
func (i *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	i.returning = columns
	return i
}

// Query builds the final SQL string and argument list.
func (i *InsertBuilder) Query() (string, []any) {
	i.sb.Reset()
	i.args = nil
	i.total = 0
	i.WriteString("INSERT INTO ")
	i.Ident(i.table)
	switch {
	case i.defaults:
		switch i.dialect {
		case dialect.MySQL:
			i.WriteString(" VALUES ()")
		default:
			i.WriteString(" DEFAULT VALUES")
		}
	default:
		i.WriteString(" (")
		i.join(i.columns)
		i.WriteString(") VALUES ")
		for r, row := range i.values {
			if r > 0 {
				i.WriteString(", ")
			}
			i.WriteByte('(')
			i.Args2(row...)
			i.WriteByte(')')
		}
	}
	if len(i.returning) > 0 && i.dialect != dialect.MySQL {
		i.WriteString(" RETURNING ")
		i.join(i.returning)
	}
	return i.String(), i.Args()
}

// UpdateBuilder builds an UPDATE statement.
type UpdateBuilder struct {
	Builder
	table string
	set   []struct {
		col string
		val any
	}
	where *Predicate
}

// Set records a column assignment.
func (u *UpdateBuilder) Set(col string, val any) *UpdateBuilder {
	u.set = append(u.set, struct {
		col string
		val any
	}{col, val})
	return u
}

// Where sets (or AND-combines with) the update's filter predicate.
func (u *UpdateBuilder) Where(p *Predicate) *UpdateBuilder {
	if u.where == nil {
		u.where = p
	} else {
		u.where = And(u.where, p)
	}
	return u
}

// Query builds the final SQL string and argument list.
func (u *UpdateBuilder) Query() (string, []any) {
	u.sb.Reset()
	u.args = nil
	u.total = 0
	u.WriteString("UPDATE ")
	u.Ident(u.table)
	u.WriteString(" SET ")
	for i, s := range u.set {
		if i > 0 {
			u.WriteString(", ")
		}
		u.Ident(s.col)
		u.WriteString(" = ")
		u.Arg(s.val)
	}
	if u.where != nil {
		u.WriteString(" WHERE ")
		u.where.writeTo(&u.Builder)
	}
	return u.String(), u.Args()
}

// DeleteBuilder builds a DELETE statement.
type DeleteBuilder struct {
	Builder
	table string
	where *Predicate
}

// Where sets (or AND-combines with) the delete's filter predicate.
func (d *DeleteBuilder) Where(p *Predicate) *DeleteBuilder {
	if d.where == nil {
		d.where = p
	} else {
		d.where = And(d.where, p)
	}
	return d
}

// Query builds the final SQL string and argument list.
func (d *DeleteBuilder) Query() (string, []any) {
	d.sb.Reset()
	d.args = nil
	d.total = 0
	d.WriteString("DELETE FROM ")
	d.Ident(d.table)
	if d.where != nil {
		d.WriteString(" WHERE ")
		d.where.writeTo(&d.Builder)
	}
	return d.String(), d.Args()
}

var (
	_ Querier = (*Selector)(nil)
	_ Querier = (*InsertBuilder)(nil)
	_ Querier = (*UpdateBuilder)(nil)
	_ Querier = (*DeleteBuilder)(nil)
	_ Querier = (*Predicate)(nil)
)

// FieldEQ returns a field-level equality predicate closure over a Selector,
// used by the generic XxxField predicate-method types.
func FieldEQ(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(EQ(s.C(name), v)) }
}

// FieldNEQ is the inequality counterpart of FieldEQ.
func FieldNEQ(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(NEQ(s.C(name), v)) }
}

// FieldIn builds an IN predicate closure for the named field.
func FieldIn[T any](name string, vs ...T) func(*Selector) {
	return func(s *Selector) {
		v := make([]any, len(vs))
		for i := range vs {
			v[i] = vs[i]
		}
		s.Where(In(s.C(name), v...))
	}
}

// FieldNotIn builds a NOT IN predicate closure for the named field.
func FieldNotIn[T any](name string, vs ...T) func(*Selector) {
	return func(s *Selector) {
		v := make([]any, len(vs))
		for i := range vs {
			v[i] = vs[i]
		}
		s.Where(NotIn(s.C(name), v...))
	}
}

// FieldGT builds a greater-than predicate closure for the named field.
func FieldGT(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(GT(s.C(name), v)) }
}

// FieldGTE builds a greater-than-or-equal predicate closure for the named field.
func FieldGTE(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(GTE(s.C(name), v)) }
}

// FieldLT builds a less-than predicate closure for the named field.
func FieldLT(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(LT(s.C(name), v)) }
}

// FieldLTE builds a less-than-or-equal predicate closure for the named field.
func FieldLTE(name string, v any) func(*Selector) {
	return func(s *Selector) { s.Where(LTE(s.C(name), v)) }
}

// FieldContains builds a substring-match predicate closure for the named field.
func FieldContains(name string, v string) func(*Selector) {
	return func(s *Selector) { s.Where(Contains(s.C(name), v)) }
}

// FieldContainsFold builds a case-insensitive substring-match predicate closure.
func FieldContainsFold(name string, v string) func(*Selector) {
	return func(s *Selector) { s.Where(ContainsFold(s.C(name), v)) }
}

// FieldHasPrefix builds a prefix-match predicate closure for the named field.
func FieldHasPrefix(name string, v string) func(*Selector) {
	return func(s *Selector) { s.Where(HasPrefix(s.C(name), v)) }
}

// FieldHasSuffix builds a suffix-match predicate closure for the named field.
func FieldHasSuffix(name string, v string) func(*Selector) {
	return func(s *Selector) { s.Where(HasSuffix(s.C(name), v)) }
}

// FieldEqualFold builds a case-insensitive equality predicate closure.
func FieldEqualFold(name string, v string) func(*Selector) {
	return func(s *Selector) { s.Where(EqualFold(s.C(name), v)) }
}

// FieldIsNull builds an IS NULL predicate closure for the named field.
func FieldIsNull(name string) func(*Selector) {
	return func(s *Selector) { s.Where(IsNull(s.C(name))) }
}

// FieldNotNull builds an IS NOT NULL predicate closure for the named field.
func FieldNotNull(name string) func(*Selector) {
	return func(s *Selector) { s.Where(NotNull(s.C(name))) }
}
