// Package absql is the abstract SQL IR that the access solver
// (internal/solver) and the query/mutation builders target, and that the
// SQL transform (internal/sqltransform) lowers into dialect-level SQL text.
// It never holds raw SQL strings itself — only column paths, predicates and
// selection trees — so it can be solved, joined and rewritten before a
// single character of SQL is generated.
package absql

import "github.com/syssam/exocore/internal/column"

// Operation is the sum type AbstractSelect | AbstractInsert | AbstractUpdate
// | AbstractDelete all satisfy.
type Operation interface {
	abstractOperation()
}

// OrderDirection is ascending or descending.
type OrderDirection int

const (
	Asc OrderDirection = iota
	Desc
)

// OrderBy is one column-path/direction pair in an ORDER BY clause.
type OrderBy struct {
	Path      column.ColumnPath
	Direction OrderDirection
	// VectorDistance, when non-empty, names the distance function (e.g.
	// "l2_distance") a future pgvector subsystem would use to order by
	// similarity instead of by the raw column value. Reserved shape only;
	// no distance function is implemented.
	VectorDistance string
}

// JSONCardinality tags whether a Selection.Json wraps one row or many.
type JSONCardinality int

const (
	JSONOne JSONCardinality = iota
	JSONMany
)

// SelectionKind tags the Selection variant.
type SelectionKind int

const (
	SelectionSeq  SelectionKind = iota // a flat, ordered sequence of elements.
	SelectionJSON                      // wraps children into a JSON object/array.
)

// Selection is what a Select projects: either a flat sequence of aliased
// column expressions, or a JSON container wrapping child elements into a
// single JSON object (cardinality one) or an aggregated JSON array
// (cardinality many).
type Selection struct {
	Kind       SelectionKind
	Seq        []SelectionElement
	Cardinality JSONCardinality // valid when Kind == SelectionJSON.
	Elements   []SelectionElement // valid when Kind == SelectionJSON.
}

// SelectionElementKind tags the SelectionElement variant.
type SelectionElementKind int

const (
	ElementPhysicalColumn SelectionElementKind = iota
	ElementFunctionCall
	ElementConstant
	ElementObject
	ElementSubSelect
)

// SelectionElement is one item of a Selection: a physical column reference,
// a function applied to a column, a literal constant (used for
// __typename), an ordered object of alias → element, or a nested
// sub-select keyed by the relation that reaches it.
type SelectionElement struct {
	Kind SelectionElementKind

	Alias string

	// ElementPhysicalColumn / ElementFunctionCall.
	Path column.ColumnPath
	Func string // function name, valid when Kind == ElementFunctionCall.

	// ElementConstant.
	Constant any

	// ElementObject.
	ObjectFields []SelectionElement // each carries its own Alias.

	// ElementSubSelect.
	Relation  column.ColumnPathLink
	SubSelect *Select
}

// Select is a SELECT against one table, with an optional predicate,
// ordering and paging.
type Select struct {
	Table     column.Table
	Selection Selection
	Predicate Predicate
	OrderBy   []OrderBy
	Limit     *int
	Offset    *int
}

func (*Select) abstractOperation() {}

// InsertionElementKind tags the InsertionElement variant.
type InsertionElementKind int

const (
	InsertSelf InsertionElementKind = iota
	InsertNested
)

// InsertionElement is one field of a row being inserted: either a direct
// column/value pair, or a nested insert into a one-to-many relation (whose
// rows receive the parent row's id propagated into their foreign column
// once the parent id is known).
type InsertionElement struct {
	Kind InsertionElementKind

	// InsertSelf.
	Column string
	Value  any

	// InsertNested.
	Relation column.ColumnPathLink
	Rows     []InsertRow
}

// InsertRow is one row's worth of InsertionElements.
type InsertRow struct {
	Elements []InsertionElement
}

// Insert is an INSERT of one or more rows, potentially with nested inserts
// into related tables.
type Insert struct {
	Table Table
	Rows  []InsertRow
}

func (*Insert) abstractOperation() {}

// Table is a thin alias kept distinct from column.Table so callers are not
// tempted to mutate the shared physical table definition through an
// absql.Operation.
type Table = column.Table

// NestedMutation scopes a nested write to a one-to-many relation reached
// from the parent row.
type NestedMutation struct {
	Relation column.ColumnPathLink
	Rows     []InsertRow     // for NestedInserts.
	Updates  []NestedUpdateRow // for NestedUpdates.
	Deletes  Predicate       // for NestedDeletes: rows of the related table matching this predicate are deleted.
}

// NestedUpdateRow is one row's worth of column assignments for a nested
// update, scoped by a predicate identifying which related row to update.
type NestedUpdateRow struct {
	Predicate Predicate
	Sets      []InsertionElement
}

// Update is an UPDATE of rows matching Predicate, plus any nested writes
// scoped to one-to-many relations of the updated rows.
type Update struct {
	Table         Table
	Sets          []InsertionElement
	Predicate     Predicate
	NestedInserts []NestedMutation
	NestedUpdates []NestedMutation
	NestedDeletes []NestedMutation
}

func (*Update) abstractOperation() {}

// Delete removes rows matching Predicate.
type Delete struct {
	Table     Table
	Predicate Predicate
}

func (*Delete) abstractOperation() {}
