// Package column models physical tables, columns and the foreign-key link
// metadata that connects them — the shared vocabulary the abstract-SQL
// builder (internal/absql), the access solver (internal/solver) and the SQL
// transform (internal/sqltransform) all refer to by ColumnPath.
package column

import "fmt"

// PhysicalKind tags the storage type of a Column.
type PhysicalKind int

const (
	KindInt PhysicalKind = iota
	KindString
	KindBoolean
	KindTimestampTZ
	KindNumeric
	KindTime
	KindDate
	KindUUID
	KindJSON
	KindJSONB
	KindBlob
	KindArray // element kind given by Column.ElementKind.
	KindColumnReference
)

// DefaultKind tags how Column.Default should be interpreted.
type DefaultKind int

const (
	DefaultNone DefaultKind = iota
	DefaultLiteral
	DefaultAutoIncrementSerial
	DefaultAutoIncrementIdentity
	DefaultFunctionCall
)

// Default describes a column's DEFAULT clause, if any.
type Default struct {
	Kind    DefaultKind
	Literal string // valid when Kind == DefaultLiteral or DefaultFunctionCall.
}

// Column is one physical column of a Table.
type Column struct {
	Name        string
	Kind        PhysicalKind
	ElementKind PhysicalKind // valid when Kind == KindArray.
	IntBits     int          // 16, 32, or 64; valid when Kind == KindInt.
	StringLen   int          // 0 means unbounded; valid when Kind == KindString.
	NumericP    int          // precision; valid when Kind == KindNumeric.
	NumericS    int          // scale; valid when Kind == KindNumeric.
	TZPrecision int          // valid when Kind == KindTimestampTZ.
	Nullable    bool
	Default     Default
	UniqueNames []string // names of unique constraints this column participates in.
}

// Table is a physical table: a schema-qualified name, its ordered columns,
// and which column is the primary key. Schema "public" is the default and
// is omitted from the wire form, matching the Postgres convention the
// subsystem targets.
type Table struct {
	Name    string
	Schema  string // empty means "public".
	Columns []Column
	PKName  string
}

// QualifiedName returns schema.name (unquoted), omitting the schema when it
// is the default "public" schema.
func (t Table) QualifiedName() string {
	if t.Schema == "" || t.Schema == "public" {
		return t.Name
	}
	return fmt.Sprintf("%s.%s", t.Schema, t.Name)
}

// Column looks up a column by name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PK returns the table's primary key column.
func (t Table) PK() (Column, bool) {
	return t.Column(t.PKName)
}
