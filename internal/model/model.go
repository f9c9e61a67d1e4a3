// Package model holds the type-checked AST that a build consumes: entities,
// fields, enums and their annotations, already resolved by whatever produced
// the model source. Nothing in this package parses source text — it only
// describes the shapes a subsystem builder walks.
package model

import "github.com/syssam/exocore/internal/arena"

// PrimitiveKind enumerates the scalar kinds a field's type may bottom out at.
type PrimitiveKind int

const (
	PrimitiveInt PrimitiveKind = iota
	PrimitiveFloat
	PrimitiveString
	PrimitiveBoolean
	PrimitiveTimestamp
	PrimitiveDate
	PrimitiveTime
	PrimitiveUUID
	PrimitiveJSON
	PrimitiveBlob
)

// FieldTypeKind tags what an Entity field's type resolves to.
type FieldTypeKind int

const (
	// FieldTypePrimitive is a scalar leaf type.
	FieldTypePrimitive FieldTypeKind = iota
	// FieldTypeEntity references another Entity by id.
	FieldTypeEntity
	// FieldTypeEnum references an Enum by id.
	FieldTypeEnum
)

// FieldType is the resolved target of a field: a primitive kind, or an id
// into the entity/enum arena, tagged so the builder knows which arena to
// look the id up in. List-ness and optionality are orthogonal flags, not
// part of the Kind tag, mirroring how the array-of and nullable column
// physical types are represented independently in internal/column.
type FieldType struct {
	Kind      FieldTypeKind
	Primitive PrimitiveKind
	EntityId  arena.Id[Entity]
	EnumId    arena.Id[Enum]
	IsList    bool
	IsOptional bool
}

// RelationKind tags the variant of Field.Relation.
type RelationKind int

const (
	// RelationNone marks a field that carries no relation metadata.
	RelationNone RelationKind = iota
	RelationScalar
	RelationManyToOne
	RelationOneToMany
	RelationEmbedded
)

// Cardinality of a to-one relation side.
type Cardinality int

const (
	CardinalityOptional Cardinality = iota
	CardinalityUnbounded
)

// ColumnPair is one {self_column, foreign_column} pair of a relation's
// foreign key. A composite foreign key has more than one pair.
type ColumnPair struct {
	SelfColumn    string
	ForeignColumn string
}

// Relation describes how a field connects to another table, when it does.
type Relation struct {
	Kind            RelationKind
	ColumnId        string // RelationScalar: name of the backing column.
	IsPK            bool
	ColumnPairs     []ColumnPair // RelationManyToOne / RelationOneToMany.
	Cardinality     Cardinality
	ForeignFieldId  int // RelationOneToMany: index of the owning many-to-one field on the foreign entity.
	ForeignEntityId arena.Id[Entity]
}

// Field is one declared field of an Entity.
type Field struct {
	Name     string
	Type     FieldType
	Relation Relation
	Access   *FieldAccess
}

// FieldAccess is reserved for field-level access overrides; entities carry
// the primary Access block (see Access below) and most fields inherit it.
type FieldAccess struct {
	Read *AccessExprRef
}

// AccessExprRef names which arena (precheck or database) and id an access
// expression lives at; the actual expression tree lives in internal/access.
type AccessExprRef struct {
	IsPrecheck bool
	Id         int
}

// Access is the access control block attached to an Entity, with one
// expression reference per lifecycle operation. Creation and update split
// into precheck (context+input only) and database (may also reference row
// columns); read and delete are database-only.
type Access struct {
	CreationPrecheck AccessExprRef
	Read             AccessExprRef
	UpdatePrecheck   AccessExprRef
	UpdateDatabase   AccessExprRef
	Delete           AccessExprRef
}

// Representation tags whether an Entity is backed by a physical table or is
// only ever embedded as JSON inside another entity's row.
type Representation int

const (
	RepresentationTable Representation = iota
	RepresentationJSONEmbedded
)

// Entity is a declared type: name, fields, access rules, and (for
// table-backed entities) the id of its physical table plus precomputed
// query ids. Lifecycle: created as a name-only placeholder during the
// shallow pass, fully populated during expand.
type Entity struct {
	Name           string
	Representation Representation
	Fields         []Field
	Access         Access

	// TableId is valid only when Representation == RepresentationTable.
	// It is left zero-valued until the expand pass resolves it.
	TableId      int
	HasTableId   bool
	PKQueryId    string
	CollQueryId  string
	AggQueryId   string
}

// Enum is a declared enumeration of string values.
type Enum struct {
	Name   string
	Values []string
}

// Module groups entities and free-standing operations declared together,
// e.g. all types contributed by one source file or one plug-in namespace.
type Module struct {
	Name     string
	Entities []arena.Id[Entity]
}

// System is the fully type-checked input to the builder pipeline: every
// entity and enum the model declares, addressable by id.
type System struct {
	Entities *arena.MappedArena[Entity]
	Enums    *arena.MappedArena[Enum]
	Modules  []Module
}

// NewSystem returns an empty System ready for a builder to populate.
func NewSystem() *System {
	return &System{
		Entities: arena.NewMapped[Entity](),
		Enums:    arena.NewMapped[Enum](),
	}
}
