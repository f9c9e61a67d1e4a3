// Package postgres is the postgres subsystem's Builder (C6): it turns
// table-backed entities into column.Table/Column metadata plus the
// per-entity query/mutation names the GraphQL, REST and RPC surfaces route
// to, following the shallow/expand contract internal/build defines.
package postgres

import (
	"bytes"
	"encoding/gob"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/syssam/exocore/internal/build"
	"github.com/syssam/exocore/internal/column"
	"github.com/syssam/exocore/internal/model"
)

// subsystemID is the name this builder's SubsystemBuild is registered under
// in the system image, and the name internal/resolve routes by.
const subsystemID = "postgres"

// Schema is this subsystem's core build payload: every table-backed
// entity's physical table, keyed by entity name, plus the many-to-one
// relations discovered during expand (one-to-many is always derived from
// these via Flip, never stored separately).
type Schema struct {
	Tables         map[string]column.Table
	ManyToOne      map[string]column.ManyToOneRelation // keyed by "entity.field"
	PKQueryName    map[string]string
	CollQueryName  map[string]string
	AggQueryName   map[string]string
	CreateMutation map[string]string
	UpdateMutation map[string]string
	DeleteMutation map[string]string
}

// Builder implements build.Builder for the postgres subsystem.
type Builder struct{}

// Build runs the two-pass walk: shallow inserts a Table placeholder (name
// only) per table-backed entity so relation expansion in pass two can
// resolve a foreign entity's table regardless of declaration order; expand
// fills in columns and relations and derives the standard query/mutation
// names.
func (Builder) Build(system *model.System, base *model.System) (*build.SubsystemBuild, error) {
	schema := &Schema{
		Tables:         map[string]column.Table{},
		ManyToOne:      map[string]column.ManyToOneRelation{},
		PKQueryName:    map[string]string{},
		CollQueryName:  map[string]string{},
		AggQueryName:   map[string]string{},
		CreateMutation: map[string]string{},
		UpdateMutation: map[string]string{},
		DeleteMutation: map[string]string{},
	}

	hasTableBacked := false
	build.Walk(system,
		func(e model.Entity) {
			if e.Representation != model.RepresentationTable {
				return
			}
			hasTableBacked = true
			schema.Tables[e.Name] = column.Table{Name: tableName(e.Name)}
		},
		func(e model.Entity) {
			if e.Representation != model.RepresentationTable {
				return
			}
			t := schema.Tables[e.Name]
			for _, f := range e.Fields {
				if f.Relation.Kind != model.RelationManyToOne {
					if col, ok := scalarColumn(f); ok {
						t.Columns = append(t.Columns, col)
					}
					continue
				}
				foreign := system.Entities.Get(f.Relation.ForeignEntityId)
				pairs := make([]column.ColumnPair, len(f.Relation.ColumnPairs))
				for i, p := range f.Relation.ColumnPairs {
					pairs[i] = column.ColumnPair{SelfColumn: p.SelfColumn, ForeignColumn: p.ForeignColumn}
				}
				rel := column.ManyToOneRelation{
					SelfTable:    t.Name,
					ForeignTable: schema.Tables[foreign.Name].Name,
					ColumnPairs:  pairs,
					Optional:     f.Relation.Cardinality == model.CardinalityOptional,
					IsPK:         f.Relation.IsPK,
				}
				schema.ManyToOne[e.Name+"."+f.Name] = rel
			}
			schema.Tables[e.Name] = t

			plural := lowerFirst(inflect.Pluralize(e.Name))
			schema.PKQueryName[e.Name] = lowerFirst(e.Name)
			schema.CollQueryName[e.Name] = plural
			schema.AggQueryName[e.Name] = plural + "Agg"
			schema.CreateMutation[e.Name] = "create" + e.Name
			schema.UpdateMutation[e.Name] = "update" + e.Name
			schema.DeleteMutation[e.Name] = "delete" + e.Name
		},
	)

	if !hasTableBacked {
		return nil, nil
	}

	payload, err := encodeSchema(schema)
	if err != nil {
		return nil, build.NewSerializeModelBuildingError(subsystemID, err)
	}

	var queryNames, mutationNames []string
	for _, name := range sortedKeys(schema.PKQueryName) {
		queryNames = append(queryNames, schema.PKQueryName[name], schema.CollQueryName[name], schema.AggQueryName[name])
	}
	for _, name := range sortedKeys(schema.CreateMutation) {
		mutationNames = append(mutationNames, schema.CreateMutation[name], schema.UpdateMutation[name], schema.DeleteMutation[name])
	}

	return &build.SubsystemBuild{
		ID: subsystemID,
		GraphQL: &build.GraphQLBuild{
			SerializedSubsystem: payload,
			QueryNames:          queryNames,
			MutationNames:       mutationNames,
		},
		Core: build.CoreBuild{SerializedSubsystem: payload},
	}, nil
}

func scalarColumn(f model.Field) (column.Column, bool) {
	if f.Relation.Kind == model.RelationOneToMany || f.Relation.Kind == model.RelationEmbedded {
		return column.Column{}, false
	}
	col := column.Column{
		Name:     columnName(f.Name),
		Nullable: f.Type.IsOptional,
	}
	switch f.Type.Primitive {
	case model.PrimitiveInt:
		col.Kind = column.KindInt
		col.IntBits = 32
	case model.PrimitiveFloat:
		col.Kind = column.KindNumeric
	case model.PrimitiveString:
		col.Kind = column.KindString
	case model.PrimitiveBoolean:
		col.Kind = column.KindBoolean
	case model.PrimitiveTimestamp:
		col.Kind = column.KindTimestampTZ
	case model.PrimitiveDate:
		col.Kind = column.KindDate
	case model.PrimitiveTime:
		col.Kind = column.KindTime
	case model.PrimitiveUUID:
		col.Kind = column.KindUUID
	case model.PrimitiveJSON:
		col.Kind = column.KindJSONB
	case model.PrimitiveBlob:
		col.Kind = column.KindBlob
	}
	if f.Type.IsList {
		col.ElementKind = col.Kind
		col.Kind = column.KindArray
	}
	return col, true
}

func tableName(entityName string) string {
	return snakeCase(inflect.Pluralize(entityName))
}

func columnName(fieldName string) string {
	return snakeCase(fieldName)
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

func encodeSchema(s *Schema) ([]byte, error) {
	// The schema is self-contained and gob-safe (maps of value types only),
	// so gob can round-trip it directly without a custom wire format; image
	// only needs the resulting opaque bytes.
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeSchema reverses encodeSchema, for the postgres resolver to load its
// Core build payload back out of a loaded system image.
func DecodeSchema(payload []byte) (*Schema, error) {
	var s Schema
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
