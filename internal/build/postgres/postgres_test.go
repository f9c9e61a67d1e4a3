package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/exocore/internal/model"
)

func TestBuildProducesTablesAndQueryNames(t *testing.T) {
	system := model.NewSystem()
	venueId := system.Entities.Add("Venue", model.Entity{
		Name:           "Venue",
		Representation: model.RepresentationTable,
		Fields: []model.Field{
			{Name: "name", Type: model.FieldType{Kind: model.FieldTypePrimitive, Primitive: model.PrimitiveString}},
		},
	})
	system.Entities.Add("Concert", model.Entity{
		Name:           "Concert",
		Representation: model.RepresentationTable,
		Fields: []model.Field{
			{Name: "title", Type: model.FieldType{Kind: model.FieldTypePrimitive, Primitive: model.PrimitiveString}},
			{
				Name: "venue",
				Type: model.FieldType{Kind: model.FieldTypeEntity, EntityId: venueId},
				Relation: model.Relation{
					Kind:            model.RelationManyToOne,
					ColumnPairs:     []model.ColumnPair{{SelfColumn: "venue_id", ForeignColumn: "id"}},
					ForeignEntityId: venueId,
				},
			},
		},
	})

	sb, err := Builder{}.Build(system, nil)
	require.NoError(t, err)
	require.NotNil(t, sb)
	assert.Equal(t, "postgres", sb.ID)
	require.NotNil(t, sb.GraphQL)
	assert.Contains(t, sb.GraphQL.QueryNames, "venue")
	assert.Contains(t, sb.GraphQL.QueryNames, "concerts")
	assert.Contains(t, sb.GraphQL.MutationNames, "createConcert")

	schema, err := DecodeSchema(sb.Core.SerializedSubsystem)
	require.NoError(t, err)
	_, ok := schema.Tables["Venue"]
	assert.True(t, ok)
	rel, ok := schema.ManyToOne["Concert.venue"]
	require.True(t, ok)
	assert.Equal(t, "concerts", rel.SelfTable)
	assert.Equal(t, "venues", rel.ForeignTable)
}

func TestBuildReturnsNilWhenNoTableBackedEntities(t *testing.T) {
	system := model.NewSystem()
	system.Entities.Add("Embedded", model.Entity{Name: "Embedded", Representation: model.RepresentationJSONEmbedded})

	sb, err := Builder{}.Build(system, nil)
	require.NoError(t, err)
	assert.Nil(t, sb)
}
