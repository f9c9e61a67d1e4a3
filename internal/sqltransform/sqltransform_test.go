package sqltransform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/exocore/dialect"
	"github.com/syssam/exocore/internal/absql"
	"github.com/syssam/exocore/internal/column"
)

func TestChooseStrategyPrefersUnconditionalPKOverToManyPath(t *testing.T) {
	plan := Plan{HasToManyPath: true}
	assert.Equal(t, StrategyUnconditionalPK, ChooseStrategy(plan, false))
}

func TestChooseStrategyNestedWins(t *testing.T) {
	plan := Plan{HasToManyPath: true}
	assert.Equal(t, StrategyNested, ChooseStrategy(plan, true))
}

func TestChooseStrategyPlainSubqueryDefault(t *testing.T) {
	assert.Equal(t, StrategyPlainSubquery, ChooseStrategy(Plan{}, false))
}

func TestInferJoinsSharesJoinForCommonPrefix(t *testing.T) {
	root := column.Table{Name: "concerts"}
	venueLink := column.ColumnPathLink{
		Kind: column.LinkRelation, Table: "concerts",
		ColumnPairs:  []column.ColumnPair{{SelfColumn: "venue_id", ForeignColumn: "id"}},
		ForeignTable: "venues",
	}
	nameField := column.ColumnPath{Links: []column.ColumnPathLink{venueLink, {Kind: column.LinkLeaf, Column: "name", Table: "venues"}}}
	cityField := column.ColumnPath{Links: []column.ColumnPathLink{venueLink, {Kind: column.LinkLeaf, Column: "city", Table: "venues"}}}

	joins := InferJoins(root, []column.ColumnPath{nameField, cityField})
	assert.Len(t, joins, 1, "two paths through the same relation share one join")
}

// TestInferJoinsAliasesDistinctRelationsToSameTable reproduces the
// mainVenue/altVenue scenario: two many-to-one fields on the same entity
// pointing at the same physical table must produce two distinct joins.
func TestInferJoinsAliasesDistinctRelationsToSameTable(t *testing.T) {
	root := column.Table{Name: "concerts"}
	mainVenue := column.ColumnPathLink{
		Kind: column.LinkRelation, Table: "concerts",
		ColumnPairs:  []column.ColumnPair{{SelfColumn: "main_venue_id", ForeignColumn: "id"}},
		ForeignTable: "venues", ForeignAlias: "mainVenue",
	}
	altVenue := column.ColumnPathLink{
		Kind: column.LinkRelation, Table: "concerts",
		ColumnPairs:  []column.ColumnPair{{SelfColumn: "alt_venue_id", ForeignColumn: "id"}},
		ForeignTable: "venues", ForeignAlias: "altVenue",
	}
	paths := []column.ColumnPath{
		{Links: []column.ColumnPathLink{mainVenue, {Kind: column.LinkLeaf, Column: "name", Table: "mainVenue"}}},
		{Links: []column.ColumnPathLink{altVenue, {Kind: column.LinkLeaf, Column: "name", Table: "altVenue"}}},
	}

	joins := InferJoins(root, paths)
	assert.Len(t, joins, 2)
}

func TestEmitPlainSubqueryProducesSelectWithWhereAndLimit(t *testing.T) {
	root := column.Table{Name: "concerts"}
	limit := 10
	plan := Plan{
		Root: root,
		Predicate: absql.Eq(
			absql.ColumnOperand(column.ColumnPath{Links: []column.ColumnPathLink{{Kind: column.LinkLeaf, Column: "id", Table: "concerts"}}}),
			absql.ParamOperand(1),
		),
		Columns: []string{"id", "title"},
		Limit:   &limit,
	}

	sqlStr, args := Emit(dialect.Postgres, plan)
	assert.Contains(t, sqlStr, "json_agg(t)::text")
	assert.Contains(t, sqlStr, "FROM")
	assert.Contains(t, sqlStr, "WHERE")
	assert.Contains(t, sqlStr, "LIMIT 10")
	assert.Equal(t, []any{1}, args)
}

// TestEmitUnconditionalPKAppliesLimitToPKSubqueryFirst pins spec §4.9's
// two-level shape for plans that touch a one-to-many path: limit/offset
// bind a primary-key-only subquery, and the outer select filters on that
// key set rather than paging the already-joined rows.
func TestEmitUnconditionalPKAppliesLimitToPKSubqueryFirst(t *testing.T) {
	root := column.Table{Name: "concerts", PKName: "id", Columns: []column.Column{{Name: "id"}}}
	limit := 5
	plan := Plan{
		Root:          root,
		Columns:       []string{"id", "title"},
		Limit:         &limit,
		HasToManyPath: true,
	}

	sqlStr, _ := Emit(dialect.Postgres, plan)
	assert.Contains(t, sqlStr, "json_agg(t)::text")
	assert.Contains(t, sqlStr, `"concerts"."id" IN (SELECT`)
	assert.Contains(t, sqlStr, "LIMIT 5")
}

// TestEmitNestedSplicesCorrelatedSubqueryColumn pins StrategyNested: a
// SubSelect becomes its own aliased subquery column, and its placeholders
// are renumbered to continue after the parent's own.
func TestEmitNestedSplicesCorrelatedSubqueryColumn(t *testing.T) {
	root := column.Table{Name: "concerts", PKName: "id", Columns: []column.Column{{Name: "id"}}}
	venues := column.Table{Name: "venues", PKName: "id", Columns: []column.Column{{Name: "id"}}}

	plan := Plan{
		Root:    root,
		Columns: []string{"id"},
		SubSelects: []NestedSelect{
			{
				Alias: "venue",
				Plan: Plan{
					Root:    venues,
					Columns: []string{"name"},
					Predicate: absql.Eq(
						absql.ColumnOperand(column.ColumnPath{Links: []column.ColumnPathLink{{Kind: column.LinkLeaf, Column: "concert_id", Table: "venues"}}}),
						absql.ParamOperand(7),
					),
				},
			},
		},
	}

	sqlStr, args := Emit(dialect.Postgres, plan)
	assert.Contains(t, sqlStr, `AS "venue"`)
	assert.Contains(t, sqlStr, "json_agg(t)::text")
	assert.Equal(t, []any{7}, args)
}
