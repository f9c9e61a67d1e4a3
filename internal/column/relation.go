package column

// ColumnPair is one {self_column, foreign_column} pair of a relation's
// foreign key; a composite foreign key has more than one pair.
type ColumnPair struct {
	SelfColumn    string
	ForeignColumn string
}

// ManyToOneRelation is the owning side of a relation: the table holding the
// foreign key. It is the only side stored in the arena; OneToMany is always
// derived from it on demand (Flip), since the two sides share ColumnPairs
// and storing both would let them drift out of sync.
type ManyToOneRelation struct {
	SelfTable     string
	ForeignTable  string
	ColumnPairs   []ColumnPair
	Optional      bool // false means the FK column(s) are NOT NULL.
	IsPK          bool // true for a shared-primary-key one-to-one.
	ForeignAlias  string // set when two relations on the same entity target the same foreign table (e.g. mainVenue/altVenue).
}

// OneToManyRelation is the flipped view of a ManyToOneRelation, derived on
// demand rather than stored, so the two sides of a relation can never
// disagree about their ColumnPairs.
type OneToManyRelation struct {
	SelfTable    string // the "one" side, i.e. ManyToOneRelation.ForeignTable.
	ForeignTable string // the "many" side, i.e. ManyToOneRelation.SelfTable.
	ColumnPairs  []ColumnPair
}

// Flip derives the one-to-many view of a many-to-one relation. The pairs
// are kept in the same {self_column, foreign_column} order as stored, since
// ColumnPath links interpret them relative to the *current* table, and
// Flip's ForeignTable is the original SelfTable.
func (r ManyToOneRelation) Flip() OneToManyRelation {
	return OneToManyRelation{
		SelfTable:    r.ForeignTable,
		ForeignTable: r.SelfTable,
		ColumnPairs:  r.ColumnPairs,
	}
}

// LinkKind tags a ColumnPathLink as either a terminal column or a hop
// through a relation.
type LinkKind int

const (
	LinkLeaf LinkKind = iota
	LinkRelation
)

// ColumnPathLink is one hop of a ColumnPath: either the leaf column itself,
// or a relation traversal (one or more column pairs plus an optional
// foreign-table alias, used when the same physical table is joined twice
// under different names).
type ColumnPathLink struct {
	Kind         LinkKind
	Column       string       // valid when Kind == LinkLeaf.
	Table        string       // table this link's column(s) belong to.
	ColumnPairs  []ColumnPair // valid when Kind == LinkRelation.
	ForeignTable string       // valid when Kind == LinkRelation.
	ForeignAlias string       // valid when Kind == LinkRelation; defaults to ForeignTable when empty.
}

// ColumnPath is an ordered, non-empty sequence of links. Successive links
// share the linked table; the final link's table determines the leaf
// column's table. It is the universal way to refer to a column reachable
// through zero or more relation hops.
type ColumnPath struct {
	Links []ColumnPathLink
}

// LeafTable returns the table of the path's last link, i.e. the table the
// leaf column belongs to.
func (p ColumnPath) LeafTable() string {
	if len(p.Links) == 0 {
		return ""
	}
	last := p.Links[len(p.Links)-1]
	if last.Kind == LinkLeaf {
		return last.Table
	}
	alias := last.ForeignAlias
	if alias == "" {
		alias = last.ForeignTable
	}
	return alias
}

// LeafColumn returns the name of the leaf column, valid only when the last
// link is a LinkLeaf.
func (p ColumnPath) LeafColumn() (string, bool) {
	if len(p.Links) == 0 {
		return "", false
	}
	last := p.Links[len(p.Links)-1]
	if last.Kind != LinkLeaf {
		return "", false
	}
	return last.Column, true
}

// ColumnPathLink builds the relation link usable in a ColumnPath that
// traverses this many-to-one relation, optionally aliasing the foreign
// table (so two many-to-one fields pointing at the same table produce two
// distinct joins downstream in internal/sqltransform).
func (r ManyToOneRelation) ColumnPathLink(alias string) ColumnPathLink {
	if alias == "" {
		alias = r.ForeignAlias
	}
	return ColumnPathLink{
		Kind:         LinkRelation,
		Table:        r.SelfTable,
		ColumnPairs:  r.ColumnPairs,
		ForeignTable: r.ForeignTable,
		ForeignAlias: alias,
	}
}

// ColumnPathLink builds the relation link usable in a ColumnPath that
// traverses this one-to-many relation.
func (r OneToManyRelation) ColumnPathLink(alias string) ColumnPathLink {
	if alias == "" {
		alias = r.ForeignTable
	}
	return ColumnPathLink{
		Kind:         LinkRelation,
		Table:        r.SelfTable,
		ColumnPairs:  r.ColumnPairs,
		ForeignTable: r.ForeignTable,
		ForeignAlias: alias,
	}
}
