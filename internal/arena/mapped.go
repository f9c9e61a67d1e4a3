package arena

// MappedArena is an Arena[V] with an additional name index, used wherever a
// compiler pass needs both "give me the Nth entity" (stable iteration) and
// "give me the entity named concerts" (fast lookup by key) — the two access
// patterns the resolver and the builder pipeline need at different times.
//
// Insertion is idempotent by key: adding the same key twice returns the
// first id instead of creating a duplicate entry, which lets multiple build
// passes call Add for the same logical entity without needing to check
// membership themselves first.
type MappedArena[V any] struct {
	arena Arena[V]
	byKey map[string]Id[V]
}

// NewMapped returns an empty MappedArena.
func NewMapped[V any]() *MappedArena[V] {
	return &MappedArena[V]{byKey: make(map[string]Id[V])}
}

// Add inserts typ under key if key is not already present, and returns the
// id either way.
func (m *MappedArena[V]) Add(key string, typ V) Id[V] {
	if id, ok := m.byKey[key]; ok {
		return id
	}
	id := m.arena.Add(typ)
	m.byKey[key] = id
	return id
}

// GetId returns the id registered for key, if any.
func (m *MappedArena[V]) GetId(key string) (Id[V], bool) {
	id, ok := m.byKey[key]
	return id, ok
}

// GetByKey returns the value registered for key, if any.
func (m *MappedArena[V]) GetByKey(key string) (V, bool) {
	id, ok := m.byKey[key]
	if !ok {
		var zero V
		return zero, false
	}
	return m.arena.Get(id), true
}

// Get returns the value at id.
func (m *MappedArena[V]) Get(id Id[V]) V {
	return m.arena.Get(id)
}

// GetPtr returns a pointer to the value at id, for in-place mutation.
func (m *MappedArena[V]) GetPtr(id Id[V]) *V {
	return m.arena.GetPtr(id)
}

// Set replaces the value at id.
func (m *MappedArena[V]) Set(id Id[V], v V) {
	m.arena.Set(id, v)
}

// Len returns the number of distinct keys registered.
func (m *MappedArena[V]) Len() int {
	return m.arena.Len()
}

// IsEmpty reports whether the arena holds no entries.
func (m *MappedArena[V]) IsEmpty() bool {
	return m.arena.Len() == 0
}

// Keys returns every registered key, in no particular order.
func (m *MappedArena[V]) Keys() []string {
	keys := make([]string, 0, len(m.byKey))
	for k := range m.byKey {
		keys = append(keys, k)
	}
	return keys
}

// Values returns the arena's underlying Arena, whose All()/Iter() preserve
// insertion order.
func (m *MappedArena[V]) Values() *Arena[V] {
	return &m.arena
}

// Iter calls fn for every (Id, value) pair in insertion order.
func (m *MappedArena[V]) Iter(fn func(Id[V], V)) {
	m.arena.Iter(fn)
}
