package sim

import "sort"

// Entity is anything the registry can index: an id, a kind tag, and
// string-valued attributes for secondary lookups.
type Entity interface {
	EntityID() string
	EntityKind() string
	Attribute(key string) (string, bool)
}

// EntityRegistry is indexed storage for simulation entities. Lookups by id
// and kind are map-backed; attribute lookups scan the kind index and return
// results in sorted-id order so iteration stays deterministic.
type EntityRegistry struct {
	entities map[string]Entity
	byKind   map[string]map[string]Entity
}

// NewEntityRegistry creates an empty registry.
func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{
		entities: make(map[string]Entity),
		byKind:   make(map[string]map[string]Entity),
	}
}

// Add registers an entity, replacing any previous entity with the same id.
func (r *EntityRegistry) Add(e Entity) {
	if prev, ok := r.entities[e.EntityID()]; ok {
		delete(r.byKind[prev.EntityKind()], prev.EntityID())
	}
	r.entities[e.EntityID()] = e
	kind := r.byKind[e.EntityKind()]
	if kind == nil {
		kind = make(map[string]Entity)
		r.byKind[e.EntityKind()] = kind
	}
	kind[e.EntityID()] = e
}

// Get returns the entity with the given id, or nil.
func (r *EntityRegistry) Get(id string) Entity {
	return r.entities[id]
}

// Remove deletes an entity by id. Returns false if it was not present.
func (r *EntityRegistry) Remove(id string) bool {
	e, ok := r.entities[id]
	if !ok {
		return false
	}
	delete(r.entities, id)
	delete(r.byKind[e.EntityKind()], id)
	return true
}

// Len returns the number of registered entities.
func (r *EntityRegistry) Len() int {
	return len(r.entities)
}

// ByKind returns all entities of a kind, sorted by id.
func (r *EntityRegistry) ByKind(kind string) []Entity {
	return sortedValues(r.byKind[kind])
}

// ByAttribute returns all entities of the kind whose attribute matches the
// given value, sorted by id.
func (r *EntityRegistry) ByAttribute(kind, key, value string) []Entity {
	var out []Entity
	for _, e := range sortedValues(r.byKind[kind]) {
		if v, ok := e.Attribute(key); ok && v == value {
			out = append(out, e)
		}
	}
	return out
}

func sortedValues(m map[string]Entity) []Entity {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}
