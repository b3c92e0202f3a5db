package ecs

import (
	"sort"

	"github.com/sourceplane/simkernel/internal/simerr"
)

// Validator is satisfied structurally by *schema.Registry. The component
// store depends on this interface rather than the schema package directly
// so schema compilation stays a concern of the Schema Registry alone.
type Validator interface {
	Validate(kind string, value any) error
}

// Hook runs after a component of the given kind is set or removed, letting
// other subsystems (Map Index, Job Board, agent index) keep derived state
// in sync without the store knowing about them by name.
type Hook func(e EntityID, kind string, value any, removed bool)

// Store holds component values keyed by (kind, entity), validated against
// a Validator on every Set.
type Store struct {
	validator Validator
	data      map[string]map[EntityID]any
	hooks     map[string][]Hook
}

// NewStore builds a component store backed by validator.
func NewStore(validator Validator) *Store {
	return &Store{
		validator: validator,
		data:      make(map[string]map[EntityID]any),
		hooks:     make(map[string][]Hook),
	}
}

// OnChange registers a hook invoked after every Set/Remove for kind.
func (s *Store) OnChange(kind string, hook Hook) {
	s.hooks[kind] = append(s.hooks[kind], hook)
}

// Set validates value against kind's schema and stores it for e. A
// SchemaViolation or UnknownKind from the validator aborts the write.
func (s *Store) Set(e EntityID, kind string, value any) error {
	if err := s.validator.Validate(kind, value); err != nil {
		return err
	}
	bucket, ok := s.data[kind]
	if !ok {
		bucket = make(map[EntityID]any)
		s.data[kind] = bucket
	}
	bucket[e] = value
	s.fire(e, kind, value, false)
	return nil
}

// Get returns the component value for (e, kind), or NotFound.
func (s *Store) Get(e EntityID, kind string) (any, error) {
	bucket, ok := s.data[kind]
	if !ok {
		return nil, simerr.New(simerr.NotFound, "entity %d has no component %q", e, kind)
	}
	v, ok := bucket[e]
	if !ok {
		return nil, simerr.New(simerr.NotFound, "entity %d has no component %q", e, kind)
	}
	return v, nil
}

// Has reports whether e carries a component of kind.
func (s *Store) Has(e EntityID, kind string) bool {
	bucket, ok := s.data[kind]
	if !ok {
		return false
	}
	_, ok = bucket[e]
	return ok
}

// Remove deletes the component of kind from e, if present.
func (s *Store) Remove(e EntityID, kind string) {
	bucket, ok := s.data[kind]
	if !ok {
		return
	}
	old, existed := bucket[e]
	if !existed {
		return
	}
	delete(bucket, e)
	s.fire(e, kind, old, true)
}

// RemoveAll strips every component from e, for despawn cascades.
func (s *Store) RemoveAll(e EntityID) {
	for kind, bucket := range s.data {
		if old, ok := bucket[e]; ok {
			delete(bucket, e)
			s.fire(e, kind, old, true)
		}
	}
}

// EntitiesWith returns every entity carrying a component of kind, sorted.
func (s *Store) EntitiesWith(kind string) []EntityID {
	bucket, ok := s.data[kind]
	if !ok {
		return nil
	}
	ids := make([]EntityID, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// EntitiesWithAll returns every entity carrying a component of every kind
// listed, sorted. An empty kinds list returns nil.
func (s *Store) EntitiesWithAll(kinds ...string) []EntityID {
	if len(kinds) == 0 {
		return nil
	}
	first := s.EntitiesWith(kinds[0])
	rest := kinds[1:]
	out := make([]EntityID, 0, len(first))
	for _, id := range first {
		all := true
		for _, kind := range rest {
			if !s.Has(id, kind) {
				all = false
				break
			}
		}
		if all {
			out = append(out, id)
		}
	}
	return out
}

// Snapshot returns every (entity, kind) -> value triple currently stored,
// grouped by entity, for save/load.
func (s *Store) Snapshot() map[EntityID]map[string]any {
	out := make(map[EntityID]map[string]any)
	for kind, bucket := range s.data {
		for e, v := range bucket {
			if out[e] == nil {
				out[e] = make(map[string]any)
			}
			out[e][kind] = v
		}
	}
	return out
}

func (s *Store) fire(e EntityID, kind string, value any, removed bool) {
	for _, h := range s.hooks[kind] {
		h(e, kind, value, removed)
	}
}
