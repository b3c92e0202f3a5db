package ecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type okValidator struct{ rejectKind string }

func (v okValidator) Validate(kind string, value any) error {
	if kind == v.rejectKind {
		return errRejected
	}
	return nil
}

var errRejected = &rejectErr{}

type rejectErr struct{}

func (e *rejectErr) Error() string { return "rejected" }

func TestEntityStoreSpawnDespawn(t *testing.T) {
	s := NewEntityStore()
	a := s.Spawn()
	b := s.Spawn()
	require.NotEqual(t, a, b)
	require.True(t, s.IsAlive(a))
	s.Despawn(a)
	require.False(t, s.IsAlive(a))
	require.Equal(t, []EntityID{b}, s.Entities())
}

func TestEntityStoreRecycle(t *testing.T) {
	s := NewEntityStore()
	a := s.Spawn()
	s.Recycle(a)
	b := s.Spawn()
	require.Equal(t, a, b)
}

func TestComponentStoreSetGetRemove(t *testing.T) {
	store := NewStore(okValidator{})
	e := EntityID(1)
	require.NoError(t, store.Set(e, "Health", map[string]any{"hp": 10}))
	v, err := store.Get(e, "Health")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"hp": 10}, v)

	store.Remove(e, "Health")
	_, err = store.Get(e, "Health")
	require.Error(t, err)
}

func TestComponentStoreValidationRejection(t *testing.T) {
	store := NewStore(okValidator{rejectKind: "Job"})
	err := store.Set(1, "Job", map[string]any{})
	require.Error(t, err)
}

func TestComponentStoreEntitiesWithAll(t *testing.T) {
	store := NewStore(okValidator{})
	require.NoError(t, store.Set(1, "Position", map[string]any{}))
	require.NoError(t, store.Set(1, "Agent", map[string]any{}))
	require.NoError(t, store.Set(2, "Position", map[string]any{}))

	require.Equal(t, []EntityID{1}, store.EntitiesWithAll("Position", "Agent"))
	require.Equal(t, []EntityID{1, 2}, store.EntitiesWith("Position"))
}

func TestComponentStoreHooks(t *testing.T) {
	store := NewStore(okValidator{})
	var fired int
	store.OnChange("Position", func(e EntityID, kind string, value any, removed bool) {
		fired++
	})
	require.NoError(t, store.Set(1, "Position", map[string]any{"x": 1}))
	store.Remove(1, "Position")
	require.Equal(t, 2, fired)
}
