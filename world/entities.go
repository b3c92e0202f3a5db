package world

import "github.com/sourceplane/simkernel/internal/ecs"

// Spawn allocates a fresh entity id.
func (w *World) Spawn() ecs.EntityID { return w.entities.Spawn() }

// IsAlive reports whether id is currently live.
func (w *World) IsAlive(id ecs.EntityID) bool { return w.entities.IsAlive(id) }

// Entities returns every live entity id, ascending.
func (w *World) Entities() []ecs.EntityID { return w.entities.Entities() }

// Despawn removes id, cascading into the Component Store (every kind
// erased), the Map Index (reverse cell entry dropped), and the Job Engine
// and Job Board (if id is a job, its reservations are released and its
// board record dropped). Jobs assigned to a despawned agent keep their
// assignment.
func (w *World) Despawn(id ecs.EntityID) {
	if job, err := w.board.Get(id); err == nil {
		_ = w.engine.ReleaseJobResourceReservations(job, w.stockpileSource())
	}
	w.components.RemoveAll(id)
	w.mapIndex.ClearPosition(id)
	w.board.Remove(id)
	w.entities.Despawn(id)
}

// SetComponent validates and stores value under kind for e.
func (w *World) SetComponent(e ecs.EntityID, kind string, value any) error {
	return w.components.Set(e, kind, value)
}

// GetComponent returns e's component of kind. For kind "Job" this is
// synthesized live from the Job Engine's working copy, since job state
// transitions mutate that working copy directly rather than round-
// tripping through the Component Store on every advance.
func (w *World) GetComponent(e ecs.EntityID, kind string) (any, error) {
	if kind == "Job" {
		job, err := w.board.Get(e)
		if err != nil {
			return nil, err
		}
		return encodeJob(job), nil
	}
	return w.components.Get(e, kind)
}

// RemoveComponent deletes e's component of kind, if present.
func (w *World) RemoveComponent(e ecs.EntityID, kind string) {
	w.components.Remove(e, kind)
}

// EntitiesWith returns every entity carrying a component of kind.
func (w *World) EntitiesWith(kind string) []ecs.EntityID {
	return w.components.EntitiesWith(kind)
}

// EntitiesWithAll returns every entity carrying a component of every kind
// listed.
func (w *World) EntitiesWithAll(kinds ...string) []ecs.EntityID {
	return w.components.EntitiesWithAll(kinds...)
}

// ListComponents returns every registered component kind.
func (w *World) ListComponents() []string { return w.Schema.ListComponents() }

// GetComponentSchema returns the raw schema document for kind.
func (w *World) GetComponentSchema(kind string) (map[string]any, error) {
	return w.Schema.GetSchema(kind)
}

// ComponentStore exposes the underlying Component Store for subsystem
// adapters (equipment helpers, stockpile adapter) that need direct access.
func (w *World) ComponentStore() *ecs.Store { return w.components }
