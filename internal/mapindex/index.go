package mapindex

import (
	"sort"

	"github.com/sourceplane/simkernel/internal/ecs"
	"github.com/sourceplane/simkernel/internal/simerr"
)

// CellMeta carries per-cell metadata. Walkable is taken as given: the zero
// value is false, so callers pass Walkable: true for ordinary cells.
type CellMeta struct {
	Walkable bool
	Extra    map[string]any
}

// Index is the Map Index: explicit adjacency (never auto-symmetric —
// callers add both directions when they want a two-way edge, matching
// every original pathfinding/movement test) plus a reverse lookup from
// cell to the entities currently positioned there.
type Index struct {
	cells     map[CellKey]CellMeta
	neighbors map[CellKey][]CellKey
	occupants map[CellKey]map[ecs.EntityID]bool
	entityAt  map[ecs.EntityID]CellKey
	seq       map[CellKey]int
	nextSeq   int
}

// NewIndex returns an empty Map Index.
func NewIndex() *Index {
	return &Index{
		cells:     make(map[CellKey]CellMeta),
		neighbors: make(map[CellKey][]CellKey),
		occupants: make(map[CellKey]map[ecs.EntityID]bool),
		entityAt:  make(map[ecs.EntityID]CellKey),
		seq:       make(map[CellKey]int),
	}
}

// AddCell installs or updates a cell's metadata. meta.Walkable is stored
// as given (a zero CellMeta makes an unwalkable cell).
func (ix *Index) AddCell(key CellKey, meta CellMeta) {
	if _, exists := ix.cells[key]; !exists {
		if meta.Extra == nil {
			meta.Extra = make(map[string]any)
		}
		ix.seq[key] = ix.nextSeq
		ix.nextSeq++
	}
	ix.cells[key] = meta
	if _, ok := ix.neighbors[key]; !ok {
		ix.neighbors[key] = nil
	}
}

// InsertionSeq returns the order key was first added in, for tie-breaking
// in the Pathfinder. Unknown cells return -1.
func (ix *Index) InsertionSeq(key CellKey) int {
	seq, ok := ix.seq[key]
	if !ok {
		return -1
	}
	return seq
}

// HasCell reports whether key has been installed.
func (ix *Index) HasCell(key CellKey) bool {
	_, ok := ix.cells[key]
	return ok
}

// CellMetadata returns the metadata for key.
func (ix *Index) CellMetadata(key CellKey) (CellMeta, error) {
	m, ok := ix.cells[key]
	if !ok {
		return CellMeta{}, simerr.New(simerr.NotFound, "unknown cell %s", key)
	}
	return m, nil
}

// IsWalkable reports whether key exists and is walkable. Unknown cells are
// not walkable.
func (ix *Index) IsWalkable(key CellKey) bool {
	m, ok := ix.cells[key]
	if !ok {
		return false
	}
	return m.Walkable
}

// AddNeighbor records a one-way edge from a to b. Not automatically
// symmetric: call twice (AddNeighbor(a,b) and AddNeighbor(b,a)) for a
// two-way edge.
func (ix *Index) AddNeighbor(a, b CellKey) {
	for _, existing := range ix.neighbors[a] {
		if existing == b {
			return
		}
	}
	ix.neighbors[a] = append(ix.neighbors[a], b)
}

// Neighbors returns the cells reachable from key by one edge, in the order
// they were added.
func (ix *Index) Neighbors(key CellKey) []CellKey {
	return append([]CellKey(nil), ix.neighbors[key]...)
}

// SetPosition moves e to key, updating the reverse index and clearing any
// prior occupancy record. Used by the Component Store's Position hook.
func (ix *Index) SetPosition(e ecs.EntityID, key CellKey) {
	ix.ClearPosition(e)
	if ix.occupants[key] == nil {
		ix.occupants[key] = make(map[ecs.EntityID]bool)
	}
	ix.occupants[key][e] = true
	ix.entityAt[e] = key
}

// ClearPosition removes e from the reverse index entirely.
func (ix *Index) ClearPosition(e ecs.EntityID) {
	if prev, ok := ix.entityAt[e]; ok {
		delete(ix.occupants[prev], e)
		delete(ix.entityAt, e)
	}
}

// PositionOf returns the cell e currently occupies, if any.
func (ix *Index) PositionOf(e ecs.EntityID) (CellKey, bool) {
	key, ok := ix.entityAt[e]
	return key, ok
}

// EntitiesAt returns every entity occupying key, sorted.
func (ix *Index) EntitiesAt(key CellKey) []ecs.EntityID {
	bucket := ix.occupants[key]
	ids := make([]ecs.EntityID, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Cells returns every installed cell key in unspecified order (map
// iteration order; callers needing determinism sort themselves using
// whatever key fields matter to them).
func (ix *Index) Cells() []CellKey {
	keys := make([]CellKey, 0, len(ix.cells))
	for k := range ix.cells {
		keys = append(keys, k)
	}
	return keys
}

// RemoveCell drops key and every edge referencing it, used to revert a
// partially-installed generated map when a postprocessor fails.
func (ix *Index) RemoveCell(key CellKey) {
	delete(ix.cells, key)
	delete(ix.neighbors, key)
	delete(ix.seq, key)
	for k, neighbors := range ix.neighbors {
		out := neighbors[:0]
		for _, n := range neighbors {
			if n != key {
				out = append(out, n)
			}
		}
		ix.neighbors[k] = out
	}
	for e, at := range ix.entityAt {
		if at == key {
			delete(ix.entityAt, e)
		}
	}
	delete(ix.occupants, key)
}
