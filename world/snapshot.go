package world

import (
	"sort"
	"strconv"

	"github.com/sourceplane/simkernel/internal/ecs"
	"github.com/sourceplane/simkernel/internal/mapindex"
	"github.com/sourceplane/simkernel/internal/simerr"
)

func entityKey(id ecs.EntityID) string { return strconv.FormatUint(uint64(id), 10) }

func parseEntityKey(s string) (ecs.EntityID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, simerr.Wrap(simerr.InvariantViolation, err, "invalid entity id %q in snapshot", s)
	}
	return ecs.EntityID(n), nil
}

// snapshotDoc is the JSON layout SaveToFile/LoadFromFile exchange:
// {mode, turn, entities, map, time_of_day}.
type snapshotDoc struct {
	Mode       string                      `json:"mode"`
	Turn       int                         `json:"turn"`
	TimeOfDay  float64                     `json:"time_of_day"`
	Entities   map[string]map[string]any   `json:"entities"`
	Map        snapshotMap                 `json:"map"`
}

type snapshotMap struct {
	Topology string             `json:"topology"`
	Cells    []snapshotCell     `json:"cells"`
}

type snapshotCell struct {
	Key       mapindex.Wire    `json:"key"`
	Walkable  bool             `json:"walkable"`
	Neighbors []mapindex.Wire  `json:"neighbors"`
	Extra     map[string]any   `json:"extra,omitempty"`
}

func (w *World) snapshot() snapshotDoc {
	doc := snapshotDoc{Mode: w.mode, Turn: w.turn, TimeOfDay: w.timeOfDay}

	compSnapshot := w.components.Snapshot()
	doc.Entities = make(map[string]map[string]any, len(compSnapshot))
	for _, id := range w.entities.Entities() {
		if job, err := w.board.Get(id); err == nil && compSnapshot[id] != nil {
			compSnapshot[id]["Job"] = encodeJob(job)
		}
		doc.Entities[entityKey(id)] = compSnapshot[id]
	}

	topology := "square"
	cells := w.mapIndex.Cells()
	sort.Slice(cells, func(i, k int) bool { return cellLess(cells[i], cells[k]) })
	for _, key := range cells {
		topology = string(key.Topology)
		meta, _ := w.mapIndex.CellMetadata(key)
		neighborWires := make([]mapindex.Wire, 0)
		for _, n := range w.mapIndex.Neighbors(key) {
			neighborWires = append(neighborWires, n.ToWire())
		}
		doc.Map.Cells = append(doc.Map.Cells, snapshotCell{
			Key:       key.ToWire(),
			Walkable:  meta.Walkable,
			Neighbors: neighborWires,
			Extra:     meta.Extra,
		})
	}
	doc.Map.Topology = topology
	return doc
}

func (w *World) restore(doc snapshotDoc) error {
	w.mode = doc.Mode
	w.turn = doc.Turn
	w.timeOfDay = doc.TimeOfDay
	w.applyModeGating()

	w.entities = ecs.NewEntityStore()
	w.components = ecs.NewStore(w.Schema)
	w.mapIndex = mapindex.NewIndex()
	for _, j := range w.board.AllJobs() {
		w.board.Remove(j.ID)
	}
	w.installHooks()

	for idStr, comps := range doc.Entities {
		id, err := parseEntityKey(idStr)
		if err != nil {
			return err
		}
		w.entities.SpawnAt(id)
		for kind, value := range comps {
			if err := w.components.Set(id, kind, value); err != nil {
				return simerr.Wrap(simerr.SchemaViolation, err, "failed to restore component %s on entity %s", kind, idStr)
			}
		}
	}

	for _, cell := range doc.Map.Cells {
		key, err := mapindex.FromWire(cell.Key)
		if err != nil {
			return simerr.Wrap(simerr.InvariantViolation, err, "failed to restore cell key")
		}
		w.mapIndex.AddCell(key, mapindex.CellMeta{Walkable: cell.Walkable, Extra: cell.Extra})
	}
	for _, cell := range doc.Map.Cells {
		key, _ := mapindex.FromWire(cell.Key)
		for _, nWire := range cell.Neighbors {
			n, err := mapindex.FromWire(nWire)
			if err != nil {
				continue
			}
			w.mapIndex.AddNeighbor(key, n)
		}
	}
	return nil
}

func cellLess(a, b mapindex.CellKey) bool {
	if a.A != b.A {
		return a.A < b.A
	}
	if a.B != b.B {
		return a.B < b.B
	}
	return a.C < b.C
}
