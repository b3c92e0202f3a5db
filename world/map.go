package world

import (
	"encoding/json"

	"github.com/sourceplane/simkernel/internal/ecs"
	"github.com/sourceplane/simkernel/internal/mapindex"
	"github.com/sourceplane/simkernel/internal/pathfinder"
	"github.com/sourceplane/simkernel/internal/simerr"
)

// decodePosition extracts a CellKey from a Position component's tagged-
// union wire value ({"Square":{...}} or {"Hex":{...}}).
func decodePosition(value any) (mapindex.CellKey, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return mapindex.CellKey{}, simerr.New(simerr.InvariantViolation, "position value has unexpected shape")
	}
	wire := make(mapindex.Wire)
	for variant, fields := range m {
		fm, ok := fields.(map[string]any)
		if !ok {
			continue
		}
		coords := make(map[string]int)
		for k, v := range fm {
			if f, ok := v.(float64); ok {
				coords[k] = int(f)
			}
		}
		wire[variant] = coords
	}
	return mapindex.FromWire(wire)
}

// AddCell installs key with the given walkable flag and metadata extras.
func (w *World) AddCell(key mapindex.CellKey, walkable bool, extra map[string]any) {
	w.mapIndex.AddCell(key, mapindex.CellMeta{Walkable: walkable, Extra: extra})
}

// AddNeighbor registers a one-way edge a -> b. Not automatically
// symmetric: call twice for a two-way edge.
func (w *World) AddNeighbor(a, b mapindex.CellKey) { w.mapIndex.AddNeighbor(a, b) }

// SetCellMetadata replaces key's metadata.
func (w *World) SetCellMetadata(key mapindex.CellKey, walkable bool, extra map[string]any) {
	w.mapIndex.AddCell(key, mapindex.CellMeta{Walkable: walkable, Extra: extra})
}

// GetCellMetadata returns key's metadata.
func (w *World) GetCellMetadata(key mapindex.CellKey) (mapindex.CellMeta, error) {
	return w.mapIndex.CellMetadata(key)
}

// GetNeighbors returns the cells reachable from key by one edge.
func (w *World) GetNeighbors(key mapindex.CellKey) []mapindex.CellKey {
	return w.mapIndex.Neighbors(key)
}

// CellCount returns the number of installed cells.
func (w *World) CellCount() int { return len(w.mapIndex.Cells()) }

// AllCells returns every installed cell key.
func (w *World) AllCells() []mapindex.CellKey { return w.mapIndex.Cells() }

// EntitiesInCell returns every entity currently positioned at key.
func (w *World) EntitiesInCell(key mapindex.CellKey) []ecs.EntityID {
	return w.mapIndex.EntitiesAt(key)
}

// RegisterMapPostprocessor installs a postprocessor run after every
// successful ApplyGeneratedMap/ApplyChunk.
func (w *World) RegisterMapPostprocessor(p mapindex.Postprocessor) { w.postproc.RegisterPostprocessor(p) }

// RegisterMapValidator installs a validator consulted before installing a
// generated map/chunk.
func (w *World) RegisterMapValidator(v mapindex.Validator) { w.postproc.RegisterValidator(v) }

// ClearMapPostprocessors removes every registered postprocessor.
func (w *World) ClearMapPostprocessors() { w.postproc.ClearPostprocessors() }

// ClearMapValidators removes every registered validator.
func (w *World) ClearMapValidators() { w.postproc.ClearValidators() }

// generatedCell is one decoded cell from an apply_generated_map/
// apply_chunk wire payload.
type generatedCell struct {
	Key       mapindex.CellKey
	Walkable  bool
	Neighbors []mapindex.CellKey
	Extra     map[string]any
}

// ApplyGeneratedMap decodes data as a map-generation payload
// (`{"topology":"square"|"hex","cells":[{x,y,z,neighbors,...}, ...]}`,
// or the q/r/z shape for hex), validates it against the Map schema, runs
// every registered validator, installs the cells and their neighbor
// edges, then runs every registered postprocessor, in that order.
// Aborting at schema validation or a rejecting validator leaves the
// index untouched; a postprocessor error reverts the cells just
// installed.
func (w *World) ApplyGeneratedMap(data []byte) error {
	cells, err := w.decodeAndValidateMap(data)
	if err != nil {
		return err
	}

	keys := make([]mapindex.CellKey, len(cells))
	for i, c := range cells {
		keys[i] = c.Key
	}

	if !w.postproc.RunValidators(w.mapIndex, keys) {
		return simerr.New(simerr.ValidationRejected, "map validator failed")
	}

	for _, c := range cells {
		w.mapIndex.AddCell(c.Key, mapindex.CellMeta{Walkable: c.Walkable, Extra: c.Extra})
	}
	for _, c := range cells {
		for _, n := range c.Neighbors {
			w.mapIndex.AddNeighbor(c.Key, n)
		}
	}

	if err := w.postproc.RunPostprocessors(w.mapIndex, keys); err != nil {
		for _, k := range keys {
			w.mapIndex.RemoveCell(k)
		}
		return simerr.Wrap(simerr.PluginError, err, "map postprocessor failed")
	}
	return nil
}

// ApplyChunk applies a partial map update using the same
// decode/validate/install/postprocess sequence as ApplyGeneratedMap.
func (w *World) ApplyChunk(data []byte) error {
	return w.ApplyGeneratedMap(data)
}

// decodeAndValidateMap parses data, validates it against the Map schema,
// and decodes its cells into the topology's coordinate shape. Missing
// required fields surface as a SchemaViolation, per the documented
// "missing required fields -> validation error" contract.
func (w *World) decodeAndValidateMap(data []byte) ([]generatedCell, error) {
	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, simerr.Wrap(simerr.SchemaViolation, err, "malformed map payload")
	}
	if err := w.Schema.Validate("Map", parsed); err != nil {
		return nil, err
	}

	topology, _ := parsed["topology"].(string)
	rawCells, _ := parsed["cells"].([]any)
	cells := make([]generatedCell, 0, len(rawCells))
	for _, rc := range rawCells {
		m, ok := rc.(map[string]any)
		if !ok {
			continue
		}
		key, err := cellKeyFromFlatWire(topology, m)
		if err != nil {
			return nil, err
		}

		walkable := true
		if wv, ok := m["walkable"].(bool); ok {
			walkable = wv
		}

		var neighbors []mapindex.CellKey
		if rawNeighbors, ok := m["neighbors"].([]any); ok {
			for _, rn := range rawNeighbors {
				nm, ok := rn.(map[string]any)
				if !ok {
					continue
				}
				nk, err := cellKeyFromFlatWire(topology, nm)
				if err != nil {
					return nil, err
				}
				neighbors = append(neighbors, nk)
			}
		}

		extra := make(map[string]any)
		for k, v := range m {
			switch k {
			case "x", "y", "z", "q", "r", "neighbors", "walkable":
			default:
				extra[k] = v
			}
		}

		cells = append(cells, generatedCell{Key: key, Walkable: walkable, Neighbors: neighbors, Extra: extra})
	}
	return cells, nil
}

// cellKeyFromFlatWire builds a CellKey from a cell object's flat
// per-topology coordinate fields (x/y/z for square, q/r/z for hex), the
// shape apply_generated_map's wire payload uses (unlike the nested
// tagged-union shape Position components use).
func cellKeyFromFlatWire(topology string, m map[string]any) (mapindex.CellKey, error) {
	wire := make(mapindex.Wire)
	switch topology {
	case "hex":
		wire["Hex"] = map[string]int{"q": intOf(m["q"]), "r": intOf(m["r"]), "z": intOf(m["z"])}
	default:
		wire["Square"] = map[string]int{"x": intOf(m["x"]), "y": intOf(m["y"]), "z": intOf(m["z"])}
	}
	return mapindex.FromWire(wire)
}

func intOf(v any) int {
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return 0
}

// FindPath returns the lowest-cost walkable path from start to goal, or
// nil with no error if unreachable. It never raises.
func (w *World) FindPath(start, goal mapindex.CellKey) []mapindex.CellKey {
	path, err := pathfinder.FindPath(w.mapIndex, start, goal, nil)
	if err != nil {
		return nil
	}
	return path
}
