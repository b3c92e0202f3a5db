// Package mapindex implements the Map Index: cell topology, explicit
// adjacency, per-cell metadata, and the reverse position index consulted
// by the Component Store's Position hook.
//
// Adjacency is tracked as a map[CellKey][]CellKey, a general neighbor
// graph over cell keys.
package mapindex

import "fmt"

// Topology names the coordinate system a CellKey uses.
type Topology string

const (
	Square Topology = "Square"
	Hex    Topology = "Hex"
)

// CellKey identifies one map cell. Square cells use X/Y/Z; hex cells use
// Q/R/Z (axial coordinates, Z as an optional layer/elevation).
type CellKey struct {
	Topology Topology
	A, B, C  int
}

func NewSquareKey(x, y, z int) CellKey { return CellKey{Topology: Square, A: x, B: y, C: z} }
func NewHexKey(q, r, z int) CellKey    { return CellKey{Topology: Hex, A: q, B: r, C: z} }

func (k CellKey) String() string {
	return fmt.Sprintf("%s(%d,%d,%d)", k.Topology, k.A, k.B, k.C)
}

// Wire is the externally-tagged JSON shape used on the wire:
// {"Square":{"x":..,"y":..,"z":..}} or {"Hex":{"q":..,"r":..,"z":..}}.
type Wire map[string]map[string]int

// ToWire converts a CellKey to its tagged-union wire representation.
func (k CellKey) ToWire() Wire {
	switch k.Topology {
	case Hex:
		return Wire{"Hex": {"q": k.A, "r": k.B, "z": k.C}}
	default:
		return Wire{"Square": {"x": k.A, "y": k.B, "z": k.C}}
	}
}

// FromWire parses the tagged-union wire representation back into a CellKey.
func FromWire(w Wire) (CellKey, error) {
	if v, ok := w["Square"]; ok {
		return NewSquareKey(v["x"], v["y"], v["z"]), nil
	}
	if v, ok := w["Hex"]; ok {
		return NewHexKey(v["q"], v["r"], v["z"]), nil
	}
	return CellKey{}, fmt.Errorf("unrecognized cell key wire shape: %v", w)
}
