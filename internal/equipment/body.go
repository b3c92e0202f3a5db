package equipment

import (
	"github.com/sourceplane/simkernel/internal/ecs"
	"github.com/sourceplane/simkernel/internal/simerr"
)

const bodyKind = "Body"

// Part is one node of a body's recursive part tree.
type Part struct {
	Name  string `json:"name"`
	Parts []Part `json:"parts,omitempty"`
}

// GetBody returns the decoded body-part tree for e.
func GetBody(store *ecs.Store, e ecs.EntityID) ([]Part, error) {
	v, err := store.Get(e, bodyKind)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, simerr.New(simerr.InvariantViolation, "body component has unexpected shape")
	}
	raw, _ := m["parts"].([]any)
	return decodeParts(raw), nil
}

// SetBody replaces e's entire body-part tree.
func SetBody(store *ecs.Store, e ecs.EntityID, parts []Part) error {
	return store.Set(e, bodyKind, map[string]any{"parts": encodeParts(parts)})
}

// AddBodyPart attaches a new part named name under the part at parentPath
// (a sequence of part names from the root; an empty path attaches at the
// top level).
func AddBodyPart(store *ecs.Store, e ecs.EntityID, parentPath []string, name string) error {
	parts, err := GetBody(store, e)
	if err != nil {
		return err
	}
	if len(parentPath) == 0 {
		parts = append(parts, Part{Name: name})
		return SetBody(store, e, parts)
	}
	parent := findPart(parts, parentPath)
	if parent == nil {
		return simerr.New(simerr.NotFound, "body part path %v not found", parentPath)
	}
	parent.Parts = append(parent.Parts, Part{Name: name})
	return SetBody(store, e, parts)
}

// RemoveBodyPart deletes the part at path (a sequence of part names from
// the root).
func RemoveBodyPart(store *ecs.Store, e ecs.EntityID, path []string) error {
	if len(path) == 0 {
		return simerr.New(simerr.InvariantViolation, "body part path must not be empty")
	}
	parts, err := GetBody(store, e)
	if err != nil {
		return err
	}
	newParts, removed := removeAt(parts, path)
	if !removed {
		return simerr.New(simerr.NotFound, "body part path %v not found", path)
	}
	return SetBody(store, e, newParts)
}

// GetBodyPart finds and returns the part at path.
func GetBodyPart(store *ecs.Store, e ecs.EntityID, path []string) (*Part, error) {
	parts, err := GetBody(store, e)
	if err != nil {
		return nil, err
	}
	p := findPart(parts, path)
	if p == nil {
		return nil, simerr.New(simerr.NotFound, "body part path %v not found", path)
	}
	return p, nil
}

// findPart walks the tree depth-first following path to locate a node.
func findPart(parts []Part, path []string) *Part {
	if len(path) == 0 {
		return nil
	}
	for i := range parts {
		if parts[i].Name != path[0] {
			continue
		}
		if len(path) == 1 {
			return &parts[i]
		}
		return findPart(parts[i].Parts, path[1:])
	}
	return nil
}

func removeAt(parts []Part, path []string) ([]Part, bool) {
	for i := range parts {
		if parts[i].Name != path[0] {
			continue
		}
		if len(path) == 1 {
			return append(parts[:i:i], parts[i+1:]...), true
		}
		updated, ok := removeAt(parts[i].Parts, path[1:])
		if !ok {
			return parts, false
		}
		parts[i].Parts = updated
		return parts, true
	}
	return parts, false
}

func decodeParts(raw []any) []Part {
	out := make([]Part, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		name, _ := m["name"].(string)
		childRaw, _ := m["parts"].([]any)
		out = append(out, Part{Name: name, Parts: decodeParts(childRaw)})
	}
	return out
}

func encodeParts(parts []Part) []any {
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		out = append(out, map[string]any{"name": p.Name, "parts": encodeParts(p.Parts)})
	}
	return out
}
