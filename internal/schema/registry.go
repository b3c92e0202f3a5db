// Package schema loads JSON-schema-subset definitions for component kinds
// and validates component values against them.
//
// Schemas are authored as YAML (so authors can use comments and anchors),
// parsed to interface{}, then re-marshaled to JSON for
// github.com/santhosh-tekuri/jsonschema/v5.
package schema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/sourceplane/simkernel/internal/simerr"
)

// Registry holds one compiled schema per component kind.
type Registry struct {
	schemas map[string]*jsonschema.Schema
	raw     map[string]map[string]any
}

// NewRegistry loads every *.schema.yaml (or .yml/.json) file under dir.
// A missing directory or a malformed schema is a fatal construction error.
func NewRegistry(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, simerr.Wrap(simerr.NotFound, err, "schema directory %s could not be read", dir)
	}

	reg := &Registry{
		schemas: make(map[string]*jsonschema.Schema),
		raw:     make(map[string]map[string]any),
	}

	compiler := jsonschema.NewCompiler()

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !isSchemaFile(name) {
			continue
		}
		kind := kindFromFilename(name)
		path := filepath.Join(dir, name)

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, simerr.Wrap(simerr.NotFound, err, "failed to read schema file %s", path)
		}

		var obj any
		if err := yaml.Unmarshal(data, &obj); err != nil {
			return nil, simerr.Wrap(simerr.SchemaViolation, err, "failed to parse schema file %s", path)
		}

		jsonData, err := json.Marshal(obj)
		if err != nil {
			return nil, simerr.Wrap(simerr.SchemaViolation, err, "failed to marshal schema %s to JSON", kind)
		}

		uri := "kernel://" + kind + "/schema.json"
		if err := compiler.AddResource(uri, strings.NewReader(string(jsonData))); err != nil {
			return nil, simerr.Wrap(simerr.SchemaViolation, err, "failed to register schema %s", kind)
		}
		compiled, err := compiler.Compile(uri)
		if err != nil {
			return nil, simerr.Wrap(simerr.SchemaViolation, err, "failed to compile schema %s", kind)
		}

		reg.schemas[kind] = compiled
		if m, ok := obj.(map[string]any); ok {
			reg.raw[kind] = m
		}
	}

	if len(reg.schemas) == 0 {
		return nil, simerr.New(simerr.NotFound, "no schema files found in %s", dir)
	}

	return reg, nil
}

func isSchemaFile(name string) bool {
	for _, ext := range []string{".schema.yaml", ".schema.yml", ".schema.json"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func kindFromFilename(name string) string {
	for _, ext := range []string{".schema.yaml", ".schema.yml", ".schema.json"} {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// ListComponents returns every registered component kind, sorted.
func (r *Registry) ListComponents() []string {
	names := make([]string, 0, len(r.schemas))
	for k := range r.schemas {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// GetSchema returns the raw (decoded) schema document for a kind.
func (r *Registry) GetSchema(kind string) (map[string]any, error) {
	raw, ok := r.raw[kind]
	if !ok {
		return nil, simerr.New(simerr.UnknownKind, "unknown component kind %q", kind)
	}
	return raw, nil
}

// Validate checks value against kind's schema. Unknown kinds are rejected.
func (r *Registry) Validate(kind string, value any) error {
	compiled, ok := r.schemas[kind]
	if !ok {
		return simerr.New(simerr.UnknownKind, "unknown component kind %q", kind)
	}
	if err := compiled.Validate(value); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			path, reason := firstCause(verr)
			return simerr.WithPath(simerr.SchemaViolation, path, "%s", reason)
		}
		return simerr.Wrap(simerr.SchemaViolation, err, "validation failed for %s", kind)
	}
	return nil
}

// firstCause walks to the deepest validation cause so the reported path
// points at the actual offending node rather than the top-level document.
func firstCause(verr *jsonschema.ValidationError) (path, reason string) {
	cur := verr
	for len(cur.Causes) > 0 {
		cur = cur.Causes[0]
	}
	return cur.InstanceLocation, cur.Message
}
