// Package worldgen holds the process-wide worldgen plugin table: a
// name -> plugin-function registry with register/list/invoke operations.
// The generation algorithms themselves are the embedder's concern; only
// the table that holds them is implemented here.
package worldgen

import (
	"sort"
	"sync"

	"github.com/sourceplane/simkernel/internal/simerr"
)

// Plugin generates or mutates map content given an opaque, plugin-defined
// argument and returns an opaque, plugin-defined result.
type Plugin func(args any) (any, error)

// Table is a process-wide registry of named worldgen plugins.
type Table struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// global is the process-wide table RegisterPlugin/ListPlugins/InvokePlugin
// operate on.
var global = NewTable()

func NewTable() *Table {
	return &Table{plugins: make(map[string]Plugin)}
}

// RegisterPlugin installs plugin under name, replacing any existing
// registration.
func RegisterPlugin(name string, plugin Plugin) { global.Register(name, plugin) }

// ListPlugins returns every registered plugin name, sorted.
func ListPlugins() []string { return global.List() }

// InvokePlugin runs the plugin registered under name.
func InvokePlugin(name string, args any) (any, error) { return global.Invoke(name, args) }

// UnregisterAll clears the process-wide table, for explicit teardown
// between test runs or embedder reconfiguration.
func UnregisterAll() { global.Clear() }

func (t *Table) Register(name string, plugin Plugin) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.plugins[name] = plugin
}

func (t *Table) Unregister(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.plugins, name)
}

func (t *Table) List() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.plugins))
	for n := range t.plugins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (t *Table) Invoke(name string, args any) (any, error) {
	t.mu.RLock()
	plugin, ok := t.plugins[name]
	t.mu.RUnlock()
	if !ok {
		return nil, simerr.New(simerr.NotFound, "no worldgen plugin registered as %q", name)
	}
	result, err := plugin(args)
	if err != nil {
		return nil, simerr.Wrap(simerr.PluginError, err, "worldgen plugin %q failed", name)
	}
	return result, nil
}

func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.plugins = make(map[string]Plugin)
}
