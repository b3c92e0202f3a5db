package world

import "github.com/sourceplane/simkernel/internal/worldgen"

// RegisterWorldgenPlugin installs plugin under name on this world's
// plugin table.
func (w *World) RegisterWorldgenPlugin(name string, plugin worldgen.Plugin) {
	w.plugins.Register(name, plugin)
}

// ListWorldgenPlugins returns every registered plugin name.
func (w *World) ListWorldgenPlugins() []string { return w.plugins.List() }

// InvokeWorldgenPlugin runs the plugin registered under name.
func (w *World) InvokeWorldgenPlugin(name string, args any) (any, error) {
	return w.plugins.Invoke(name, args)
}

// ClearWorldgenPlugins removes every registered plugin from this world.
func (w *World) ClearWorldgenPlugins() { w.plugins.Clear() }
