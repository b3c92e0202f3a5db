// Package systems implements the Systems Registry: an ordered pipeline of
// named tick steps. Native systems always run first, in a fixed order;
// externally registered systems run after, in registration order.
package systems

import "github.com/sourceplane/simkernel/internal/simerr"

// Names of the native systems, in their fixed run order.
const (
	JobSystem                 = "JobSystem"
	ResourceReservationSystem = "ResourceReservationSystem"
	DecaySystem               = "DecaySystem"
	DeathsSystem              = "DeathsSystem"
	TimeOfDaySystem           = "TimeOfDaySystem"
)

// nativeOrder is the fixed order native systems run in, regardless of the
// order the world facade registers them.
var nativeOrder = []string{
	JobSystem,
	ResourceReservationSystem,
	DecaySystem,
	DeathsSystem,
	TimeOfDaySystem,
}

// System is one tick step. It returns every error it encountered; a
// system that failed partway still lets later systems run.
type System func() []error

// Registry holds named systems and runs them in tick order: the fixed
// native order first (skipping any native name that was never
// registered), then every externally registered system in the order it
// was added.
type Registry struct {
	systems  map[string]System
	external []string
	disabled map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{systems: make(map[string]System), disabled: make(map[string]bool)}
}

// SetEnabled enables or disables name's participation in RunAll without
// removing it from the registry — Get/RunSystem can still invoke a
// disabled system directly by name. Used to gate which native systems a
// mode's automatic tick runs.
func (r *Registry) SetEnabled(name string, enabled bool) {
	if enabled {
		delete(r.disabled, name)
	} else {
		r.disabled[name] = true
	}
}

// Register installs or replaces the system named name. Re-registering an
// existing external name does not change its position; registering a
// native name by this constant does not add it to the external order
// (natives always run in nativeOrder).
func (r *Registry) Register(name string, sys System) {
	_, alreadyExternal := r.systems[name]
	isNative := isNativeName(name)
	r.systems[name] = sys
	if !isNative && !alreadyExternal {
		r.external = append(r.external, name)
	}
}

// Unregister removes a system entirely.
func (r *Registry) Unregister(name string) {
	delete(r.systems, name)
	for i, n := range r.external {
		if n == name {
			r.external = append(r.external[:i], r.external[i+1:]...)
			break
		}
	}
}

// RunAll runs every registered system in tick order and returns the
// concatenation of every error any of them produced.
func (r *Registry) RunAll() []error {
	var all []error
	for _, name := range nativeOrder {
		if r.disabled[name] {
			continue
		}
		if sys, ok := r.systems[name]; ok {
			all = append(all, sys()...)
		}
	}
	for _, name := range r.external {
		if sys, ok := r.systems[name]; ok {
			all = append(all, sys()...)
		}
	}
	return all
}

// Get returns the system registered under name.
func (r *Registry) Get(name string) (System, error) {
	sys, ok := r.systems[name]
	if !ok {
		return nil, simerr.New(simerr.NotFound, "no system registered as %q", name)
	}
	return sys, nil
}

func isNativeName(name string) bool {
	for _, n := range nativeOrder {
		if n == name {
			return true
		}
	}
	return false
}
