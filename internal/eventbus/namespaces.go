package eventbus

import "github.com/sourceplane/simkernel/internal/simerr"

// jobLifecycleTypes are the only event types the job-lifecycle namespace
// accepts.
var jobLifecycleTypes = map[string]bool{
	"job_assigned":      true,
	"job_completed":     true,
	"job_cancelled":     true,
	"job_failed":        true,
	"job_state_changed": true,
}

// Namespaces bundles the three buses the World Facade exposes: a generic
// bus for embedder-defined events, an ECS-native bus for entity/component
// lifecycle events, and a restricted bus that only accepts job-lifecycle
// event types.
type Namespaces struct {
	Generic *Bus
	ECS     *Bus
	Jobs    *restrictedBus
}

func NewNamespaces() *Namespaces {
	return &Namespaces{
		Generic: NewBus(),
		ECS:     NewBus(),
		Jobs:    &restrictedBus{Bus: NewBus()},
	}
}

// FlushAll swaps every namespace's buffers in a fixed order: ECS, Jobs,
// then Generic. Order only matters to subscribers that cross namespaces
// within a single tick.
func (n *Namespaces) FlushAll() {
	n.ECS.Flush()
	n.Jobs.Flush()
	n.Generic.Flush()
}

// restrictedBus wraps Bus and rejects any Publish outside the
// job-lifecycle type allowlist.
type restrictedBus struct {
	*Bus
}

// Publish overrides Bus.Publish to enforce the allowlist, returning a
// ValidationRejected error for unrecognized types instead of publishing.
func (r *restrictedBus) Publish(evt Event) error {
	if !jobLifecycleTypes[evt.Type] {
		return simerr.New(simerr.ValidationRejected, "event type %q is not a job-lifecycle event", evt.Type)
	}
	r.Bus.Publish(evt)
	return nil
}
