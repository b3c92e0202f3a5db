package world

import (
	"github.com/sourceplane/simkernel/internal/eventbus"
	"github.com/sourceplane/simkernel/internal/jobboard"
	"github.com/sourceplane/simkernel/internal/jobengine"
	"github.com/sourceplane/simkernel/internal/systems"
)

// timeOfDayStep is the fraction of a full day-cycle TimeOfDaySystem
// advances per tick.
const timeOfDayStep = 1.0 / 24.0

// defaultMode is the scenario mode a newly constructed World starts in.
const defaultMode = "colony"

// availableModes are the scenario mode tags the tick loop recognizes, in
// declaration order.
var availableModes = []string{"colony", "roguelike"}

// allNativeSystemNames lists every native system SetMode's gating
// considers, in no particular order.
var allNativeSystemNames = []string{
	systems.JobSystem,
	systems.ResourceReservationSystem,
	systems.DecaySystem,
	systems.DeathsSystem,
	systems.TimeOfDaySystem,
}

// modeNativeSystems maps a recognized mode to the subset of native
// systems enabled in Tick's automatic run. colony is the full
// colony-simulation system set. roguelike is a single-character
// dungeon-crawl variant that drops the job economy (JobSystem,
// ResourceReservationSystem) and the day/night cycle (TimeOfDaySystem),
// keeping only the survival systems (DecaySystem, DeathsSystem).
var modeNativeSystems = map[string][]string{
	"colony": {
		systems.JobSystem,
		systems.ResourceReservationSystem,
		systems.DecaySystem,
		systems.DeathsSystem,
		systems.TimeOfDaySystem,
	},
	"roguelike": {
		systems.DecaySystem,
		systems.DeathsSystem,
	},
}

// applyModeGating enables, in the Systems Registry, exactly the native
// systems modeNativeSystems lists for w.mode. An unrecognized mode enables
// every native system, matching the pre-mode-gating behavior.
func (w *World) applyModeGating() {
	set, recognized := modeNativeSystems[w.mode]
	enabled := make(map[string]bool, len(set))
	for _, name := range set {
		enabled[name] = true
	}
	for _, name := range allNativeSystemNames {
		w.sys.SetEnabled(name, !recognized || enabled[name])
	}
}

// installNativeSystems wires the five native systems into the Systems
// Registry in their fixed tick order.
func (w *World) installNativeSystems() {
	w.sys.Register(systems.JobSystem, w.runJobSystem)
	w.sys.Register(systems.ResourceReservationSystem, w.runResourceReservationSystem)
	w.sys.Register(systems.DecaySystem, w.runDecaySystem)
	w.sys.Register(systems.DeathsSystem, w.runDeathsSystem)
	w.sys.Register(systems.TimeOfDaySystem, w.runTimeOfDaySystem)
}

// RegisterSystem installs an externally-defined system, run after every
// native system in registration order.
func (w *World) RegisterSystem(name string, fn func() []error) { w.sys.Register(name, fn) }

// RunSystem runs a single registered system (native or external) by name,
// outside the normal tick order.
func (w *World) RunSystem(name string) []error {
	sys, err := w.sys.Get(name)
	if err != nil {
		return []error{err}
	}
	return sys()
}

// RunNativeSystem runs a single native system by name, outside the normal
// tick order. JobSystem advances every active job exactly once per call,
// with no per-job per-tick budget.
func (w *World) RunNativeSystem(name string) []error { return w.RunSystem(name) }

func (w *World) runJobSystem() []error {
	var errs []error
	for _, job := range w.board.ActiveJobs() {
		prevStatus := job.Status
		err := w.engine.AdvanceJob(job)
		if err != nil {
			errs = append(errs, err)
		}
		if job.Status != prevStatus {
			eventType := stateTransitionEvent(job.Status)
			if eventType == "job_failed" && err != nil {
				w.logJobEventWithMessage(eventType, job, err.Error())
			} else {
				w.logJobEvent(eventType, job)
			}
		}
	}
	return errs
}

func stateTransitionEvent(status jobboard.Status) string {
	switch status {
	case jobboard.Complete:
		return "job_completed"
	case jobboard.Failed:
		return "job_failed"
	default:
		return "job_state_changed"
	}
}

func (w *World) runResourceReservationSystem() []error {
	var errs []error
	source := w.stockpileSource()
	for _, job := range w.board.ActiveJobs() {
		if job.Status != jobboard.Pending || len(job.ReservedResources) > 0 {
			continue
		}
		reqs := decodeRequirements(job.Metadata["resource_requirements"])
		if len(reqs) == 0 {
			continue
		}
		if err := w.engine.ReserveJobResources(job, reqs, source); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func decodeRequirements(v any) []jobengine.Requirement {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]jobengine.Requirement, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		kind, _ := m["kind"].(string)
		amount, _ := m["amount"].(float64)
		if kind != "" {
			out = append(out, jobengine.Requirement{Kind: kind, Amount: amount})
		}
	}
	return out
}

func (w *World) runDecaySystem() []error {
	var errs []error
	for _, e := range w.components.EntitiesWith("Decay") {
		v, err := w.components.Get(e, "Decay")
		if err != nil {
			continue
		}
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		rate, _ := m["rate"].(float64)
		amount, _ := m["amount"].(float64)
		amount -= rate
		if amount <= 0 {
			w.Despawn(e)
			w.events.ECS.Publish(eventbus.Event{Type: "entity_decayed", Payload: map[string]any{"entity": uint64(e)}})
			continue
		}
		m["amount"] = amount
		if err := w.components.Set(e, "Decay", m); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (w *World) runDeathsSystem() []error {
	var errs []error
	for _, e := range w.components.EntitiesWith("Health") {
		v, err := w.components.Get(e, "Health")
		if err != nil {
			continue
		}
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		hp, _ := m["hp"].(float64)
		if hp > 0 {
			continue
		}
		w.Despawn(e)
		w.events.ECS.Publish(eventbus.Event{Type: "entity_died", Payload: map[string]any{"entity": uint64(e)}})
	}
	return errs
}

func (w *World) runTimeOfDaySystem() []error {
	w.timeOfDay += timeOfDayStep
	if w.timeOfDay >= 1.0 {
		w.timeOfDay -= 1.0
	}
	return nil
}
