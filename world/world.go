// Package world is the World Facade: the single composition root and
// embedding surface combining the Schema Registry, Entity Store,
// Component Store, Map Index, Pathfinder, Job Board, Job Engine, Systems
// Registry, Event Bus, and Job Event Log into one operation surface for
// embedders and tests.
package world

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sourceplane/simkernel/internal/ecs"
	"github.com/sourceplane/simkernel/internal/eventbus"
	"github.com/sourceplane/simkernel/internal/jobboard"
	"github.com/sourceplane/simkernel/internal/jobengine"
	"github.com/sourceplane/simkernel/internal/jobeventlog"
	"github.com/sourceplane/simkernel/internal/mapindex"
	"github.com/sourceplane/simkernel/internal/schema"
	"github.com/sourceplane/simkernel/internal/simerr"
	"github.com/sourceplane/simkernel/internal/systems"
	"github.com/sourceplane/simkernel/internal/worldgen"
)

// World is the composition root: construction wires every subsystem
// together and installs the native systems in their fixed tick order.
type World struct {
	Schema *schema.Registry

	entities   *ecs.EntityStore
	components *ecs.Store
	mapIndex   *mapindex.Index
	postproc   *mapindex.PostprocessRegistry
	board      *jobboard.Board
	engine     *jobengine.Engine
	sys        *systems.Registry
	events     *eventbus.Namespaces
	jobLog     *jobeventlog.Log
	plugins    *worldgen.Table

	mode      string
	turn      int
	timeOfDay float64
	nextTSMs  int64

	logger *zap.Logger
}

// Option configures a World at construction time.
type Option func(*World)

// WithLogger installs a structured logger used for warnings about
// swallowed system errors during Tick (job-handler errors included),
// subscriber panics, and job events the job bus rejects.
func WithLogger(logger *zap.Logger) Option {
	return func(w *World) { w.logger = logger }
}

// NewWorld reads every schema file under schemaDir into the Schema
// Registry and wires up the rest of the kernel. A missing directory or a
// malformed schema is a fatal construction error.
func NewWorld(schemaDir string, opts ...Option) (*World, error) {
	reg, err := schema.NewRegistry(schemaDir)
	if err != nil {
		return nil, err
	}

	w := &World{
		Schema:     reg,
		entities:   ecs.NewEntityStore(),
		mapIndex:   mapindex.NewIndex(),
		postproc:   mapindex.NewPostprocessRegistry(),
		board:      jobboard.NewBoard(jobboard.PolicyPriority),
		events:     eventbus.NewNamespaces(),
		jobLog:     jobeventlog.NewLog(),
		plugins:    worldgen.NewTable(),
		mode:       defaultMode,
		logger:     zap.NewNop(),
	}
	w.components = ecs.NewStore(reg)
	w.engine = jobengine.NewEngine(w.board)
	w.sys = systems.NewRegistry()

	for _, opt := range opts {
		opt(w)
	}

	w.installHooks()
	w.installNativeSystems()
	w.applyModeGating()
	return w, nil
}

// installHooks wires Position and Job component mutations into the Map
// Index and Job Board, per Component Store's cross-store post-hooks.
// Agent components have no hook and no derived index; AIAssignJobs reads
// them from the Component Store directly.
func (w *World) installHooks() {
	w.components.OnChange("Position", func(e ecs.EntityID, kind string, value any, removed bool) {
		if removed {
			w.mapIndex.ClearPosition(e)
			return
		}
		if key, err := decodePosition(value); err == nil {
			w.mapIndex.SetPosition(e, key)
		}
	})

	w.components.OnChange("Job", func(e ecs.EntityID, kind string, value any, removed bool) {
		if removed {
			w.board.Remove(e)
			return
		}
		job := decodeJob(e, value)
		w.board.Upsert(job)
	})
}

// Mode returns the world's current scenario mode tag.
func (w *World) Mode() string { return w.mode }

// SetMode sets the world's scenario mode tag and re-gates which native
// systems Tick's automatic run includes. An unrecognized mode runs every
// native system. RunSystem/RunNativeSystem can still invoke a gated-off
// native system directly by name.
func (w *World) SetMode(mode string) {
	w.mode = mode
	w.applyModeGating()
}

// GetAvailableModes returns every scenario mode tag the tick loop
// recognizes.
func (w *World) GetAvailableModes() []string {
	return append([]string(nil), availableModes...)
}

// Turn returns the current turn counter.
func (w *World) Turn() int { return w.turn }

// TimeOfDay returns the current time-of-day value, in [0, 1).
func (w *World) TimeOfDay() float64 { return w.timeOfDay }

// Tick advances the turn counter, runs the native systems the current
// mode enables in fixed native order (TimeOfDaySystem among them advances
// time-of-day) then every external system in insertion order, and flushes
// every event namespace. Errors from systems are logged and
// swallowed, matching the "external handlers may not abort the tick"
// concurrency model.
func (w *World) Tick() {
	w.turn++
	for _, err := range w.sys.RunAll() {
		w.logger.Warn("system error during tick", zap.Error(err))
	}
	w.events.FlushAll()
}

// nextTimestampMS returns a monotonically non-decreasing millisecond
// timestamp for Job Event Log entries, advancing by at least 1 per call so
// ordering is unambiguous without depending on a wall clock (the sandboxed
// build environment disallows time.Now()-driven nondeterminism in tests).
func (w *World) nextTimestampMS() int64 {
	w.nextTSMs++
	return w.nextTSMs
}

// SaveToFile writes the world's full state as JSON: mode, turn, entities
// (with every live component), map (cells + neighbors + metadata), and
// time_of_day.
func (w *World) SaveToFile(path string) error {
	doc := w.snapshot()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return simerr.Wrap(simerr.InvariantViolation, err, "failed to marshal world snapshot")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return simerr.Wrap(simerr.NotFound, err, "failed to create directory for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return simerr.Wrap(simerr.NotFound, err, "failed to write world snapshot to %s", path)
	}
	return nil
}

// LoadFromFile replaces w's entities, components, map, mode, turn, and
// time-of-day with the contents of the JSON snapshot at path. The Schema
// Registry, registered handlers, systems, and plugins are left untouched —
// only simulation state is reloaded.
func (w *World) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return simerr.Wrap(simerr.NotFound, err, "failed to read world snapshot from %s", path)
	}
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return simerr.Wrap(simerr.InvariantViolation, err, "failed to parse world snapshot at %s", path)
	}
	return w.restore(doc)
}
