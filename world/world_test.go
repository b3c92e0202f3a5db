package world

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sourceplane/simkernel/internal/jobboard"
	"github.com/sourceplane/simkernel/internal/jobengine"
	"github.com/sourceplane/simkernel/internal/mapindex"
	"github.com/sourceplane/simkernel/internal/systems"
)

func testWorld(t *testing.T) *World {
	t.Helper()
	w, err := NewWorld("../assets/schemas")
	require.NoError(t, err)
	return w
}

// S1: Job completion via native handler.
func TestScenarioJobCompletionViaDefaultHandler(t *testing.T) {
	w := testWorld(t)
	e := w.Spawn()
	require.NoError(t, w.AssignJob(e, "test_job", map[string]any{"category": "testing"}))

	for i := 0; i < 12; i++ {
		w.RunSystem(systems.JobSystem)
		w.UpdateEventBuses()
	}

	completed := w.PollECSEvent("job_completed")
	require.Len(t, completed, 1)
	m := completed[0].(map[string]any)
	require.Equal(t, uint64(e), m["job_id"])
}

// S2: Policy ordering.
func TestScenarioPolicyOrdering(t *testing.T) {
	w := testWorld(t)
	e1, e2, e3 := w.Spawn(), w.Spawn(), w.Spawn()
	require.NoError(t, w.AssignJob(e1, "JobA", map[string]any{"priority": float64(5)}))
	require.NoError(t, w.AssignJob(e2, "JobB", map[string]any{"priority": float64(10)}))
	require.NoError(t, w.AssignJob(e3, "JobC", map[string]any{"priority": float64(1)}))

	ids := func(jobs []*jobboard.Job) []uint64 {
		out := make([]uint64, len(jobs))
		for i, j := range jobs {
			out[i] = uint64(j.ID)
		}
		return out
	}

	require.Equal(t, []uint64{uint64(e2), uint64(e1), uint64(e3)}, ids(w.ListJobs(false)))

	w.SetPolicy(jobboard.PolicyFIFO)
	require.Equal(t, []uint64{uint64(e1), uint64(e2), uint64(e3)}, ids(w.ListJobs(false)))

	w.SetPolicy(jobboard.PolicyLIFO)
	require.Equal(t, []uint64{uint64(e3), uint64(e2), uint64(e1)}, ids(w.ListJobs(false)))
}

// S3: Cancellation filtering.
func TestScenarioCancellationFiltering(t *testing.T) {
	w := testWorld(t)
	e := w.Spawn()
	require.NoError(t, w.AssignJob(e, "TestJob", nil))

	require.NoError(t, w.CancelJob(e))
	job, err := w.GetJob(e)
	require.NoError(t, err)
	require.True(t, job.Cancelled)

	for i := 0; i < 3; i++ {
		w.Tick()
	}

	active := w.ListJobs(false)
	for _, j := range active {
		require.NotEqual(t, e, j.ID)
	}

	all := w.ListJobs(true)
	found := false
	for _, j := range all {
		if j.ID == e {
			found = true
		}
	}
	require.True(t, found)
}

// S4: Reservation round-trip.
func TestScenarioReservationRoundTrip(t *testing.T) {
	w := testWorld(t)
	stockpile := w.Spawn()
	require.NoError(t, w.SetComponent(stockpile, "Stockpile", map[string]any{
		"resources": map[string]any{"wood": float64(10)},
	}))

	job := w.Spawn()
	require.NoError(t, w.AssignJob(job, "gather", map[string]any{
		"resource_requirements": []any{
			map[string]any{"kind": "wood", "amount": float64(3)},
		},
	}))

	w.RunSystem(systems.ResourceReservationSystem)

	got, err := w.GetJob(job)
	require.NoError(t, err)
	require.Equal(t, []jobboard.ReservedResource{{Kind: "wood", Amount: 3}}, got.ReservedResources)

	require.NoError(t, w.ReleaseJobResourceReservations(job))
	got, err = w.GetJob(job)
	require.NoError(t, err)
	require.Empty(t, got.ReservedResources)

	stock, err := w.GetComponent(stockpile, "Stockpile")
	require.NoError(t, err)
	resources := stock.(map[string]any)["resources"].(map[string]any)
	require.Equal(t, float64(10), resources["wood"])
}

// S5: Path avoids unwalkable cells.
func TestScenarioPathAvoidsUnwalkable(t *testing.T) {
	w := testWorld(t)
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			walkable := !(x == 1 && y == 1)
			w.AddCell(mapindex.NewSquareKey(x, y, 0), walkable, nil)
		}
	}
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			a := mapindex.NewSquareKey(x, y, 0)
			if x+1 < 3 {
				b := mapindex.NewSquareKey(x+1, y, 0)
				w.AddNeighbor(a, b)
				w.AddNeighbor(b, a)
			}
			if y+1 < 3 {
				b := mapindex.NewSquareKey(x, y+1, 0)
				w.AddNeighbor(a, b)
				w.AddNeighbor(b, a)
			}
		}
	}

	path := w.FindPath(mapindex.NewSquareKey(0, 0, 0), mapindex.NewSquareKey(2, 2, 0))
	require.Len(t, path, 5)
	for _, cell := range path {
		require.NotEqual(t, mapindex.NewSquareKey(1, 1, 0), cell)
	}
}

// S6: Dependency expression evaluation.
func TestScenarioDependencyExpression(t *testing.T) {
	w := testWorld(t)

	deps := map[string]any{
		"all_of": []any{
			"job:fetch_wood",
			map[string]any{"any_of": []any{"job:mine_stone", "job:collect_clay"}},
			map[string]any{"not": []any{"job:destroyed_bridge"}},
		},
	}

	parent := w.Spawn()
	require.NoError(t, w.AssignJob(parent, "build_bridge", map[string]any{"dependencies": deps}))

	w.RunSystem(systems.JobSystem)
	job, err := w.GetJob(parent)
	require.NoError(t, err)
	require.Equal(t, jobboard.Pending, job.Status)

	fetch := w.Spawn()
	require.NoError(t, w.AssignJob(fetch, "fetch_wood", map[string]any{"state": "complete"}))
	w.RunSystem(systems.JobSystem)
	job, err = w.GetJob(parent)
	require.NoError(t, err)
	require.Equal(t, jobboard.Pending, job.Status)

	mine := w.Spawn()
	require.NoError(t, w.AssignJob(mine, "mine_stone", map[string]any{"state": "complete"}))
	w.RunSystem(systems.JobSystem)
	job, err = w.GetJob(parent)
	require.NoError(t, err)
	require.Equal(t, jobboard.InProgress, job.Status)
}

func TestSnapshotSaveAndLoadRoundTrip(t *testing.T) {
	w := testWorld(t)
	e := w.Spawn()
	require.NoError(t, w.SetComponent(e, "Position", map[string]any{"Square": map[string]any{"x": float64(1), "y": float64(2), "z": float64(0)}}))
	w.AddCell(mapindex.NewSquareKey(1, 2, 0), true, nil)
	w.Tick()

	path := filepath.Join(t.TempDir(), "world.json")
	require.NoError(t, w.SaveToFile(path))

	reloaded := testWorld(t)
	require.NoError(t, reloaded.LoadFromFile(path))
	require.True(t, reloaded.IsAlive(e))
	require.Equal(t, w.Turn(), reloaded.Turn())
	require.Equal(t, 1, reloaded.CellCount())
}

func TestDecaySystemDespawnsAtZero(t *testing.T) {
	w := testWorld(t)
	e := w.Spawn()
	require.NoError(t, w.SetComponent(e, "Decay", map[string]any{"rate": float64(1), "amount": float64(1)}))
	w.RunSystem(systems.DecaySystem)
	require.False(t, w.IsAlive(e))
	events := w.PollECSEvent("entity_decayed")
	require.Empty(t, events) // not yet flushed
	w.UpdateEventBuses()
	events = w.PollECSEvent("entity_decayed")
	require.Len(t, events, 1)
}

func TestDeathsSystemDespawnsAtZeroHP(t *testing.T) {
	w := testWorld(t)
	e := w.Spawn()
	require.NoError(t, w.SetComponent(e, "Health", map[string]any{"hp": float64(0), "max_hp": float64(10)}))
	w.RunSystem(systems.DeathsSystem)
	require.False(t, w.IsAlive(e))
}

func TestAIAssignJobsFairShare(t *testing.T) {
	w := testWorld(t)
	agent := w.Spawn()
	require.NoError(t, w.SetComponent(agent, "Agent", map[string]any{
		"skills": map[string]any{"chop": float64(1)},
	}))

	var jobs []uint64
	for i := 0; i < 3; i++ {
		j := w.Spawn()
		require.NoError(t, w.AssignJob(j, "chop", nil))
		jobs = append(jobs, uint64(j))
	}

	claimed, err := w.AIAssignJobs(agent, nil)
	require.NoError(t, err)
	require.Len(t, claimed, 3)
}

func TestRegisterJobTypeHandlerOverridesDefault(t *testing.T) {
	w := testWorld(t)
	calls := 0
	w.RegisterJobType("custom", func(eng *jobengine.Engine, job *jobboard.Job) error {
		calls++
		job.Status = jobboard.Complete
		return nil
	})
	e := w.Spawn()
	require.NoError(t, w.AssignJob(e, "custom", nil))
	w.RunSystem(systems.JobSystem)
	job, err := w.GetJob(e)
	require.NoError(t, err)
	require.Equal(t, jobboard.Complete, job.Status)
	require.Equal(t, 1, calls)
}

func TestMain_SchemaDirExists(t *testing.T) {
	_, err := os.Stat("../assets/schemas")
	require.NoError(t, err)
}

func TestModeDefaultsToColonyAndListsAvailableModes(t *testing.T) {
	w := testWorld(t)
	require.Equal(t, "colony", w.Mode())

	modes := w.GetAvailableModes()
	require.Contains(t, modes, "colony")
	require.Contains(t, modes, "roguelike")

	w.SetMode("roguelike")
	require.Equal(t, "roguelike", w.Mode())
}

func TestRoguelikeModeSkipsJobEconomyInTick(t *testing.T) {
	w := testWorld(t)
	w.SetMode("roguelike")

	e := w.Spawn()
	require.NoError(t, w.AssignJob(e, "test_job", nil))

	for i := 0; i < 12; i++ {
		w.Tick()
	}

	job, err := w.GetJob(e)
	require.NoError(t, err)
	require.Equal(t, 0.0, job.Progress)
	require.Equal(t, jobboard.Pending, job.Status)

	// RunSystem still allows a direct, explicit call regardless of mode.
	w.RunSystem(systems.JobSystem)
	job, err = w.GetJob(e)
	require.NoError(t, err)
	require.Equal(t, jobboard.InProgress, job.Status)
}

func TestColonyModeRunsFullNativeSystemSet(t *testing.T) {
	w := testWorld(t)
	e := w.Spawn()
	require.NoError(t, w.AssignJob(e, "test_job", nil))

	for i := 0; i < 12; i++ {
		w.Tick()
	}

	job, err := w.GetJob(e)
	require.NoError(t, err)
	require.Equal(t, jobboard.Complete, job.Status)
}

func TestJobFailedEventCarriesHandlerErrorMessage(t *testing.T) {
	w := testWorld(t)
	w.RegisterJobType("combust", func(eng *jobengine.Engine, job *jobboard.Job) error {
		return errors.New("fuel exhausted")
	})
	e := w.Spawn()
	require.NoError(t, w.AssignJob(e, "combust", nil))

	// The first advance invokes the handler on the pending job, which
	// fails; the second finds the job terminal and does nothing.
	w.RunSystem(systems.JobSystem)
	w.RunSystem(systems.JobSystem)
	w.UpdateEventBuses()

	failed := w.PollECSEvent("job_failed")
	require.Len(t, failed, 1)
	m := failed[0].(map[string]any)
	require.Equal(t, uint64(e), m["job_id"])
	require.Contains(t, m["message"], "fuel exhausted")
}

func TestApplyGeneratedMapInstallsCellsAndNeighbors(t *testing.T) {
	w := testWorld(t)
	payload := []byte(`{
		"topology": "square",
		"cells": [
			{"x": 0, "y": 0, "z": 0, "neighbors": [{"x": 1, "y": 0, "z": 0}]},
			{"x": 1, "y": 0, "z": 0, "neighbors": [{"x": 0, "y": 0, "z": 0}], "walkable": false}
		]
	}`)

	require.NoError(t, w.ApplyGeneratedMap(payload))
	require.Equal(t, 2, w.CellCount())

	meta, err := w.GetCellMetadata(mapindex.NewSquareKey(1, 0, 0))
	require.NoError(t, err)
	require.False(t, meta.Walkable)

	neighbors := w.GetNeighbors(mapindex.NewSquareKey(0, 0, 0))
	require.Equal(t, []mapindex.CellKey{mapindex.NewSquareKey(1, 0, 0)}, neighbors)
}

func TestApplyGeneratedMapRejectsMissingRequiredField(t *testing.T) {
	w := testWorld(t)
	payload := []byte(`{
		"topology": "square",
		"cells": [
			{"x": 0, "y": 0, "neighbors": []}
		]
	}`)

	err := w.ApplyGeneratedMap(payload)
	require.Error(t, err)
	require.Equal(t, 0, w.CellCount())
}

func TestApplyGeneratedMapRevertsOnPostprocessorFailure(t *testing.T) {
	w := testWorld(t)
	w.RegisterMapPostprocessor(func(ix *mapindex.Index, keys []mapindex.CellKey) error {
		return errors.New("postprocessor exploded")
	})

	payload := []byte(`{
		"topology": "square",
		"cells": [
			{"x": 0, "y": 0, "z": 0, "neighbors": []}
		]
	}`)

	err := w.ApplyGeneratedMap(payload)
	require.Error(t, err)
	require.Equal(t, 0, w.CellCount())
}

func TestApplyGeneratedMapJSONRoundTripsHexTopology(t *testing.T) {
	w := testWorld(t)
	doc := map[string]any{
		"topology": "hex",
		"cells": []map[string]any{
			{"q": 0, "r": 0, "z": 0, "neighbors": []any{}},
		},
	}
	payload, err := json.Marshal(doc)
	require.NoError(t, err)

	require.NoError(t, w.ApplyGeneratedMap(payload))
	require.Equal(t, 1, w.CellCount())
	require.Equal(t, mapindex.Hex, w.AllCells()[0].Topology)
}
