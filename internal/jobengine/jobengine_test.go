package jobengine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sourceplane/simkernel/internal/ecs"
	"github.com/sourceplane/simkernel/internal/jobboard"
)

func TestEvaluateDependencyShapes(t *testing.T) {
	complete := func(jobType string) bool { return jobType == "chop_wood" }

	require.True(t, EvaluateDependency(nil, complete))
	require.True(t, EvaluateDependency("job:chop_wood", complete))
	require.False(t, EvaluateDependency("job:mine_ore", complete))
	require.True(t, EvaluateDependency([]any{"job:chop_wood"}, complete))
	require.False(t, EvaluateDependency([]any{"job:chop_wood", "job:mine_ore"}, complete))
	require.True(t, EvaluateDependency(map[string]any{"any_of": []any{"job:mine_ore", "job:chop_wood"}}, complete))
	require.True(t, EvaluateDependency(map[string]any{"not": "job:mine_ore"}, complete))
}

func TestAdvanceJobPendingToInProgress(t *testing.T) {
	board := jobboard.NewBoard(jobboard.PolicyFIFO)
	eng := NewEngine(board)

	job := &jobboard.Job{ID: 1, Status: jobboard.Pending}
	board.Upsert(job)

	require.NoError(t, eng.AdvanceJob(job))
	require.Equal(t, jobboard.InProgress, job.Status)
}

func TestAdvanceJobDefaultThresholdCompletion(t *testing.T) {
	board := jobboard.NewBoard(jobboard.PolicyFIFO)
	eng := NewEngine(board)

	job := &jobboard.Job{ID: 1, Status: jobboard.InProgress}
	board.Upsert(job)

	for i := 0; i < 3; i++ {
		require.NoError(t, eng.AdvanceJob(job))
	}
	require.Equal(t, jobboard.Complete, job.Status)
	require.GreaterOrEqual(t, job.Progress, 3.0)
}

func TestAdvanceJobCustomDurationThreshold(t *testing.T) {
	board := jobboard.NewBoard(jobboard.PolicyFIFO)
	eng := NewEngine(board)

	job := &jobboard.Job{ID: 1, Status: jobboard.InProgress, Metadata: map[string]any{"duration": float64(1)}}
	board.Upsert(job)

	require.NoError(t, eng.AdvanceJob(job))
	require.Equal(t, jobboard.Complete, job.Status)
}

func TestRunJobSystemAdvancesEveryActiveJobOnce(t *testing.T) {
	board := jobboard.NewBoard(jobboard.PolicyFIFO)
	eng := NewEngine(board)

	a := &jobboard.Job{ID: 1, Status: jobboard.InProgress}
	b := &jobboard.Job{ID: 2, Status: jobboard.Complete}
	board.Upsert(a)
	board.Upsert(b)

	errs := eng.RunJobSystem()
	require.Empty(t, errs)
	require.Equal(t, 1.0, a.Progress)
	require.Equal(t, 0.0, b.Progress)
}

func TestSetJobFieldRejectsTerminal(t *testing.T) {
	board := jobboard.NewBoard(jobboard.PolicyFIFO)
	eng := NewEngine(board)
	job := &jobboard.Job{ID: 1, Status: jobboard.Complete}

	err := eng.SetJobField(job, "priority", float64(5))
	require.Error(t, err)
}

type fakeStockpile struct {
	holdings map[ecs.EntityID]map[string]float64
}

func (f *fakeStockpile) Available(kind string) []StockpileAmount {
	var out []StockpileAmount
	for e, kinds := range f.holdings {
		if amt, ok := kinds[kind]; ok && amt > 0 {
			out = append(out, StockpileAmount{Entity: e, Kind: kind, Amount: amt})
		}
	}
	return out
}

func (f *fakeStockpile) Debit(e ecs.EntityID, kind string, amount float64) error {
	f.holdings[e][kind] -= amount
	return nil
}

func (f *fakeStockpile) Credit(e ecs.EntityID, kind string, amount float64) error {
	f.holdings[e][kind] += amount
	return nil
}

func TestReserveAndReleaseResourcesByteExact(t *testing.T) {
	board := jobboard.NewBoard(jobboard.PolicyFIFO)
	eng := NewEngine(board)
	job := &jobboard.Job{ID: 1, Status: jobboard.Pending}
	board.Upsert(job)

	source := &fakeStockpile{holdings: map[ecs.EntityID]map[string]float64{
		5: {"wood": 10},
	}}

	require.NoError(t, eng.ReserveJobResources(job, []Requirement{{Kind: "wood", Amount: 4}}, source))
	require.Equal(t, 6.0, source.holdings[5]["wood"])
	require.Equal(t, []jobboard.ReservedResource{{Kind: "wood", Amount: 4}}, job.ReservedResources)

	require.NoError(t, eng.ReleaseJobResourceReservations(job, source))
	require.Equal(t, 10.0, source.holdings[5]["wood"])
	require.Empty(t, job.ReservedResources)
}

func TestReserveResourcesInsufficientIsAllOrNothing(t *testing.T) {
	board := jobboard.NewBoard(jobboard.PolicyFIFO)
	eng := NewEngine(board)
	job := &jobboard.Job{ID: 1, Status: jobboard.Pending}
	board.Upsert(job)

	source := &fakeStockpile{holdings: map[ecs.EntityID]map[string]float64{
		5: {"wood": 2, "stone": 100},
	}}

	err := eng.ReserveJobResources(job, []Requirement{{Kind: "stone", Amount: 1}, {Kind: "wood", Amount: 5}}, source)
	require.Error(t, err)
	require.Equal(t, 100.0, source.holdings[5]["stone"])
}
