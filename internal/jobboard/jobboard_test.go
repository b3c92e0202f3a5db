package jobboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActiveJobsPriorityOrdering(t *testing.T) {
	b := NewBoard(PolicyPriority)
	b.Upsert(&Job{ID: 1, Status: Pending, Priority: 1})
	b.Upsert(&Job{ID: 2, Status: Pending, Priority: 5})
	b.Upsert(&Job{ID: 3, Status: Pending, Priority: 5})

	active := b.ActiveJobs()
	require.Len(t, active, 3)
	require.Equal(t, []uint64{2, 3, 1}, idsOf(active))
}

func TestActiveJobsFIFOAndLIFO(t *testing.T) {
	b := NewBoard(PolicyFIFO)
	b.Upsert(&Job{ID: 1, Status: Pending})
	b.Upsert(&Job{ID: 2, Status: Pending})
	b.Upsert(&Job{ID: 3, Status: Pending})
	require.Equal(t, []uint64{1, 2, 3}, idsOf(b.ActiveJobs()))

	b.SetPolicy(PolicyLIFO)
	require.Equal(t, []uint64{3, 2, 1}, idsOf(b.ActiveJobs()))
}

func TestActiveJobsExcludesTerminalAndCancelled(t *testing.T) {
	b := NewBoard(PolicyFIFO)
	b.Upsert(&Job{ID: 1, Status: Complete})
	b.Upsert(&Job{ID: 2, Status: Pending, Cancelled: true})
	b.Upsert(&Job{ID: 3, Status: InProgress})

	require.Equal(t, []uint64{3}, idsOf(b.ActiveJobs()))
}

func idsOf(jobs []*Job) []uint64 {
	out := make([]uint64, len(jobs))
	for i, j := range jobs {
		out[i] = uint64(j.ID)
	}
	return out
}
