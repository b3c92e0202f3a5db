package jobboard

import (
	"sort"

	"github.com/sourceplane/simkernel/internal/ecs"
	"github.com/sourceplane/simkernel/internal/simerr"
)

// Policy names an ordering strategy for the active-job view.
type Policy string

const (
	PolicyPriority Policy = "priority"
	PolicyFIFO     Policy = "fifo"
	PolicyLIFO     Policy = "lifo"
)

// Board is the Job Board: a registry of every known job plus an ordered,
// policy-driven view over the currently active ones.
type Board struct {
	jobs   map[ecs.EntityID]*Job
	policy Policy
	nextSeq int
}

// NewBoard returns a Board using the given ordering policy (defaults to
// priority if an unrecognized value is given).
func NewBoard(policy Policy) *Board {
	if policy != PolicyFIFO && policy != PolicyLIFO && policy != PolicyPriority {
		policy = PolicyPriority
	}
	return &Board{jobs: make(map[ecs.EntityID]*Job), policy: policy}
}

// SetPolicy changes the active ordering policy.
func (b *Board) SetPolicy(p Policy) { b.policy = p }

// Upsert inserts or replaces the job record for j.ID, assigning an
// insertion sequence the first time a given id is seen.
func (b *Board) Upsert(j *Job) {
	if existing, ok := b.jobs[j.ID]; ok {
		j.seq = existing.seq
	} else {
		j.seq = b.nextSeq
		b.nextSeq++
	}
	b.jobs[j.ID] = j
}

// Get returns the job record for id.
func (b *Board) Get(id ecs.EntityID) (*Job, error) {
	j, ok := b.jobs[id]
	if !ok {
		return nil, simerr.New(simerr.UnknownJob, "unknown job %d", id)
	}
	return j, nil
}

// Remove deletes a job's record entirely (for despawn cascades).
func (b *Board) Remove(id ecs.EntityID) {
	delete(b.jobs, id)
}

// ActiveJobs returns every non-terminal, non-cancelled job ordered per the
// board's policy, ties broken by insertion sequence via sort.SliceStable.
func (b *Board) ActiveJobs() []*Job {
	out := make([]*Job, 0, len(b.jobs))
	for _, j := range b.jobs {
		if j.IsActive() {
			out = append(out, j)
		}
	}

	switch b.policy {
	case PolicyFIFO:
		sort.SliceStable(out, func(i, k int) bool { return out[i].seq < out[k].seq })
	case PolicyLIFO:
		sort.SliceStable(out, func(i, k int) bool { return out[i].seq > out[k].seq })
	default: // priority
		sort.SliceStable(out, func(i, k int) bool {
			if out[i].Priority != out[k].Priority {
				return out[i].Priority > out[k].Priority
			}
			return out[i].seq < out[k].seq
		})
	}
	return out
}

// AllJobs returns every known job, sorted by entity id, regardless of
// state.
func (b *Board) AllJobs() []*Job {
	ids := make([]ecs.EntityID, 0, len(b.jobs))
	for id := range b.jobs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, k int) bool { return ids[i] < ids[k] })
	out := make([]*Job, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.jobs[id])
	}
	return out
}
