// Package jobboard holds the canonical Job record and the active-job view
// consulted each tick by the Job Engine. Ordering is deterministic: a
// policy comparator with insertion-sequence tiebreaks.
package jobboard

import "github.com/sourceplane/simkernel/internal/ecs"

// Status is a Job's lifecycle state.
type Status string

const (
	Pending    Status = "pending"
	InProgress Status = "in_progress"
	Complete   Status = "complete"
	Failed     Status = "failed"
)

// ReservedResource records one reservation line as visible on the public
// Job record (kind + amount only — the Job Engine keeps the stockpile
// provenance needed for byte-exact release internally).
type ReservedResource struct {
	Kind   string
	Amount float64
}

// Job is the canonical record for one job entity's lifecycle state and
// the engine's working copy. The ECS Job component is validated and stored
// when the job is created and is not rewritten as the job advances; the
// world facade renders the current value from this record on read.
type Job struct {
	ID                ecs.EntityID
	JobType           string
	Status            Status
	Cancelled         bool
	Priority          int
	Progress          float64
	Dependencies      any // dependency expression tree, see jobengine
	ReservedResources []ReservedResource
	Assignee          ecs.EntityID // zero if unassigned
	Metadata          map[string]any

	seq int // insertion sequence, for fifo/lifo/priority tie-breaking
}

// IsTerminal reports whether a job's state machine has reached a terminal
// state (complete, failed, or cancelled).
func (j *Job) IsTerminal() bool {
	return j.Cancelled || j.Status == Complete || j.Status == Failed
}

// IsActive reports whether a job should be considered by the Job Engine's
// per-tick advancement (pending or in_progress, and not cancelled).
func (j *Job) IsActive() bool {
	return !j.Cancelled && (j.Status == Pending || j.Status == InProgress)
}
