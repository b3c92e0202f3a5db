package jobengine

import (
	"sort"

	"github.com/sourceplane/simkernel/internal/jobboard"
	"github.com/sourceplane/simkernel/internal/simerr"
)

// defaultThreshold is the progress value at which a job with no
// "duration" field of its own completes.
const defaultThreshold = 3.0

// Handler is an externally registered per-job-type advancement function.
// It receives the job while it is pending (once its dependencies hold) or
// in_progress, and may mutate Progress/Status/Metadata
// directly; the Engine never overrides a handler's decision.
type Handler func(eng *Engine, job *jobboard.Job) error

// Engine is the Job Engine: it owns the state machine transitions, the
// handler registry, and resource reservation bookkeeping for every job
// the Job Board tracks.
type Engine struct {
	board    *jobboard.Board
	handlers map[string]Handler
	res      *reservations
}

// NewEngine builds an Engine driving board.
func NewEngine(board *jobboard.Board) *Engine {
	return &Engine{
		board:    board,
		handlers: make(map[string]Handler),
		res:      newReservations(),
	}
}

// RegisterHandler installs a handler for jobType, replacing any existing
// one.
func (e *Engine) RegisterHandler(jobType string, h Handler) {
	e.handlers[jobType] = h
}

// UnregisterHandler removes jobType's handler, if any.
func (e *Engine) UnregisterHandler(jobType string) {
	delete(e.handlers, jobType)
}

// threshold returns the progress value at which job completes: the job's
// own "duration" field (kept in job.Metadata) if present and numeric, else
// defaultThreshold. There is no per-job-type metadata table; each job
// carries its own override.
func threshold(job *jobboard.Job) float64 {
	if job.Metadata != nil {
		if v, ok := job.Metadata["duration"]; ok {
			if f, ok := toFloat(v); ok {
				return f
			}
		}
	}
	return defaultThreshold
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// AdvanceJob runs one step of the state machine for job:
//   - pending: evaluates Dependencies against completed jobs on the board;
//     if they are not satisfied the job stays pending. Otherwise the
//     registered handler for job.JobType is invoked if one exists (the
//     handler decides the next state), else the job moves to in_progress.
//   - in_progress: invokes the registered handler for job.JobType if one
//     exists, else applies the default advancement (Progress += 1,
//     completing at threshold(job)).
//
// Terminal and cancelled jobs are left untouched.
func (e *Engine) AdvanceJob(job *jobboard.Job) error {
	if job.IsTerminal() {
		return nil
	}

	switch job.Status {
	case jobboard.Pending:
		if !EvaluateDependency(job.Dependencies, e.isJobTypeComplete) {
			return nil
		}
		if h, ok := e.handlers[job.JobType]; ok {
			if err := h(e, job); err != nil {
				job.Status = jobboard.Failed
				return simerr.Wrap(simerr.PluginError, err, "handler for job type %q failed", job.JobType)
			}
			return nil
		}
		job.Status = jobboard.InProgress
		return nil
	case jobboard.InProgress:
		if h, ok := e.handlers[job.JobType]; ok {
			if err := h(e, job); err != nil {
				job.Status = jobboard.Failed
				return simerr.Wrap(simerr.PluginError, err, "handler for job type %q failed", job.JobType)
			}
			return nil
		}
		job.Progress++
		if job.Progress >= threshold(job) {
			job.Status = jobboard.Complete
		}
		return nil
	default:
		return nil
	}
}

// RunJobSystem advances every active job on the board exactly once, the
// native JobSystem's per-tick behavior: no per-job budget, every active
// job gets one AdvanceJob call per invocation.
func (e *Engine) RunJobSystem() []error {
	var errs []error
	for _, job := range e.board.ActiveJobs() {
		if err := e.AdvanceJob(job); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (e *Engine) isJobTypeComplete(jobType string) bool {
	for _, j := range e.board.AllJobs() {
		if j.JobType == jobType && j.Status == jobboard.Complete {
			return true
		}
	}
	return false
}

// SetJobField mutates a single field on job by name. Terminal jobs reject
// every mutation with InvariantViolation, per the job mutation surface's
// terminal-state guard.
func (e *Engine) SetJobField(job *jobboard.Job, field string, value any) error {
	if job.IsTerminal() {
		return simerr.New(simerr.InvariantViolation, "job %d is in a terminal state and cannot be mutated", job.ID)
	}
	switch field {
	case "priority":
		f, ok := toFloat(value)
		if !ok {
			return simerr.New(simerr.InvariantViolation, "priority must be numeric")
		}
		job.Priority = int(f)
	case "progress":
		f, ok := toFloat(value)
		if !ok {
			return simerr.New(simerr.InvariantViolation, "progress must be numeric")
		}
		job.Progress = f
	case "status":
		s, ok := value.(string)
		if !ok {
			return simerr.New(simerr.InvariantViolation, "status must be a string")
		}
		job.Status = jobboard.Status(s)
	case "cancelled":
		b, ok := value.(bool)
		if !ok {
			return simerr.New(simerr.InvariantViolation, "cancelled must be a bool")
		}
		job.Cancelled = b
	case "dependencies":
		job.Dependencies = value
	default:
		if job.Metadata == nil {
			job.Metadata = make(map[string]any)
		}
		job.Metadata[field] = value
	}
	return nil
}

// UpdateJob applies every field in fields via SetJobField, stopping at the
// first rejected field.
func (e *Engine) UpdateJob(job *jobboard.Job, fields map[string]any) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := e.SetJobField(job, k, fields[k]); err != nil {
			return err
		}
	}
	return nil
}
