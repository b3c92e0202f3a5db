package world

import (
	"math"

	"go.uber.org/zap"

	"github.com/sourceplane/simkernel/internal/ecs"
	"github.com/sourceplane/simkernel/internal/eventbus"
	"github.com/sourceplane/simkernel/internal/jobboard"
	"github.com/sourceplane/simkernel/internal/jobengine"
	"github.com/sourceplane/simkernel/internal/jobeventlog"
)

// decodeJob builds a jobboard.Job working copy from a Job component's
// generic value.
func decodeJob(e ecs.EntityID, value any) *jobboard.Job {
	m, _ := value.(map[string]any)
	job := &jobboard.Job{ID: e, Status: jobboard.Pending, Metadata: make(map[string]any)}

	if jt, ok := m["job_type"].(string); ok {
		job.JobType = jt
	}
	if st, ok := m["state"].(string); ok {
		job.Status = jobboard.Status(st)
	}
	if c, ok := m["cancelled"].(bool); ok {
		job.Cancelled = c
	}
	if p, ok := m["priority"].(float64); ok {
		job.Priority = int(p)
	}
	if p, ok := m["progress"].(float64); ok {
		job.Progress = p
	}
	if d, ok := m["dependencies"]; ok {
		job.Dependencies = d
	}
	if a, ok := m["assigned_to"].(float64); ok {
		job.Assignee = ecs.EntityID(uint64(a))
	}
	for k, v := range m {
		switch k {
		case "job_type", "state", "cancelled", "priority", "progress", "dependencies", "assigned_to", "reserved_resources":
		default:
			job.Metadata[k] = v
		}
	}
	return job
}

// encodeJob renders job back into the generic wire shape the Job schema
// validates.
func encodeJob(job *jobboard.Job) map[string]any {
	out := map[string]any{
		"job_type":  job.JobType,
		"state":     string(job.Status),
		"cancelled": job.Cancelled,
		"priority":  float64(job.Priority),
		"progress":  job.Progress,
	}
	if job.Dependencies != nil {
		out["dependencies"] = job.Dependencies
	}
	if job.Assignee != 0 {
		out["assigned_to"] = float64(job.Assignee)
	}
	if len(job.ReservedResources) > 0 {
		reserved := make([]any, 0, len(job.ReservedResources))
		for _, r := range job.ReservedResources {
			reserved = append(reserved, map[string]any{"kind": r.Kind, "amount": r.Amount})
		}
		out["reserved_resources"] = reserved
	}
	for k, v := range job.Metadata {
		out[k] = v
	}
	return out
}

func (w *World) logJobEvent(eventType string, job *jobboard.Job) {
	w.logJobEventWithMessage(eventType, job, "")
}

// logJobEventWithMessage is logJobEvent, additionally carrying message in
// the published/logged payload's "message" field when non-empty — used
// for job_failed events so subscribers see the handler error that caused
// the failure.
func (w *World) logJobEventWithMessage(eventType string, job *jobboard.Job, message string) {
	payload := eventbusEventForJob(eventType, job, message)
	w.jobLog.Append(jobeventlog.Entry{
		TimestampMS: w.nextTimestampMS(),
		EventType:   eventType,
		Payload:     payload,
	})
	if err := w.events.Jobs.Publish(eventbus.Event{Type: eventType, Payload: payload}); err != nil {
		w.logger.Warn("job event rejected by job bus", zap.Error(err))
	}
	w.events.ECS.Publish(eventbus.Event{Type: eventType, Payload: payload})
}

// AssignJob creates a new Job component for e with the given job type and
// optional fields (state defaults to pending unless specified).
func (w *World) AssignJob(e ecs.EntityID, jobType string, fields map[string]any) error {
	body := map[string]any{"job_type": jobType, "state": "pending", "priority": float64(0), "cancelled": false, "progress": float64(0)}
	for k, v := range fields {
		body[k] = v
	}
	if err := w.components.Set(e, "Job", body); err != nil {
		return err
	}
	job, err := w.board.Get(e)
	if err != nil {
		return err
	}
	w.logJobEvent("job_state_changed", job)
	return nil
}

// GetJob returns the current working-copy Job record for id.
func (w *World) GetJob(id ecs.EntityID) (*jobboard.Job, error) { return w.board.Get(id) }

// ListJobs returns the active jobs in the Job Board's policy order. With
// includeTerminal it instead returns every job, terminal and cancelled
// ones included, ordered by entity id.
func (w *World) ListJobs(includeTerminal bool) []*jobboard.Job {
	if includeTerminal {
		return w.board.AllJobs()
	}
	return w.board.ActiveJobs()
}

// SetPolicy changes the Job Board's ordering policy.
func (w *World) SetPolicy(p jobboard.Policy) { w.board.SetPolicy(p) }

// SetJobField mutates a single field on id's job working copy and, when
// the job's state changed, appends a job_state_changed log entry.
func (w *World) SetJobField(id ecs.EntityID, field string, value any) error {
	job, err := w.board.Get(id)
	if err != nil {
		return err
	}
	prevStatus := job.Status
	if err := w.engine.SetJobField(job, field, value); err != nil {
		return err
	}
	if job.Status != prevStatus {
		w.logJobEvent("job_state_changed", job)
	}
	return nil
}

// UpdateJob applies a batch of field updates to id's job.
func (w *World) UpdateJob(id ecs.EntityID, fields map[string]any) error {
	job, err := w.board.Get(id)
	if err != nil {
		return err
	}
	return w.engine.UpdateJob(job, fields)
}

// CancelJob sets cancelled=true, releases reservations, and emits
// job_cancelled.
func (w *World) CancelJob(id ecs.EntityID) error {
	job, err := w.board.Get(id)
	if err != nil {
		return err
	}
	job.Cancelled = true
	_ = w.engine.ReleaseJobResourceReservations(job, w.stockpileSource())
	w.logJobEvent("job_cancelled", job)
	return nil
}

// ReserveJobResources reserves job id's resource_requirements against the
// live Stockpile components, all-or-nothing.
func (w *World) ReserveJobResources(id ecs.EntityID, reqs []jobengine.Requirement) error {
	job, err := w.board.Get(id)
	if err != nil {
		return err
	}
	return w.engine.ReserveJobResources(job, reqs, w.stockpileSource())
}

// ReleaseJobResourceReservations restores every reserved amount for id's
// job and clears its reservation record.
func (w *World) ReleaseJobResourceReservations(id ecs.EntityID) error {
	job, err := w.board.Get(id)
	if err != nil {
		return err
	}
	return w.engine.ReleaseJobResourceReservations(job, w.stockpileSource())
}

// RegisterJobType installs an externally-registered job handler.
func (w *World) RegisterJobType(name string, handler jobengine.Handler) {
	w.engine.RegisterHandler(name, handler)
}

// AgentInfo is the subset of an Agent component AIAssignJobs consults.
type AgentInfo struct {
	Skills          map[string]float64
	Specializations []string
}

func decodeAgent(value any) AgentInfo {
	info := AgentInfo{Skills: make(map[string]float64)}
	m, _ := value.(map[string]any)
	if skills, ok := m["skills"].(map[string]any); ok {
		for k, v := range skills {
			if f, ok := v.(float64); ok {
				info.Skills[k] = f
			}
		}
	}
	if specs, ok := m["specializations"].([]any); ok {
		for _, s := range specs {
			if str, ok := s.(string); ok {
				info.Specializations = append(info.Specializations, str)
			}
		}
	}
	return info
}

// AIAssignJobs assigns pending, unassigned, non-cancelled jobs on the
// board to agent, skipping any job id in excluded. A job qualifies if
// agent has a positive skill weight for its job_type and, when agent
// declares specializations, the job's category (if present) is among
// them. The agent claims at most ceil(len(matches)/liveQualifiedAgents)
// jobs, in the Job Board's policy order; jobs the policy ranks equal are
// taken in board insertion order.
func (w *World) AIAssignJobs(agent ecs.EntityID, excluded []ecs.EntityID) ([]ecs.EntityID, error) {
	agentValue, err := w.components.Get(agent, "Agent")
	if err != nil {
		return nil, err
	}
	info := decodeAgent(agentValue)

	excludeSet := make(map[ecs.EntityID]bool, len(excluded))
	for _, id := range excluded {
		excludeSet[id] = true
	}

	liveAgents := len(w.components.EntitiesWith("Agent"))
	if liveAgents == 0 {
		liveAgents = 1
	}

	var matches []*jobboard.Job
	for _, job := range w.board.ActiveJobs() {
		if excludeSet[job.ID] || job.Status != jobboard.Pending || job.Assignee != 0 {
			continue
		}
		weight, hasSkill := info.Skills[job.JobType]
		if !hasSkill || weight <= 0 {
			continue
		}
		if len(info.Specializations) > 0 {
			category, _ := job.Metadata["category"].(string)
			if category != "" && !contains(info.Specializations, category) {
				continue
			}
		}
		matches = append(matches, job)
	}

	quota := int(math.Ceil(float64(len(matches)) / float64(liveAgents)))
	currentLoad := 0
	for _, j := range w.board.AllJobs() {
		if j.Assignee == agent && j.IsActive() {
			currentLoad++
		}
	}

	var claimed []ecs.EntityID
	for _, job := range matches {
		if currentLoad >= quota {
			break
		}
		job.Assignee = agent
		currentLoad++
		claimed = append(claimed, job.ID)
		w.logJobEvent("job_assigned", job)
	}
	return claimed, nil
}

// AIQueryJobs returns every active job currently assigned to agent.
func (w *World) AIQueryJobs(agent ecs.EntityID) []*jobboard.Job {
	var out []*jobboard.Job
	for _, j := range w.board.ActiveJobs() {
		if j.Assignee == agent {
			out = append(out, j)
		}
	}
	return out
}

// AIModifyJobAssignment reassigns or unassigns (assignedTo == 0) id's job.
func (w *World) AIModifyJobAssignment(id ecs.EntityID, assignedTo ecs.EntityID) error {
	job, err := w.board.Get(id)
	if err != nil {
		return err
	}
	job.Assignee = assignedTo
	w.logJobEvent("job_assigned", job)
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func eventbusEventForJob(eventType string, job *jobboard.Job, message string) map[string]any {
	payload := map[string]any{"job_id": uint64(job.ID), "job_type": job.JobType, "state": string(job.Status)}
	if message != "" {
		payload["message"] = message
	}
	return payload
}
