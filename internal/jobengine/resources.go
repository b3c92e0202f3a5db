package jobengine

import (
	"sort"

	"github.com/sourceplane/simkernel/internal/ecs"
	"github.com/sourceplane/simkernel/internal/jobboard"
	"github.com/sourceplane/simkernel/internal/simerr"
)

// StockpileAmount is one stockpile entity's current holding of a resource
// kind.
type StockpileAmount struct {
	Entity ecs.EntityID
	Kind   string
	Amount float64
}

// StockpileSource is the resource pool the Job Engine reserves against.
// The World Facade's stockpile component wiring implements this over the
// Component Store.
type StockpileSource interface {
	Available(kind string) []StockpileAmount
	Debit(entity ecs.EntityID, kind string, amount float64) error
	Credit(entity ecs.EntityID, kind string, amount float64) error
}

// reservationRecord is the engine's private bookkeeping of which
// stockpile entity supplied each reserved unit, kept separate from the
// public Job.ReservedResources ({kind, amount} only) so release can credit
// back the exact originating stockpile.
type reservationRecord struct {
	Kind   string
	Amount float64
	Entity ecs.EntityID
}

// Requirement is one resource requirement a job must reserve before it
// may proceed.
type Requirement struct {
	Kind   string
	Amount float64
}

// reservations tracks, per job, the stockpile-credit records needed to
// release a reservation byte-exact, and the reentrancy lock.
type reservations struct {
	byJob    map[ecs.EntityID][]reservationRecord
	inFlight map[ecs.EntityID]bool
}

func newReservations() *reservations {
	return &reservations{
		byJob:    make(map[ecs.EntityID][]reservationRecord),
		inFlight: make(map[ecs.EntityID]bool),
	}
}

// ReserveJobResources attempts to reserve every requirement against
// source, all-or-nothing: if any requirement cannot be fully satisfied,
// nothing is debited. Reentrant calls for the same job (e.g. a handler
// recursively reserving mid-reservation) are rejected with
// AlreadyReserving.
func (e *Engine) ReserveJobResources(job *jobboard.Job, reqs []Requirement, source StockpileSource) error {
	if e.res.inFlight[job.ID] {
		return simerr.New(simerr.AlreadyReserving, "job %d is already reserving resources", job.ID)
	}
	e.res.inFlight[job.ID] = true
	defer delete(e.res.inFlight, job.ID)

	plan := make(map[ecs.EntityID]map[string]float64)
	for _, req := range reqs {
		remaining := req.Amount
		held := source.Available(req.Kind)
		sort.Slice(held, func(i, k int) bool { return held[i].Entity < held[k].Entity })
		for _, h := range held {
			if remaining <= 0 {
				break
			}
			take := h.Amount
			if take > remaining {
				take = remaining
			}
			if take <= 0 {
				continue
			}
			if plan[h.Entity] == nil {
				plan[h.Entity] = make(map[string]float64)
			}
			plan[h.Entity][req.Kind] += take
			remaining -= take
		}
		if remaining > 0 {
			return simerr.New(simerr.InsufficientResources, "insufficient %s: short by %g", req.Kind, remaining)
		}
	}

	var records []reservationRecord
	for entity, kinds := range plan {
		for kind, amount := range kinds {
			if err := source.Debit(entity, kind, amount); err != nil {
				// Roll back everything already debited this call.
				for _, r := range records {
					_ = source.Credit(r.Entity, r.Kind, r.Amount)
				}
				return simerr.Wrap(simerr.InsufficientResources, err, "failed to debit %s from stockpile %d", kind, entity)
			}
			records = append(records, reservationRecord{Kind: kind, Amount: amount, Entity: entity})
		}
	}

	e.res.byJob[job.ID] = append(e.res.byJob[job.ID], records...)
	job.ReservedResources = summarize(e.res.byJob[job.ID])
	return nil
}

// ReleaseJobResourceReservations credits every reserved unit back to the
// exact stockpile entity that supplied it, then clears the job's
// reservation records.
func (e *Engine) ReleaseJobResourceReservations(job *jobboard.Job, source StockpileSource) error {
	records := e.res.byJob[job.ID]
	for _, r := range records {
		if err := source.Credit(r.Entity, r.Kind, r.Amount); err != nil {
			return simerr.Wrap(simerr.InvariantViolation, err, "failed to release %s to stockpile %d", r.Kind, r.Entity)
		}
	}
	delete(e.res.byJob, job.ID)
	job.ReservedResources = nil
	return nil
}

func summarize(records []reservationRecord) []jobboard.ReservedResource {
	totals := make(map[string]float64)
	var order []string
	for _, r := range records {
		if _, ok := totals[r.Kind]; !ok {
			order = append(order, r.Kind)
		}
		totals[r.Kind] += r.Amount
	}
	sort.Strings(order)
	out := make([]jobboard.ReservedResource, 0, len(order))
	for _, kind := range order {
		out = append(out, jobboard.ReservedResource{Kind: kind, Amount: totals[kind]})
	}
	return out
}
