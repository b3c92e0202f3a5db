package world

import (
	"github.com/sourceplane/simkernel/internal/ecs"
	"github.com/sourceplane/simkernel/internal/jobboard"
	"github.com/sourceplane/simkernel/internal/jobeventlog"
)

// GetJobEventLog returns every entry in the Job Event Log, append order.
func (w *World) GetJobEventLog() []jobeventlog.Entry { return w.jobLog.All() }

// GetJobEventsByType returns every log entry of the given event type.
func (w *World) GetJobEventsByType(eventType string) []jobeventlog.Entry {
	return w.jobLog.ByType(eventType)
}

// GetJobEventsSince returns every log entry at or after tsMs.
func (w *World) GetJobEventsSince(tsMs int64) []jobeventlog.Entry { return w.jobLog.Since(tsMs) }

// GetJobEventsWhere returns every log entry predicate accepts.
func (w *World) GetJobEventsWhere(predicate func(jobeventlog.Entry) bool) []jobeventlog.Entry {
	return w.jobLog.Query(predicate)
}

// SaveJobEventLog writes the Job Event Log to path as a JSON array.
func (w *World) SaveJobEventLog(path string) error { return w.jobLog.SaveToFile(path) }

// LoadJobEventLog replaces the in-memory Job Event Log with the contents
// of path.
func (w *World) LoadJobEventLog(path string) error {
	loaded, err := jobeventlog.LoadFromFile(path)
	if err != nil {
		return err
	}
	w.jobLog = loaded
	return nil
}

// ClearJobEventLog empties the Job Event Log.
func (w *World) ClearJobEventLog() { w.jobLog = jobeventlog.NewLog() }

// ReplayJobEventLog re-applies every entry's state-transition payload to
// the live Job Board without re-emitting events or re-appending log
// entries, so repeated replays over the same starting state are
// idempotent.
func (w *World) ReplayJobEventLog() {
	w.jobLog.Replay(func(e jobeventlog.Entry) {
		m, ok := e.Payload.(map[string]any)
		if !ok {
			return
		}
		var id ecs.EntityID
		switch v := m["job_id"].(type) {
		case float64: // entries loaded from a JSON file
			id = ecs.EntityID(uint64(v))
		case uint64: // entries appended in this session
			id = ecs.EntityID(v)
		default:
			return
		}
		job, err := w.board.Get(id)
		if err != nil {
			return
		}
		if state, ok := m["state"].(string); ok {
			job.Status = jobboard.Status(state)
		}
	})
}
