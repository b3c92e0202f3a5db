// Package jobeventlog implements the append-only Job Event Log: every
// entry records a timestamp, an event type, and a payload, and the whole
// log can be saved/loaded/replayed as JSON.
package jobeventlog

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/sourceplane/simkernel/internal/simerr"
)

// Entry is one Job Event Log record.
type Entry struct {
	TimestampMS int64  `json:"timestamp_ms"`
	EventType   string `json:"event_type"`
	Payload     any    `json:"payload"`
}

// Log is an in-memory, append-only sequence of Entry records.
type Log struct {
	entries []Entry
}

func NewLog() *Log {
	return &Log{}
}

// Append adds a new entry to the end of the log.
func (l *Log) Append(e Entry) {
	l.entries = append(l.entries, e)
}

// All returns every entry in append order.
func (l *Log) All() []Entry {
	return append([]Entry(nil), l.entries...)
}

// ByType returns every entry whose EventType equals typ, in append order.
func (l *Log) ByType(typ string) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.EventType == typ {
			out = append(out, e)
		}
	}
	return out
}

// Since returns every entry with TimestampMS >= ts, in append order.
func (l *Log) Since(ts int64) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.TimestampMS >= ts {
			out = append(out, e)
		}
	}
	return out
}

// Query returns every entry for which predicate returns true, in append
// order.
func (l *Log) Query(predicate func(Entry) bool) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if predicate(e) {
			out = append(out, e)
		}
	}
	return out
}

// Replay invokes fn for every entry in append order, letting a caller
// rebuild derived state from the log.
func (l *Log) Replay(fn func(Entry)) {
	for _, e := range l.entries {
		fn(e)
	}
}

// SaveToFile writes the entire log as a JSON array to path, creating
// parent directories as needed.
func (l *Log) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return simerr.Wrap(simerr.NotFound, err, "failed to create directory for %s", path)
	}
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return simerr.Wrap(simerr.InvariantViolation, err, "failed to marshal job event log")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return simerr.Wrap(simerr.NotFound, err, "failed to write job event log to %s", path)
	}
	return nil
}

// LoadFromFile replaces the log's contents with the JSON array at path.
func LoadFromFile(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, simerr.Wrap(simerr.NotFound, err, "failed to read job event log from %s", path)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, simerr.Wrap(simerr.InvariantViolation, err, "failed to parse job event log at %s", path)
	}
	return &Log{entries: entries}, nil
}
