// Package session holds the state shared by every agent level of a run
// (the session context) and the run's trace: an append-only record of
// inputs, outputs and tool results keyed by hierarchical step identifiers.
package session

import (
	"errors"
	"strconv"
	"sync"
	"time"
)

// Actions recorded in the session context.
const (
	ActionRead  = "read"
	ActionWrite = "write"
	ActionEdit  = "edit"
)

// Context is the mutable record shared across delegation levels.
// A single engine call path writes it at a time.
type Context struct {
	LastAccessedPath string `json:"last_accessed_path,omitempty"`
	LastAction       string `json:"last_action,omitempty"`
}

// NewContext returns an empty session context.
func NewContext() *Context {
	return &Context{}
}

// Touch records that path was resolved for action.
func (c *Context) Touch(path, action string) {
	c.LastAccessedPath = path
	c.LastAction = action
}

// Snapshot returns a copy for tracing.
func (c *Context) Snapshot() Context {
	return *c
}

// Summary renders the context for the system prompt.
func (c *Context) Summary() string {
	if c.LastAccessedPath == "" {
		return "(No file accessed recently)"
	}
	s := "ACTIVE FILE: " + c.LastAccessedPath
	if c.LastAction != "" {
		s += " (last action: " + c.LastAction + ")"
	}
	return s
}

// Event kinds
const (
	EventInput      = "input"       // Full message set sent to the backend
	EventOutput     = "output"      // Raw generated text and usage
	EventToolResult = "tool_result" // Tool name, arguments and textual result
	EventError      = "error"       // Malformed output or backend failure
	EventContext    = "context"     // Session context and loaded skills before a step
)

// RootStepID is the parent of the top-level activation.
const RootStepID = "root"

// Event is one trace record.
type Event struct {
	StepID    string      `json:"step_id"`
	Timestamp time.Time   `json:"ts"`
	Kind      string      `json:"event"`
	Agent     string      `json:"agent,omitempty"`
	Depth     int         `json:"depth"`
	Payload   interface{} `json:"data"`
}

// StepID builds a hierarchical identifier: parent_agent_counter.
func StepID(parent, agent string, counter int) string {
	return parent + "_" + agent + "_" + strconv.Itoa(counter)
}

// Recorder receives trace events.
type Recorder interface {
	Record(Event) error
	Close() error
}

// MemoryRecorder keeps events in memory.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryRecorder creates an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Record appends an event.
func (m *MemoryRecorder) Record(ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	m.events = append(m.events, ev)
	return nil
}

// Close is a no-op.
func (m *MemoryRecorder) Close() error { return nil }

// Events returns a copy of the recorded events.
func (m *MemoryRecorder) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// ByStep returns the events recorded under stepID, in order.
func (m *MemoryRecorder) ByStep(stepID string) []Event {
	var out []Event
	for _, ev := range m.Events() {
		if ev.StepID == stepID {
			out = append(out, ev)
		}
	}
	return out
}

// MultiRecorder fans events out to several recorders.
type MultiRecorder struct {
	recorders []Recorder
}

// NewMultiRecorder combines recorders, skipping nil ones.
func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	m := &MultiRecorder{}
	for _, r := range recorders {
		if r != nil {
			m.recorders = append(m.recorders, r)
		}
	}
	return m
}

// Record forwards to every recorder; one failing sink does not stop the rest.
func (m *MultiRecorder) Record(ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	var errs []error
	for _, r := range m.recorders {
		if err := r.Record(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every recorder.
func (m *MultiRecorder) Close() error {
	var errs []error
	for _, r := range m.recorders {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
