// Trace recording for the executor.
package executor

import (
	"time"

	"github.com/vinayprograms/agentloop/internal/session"
)

// record appends a trace event. Recording failures are logged, never returned.
func (e *Engine) record(stepID, kind, agent string, depth int, payload interface{}) {
	err := e.recorder.Record(session.Event{
		StepID:    stepID,
		Timestamp: time.Now(),
		Kind:      kind,
		Agent:     agent,
		Depth:     depth,
		Payload:   payload,
	})
	if err != nil {
		e.logger.Warn("failed to record trace event", map[string]interface{}{
			"step":  stepID,
			"event": kind,
			"error": err.Error(),
		})
	}
}
