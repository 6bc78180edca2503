package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSRecorder publishes trace events to <subject>.<runID>.
type NATSRecorder struct {
	conn    *nats.Conn
	subject string
}

// NewNATSRecorder connects to url and publishes under subject.
func NewNATSRecorder(url, subject, runID string) (*NATSRecorder, error) {
	conn, err := nats.Connect(url,
		nats.Name("agentloop-trace"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(10),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return newNATSRecorder(conn, subject, runID), nil
}

func newNATSRecorder(conn *nats.Conn, subject, runID string) *NATSRecorder {
	return &NATSRecorder{conn: conn, subject: subject + "." + runID}
}

// Subject returns the subject events are published on.
func (n *NATSRecorder) Subject() string {
	return n.subject
}

// Record publishes the event as JSON.
func (n *NATSRecorder) Record(ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal trace event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("failed to publish trace event: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (n *NATSRecorder) Close() error {
	return n.conn.Drain()
}
