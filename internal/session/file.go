package session

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// fileRecord is one JSONL line; the step id is the file name.
type fileRecord struct {
	Timestamp time.Time   `json:"ts"`
	Kind      string      `json:"event"`
	Agent     string      `json:"agent,omitempty"`
	Depth     int         `json:"depth"`
	Payload   interface{} `json:"data"`
}

// FileRecorder writes one append-only JSONL file per step id under a run directory.
type FileRecorder struct {
	dir string
	mu  sync.Mutex
}

// NewFileRecorder creates <base>/<runID> and records into it.
func NewFileRecorder(base, runID string) (*FileRecorder, error) {
	dir := filepath.Join(base, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create trace directory: %w", err)
	}
	return &FileRecorder{dir: dir}, nil
}

// Dir returns the run directory.
func (f *FileRecorder) Dir() string {
	return f.dir
}

// Record appends the event to <dir>/<step id>.jsonl.
func (f *FileRecorder) Record(ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	data, err := json.Marshal(fileRecord{
		Timestamp: ev.Timestamp,
		Kind:      ev.Kind,
		Agent:     ev.Agent,
		Depth:     ev.Depth,
		Payload:   ev.Payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal trace event: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path := filepath.Join(f.dir, sanitizeStepID(ev.StepID)+".jsonl")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write trace event: %w", err)
	}
	return nil
}

// Close is a no-op; files are closed after every append.
func (f *FileRecorder) Close() error { return nil }

// sanitizeStepID keeps step ids usable as file names.
func sanitizeStepID(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '-'
		}
		return r
	}, id)
}

// LoadRun reads every step file of a run directory, ordered by timestamp.
func LoadRun(dir string) ([]Event, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no trace files in %s", dir)
	}

	var events []Event
	for _, path := range files {
		stepID := strings.TrimSuffix(filepath.Base(path), ".jsonl")
		evs, err := loadStepFile(path, stepID)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events, nil
}

func loadStepFile(path, stepID string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []Event
	// bufio.Reader rather than Scanner: input payloads exceed the scanner line limit.
	reader := bufio.NewReader(f)
	for {
		line, readErr := reader.ReadBytes('\n')
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			var rec fileRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
			}
			events = append(events, Event{
				StepID:    stepID,
				Timestamp: rec.Timestamp,
				Kind:      rec.Kind,
				Agent:     rec.Agent,
				Depth:     rec.Depth,
				Payload:   rec.Payload,
			})
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading %s: %w", filepath.Base(path), readErr)
		}
	}
	return events, nil
}
