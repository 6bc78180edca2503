// Package logging provides the structured logger used across the engine.
// Records go to stderr by default so answers printed on stdout stay clean.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level is a log severity.
type Level = zerolog.Level

// Levels
const (
	LevelDebug = zerolog.DebugLevel
	LevelInfo  = zerolog.InfoLevel
	LevelWarn  = zerolog.WarnLevel
	LevelError = zerolog.ErrorLevel
)

// Formats
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// sink is shared by a logger and the loggers derived from it.
type sink struct {
	mu     sync.Mutex
	out    io.Writer
	format string
	level  Level
	zl     zerolog.Logger
}

func (s *sink) rebuild() {
	var w io.Writer = s.out
	if s.format != FormatJSON {
		w = zerolog.ConsoleWriter{
			Out:        s.out,
			NoColor:    true,
			TimeFormat: time.RFC3339,
			PartsOrder: []string{
				zerolog.LevelFieldName,
				zerolog.TimestampFieldName,
				"component",
				zerolog.MessageFieldName,
			},
			FieldsExclude: []string{"component"},
			FormatLevel: func(i interface{}) string {
				return strings.ToUpper(fmt.Sprint(i))
			},
			FormatFieldValue: func(i interface{}) string {
				if i == nil {
					return ""
				}
				return fmt.Sprint(i)
			},
		}
	}
	s.zl = zerolog.New(w).Level(s.level).With().Timestamp().Logger()
}

// Logger writes structured records.
type Logger struct {
	sink      *sink
	component string
	traceID   string
}

// New creates a logger writing console records to stderr at info level.
func New() *Logger {
	s := &sink{out: os.Stderr, format: FormatConsole, level: LevelInfo}
	s.rebuild()
	return &Logger{sink: s}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	l := New()
	l.SetOutput(io.Discard)
	return l
}

// WithComponent returns a logger tagging records with component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{sink: l.sink, component: component, traceID: l.traceID}
}

// WithTraceID returns a logger tagging records with a run id.
func (l *Logger) WithTraceID(id string) *Logger {
	return &Logger{sink: l.sink, component: l.component, traceID: id}
}

// SetLevel sets the minimum level.
func (l *Logger) SetLevel(level Level) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
	l.sink.rebuild()
}

// SetLevelName sets the level from a name; unknown names keep the current level.
func (l *Logger) SetLevelName(name string) error {
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil || name == "" {
		return fmt.Errorf("unknown log level %q", name)
	}
	l.SetLevel(level)
	return nil
}

// SetOutput redirects records.
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.out = w
	l.sink.rebuild()
}

// SetFormat selects console or json records.
func (l *Logger) SetFormat(format string) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.format = format
	l.sink.rebuild()
}

func (l *Logger) log(level Level, msg string, fields []map[string]interface{}) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	ev := l.sink.zl.WithLevel(level)
	if !ev.Enabled() {
		return
	}
	if l.component != "" {
		component := l.component
		if l.sink.format != FormatJSON {
			component = "[" + component + "]"
		}
		ev = ev.Str("component", component)
	}
	if l.traceID != "" {
		ev = ev.Str("trace_id", l.traceID)
	}
	for _, f := range fields {
		keys := make([]string, 0, len(f))
		for k := range f {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			ev = ev.Interface(k, f[k])
		}
	}
	ev.Msg(msg)
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields)
}

// Info logs at info level.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields)
}

// Error logs at error level.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields)
}

// ToolCall logs a dispatched tool call.
func (l *Logger) ToolCall(agent, tool string, args map[string]interface{}) {
	l.Debug("tool call", map[string]interface{}{
		"agent": agent,
		"tool":  tool,
		"args":  args,
	})
}

// ToolResult logs a tool's completion.
func (l *Logger) ToolResult(agent, tool string, duration time.Duration, resultLen int) {
	l.Debug("tool result", map[string]interface{}{
		"agent":       agent,
		"tool":        tool,
		"duration_ms": duration.Milliseconds(),
		"result_len":  resultLen,
	})
}

// AgentStart logs an activation.
func (l *Logger) AgentStart(agent string, depth int, stepID string) {
	l.Info("agent start", map[string]interface{}{
		"agent": agent,
		"depth": depth,
		"step":  stepID,
	})
}

// AgentComplete logs the end of an activation.
func (l *Logger) AgentComplete(agent string, depth, steps int, duration time.Duration) {
	l.Info("agent complete", map[string]interface{}{
		"agent":       agent,
		"depth":       depth,
		"steps":       steps,
		"duration_ms": duration.Milliseconds(),
	})
}
