// Package main provides runtime execution for agent runs.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vinayprograms/agentloop/internal/agents"
	"github.com/vinayprograms/agentloop/internal/config"
	"github.com/vinayprograms/agentloop/internal/executor"
	"github.com/vinayprograms/agentloop/internal/llm"
	"github.com/vinayprograms/agentloop/internal/logging"
	"github.com/vinayprograms/agentloop/internal/session"
	"github.com/vinayprograms/agentloop/internal/skills"
	"github.com/vinayprograms/agentloop/internal/tools"
	"github.com/vinayprograms/agentloop/internal/watch"
)

// runtime handles the execution phase of a run.
type runtime struct {
	ws      *workspace
	cfg     *config.Config
	runID   string
	noTrace bool

	// Components
	factory  llm.ProviderFactory // Built from config when nil
	logger   *logging.Logger
	agents   *agents.Catalog
	skills   *skills.Catalog
	recorder session.Recorder
	traceDir string
	watcher  *watch.Watcher
	engine   *executor.Engine
	display  *display

	// I/O
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// Cleanup
	closers []func()
}

// newRuntime creates a runtime from a loaded workspace.
func newRuntime(ws *workspace) *runtime {
	return &runtime{
		ws:     ws,
		cfg:    ws.cfg,
		runID:  newRunID(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// setup initializes all runtime components. Returns error on failure.
func (rt *runtime) setup() error {
	if err := rt.setupLogger(); err != nil {
		return err
	}
	if rt.factory == nil {
		rt.factory = llm.NewConfigFactory(rt.cfg)
	}
	rt.agents = rt.ws.agentCatalog()
	rt.skills = rt.ws.skillCatalog()
	if err := rt.setupTrace(); err != nil {
		return err
	}
	rt.createEngine()
	if err := rt.setupWatch(); err != nil {
		return err
	}
	rt.setupCallbacks()
	return nil
}

// setupLogger configures diagnostics on stderr.
func (rt *runtime) setupLogger() error {
	l := logging.New()
	l.SetOutput(rt.stderr)
	l.SetFormat(rt.cfg.Log.Format)
	if err := l.SetLevelName(rt.cfg.Log.Level); err != nil {
		return err
	}
	rt.logger = l.WithTraceID(rt.runID)
	return nil
}

// setupTrace opens every configured trace sink.
func (rt *runtime) setupTrace() error {
	if rt.noTrace {
		rt.recorder = session.NewMemoryRecorder()
		return nil
	}

	var sinks []session.Recorder
	if rt.cfg.Trace.Dir != "" {
		fr, err := session.NewFileRecorder(rt.cfg.Trace.Dir, rt.runID)
		if err != nil {
			return fmt.Errorf("creating trace directory: %w", err)
		}
		rt.traceDir = fr.Dir()
		sinks = append(sinks, fr)
	}
	if rt.cfg.Trace.SQLitePath != "" {
		sr, err := session.NewSQLiteRecorder(rt.cfg.Trace.SQLitePath, rt.runID)
		if err != nil {
			return fmt.Errorf("opening trace store: %w", err)
		}
		sinks = append(sinks, sr)
	}
	if rt.cfg.Trace.NATSURL != "" {
		nr, err := session.NewNATSRecorder(rt.cfg.Trace.NATSURL, rt.cfg.Trace.NATSSubject, rt.runID)
		if err != nil {
			// Streaming is best effort; local sinks still record the run.
			rt.logger.Warn("trace streaming disabled", map[string]interface{}{"url": rt.cfg.Trace.NATSURL, "error": err.Error()})
		} else {
			rt.logger.Info("streaming trace", map[string]interface{}{"subject": nr.Subject()})
			sinks = append(sinks, nr)
		}
	}

	multi := session.NewMultiRecorder(sinks...)
	rt.recorder = multi
	rt.addCloser(func() {
		if err := multi.Close(); err != nil {
			rt.logger.Warn("failed to close trace sinks", map[string]interface{}{"error": err.Error()})
		}
	})
	return nil
}

// createEngine builds the orchestration engine from config.
func (rt *runtime) createEngine() {
	rt.engine = executor.New(rt.factory, rt.agents, rt.skills, executor.Options{
		RootAgent:     rt.cfg.Agent.Root,
		MaxSteps:      rt.cfg.Agent.MaxSteps,
		HistoryWindow: rt.cfg.Agent.HistoryWindow,
		MaxDepth:      rt.cfg.Agent.MaxDepth,
		Temperature:   rt.cfg.LLM.Temperature,
		MaxTokens:     rt.cfg.LLM.MaxTokens,
		Stop:          rt.cfg.LLM.Stop,
		Tools: tools.Options{
			Shell:        rt.cfg.Tools.Shell,
			ShellTimeout: rt.cfg.ShellTimeout(),
		},
	})
	rt.engine.SetRecorder(rt.recorder)
	rt.engine.SetLogger(rt.logger)
}

// setupWatch invalidates cached catalogs when their directories change.
func (rt *runtime) setupWatch() error {
	if !rt.cfg.Catalog.Watch {
		return nil
	}
	w, err := watch.New(rt.logger, watch.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("creating catalog watcher: %w", err)
	}
	if err := w.Add(rt.cfg.Agent.AgentsDir, rt.agents.Invalidate); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", rt.cfg.Agent.AgentsDir, err)
	}
	if err := w.Add(rt.cfg.Agent.SkillsDir, rt.skills.Invalidate); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", rt.cfg.Agent.SkillsDir, err)
	}
	rt.watcher = w
	rt.addCloser(func() { w.Close() })
	return nil
}

// setupCallbacks wires progress output.
func (rt *runtime) setupCallbacks() {
	rt.display = newDisplay(rt.stdout, rt.stderr)
	rt.engine.OnAgentStart = rt.display.agentStart
	rt.engine.OnThinking = rt.display.thinking
	rt.engine.OnToolCall = rt.display.toolCall
	rt.engine.OnToolResult = rt.display.toolResult
	rt.engine.OnAnswer = rt.display.answer
}

// run activates agent with task and returns the exit code.
// An empty task starts an interactive session on stdin.
func (rt *runtime) run(ctx context.Context, agent, task, extra string) int {
	if agent == "" {
		agent = rt.cfg.Agent.Root
	}
	if rt.watcher != nil {
		go rt.watcher.Run(ctx)
	}
	if task == "" {
		rt.engine.SetInput(executor.NewLineInput(rt.stdin, rt.stdout))
		rt.display.banner(agent)
	}

	rt.logger.Info("run started", map[string]interface{}{"agent": agent, "run": rt.runID})
	result, err := rt.engine.Run(ctx, agent, task, extra)
	if err != nil {
		fmt.Fprintf(rt.stderr, "\nerror: %v\n", err)
		rt.reportTrace()
		return 1
	}

	if task != "" {
		rt.display.final(result)
	} else {
		fmt.Fprintln(rt.stdout, result)
	}
	rt.reportTrace()
	return 0
}

func (rt *runtime) reportTrace() {
	if rt.traceDir != "" {
		rt.display.note("trace: " + rt.traceDir)
	}
}

// cleanup runs all registered cleanup functions once.
func (rt *runtime) cleanup() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

// addCloser registers a cleanup function.
func (rt *runtime) addCloser(fn func()) {
	rt.closers = append(rt.closers, fn)
}
