// Package executor runs agents: it builds prompts, calls the backend, parses
// each turn, routes tool calls (including recursive delegation to other
// agents) and records every step in the trace.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vinayprograms/agentloop/internal/agents"
	"github.com/vinayprograms/agentloop/internal/llm"
	"github.com/vinayprograms/agentloop/internal/logging"
	"github.com/vinayprograms/agentloop/internal/response"
	"github.com/vinayprograms/agentloop/internal/session"
	"github.com/vinayprograms/agentloop/internal/skills"
	"github.com/vinayprograms/agentloop/internal/tools"
)

// Terminal results of an activation.
const (
	ResultMaxSteps       = "Error: Max steps reached."
	ResultUserTerminated = "User terminated."
	ResultSessionEnded   = "Session ended."
)

// Context keys for agent identity (propagated through tool handlers)
type ctxKey int

const ctxKeyAgent ctxKey = iota

// AgentIdentity describes the activation a call path belongs to.
type AgentIdentity struct {
	Name   string
	StepID string
	Depth  int

	// fatal carries a backend failure out of a nested delegation.
	fatal error
}

// withAgentIdentity returns a context with agent identity attached.
func withAgentIdentity(ctx context.Context, id *AgentIdentity) context.Context {
	return context.WithValue(ctx, ctxKeyAgent, id)
}

// getAgentIdentity extracts agent identity from context.
func getAgentIdentity(ctx context.Context) *AgentIdentity {
	if id, ok := ctx.Value(ctxKeyAgent).(*AgentIdentity); ok {
		return id
	}
	return &AgentIdentity{StepID: session.RootStepID}
}

// Input supplies user turns to interactive activations.
// ReadLine returns io.EOF when input is exhausted.
type Input interface {
	ReadLine(prompt string) (string, error)
}

// Options tunes the loop.
type Options struct {
	RootAgent     string   // Excluded from list_agents; its tool results carry no name prefix
	MaxSteps      int      // Iterations per activation
	HistoryWindow int      // Messages sent with each request
	MaxDepth      int      // Delegation depth ceiling
	Temperature   float64
	MaxTokens     int
	Stop          []string
	Tools         tools.Options
}

// DefaultOptions returns the standard loop settings.
func DefaultOptions() Options {
	return Options{
		RootAgent:     "brain",
		MaxSteps:      15,
		HistoryWindow: 15,
		MaxDepth:      5,
		Temperature:   0.1,
		MaxTokens:     4096,
		Stop:          []string{"<|im_end|>"},
	}
}

// Engine drives agent activations. One engine serves one top-level run:
// the session context and loaded skills it holds are shared by every
// activation level and are only touched by one call path at a time.
type Engine struct {
	factory  llm.ProviderFactory
	agents   *agents.Catalog
	skills   *skills.Catalog
	registry *tools.Registry
	session  *session.Context
	loaded   *skillSet
	recorder session.Recorder
	logger   *logging.Logger
	input    Input
	opts     Options

	// Callbacks
	OnAgentStart func(name string, depth int)
	OnThinking   func(name string)
	OnToolCall   func(agent, tool string, args map[string]interface{})
	OnToolResult func(agent, tool, result string)
	OnAnswer     func(agent, text string)
}

// New creates an engine. Zero option values take their defaults.
func New(factory llm.ProviderFactory, agentCat *agents.Catalog, skillCat *skills.Catalog, opts Options) *Engine {
	def := DefaultOptions()
	if opts.RootAgent == "" {
		opts.RootAgent = def.RootAgent
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = def.MaxSteps
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = def.HistoryWindow
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = def.MaxDepth
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = def.MaxTokens
	}

	sess := session.NewContext()
	e := &Engine{
		factory:  factory,
		agents:   agentCat,
		skills:   skillCat,
		registry: tools.NewBuiltins(sess, opts.Tools),
		session:  sess,
		loaded:   newSkillSet(),
		recorder: session.NewMemoryRecorder(),
		logger:   logging.New().WithComponent("executor"),
		opts:     opts,
	}
	e.registerEngineTools()
	return e
}

// SetRecorder replaces the trace recorder.
func (e *Engine) SetRecorder(r session.Recorder) {
	if r != nil {
		e.recorder = r
	}
}

// SetLogger replaces the logger.
func (e *Engine) SetLogger(l *logging.Logger) {
	if l != nil {
		e.logger = l.WithComponent("executor")
	}
}

// SetInput enables interactive activations.
func (e *Engine) SetInput(in Input) {
	e.input = in
}

// Session returns the shared session context.
func (e *Engine) Session() *session.Context {
	return e.session
}

// Registry returns the tool registry.
func (e *Engine) Registry() *tools.Registry {
	return e.registry
}

// LoadedSkills returns loaded skill identifiers in load order.
func (e *Engine) LoadedSkills() []string {
	return e.loaded.IDs()
}

// Run activates agent with task. An empty task starts an interactive session.
// Only backend failures are returned as errors; every other failure is
// reported in the result text.
func (e *Engine) Run(ctx context.Context, agent, task, extraContext string) (string, error) {
	return e.runAgent(ctx, agent, task, extraContext, session.RootStepID, 0)
}

// runAgent is one activation: a fresh history, a local step counter and budget.
func (e *Engine) runAgent(ctx context.Context, name, task, extra, parentStep string, depth int) (string, error) {
	def, err := e.agents.Load(name)
	if err != nil {
		e.logger.Warn("failed to load agent", map[string]interface{}{"agent": name, "error": err.Error()})
		return fmt.Sprintf("Failed to load agent %s: %v", name, err), nil
	}

	interactive := strings.TrimSpace(task) == ""
	if interactive && (depth > 0 || e.input == nil) {
		return fmt.Sprintf("Error: no task given for agent %s.", def.Name), nil
	}

	provider, err := e.factory.GetProvider(def.Model)
	if err != nil {
		return "", fmt.Errorf("no backend for agent %s: %w", def.Name, err)
	}

	ctx, span := e.startAgentSpan(ctx, def.Name, def.Model, depth)
	start := time.Now()
	e.logger.AgentStart(def.Name, depth, parentStep)
	if e.OnAgentStart != nil {
		e.OnAgentStart(def.Name, depth)
	}

	a := &activation{
		engine:      e,
		def:         def,
		allow:       allowFor(def),
		provider:    provider,
		parentStep:  parentStep,
		depth:       depth,
		interactive: interactive,
	}
	if !interactive {
		content := task
		if extra != "" {
			content += "\n\n--- CONTEXT ---\n" + extra
		}
		a.history = append(a.history, llm.Message{Role: llm.RoleUser, Content: content})
	}

	result, err := a.loop(ctx)
	e.logger.AgentComplete(def.Name, depth, a.counter, time.Since(start))
	e.endAgentSpan(span, result, err)
	return result, err
}

func allowFor(def *agents.Definition) tools.Allow {
	if def.Unrestricted {
		return tools.AllowAll()
	}
	return tools.AllowOnly(def.Tools...)
}

// activation is the state of one runAgent call.
type activation struct {
	engine      *Engine
	def         *agents.Definition
	allow       tools.Allow
	provider    llm.Provider
	parentStep  string
	depth       int
	interactive bool

	history []llm.Message
	counter int // step id counter; never reset
	steps   int // budget used since the last user turn
}

func (a *activation) loop(ctx context.Context) (string, error) {
	e := a.engine
	for {
		if err := ctx.Err(); err != nil {
			if a.interactive {
				return ResultUserTerminated, nil
			}
			return "", fmt.Errorf("agent %s interrupted: %w", a.def.Name, err)
		}

		if a.interactive && a.awaitingInput() {
			line, err := a.readLine(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return ResultSessionEnded, nil
				}
				if ctx.Err() != nil {
					return ResultUserTerminated, nil
				}
				return "", fmt.Errorf("failed to read input: %w", err)
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "exit", "quit":
				return ResultUserTerminated, nil
			}
			a.history = append(a.history, llm.Message{Role: llm.RoleUser, Content: line})
			a.steps = 0
		}

		stepID := session.StepID(a.parentStep, a.def.Name, a.counter)
		answer, done, err := a.step(ctx, stepID)
		if err != nil || done {
			return answer, err
		}

		a.counter++
		if answer != "" {
			// Interactive answer: the next iteration waits for the user.
			continue
		}
		a.steps++
		if a.steps >= e.opts.MaxSteps {
			e.logger.Warn("step budget exhausted", map[string]interface{}{"agent": a.def.Name, "steps": a.steps})
			return ResultMaxSteps, nil
		}
	}
}

type lineResult struct {
	line string
	err  error
}

// readLine waits for the next user turn or for ctx to end.
// A read still pending after cancellation is abandoned.
func (a *activation) readLine(ctx context.Context) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := a.engine.input.ReadLine(strings.ToLower(a.def.Name) + " > ")
		ch <- lineResult{line: line, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}

func (a *activation) awaitingInput() bool {
	return len(a.history) == 0 || a.history[len(a.history)-1].Role == llm.RoleAssistant
}

// step runs one generate, parse, act cycle. It returns done with the final
// answer of a task activation, or the displayed answer of an interactive one.
func (a *activation) step(ctx context.Context, stepID string) (answer string, done bool, err error) {
	e := a.engine
	ctx, span := e.startStepSpan(ctx, a.def.Name, stepID)
	defer func() { e.endStepSpan(span, err) }()

	e.record(stepID, session.EventContext, a.def.Name, a.depth, map[string]interface{}{
		"session": e.session.Snapshot(),
		"skills":  e.loaded.IDs(),
	})

	messages := append([]llm.Message{{Role: llm.RoleSystem, Content: e.systemPrompt(a.def, a.allow)}},
		lastMessages(a.history, e.opts.HistoryWindow)...)
	e.record(stepID, session.EventInput, a.def.Name, a.depth, messages)

	if e.OnThinking != nil {
		e.OnThinking(a.def.Name)
	}
	resp, err := a.provider.Chat(ctx, llm.ChatRequest{
		Messages:    messages,
		Temperature: e.opts.Temperature,
		MaxTokens:   e.opts.MaxTokens,
		Stop:        e.opts.Stop,
	})
	if err != nil {
		e.record(stepID, session.EventError, a.def.Name, a.depth, map[string]interface{}{"error": err.Error()})
		e.logger.Error("backend call failed", map[string]interface{}{"agent": a.def.Name, "step": stepID, "error": err.Error()})
		return "", true, fmt.Errorf("backend error in agent %s: %w", a.def.Name, err)
	}
	e.record(stepID, session.EventOutput, a.def.Name, a.depth, map[string]interface{}{
		"content": resp.Content,
		"usage": map[string]int{
			"input_tokens":  resp.InputTokens,
			"output_tokens": resp.OutputTokens,
		},
	})
	a.history = append(a.history, llm.Message{Role: llm.RoleAssistant, Content: resp.Content})

	parsed := response.Parse(resp.Content)
	switch parsed.Kind {
	case response.KindToolCall:
		result, err := a.callTool(ctx, stepID, parsed.Call)
		if err != nil {
			return "", true, err
		}
		a.history = append(a.history, llm.Message{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("TOOL RESULT (%s): %s%s", parsed.Call.Name, a.resultPrefix(), result),
		})
		e.record(stepID, session.EventToolResult, a.def.Name, a.depth, map[string]interface{}{
			"tool":      parsed.Call.Name,
			"arguments": parsed.Call.Arguments,
			"result":    result,
		})
		return "", false, nil

	case response.KindError:
		e.record(stepID, session.EventError, a.def.Name, a.depth, map[string]interface{}{"diagnostic": parsed.Diagnostic})
		e.logger.Debug("malformed tool call", map[string]interface{}{"agent": a.def.Name, "diagnostic": parsed.Diagnostic})
		a.history = append(a.history, llm.Message{Role: llm.RoleUser, Content: correctiveFeedback(parsed.Diagnostic)})
		return "", false, nil

	default:
		text := response.StripReasoning(parsed.Answer)
		if !a.interactive {
			return text, true, nil
		}
		if e.OnAnswer != nil {
			e.OnAnswer(a.def.Name, text)
		}
		if text == "" {
			text = "(empty answer)"
		}
		return text, false, nil
	}
}

// callTool dispatches a parsed call under this activation's identity.
func (a *activation) callTool(ctx context.Context, stepID string, call *response.ToolCall) (string, error) {
	e := a.engine
	id := &AgentIdentity{Name: a.def.Name, StepID: stepID, Depth: a.depth}
	ctx = withAgentIdentity(ctx, id)

	if e.OnToolCall != nil {
		e.OnToolCall(a.def.Name, call.Name, call.Arguments)
	}
	e.logger.ToolCall(a.def.Name, call.Name, call.Arguments)

	start := time.Now()
	result := e.dispatch(ctx, call.Name, tools.Args(call.Arguments), a.allow)
	e.logger.ToolResult(a.def.Name, call.Name, time.Since(start), len(result))

	if id.fatal != nil {
		return "", id.fatal
	}
	if e.OnToolResult != nil {
		e.OnToolResult(a.def.Name, call.Name, result)
	}
	return result, nil
}

// resultPrefix tags tool results with the acting agent, except for the root agent.
func (a *activation) resultPrefix() string {
	if strings.EqualFold(a.def.Name, a.engine.opts.RootAgent) {
		return ""
	}
	return fmt.Sprintf("[AGENT: %s] ", strings.ToUpper(a.def.Name))
}

func correctiveFeedback(diagnostic string) string {
	return fmt.Sprintf(`Tool Error: %s. Reply with a valid <tool_call>{"name": "...", "arguments": {...}}</tool_call> block.`, strings.TrimSuffix(diagnostic, "."))
}
