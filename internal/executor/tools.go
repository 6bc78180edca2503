// Engine-bound tools: agent catalog, delegation and skill loading.
package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vinayprograms/agentloop/internal/agents"
	"github.com/vinayprograms/agentloop/internal/tools"
)

// skillSet holds loaded skill documents in load order.
type skillSet struct {
	mu      sync.Mutex
	order   []string
	content map[string]string
}

func newSkillSet() *skillSet {
	return &skillSet{content: make(map[string]string)}
}

// Put stores content under id; reloading an id replaces its content in place.
func (s *skillSet) Put(id, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.content[id]; !ok {
		s.order = append(s.order, id)
	}
	s.content[id] = content
}

// IDs returns identifiers in load order.
func (s *skillSet) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns the content of id.
func (s *skillSet) Get(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.content[id]
	return c, ok
}

func (e *Engine) registerEngineTools() {
	r := e.registry

	r.Register(tools.Definition{
		Name:        "list_agents",
		Description: "List the agents available for delegation.",
		Parameters:  tools.Schema(nil),
	}, e.listAgents)

	r.Register(tools.Definition{
		Name:        "get_agent_info",
		Description: "Get the description and tools of an agent.",
		Parameters:  tools.Schema(map[string]interface{}{"name": "string"}, "name"),
	}, e.getAgentInfo)

	r.Register(tools.Definition{
		Name:        "delegate_to_agent",
		Description: "Delegate a task to another agent and wait for its final answer.",
		Parameters: tools.Schema(map[string]interface{}{
			"name":    "string",
			"task":    "string",
			"context": "string",
		}, "name", "task"),
	}, e.delegateToAgent)

	r.Register(tools.Definition{
		Name:        "search_skills",
		Description: "Find instruction manuals and knowledge extensions. The query must describe the technical METHOD or SYSTEM needed, never the user's subject.",
		Parameters:  tools.Schema(map[string]interface{}{"query": "string"}, "query"),
	}, e.searchSkills)

	r.Register(tools.Definition{
		Name:        "list_skills_page",
		Description: "List every available skill, paginated. Use it when search finds nothing.",
		Parameters: tools.Schema(map[string]interface{}{
			"page": map[string]interface{}{"type": "integer", "default": 1},
		}),
	}, e.listSkillsPage)

	r.Register(tools.Definition{
		Name:        "load_skill",
		Description: "Load the instructions of a specific skill file.",
		Parameters:  tools.Schema(map[string]interface{}{"path": "string"}, "path"),
	}, e.loadSkill)
}

// dispatch routes a call through the registry inside a tool span.
func (e *Engine) dispatch(ctx context.Context, name string, args tools.Args, allow tools.Allow) string {
	ctx, span := e.startToolSpan(ctx, name)
	result := e.registry.Dispatch(ctx, name, args, allow)
	e.endToolSpan(span, result)
	return result
}

func (e *Engine) listAgents(_ context.Context, _ tools.Args) string {
	list, err := e.agents.List(e.opts.RootAgent)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return string(data)
}

func (e *Engine) getAgentInfo(_ context.Context, args tools.Args) string {
	name := args.String("name")
	def, err := e.agents.Load(name)
	if err != nil {
		msg := fmt.Sprintf("Error: %v", err)
		if errors.Is(err, agents.ErrAgentNotFound) {
			msg += didYouMean(e.agents.Suggest(name))
		}
		return msg
	}
	data, err := json.MarshalIndent(struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Tools       []string `json:"tools"`
	}{def.Name, def.Description, def.Tools}, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return string(data)
}

func (e *Engine) delegateToAgent(ctx context.Context, args tools.Args) string {
	caller := getAgentIdentity(ctx)
	name := args.String("name")

	if caller.Depth+1 > e.opts.MaxDepth {
		e.logger.Warn("delegation depth ceiling reached", map[string]interface{}{
			"caller": caller.Name,
			"target": name,
			"depth":  caller.Depth + 1,
		})
		return fmt.Sprintf("Error: Max delegation depth reached (%d).", e.opts.MaxDepth)
	}

	result, err := e.runAgent(ctx, name, args.String("task"), args.String("context"), caller.StepID, caller.Depth+1)
	if err != nil {
		caller.fatal = err
		return ""
	}
	return result
}

func (e *Engine) searchSkills(_ context.Context, args tools.Args) string {
	out, err := e.skills.Search(args.String("query"))
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return out
}

func (e *Engine) listSkillsPage(_ context.Context, args tools.Args) string {
	out, err := e.skills.Page(args.Int("page", 1))
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return out
}

func (e *Engine) loadSkill(_ context.Context, args tools.Args) string {
	id := path.Clean(filepath.ToSlash(strings.TrimSpace(args.String("path"))))
	content, err := e.skills.Load(id)
	if err != nil {
		e.logger.Debug("skill load failed", map[string]interface{}{"path": id, "error": err.Error()})
		return "Error: Invalid skill path or file not found." + didYouMean(e.skills.Suggest(id))
	}
	e.loaded.Put(id, content)
	e.logger.Info("skill loaded", map[string]interface{}{"path": id})
	return fmt.Sprintf("Skill instructions from '%s' loaded.", id)
}

func didYouMean(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	return " Did you mean: " + strings.Join(candidates, ", ") + "?"
}
