package executor

import (
	"strings"

	"github.com/vinayprograms/agentloop/internal/agents"
	"github.com/vinayprograms/agentloop/internal/tools"
)

// noSkillsLoaded stands in for the skill section before any load_skill call.
const noSkillsLoaded = "(No skills loaded. Use search_skills if needed.)"

// SystemConcepts explains skills to every agent.
const SystemConcepts = `SYSTEM CONCEPTS:
1. WHAT A SKILL IS:
   - A skill is a knowledge extension that teaches how to operate a system or perform a technical function.
   - It provides the correct syntax and the environment variables (e.g. $VAR) the operation needs.
   - ZERO-KNOWLEDGE POLICY: you do not know how to operate the system. Never run commands from prior knowledge. Read the manual (load_skill) before using any execution tool.

2. USING search_skills:
   - Search for capabilities, tools or functional operations.
   - Never include the subject of the request in a skill search. Search only for the technical function needed (e.g. search, read, system).
   - The flow is: discover the method (skill), LOAD it (load_skill), then run the documented syntax using the variables (e.g. $VAR) literally.
   - The variables ($VAR) are already configured. Use them literally; the shell resolves them.`

// Rules closes every system prompt.
const Rules = `RULES:
1. Answer directly.
2. Call tools ONLY with JSON: <tool_call>{"name": "...", "arguments": {...}}</tool_call>
3. Search skills for HOW (the technical action), never for WHAT (the user's subject).
4. The user does NOT see agent replies. When an agent finds information, copy it IN FULL into your final answer.
5. Every environment variable (e.g. $VAR) mentioned in a skill is set in the shell. Use it literally.
6. When blocked, try another way (at least 2 attempts).
7. Put your final answer inside <answer>...</answer>.`

// systemPrompt assembles persona, concepts, session context, loaded skills,
// the permitted tool catalog and rules.
func (e *Engine) systemPrompt(def *agents.Definition, allow tools.Allow) string {
	var b strings.Builder

	b.WriteString(def.SystemPrompt)
	b.WriteString("\n\n---\n")
	b.WriteString(SystemConcepts)

	b.WriteString("\n\nSESSION CONTEXT:\n")
	b.WriteString(e.session.Summary())

	b.WriteString("\n\nACTIVE SKILLS (loaded capabilities):\n")
	b.WriteString(e.renderSkills())

	b.WriteString("\n\nAVAILABLE TOOLS:\n")
	b.WriteString(tools.RenderCatalog(e.registry.Definitions(allow)))

	b.WriteString("\n\n")
	b.WriteString(Rules)
	b.WriteString("\n")
	return b.String()
}

func (e *Engine) renderSkills() string {
	ids := e.loaded.IDs()
	if len(ids) == 0 {
		return noSkillsLoaded
	}
	blocks := make([]string, 0, len(ids))
	for _, id := range ids {
		content, _ := e.loaded.Get(id)
		blocks = append(blocks, "--- SKILL FILE: "+id+" ---\n"+content)
	}
	return strings.Join(blocks, "\n\n")
}
