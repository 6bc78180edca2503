// Package tools holds the tool router: a registry of named tools, allow-list
// filtering and dispatch, plus the built-in shell and file tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync"
)

// Definition describes a tool to the model.
type Definition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"input_schema"`
}

// Required returns the names listed under the schema's "required" key.
func (d Definition) Required() []string {
	switch req := d.Parameters["required"].(type) {
	case []string:
		return req
	case []interface{}:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Schema builds a JSON-schema object from property types and required names.
// Property values are either a type name ("string") or a full property map.
func Schema(props map[string]interface{}, required ...string) map[string]interface{} {
	properties := make(map[string]interface{}, len(props))
	for name, p := range props {
		if typ, ok := p.(string); ok {
			properties[name] = map[string]interface{}{"type": typ}
			continue
		}
		properties[name] = p
	}
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// Args are the decoded arguments of one tool call.
type Args map[string]interface{}

// Has reports whether key is present and non-null.
func (a Args) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// String returns key as a string; non-string scalars are formatted.
func (a Args) String(key string) string {
	switch v := a[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		data, _ := json.Marshal(v)
		return string(data)
	}
}

// Int returns key as an int, or def when absent or not numeric.
func (a Args) Int(key string, def int) int {
	switch n := a[key].(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n > float64(math.MaxInt) || n < float64(math.MinInt) {
			return def
		}
		return int(n)
	case int:
		return n
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}

// Handler executes a tool and returns its textual result.
// Failures are reported in the text; handlers never return Go errors.
type Handler func(ctx context.Context, args Args) string

// Allow is a tool allow-list.
type Allow struct {
	all   bool
	names map[string]bool
}

// AllowAll permits every registered tool.
func AllowAll() Allow {
	return Allow{all: true}
}

// AllowOnly permits the named tools. With no names nothing is permitted.
func AllowOnly(names ...string) Allow {
	a := Allow{names: make(map[string]bool, len(names))}
	for _, n := range names {
		a.names[n] = true
	}
	return a
}

// Permits reports whether name is on the list.
func (a Allow) Permits(name string) bool {
	return a.all || a.names[name]
}

type entry struct {
	def     Definition
	handler Handler
}

// Registry stores tools in registration order.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a tool, replacing any existing tool with the same name.
func (r *Registry) Register(def Definition, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	if def.Parameters == nil {
		def.Parameters = Schema(nil)
	}
	r.entries[def.Name] = entry{def: def, handler: handler}
}

// Get returns a tool definition by name.
func (r *Registry) Get(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.def, ok
}

// Names returns every registered tool name in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Definitions returns the definitions permitted by allow, in registration order.
func (r *Registry) Definitions(allow Allow) []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Definition{}
	for _, name := range r.order {
		if allow.Permits(name) {
			out = append(out, r.entries[name].def)
		}
	}
	return out
}

// Dispatch runs the named tool. Unknown tools, tools outside the allow-list
// and calls missing a required argument never reach a handler.
func (r *Registry) Dispatch(ctx context.Context, name string, args Args, allow Allow) string {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok || !allow.Permits(name) {
		return fmt.Sprintf("Error: unknown tool '%s'", name)
	}
	if args == nil {
		args = Args{}
	}
	for _, req := range e.def.Required() {
		if !args.Has(req) {
			return fmt.Sprintf("Error: missing required argument '%s' for %s", req, name)
		}
	}
	return e.handler(ctx, args)
}

// RenderCatalog renders definitions as indented JSON for the system prompt.
func RenderCatalog(defs []Definition) string {
	if defs == nil {
		defs = []Definition{}
	}
	data, err := json.MarshalIndent(defs, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}
