// Package agents loads agent definitions: markdown documents whose front
// matter names the agent, its backend hint and tool allow-list, and whose
// body is the agent's system prompt.
package agents

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"github.com/vinayprograms/agentloop/internal/frontmatter"
)

// DefaultModel is the model hint of agents that do not declare one.
const DefaultModel = "default"

// ErrAgentNotFound is returned when no document exists for an agent name.
var ErrAgentNotFound = errors.New("agent not found")

// ErrInvalidName is returned for names that do not denote a document inside the catalog directory.
var ErrInvalidName = errors.New("invalid agent name")

// Definition is an immutable agent description.
type Definition struct {
	Name         string
	Description  string
	Model        string
	Tools        []string
	Unrestricted bool // no tools key in the header: every tool is allowed
	SystemPrompt string
	Path         string
}

// Summary is the listing view of an agent.
type Summary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// header mirrors the front matter keys.
type header struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Model       string   `yaml:"model"`
	Tools       []string `yaml:"tools"`
}

// Catalog resolves agent names to documents in a directory.
type Catalog struct {
	dir string

	mu    sync.Mutex
	cache map[string]*Definition // nil when caching is off
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithCache keeps loaded definitions until Invalidate is called.
func WithCache() Option {
	return func(c *Catalog) {
		c.cache = make(map[string]*Definition)
	}
}

// NewCatalog creates a catalog over dir.
func NewCatalog(dir string, opts ...Option) *Catalog {
	c := &Catalog{dir: dir}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir returns the directory holding agent documents.
func (c *Catalog) Dir() string {
	return c.dir
}

// Invalidate drops cached definitions.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cache != nil {
		c.cache = make(map[string]*Definition)
	}
}

// ValidName reports whether name is a plain document name: non-empty,
// no path separators, no leading dot.
func ValidName(name string) bool {
	if strings.TrimSpace(name) == "" || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

// PathFor returns the document path for an agent name.
func (c *Catalog) PathFor(name string) string {
	return filepath.Join(c.dir, strings.ToLower(name)+".md")
}

// Load reads and parses the definition of name.
// Missing optional fields get defaults; only a missing or unreadable
// document is an error.
func (c *Catalog) Load(name string) (*Definition, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidName, name)
	}
	key := strings.ToLower(name)

	c.mu.Lock()
	if c.cache != nil {
		if def, ok := c.cache[key]; ok {
			c.mu.Unlock()
			return def, nil
		}
	}
	c.mu.Unlock()

	path := c.PathFor(name)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: '%s' not found at %s", ErrAgentNotFound, name, path)
		}
		return nil, fmt.Errorf("failed to read agent %s: %w", name, err)
	}

	def, err := Parse(name, string(content))
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", name, err)
	}
	def.Path = path

	c.mu.Lock()
	if c.cache != nil {
		c.cache[key] = def
	}
	c.mu.Unlock()
	return def, nil
}

// Parse builds a definition from document content.
func Parse(name, content string) (*Definition, error) {
	var h header
	body, err := frontmatter.Decode(content, &h)
	if err != nil {
		return nil, err
	}

	def := &Definition{
		Name:         h.Name,
		Description:  h.Description,
		Model:        h.Model,
		Tools:        h.Tools,
		Unrestricted: !frontmatter.Has(content, "tools"),
		SystemPrompt: strings.TrimSpace(body),
	}
	if def.Name == "" {
		def.Name = name
	}
	if def.Model == "" {
		def.Model = DefaultModel
	}
	if def.Tools == nil {
		def.Tools = []string{}
	}
	return def, nil
}

// files returns agent document paths sorted by name.
func (c *Catalog) files() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.md"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// List summarizes every agent except the one named exclude.
// Documents that fail to parse are skipped.
func (c *Catalog) List(exclude string) ([]Summary, error) {
	files, err := c.files()
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	out := []Summary{}
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		var h header
		if _, err := frontmatter.Decode(string(content), &h); err != nil {
			continue
		}
		name := h.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(f), ".md")
		}
		if exclude != "" && strings.EqualFold(name, exclude) {
			continue
		}
		desc := h.Description
		if desc == "" {
			desc = "No description"
		}
		out = append(out, Summary{Name: name, Description: desc})
	}
	return out, nil
}

// Names returns the document base names.
func (c *Catalog) Names() []string {
	files, err := c.files()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(filepath.Base(f), ".md"))
	}
	return names
}

// Suggest returns up to three agent names resembling name.
func (c *Catalog) Suggest(name string) []string {
	var out []string
	for _, m := range fuzzy.Find(strings.ToLower(name), c.Names()) {
		out = append(out, m.Str)
		if len(out) == 3 {
			break
		}
	}
	return out
}
