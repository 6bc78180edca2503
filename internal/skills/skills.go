// Package skills provides discovery and loading of skill documents.
// Skills are markdown manuals grouped in package folders under a root
// directory, e.g. skills/obsidian/search.md.
package skills

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"github.com/vinayprograms/agentloop/internal/frontmatter"
)

const (
	// HeaderSize is how much of each document keyword search looks at.
	HeaderSize = 1000

	// PageSize is the number of packages per listing page.
	PageSize = 5

	defaultPackageDescription = "Toolset."
	defaultDescription        = "No description"
)

// ErrInvalidSkill is returned for identifiers outside the catalog or missing on disk.
var ErrInvalidSkill = errors.New("invalid skill path or file not found")

// packageIndexFiles describe a package; they are not listed as skill files.
var packageIndexFiles = []string{"_index.md", "SKILL.md"}

var descriptionLine = regexp.MustCompile(`(?i)description:\s*(.+)`)

// Meta is the front matter of a skill document.
type Meta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Catalog enumerates, searches and loads skill documents under a root directory.
type Catalog struct {
	root string // as configured, slash separated, no trailing slash

	mu      sync.Mutex
	cache   bool
	headers map[string]string // identifier -> header excerpt
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithCache keeps document headers in memory until Invalidate is called.
func WithCache() Option {
	return func(c *Catalog) {
		c.cache = true
	}
}

// NewCatalog creates a catalog rooted at dir.
func NewCatalog(dir string, opts ...Option) *Catalog {
	root := strings.TrimSuffix(filepath.ToSlash(filepath.Clean(dir)), "/")
	c := &Catalog{root: root}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Root returns the catalog root as used in identifiers.
func (c *Catalog) Root() string {
	return c.root
}

// Invalidate drops cached headers.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers = nil
}

// Identifiers lists every skill document, sorted.
func (c *Catalog) Identifiers() ([]string, error) {
	if _, err := os.Stat(filepath.FromSlash(c.root)); os.IsNotExist(err) {
		return nil, nil
	}
	var ids []string
	err := filepath.WalkDir(filepath.FromSlash(c.root), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		ids = append(ids, filepath.ToSlash(p))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan skills in %s: %w", c.root, err)
	}
	sort.Strings(ids)
	return ids, nil
}

// headerIndex returns the header excerpt of every document.
func (c *Catalog) headerIndex() (map[string]string, error) {
	c.mu.Lock()
	if c.cache && c.headers != nil {
		h := c.headers
		c.mu.Unlock()
		return h, nil
	}
	c.mu.Unlock()

	ids, err := c.Identifiers()
	if err != nil {
		return nil, err
	}
	headers := make(map[string]string, len(ids))
	for _, id := range ids {
		h, err := readHeader(filepath.FromSlash(id))
		if err != nil {
			continue
		}
		headers[id] = h
	}

	if c.cache {
		c.mu.Lock()
		c.headers = headers
		c.mu.Unlock()
	}
	return headers, nil
}

func readHeader(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	return string(buf[:n]), nil
}

// Search matches any query word longer than two characters against each
// document's identifier and header, case-insensitively.
func (c *Catalog) Search(query string) (string, error) {
	var tokens []string
	for _, t := range strings.Fields(strings.ToLower(query)) {
		if len([]rune(t)) > 2 {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) == 0 {
		return "Query too short or empty.", nil
	}

	headers, err := c.headerIndex()
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(headers))
	for id := range headers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var results []string
	for _, id := range ids {
		header := headers[id]
		target := strings.ToLower(id + " " + header)
		if !containsAny(target, tokens) {
			continue
		}
		desc := defaultDescription
		if m := descriptionLine.FindStringSubmatch(header); m != nil {
			desc = strings.TrimSpace(m[1])
		}
		results = append(results, fmt.Sprintf("- Path: %s\n  Description: %s", id, desc))
	}

	if len(results) == 0 {
		return "No skills found for those terms.", nil
	}
	return strings.Join(results, "\n"), nil
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// packages returns the sorted package directories under the root.
func (c *Catalog) packages() ([]string, error) {
	entries, err := os.ReadDir(filepath.FromSlash(c.root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Page renders one page of the package listing, PageSize packages per page.
func (c *Catalog) Page(page int) (string, error) {
	if page < 1 {
		page = 1
	}
	dirs, err := c.packages()
	if err != nil {
		return "", fmt.Errorf("failed to list skill packages: %w", err)
	}
	total := len(dirs)
	if total == 0 {
		return "No skills found.", nil
	}

	start := (page - 1) * PageSize
	if start >= total {
		return fmt.Sprintf("Page %d is empty. Total skills: %d.", page, total), nil
	}
	end := start + PageSize
	if end > total {
		end = total
	}

	var blocks []string
	for _, dir := range dirs[start:end] {
		blocks = append(blocks, c.renderPackage(dir))
	}

	pages := (total-1)/PageSize + 1
	footer := fmt.Sprintf("\n[Page %d of %d. Total: %d skills]", page, pages, total)
	return strings.Join(blocks, "\n") + footer, nil
}

func (c *Catalog) renderPackage(dir string) string {
	pkgPath := path.Join(c.root, dir)

	desc := defaultPackageDescription
	for _, index := range packageIndexFiles {
		content, err := os.ReadFile(filepath.FromSlash(path.Join(pkgPath, index)))
		if err != nil {
			continue
		}
		var meta Meta
		if _, err := frontmatter.Decode(string(content), &meta); err != nil {
			continue
		}
		if meta.Description != "" {
			desc = meta.Description
		}
		break
	}

	var files []string
	entries, _ := os.ReadDir(filepath.FromSlash(pkgPath))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") || isIndexFile(e.Name()) {
			continue
		}
		files = append(files, path.Join(pkgPath, e.Name()))
	}

	list := "   (no extra files)"
	if len(files) > 0 {
		list = "   - " + strings.Join(files, "\n   - ")
	}
	return fmt.Sprintf("📦 %s: %s\n%s", strings.ToUpper(dir), desc, list)
}

func isIndexFile(name string) bool {
	for _, f := range packageIndexFiles {
		if name == f {
			return true
		}
	}
	return false
}

// Contains reports whether id names a location inside the catalog root.
func (c *Catalog) Contains(id string) bool {
	clean := path.Clean(filepath.ToSlash(id))
	return strings.HasPrefix(clean, c.root+"/")
}

// Load returns the content of a skill document.
func (c *Catalog) Load(id string) (string, error) {
	if !c.Contains(id) {
		return "", fmt.Errorf("%w: %s", ErrInvalidSkill, id)
	}
	p := filepath.FromSlash(path.Clean(filepath.ToSlash(id)))
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrInvalidSkill, id)
	}
	content, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("failed to read skill %s: %w", id, err)
	}
	return string(content), nil
}

// Suggest returns up to three identifiers resembling id.
func (c *Catalog) Suggest(id string) []string {
	ids, err := c.Identifiers()
	if err != nil || len(ids) == 0 {
		return nil
	}
	var out []string
	for _, m := range fuzzy.Find(path.Base(id), ids) {
		out = append(out, m.Str)
		if len(out) == 3 {
			break
		}
	}
	return out
}
