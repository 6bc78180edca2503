package skills

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFile creates a file (and its parents) under dir.
func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestCatalog(t *testing.T) (*Catalog, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "skills")
	writeFile(t, root, "obsidian/SKILL.md", "---\nname: obsidian\ndescription: Vault operations\n---\nUse $VAULT_PATH.")
	writeFile(t, root, "obsidian/search.md", "---\ndescription: Full text search in notes\n---\nrun grep -r")
	writeFile(t, root, "obsidian/write.md", "Append notes with tee.")
	writeFile(t, root, "git/_index.md", "---\ndescription: Version control\n---\n")
	writeFile(t, root, "git/commit.md", "---\ndescription: Create commits\n---\ngit commit -m")
	return NewCatalog(root), filepath.ToSlash(root)
}

func TestCatalog_Identifiers(t *testing.T) {
	c, root := newTestCatalog(t)

	ids, err := c.Identifiers()
	if err != nil {
		t.Fatalf("identifiers error: %v", err)
	}
	want := []string{
		root + "/git/_index.md",
		root + "/git/commit.md",
		root + "/obsidian/SKILL.md",
		root + "/obsidian/search.md",
		root + "/obsidian/write.md",
	}
	if len(ids) != len(want) {
		t.Fatalf("expected %d identifiers, got %v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("identifier %d: expected %s, got %s", i, want[i], ids[i])
		}
	}
}

func TestCatalog_IdentifiersMissingRoot(t *testing.T) {
	c := NewCatalog(filepath.Join(t.TempDir(), "nope"))
	ids, err := c.Identifiers()
	if err != nil || len(ids) != 0 {
		t.Errorf("missing root should be empty, got %v %v", ids, err)
	}
}

func TestCatalog_Search(t *testing.T) {
	c, root := newTestCatalog(t)

	// Temp dir names embed the test name, so avoid words from it.
	out, err := c.Search("NOTES xy")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "- Path: "+root+"/obsidian/search.md\n  Description: Full text search in notes") {
		t.Errorf("expected search.md hit, got:\n%s", out)
	}
	// "notes" also appears in write.md's body, which has no description.
	if !strings.Contains(out, "- Path: "+root+"/obsidian/write.md\n  Description: No description") {
		t.Errorf("expected write.md hit, got:\n%s", out)
	}
	if strings.Contains(out, "commit.md") {
		t.Errorf("commit.md should not match, got:\n%s", out)
	}
}

func TestCatalog_SearchMatchesIdentifier(t *testing.T) {
	c, _ := newTestCatalog(t)
	out, _ := c.Search("git")
	if !strings.Contains(out, "commit.md") || !strings.Contains(out, "_index.md") {
		t.Errorf("expected identifier match on package name, got:\n%s", out)
	}
}

func TestCatalog_SearchShortQuery(t *testing.T) {
	c, _ := newTestCatalog(t)
	for _, q := range []string{"", "  ", "a of"} {
		out, err := c.Search(q)
		if err != nil {
			t.Fatal(err)
		}
		if out != "Query too short or empty." {
			t.Errorf("query %q: unexpected %q", q, out)
		}
	}
}

func TestCatalog_SearchNoHits(t *testing.T) {
	c, _ := newTestCatalog(t)
	out, _ := c.Search("kubernetes")
	if out != "No skills found for those terms." {
		t.Errorf("unexpected %q", out)
	}
}

func TestCatalog_SearchHeaderLimit(t *testing.T) {
	root := filepath.Join(t.TempDir(), "skills")
	writeFile(t, root, "big/doc.md", strings.Repeat("x", HeaderSize)+" needle")
	c := NewCatalog(root)
	out, _ := c.Search("needle")
	if out != "No skills found for those terms." {
		t.Errorf("text past the header must not match, got %q", out)
	}
}

func TestCatalog_Page(t *testing.T) {
	c, root := newTestCatalog(t)

	out, err := c.Page(1)
	if err != nil {
		t.Fatal(err)
	}
	want := "📦 GIT: Version control\n" +
		"   - " + root + "/git/commit.md\n" +
		"📦 OBSIDIAN: Vault operations\n" +
		"   - " + root + "/obsidian/search.md\n" +
		"   - " + root + "/obsidian/write.md\n" +
		"[Page 1 of 1. Total: 2 skills]"
	if out != want {
		t.Errorf("unexpected page:\n%s\nwant:\n%s", out, want)
	}

	out, _ = c.Page(3)
	if out != "Page 3 is empty. Total skills: 2." {
		t.Errorf("unexpected %q", out)
	}
}

func TestCatalog_PagePagination(t *testing.T) {
	root := filepath.Join(t.TempDir(), "skills")
	for i := 0; i < 7; i++ {
		writeFile(t, root, fmt.Sprintf("pkg%d/x.md", i), "x")
	}
	writeFile(t, root, "empty0/SKILL.md", "no front matter")
	c := NewCatalog(root)

	out, _ := c.Page(2)
	if !strings.HasSuffix(out, "[Page 2 of 2. Total: 8 skills]") {
		t.Errorf("unexpected footer:\n%s", out)
	}
	if strings.Count(out, "📦") != 3 {
		t.Errorf("expected 3 packages on page 2, got:\n%s", out)
	}

	out, _ = c.Page(0)
	if !strings.Contains(out, "📦 EMPTY0: Toolset.\n   (no extra files)") {
		t.Errorf("page 0 is page 1 and empty packages are marked, got:\n%s", out)
	}
}

func TestCatalog_PageNoPackages(t *testing.T) {
	c := NewCatalog(t.TempDir())
	out, _ := c.Page(1)
	if out != "No skills found." {
		t.Errorf("unexpected %q", out)
	}
}

func TestCatalog_Load(t *testing.T) {
	c, root := newTestCatalog(t)

	content, err := c.Load(root + "/obsidian/search.md")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if !strings.Contains(content, "run grep -r") {
		t.Errorf("unexpected content %q", content)
	}
}

func TestCatalog_LoadRejectsOutsidePaths(t *testing.T) {
	c, root := newTestCatalog(t)
	outside := filepath.Join(filepath.Dir(root), "secret.md")
	writeFile(t, filepath.Dir(root), "secret.md", "secret")

	for _, id := range []string{
		outside,
		root + "/../secret.md",
		root + "/obsidian/missing.md",
		root + "/obsidian",
		"other/obsidian/search.md",
	} {
		if _, err := c.Load(id); !errors.Is(err, ErrInvalidSkill) {
			t.Errorf("%s: expected ErrInvalidSkill, got %v", id, err)
		}
	}
}

func TestCatalog_CacheInvalidate(t *testing.T) {
	root := filepath.Join(t.TempDir(), "skills")
	writeFile(t, root, "a/one.md", "alpha")
	c := NewCatalog(root, WithCache())

	if out, _ := c.Search("beta"); out != "No skills found for those terms." {
		t.Fatalf("unexpected %q", out)
	}
	writeFile(t, root, "a/two.md", "beta")
	if out, _ := c.Search("beta"); out != "No skills found for those terms." {
		t.Errorf("cached index should not see new files, got %q", out)
	}
	c.Invalidate()
	if out, _ := c.Search("beta"); !strings.Contains(out, "two.md") {
		t.Errorf("expected hit after invalidate, got %q", out)
	}
}

func TestCatalog_Suggest(t *testing.T) {
	c, root := newTestCatalog(t)
	got := c.Suggest(root + "/obsidian/serch.md")
	if len(got) == 0 || got[0] != root+"/obsidian/search.md" {
		t.Errorf("expected search.md suggestion, got %v", got)
	}
}
