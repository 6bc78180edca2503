package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/vinayprograms/agentloop/internal/session"
)

var envRef = regexp.MustCompile(`\$(\{[A-Za-z_][A-Za-z0-9_]*\}|[A-Za-z_][A-Za-z0-9_]*)`)

// ExpandPath expands environment variables and a leading ~.
// Unset variables are left as written.
func ExpandPath(p string) string {
	p = envRef.ReplaceAllStringFunc(p, func(ref string) string {
		name := strings.Trim(ref[1:], "{}")
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return ref
	})
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = home + p[1:]
		}
	}
	return p
}

func fileDefinitions() []Definition {
	return []Definition{
		{
			Name:        "read_file",
			Description: "Read the content of a local file.",
			Parameters:  Schema(map[string]interface{}{"path": "string"}, "path"),
		},
		{
			Name:        "write_file",
			Description: "Write or overwrite an ENTIRE file.",
			Parameters:  Schema(map[string]interface{}{"path": "string", "content": "string"}, "path", "content"),
		},
		{
			Name:        "edit_file",
			Description: "Edit part of a file. Use operation='append' to add to the end, or 'replace' to substitute target_text.",
			Parameters: Schema(map[string]interface{}{
				"path":        "string",
				"operation":   map[string]interface{}{"type": "string", "enum": []string{"append", "replace"}},
				"text":        "string",
				"target_text": "string",
			}, "path", "operation"),
		},
	}
}

// resolve expands path and records it in the session context before any I/O.
func (b *builtins) resolve(path, action string) string {
	resolved := ExpandPath(path)
	if b.sess != nil {
		b.sess.Touch(resolved, action)
	}
	return resolved
}

func (b *builtins) readFile(_ context.Context, args Args) string {
	path := b.resolve(args.String("path"), session.ActionRead)

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("[METADATA] Source: %s\n[CONTENT]\n%s", path, content)
}

func (b *builtins) writeFile(_ context.Context, args Args) string {
	path := b.resolve(args.String("path"), session.ActionWrite)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Sprintf("Error: %v", err)
		}
	}
	if err := os.WriteFile(path, []byte(args.String("content")), 0644); err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("Successfully wrote to %s", path)
}

func (b *builtins) editFile(_ context.Context, args Args) string {
	path := b.resolve(args.String("path"), session.ActionEdit)
	op := args.String("operation")
	text := args.String("text")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("Error: File %s not found.", path)
		}
		return fmt.Sprintf("Error: %v", err)
	}
	content := string(data)

	var updated string
	switch op {
	case "append":
		if !args.Has("text") {
			return "Error: text is required for append operation"
		}
		updated = content + "\n" + text
	case "replace":
		target := args.String("target_text")
		if target == "" {
			return "Error: target_text is required for replace operation"
		}
		if !args.Has("text") {
			return "Error: text is required for replace operation"
		}
		if !strings.Contains(content, target) {
			return "Error: 'target_text' not found in file."
		}
		updated = strings.ReplaceAll(content, target, text)
	default:
		return "Error: Invalid operation. Use 'append' or 'replace'."
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("Successfully edited %s (mode: %s)", path, op)
}
