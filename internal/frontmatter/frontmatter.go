// Package frontmatter splits YAML front matter from markdown capability documents.
package frontmatter

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Split extracts the YAML header and the body from markdown content.
// ok is false when the content has no (closed) front matter block; body is
// then the whole content.
func Split(content string) (header, body string, ok bool) {
	content = strings.TrimPrefix(content, "\ufeff")
	lines := strings.Split(content, "\n")

	if len(lines) == 0 || strings.TrimSpace(lines[0]) != delimiter {
		return "", content, false
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == delimiter {
			header = strings.Join(lines[1:i], "\n")
			if i+1 < len(lines) {
				body = strings.Join(lines[i+1:], "\n")
			}
			return header, body, true
		}
	}

	// Unclosed header is treated as plain text.
	return "", content, false
}

// Decode unmarshals the front matter into out and returns the body.
// Content without front matter leaves out untouched.
func Decode(content string, out interface{}) (string, error) {
	header, body, ok := Split(content)
	if !ok {
		return body, nil
	}
	if err := yaml.Unmarshal([]byte(header), out); err != nil {
		return "", fmt.Errorf("invalid frontmatter: %w", err)
	}
	return body, nil
}

// Has reports whether the header declares key at the top level.
func Has(content, key string) bool {
	header, _, ok := Split(content)
	if !ok {
		return false
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(header), &raw); err != nil {
		return false
	}
	_, found := raw[key]
	return found
}
