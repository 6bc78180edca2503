package replay

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// printContent prints verbose content with timeline indentation.
func (r *Replayer) printContent(content string) {
	content = truncateContent(content, r.maxContentSize)
	wrapped := wordwrap.String(content, r.width)
	for _, line := range strings.Split(wrapped, "\n") {
		fmt.Fprintf(r.output, "      │          │   %s\n", line)
	}
}

// printArgs prints tool arguments in key order.
func (r *Replayer) printArgs(args map[string]interface{}) {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(r.output, "      │          │   %s %s\n",
			labelStyle.Render(k+":"), truncateHint(fmt.Sprintf("%v", args[k]), r.width))
	}
}

// printError prints an error.
func (r *Replayer) printError(err string) {
	fmt.Fprintf(r.output, "      │          │   %s\n", errorStyle.Render(err))
}

type message struct {
	role    string
	content string
}

// messageList reads the message set of an input event, whether it came
// from memory or was decoded from JSON.
func messageList(payload interface{}) []message {
	var raw []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	out := make([]message, 0, len(raw))
	for _, m := range raw {
		out = append(out, message{role: m.Role, content: m.Content})
	}
	return out
}

// payloadMap normalizes an object payload to a generic map.
func payloadMap(payload interface{}) map[string]interface{} {
	if m, ok := payload.(map[string]interface{}); ok {
		return m
	}
	out := map[string]interface{}{}
	data, err := json.Marshal(payload)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(data, &out)
	return out
}

func stringList(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	}
	return 0
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

// truncateHint shortens s to maxLen display cells.
func truncateHint(s string, maxLen int) string {
	return truncate.StringWithTail(s, uint(maxLen), "...")
}

// truncateContent caps content at maxLen bytes (0 = unlimited).
func truncateContent(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("\n... [truncated, %d more bytes]", len(s)-maxLen)
}
