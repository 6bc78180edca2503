// Package response extracts thought, tool-call and answer regions from
// generated text.
//
// The model is prompted to wrap its output in three markup regions:
//
//	<thought>free text</thought>
//	<tool_call>{"name": "read_file", "arguments": {"path": "notes.md"}}</tool_call>
//	<answer>final text</answer>
//
// Parsing never fails: malformed tool-call payloads produce KindError with a
// diagnostic the engine feeds back to the model.
package response

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind discriminates the outcome of Parse.
type Kind string

const (
	KindToolCall Kind = "tool_call"
	KindAnswer   Kind = "answer"
	KindError    Kind = "error"
)

// Region markers.
const (
	thoughtTag  = "thought"
	toolCallTag = "tool_call"
	answerTag   = "answer"
	thinkTag    = "think"
)

// ToolCall is a parsed tool invocation.
type ToolCall struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// Result is the discriminated outcome of parsing one model turn.
type Result struct {
	Thought    string
	Kind       Kind
	Call       *ToolCall // set when Kind == KindToolCall
	Answer     string    // set when Kind == KindAnswer
	Diagnostic string    // set when Kind == KindError
}

// region is a located <tag>…</tag> span.
type region struct {
	start, end int // byte offsets of the whole span, markers included
	inner      string
}

// find locates the first <tag> and the first </tag> after it.
// An opening marker without a closing one counts as absent.
func find(text, tag string) (region, bool) {
	open := "<" + tag + ">"
	closing := "</" + tag + ">"

	i := strings.Index(text, open)
	if i < 0 {
		return region{}, false
	}
	bodyStart := i + len(open)
	j := strings.Index(text[bodyStart:], closing)
	if j < 0 {
		return region{}, false
	}
	bodyEnd := bodyStart + j
	return region{
		start: i,
		end:   bodyEnd + len(closing),
		inner: text[bodyStart:bodyEnd],
	}, true
}

// Parse scans generated text for the three regions.
// Tool calls win over answers; text with neither is taken as the answer.
func Parse(text string) Result {
	var res Result

	thought, hasThought := find(text, thoughtTag)
	if hasThought {
		res.Thought = strings.TrimSpace(thought.inner)
	}

	if call, ok := find(text, toolCallTag); ok {
		tc, err := decodeToolCall(call.inner)
		if err != nil {
			res.Kind = KindError
			res.Diagnostic = err.Error()
			return res
		}
		res.Kind = KindToolCall
		res.Call = tc
		return res
	}

	if answer, ok := find(text, answerTag); ok {
		res.Kind = KindAnswer
		res.Answer = strings.TrimSpace(answer.inner)
		return res
	}

	// Ungoverned output is kept as the answer.
	rest := text
	if hasThought {
		rest = text[:thought.start] + text[thought.end:]
	}
	res.Kind = KindAnswer
	res.Answer = strings.TrimSpace(rest)
	return res
}

// decodeToolCall decodes the JSON payload of a tool-call region.
func decodeToolCall(payload string) (*ToolCall, error) {
	raw := stripFence(strings.TrimSpace(payload))
	if raw == "" {
		return nil, fmt.Errorf("empty tool call")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("invalid tool call JSON: %v", err)
	}

	nameRaw, ok := obj["name"]
	if !ok {
		return nil, fmt.Errorf("tool call is missing \"name\"")
	}
	var name string
	if err := json.Unmarshal(nameRaw, &name); err != nil || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("tool call \"name\" must be a non-empty string")
	}

	args := map[string]interface{}{}
	if argsRaw, ok := obj["arguments"]; ok && string(argsRaw) != "null" {
		if err := json.Unmarshal(argsRaw, &args); err != nil {
			return nil, fmt.Errorf("tool call \"arguments\" must be an object")
		}
		if args == nil {
			args = map[string]interface{}{}
		}
	}

	return &ToolCall{Name: strings.TrimSpace(name), Arguments: args}, nil
}

// stripFence removes a surrounding markdown code fence (``` or ```json).
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimLeft(strings.TrimPrefix(s, "```"), "jsonJSON")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// StripReasoning removes every <think>…</think> block and trims the result.
func StripReasoning(text string) string {
	for {
		r, ok := find(text, thinkTag)
		if !ok {
			break
		}
		text = text[:r.start] + text[r.end:]
	}
	return strings.TrimSpace(text)
}
