package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ToolCall(t *testing.T) {
	text := `<thought>I need the file</thought>
<tool_call>{"name": "read_file", "arguments": {"path": "/tmp/x.md"}}</tool_call>`

	res := Parse(text)
	require.Equal(t, KindToolCall, res.Kind)
	require.NotNil(t, res.Call)
	assert.Equal(t, "read_file", res.Call.Name)
	assert.Equal(t, map[string]interface{}{"path": "/tmp/x.md"}, res.Call.Arguments)
	assert.Equal(t, "I need the file", res.Thought)
}

func TestParse_ToolCallVariants(t *testing.T) {
	want := map[string]interface{}{"command": "ls -la", "n": float64(2)}
	cases := map[string]string{
		"compact":    `<tool_call>{"name":"execute_shell","arguments":{"command":"ls -la","n":2}}</tool_call>`,
		"whitespace": "<tool_call>\n\n   {\"name\": \"execute_shell\",\n \"arguments\": {\"command\": \"ls -la\", \"n\": 2}}  \n</tool_call>",
		"fence":      "<tool_call>\n```\n{\"name\": \"execute_shell\", \"arguments\": {\"command\": \"ls -la\", \"n\": 2}}\n```\n</tool_call>",
		"json fence": "<tool_call>```json\n{\"name\": \"execute_shell\", \"arguments\": {\"command\": \"ls -la\", \"n\": 2}}\n```</tool_call>",
		"inline":     "<tool_call>```json{\"name\": \"execute_shell\", \"arguments\": {\"command\": \"ls -la\", \"n\": 2}}```</tool_call>",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			res := Parse(text)
			require.Equal(t, KindToolCall, res.Kind, res.Diagnostic)
			assert.Equal(t, "execute_shell", res.Call.Name)
			assert.Equal(t, want, res.Call.Arguments)
		})
	}
}

func TestParse_MissingArguments(t *testing.T) {
	for _, text := range []string{
		`<tool_call>{"name": "list_agents"}</tool_call>`,
		`<tool_call>{"name": "list_agents", "arguments": null}</tool_call>`,
	} {
		res := Parse(text)
		require.Equal(t, KindToolCall, res.Kind)
		assert.NotNil(t, res.Call.Arguments)
		assert.Empty(t, res.Call.Arguments)
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := []string{
		`<tool_call>{"name": "read_file", "arguments": {"path": }</tool_call>`,
		`<tool_call>{"arguments": {}}</tool_call>`,
		`<tool_call>{"name": ""}</tool_call>`,
		`<tool_call>{"name": 42}</tool_call>`,
		`<tool_call>{"name": "x", "arguments": [1, 2]}</tool_call>`,
		`<tool_call>["read_file"]</tool_call>`,
		`<tool_call></tool_call>`,
		"<tool_call>```\n```</tool_call>",
	}
	for _, text := range cases {
		assert.NotPanics(t, func() {
			res := Parse(text)
			assert.Equal(t, KindError, res.Kind, text)
			assert.NotEmpty(t, res.Diagnostic, text)
			assert.Nil(t, res.Call)
		})
	}
}

func TestParse_ToolCallWinsOverAnswer(t *testing.T) {
	text := `<answer>done</answer><tool_call>{"name": "list_agents", "arguments": {}}</tool_call>`
	res := Parse(text)
	assert.Equal(t, KindToolCall, res.Kind)
	assert.Equal(t, "list_agents", res.Call.Name)
}

func TestParse_Answer(t *testing.T) {
	res := Parse("<thought>easy</thought>\n<answer>\n  The result is 4.\n</answer>")
	assert.Equal(t, KindAnswer, res.Kind)
	assert.Equal(t, "The result is 4.", res.Answer)
	assert.Equal(t, "easy", res.Thought)
}

func TestParse_FallbackAnswer(t *testing.T) {
	res := Parse("<thought>no tags needed</thought>\nPlain reply here.")
	assert.Equal(t, KindAnswer, res.Kind)
	assert.Equal(t, "Plain reply here.", res.Answer)

	res = Parse("  just text  ")
	assert.Equal(t, KindAnswer, res.Kind)
	assert.Equal(t, "just text", res.Answer)
}

func TestParse_UnclosedTagsAreAbsent(t *testing.T) {
	res := Parse(`<tool_call>{"name": "list_agents"}`)
	assert.Equal(t, KindAnswer, res.Kind)
	assert.Equal(t, `<tool_call>{"name": "list_agents"}`, res.Answer)

	res = Parse("<answer>never closed")
	assert.Equal(t, KindAnswer, res.Kind)
	assert.Equal(t, "<answer>never closed", res.Answer)
}

func TestParse_FirstMatch(t *testing.T) {
	text := `<tool_call>{"name": "a"}</tool_call> <tool_call>{"name": "b"}</tool_call>`
	res := Parse(text)
	require.Equal(t, KindToolCall, res.Kind)
	assert.Equal(t, "a", res.Call.Name)
}

func TestStripReasoning(t *testing.T) {
	assert.Equal(t, "Answer", StripReasoning("<think>\nhmm\n</think>\nAnswer"))
	assert.Equal(t, "A B", StripReasoning("A <think>x</think>B<think>y</think>"))
	assert.Equal(t, "<think>open", StripReasoning("<think>open"))
}
