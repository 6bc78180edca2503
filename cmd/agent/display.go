package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// delegateResultWidth caps delegation results echoed to the terminal.
const delegateResultWidth = 200

var (
	agentStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	toolStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	answerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
)

// display renders engine progress. Progress goes to errOut so that
// answers on out stay clean.
type display struct {
	out    io.Writer
	errOut io.Writer
	width  int
}

func newDisplay(out, errOut io.Writer) *display {
	return &display{out: out, errOut: errOut, width: 100}
}

func (d *display) agentStart(name string, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(d.errOut, "%s▶ %s %s\n", indent, agentStyle.Render(strings.ToUpper(name)), dimStyle.Render(fmt.Sprintf("(depth %d)", depth)))
}

func (d *display) thinking(name string) {
	fmt.Fprintf(d.errOut, "  %s\n", dimStyle.Render(fmt.Sprintf("[%s] thinking...", strings.ToLower(name))))
}

func (d *display) toolCall(agent, tool string, args map[string]interface{}) {
	fmt.Fprintf(d.errOut, "  → [%s] %s %s\n", strings.ToLower(agent), toolStyle.Render(tool), dimStyle.Render(formatArgs(args)))
}

func (d *display) toolResult(agent, tool, result string) {
	if tool != "delegate_to_agent" {
		return
	}
	fmt.Fprintf(d.errOut, "  ← [%s] %s\n", strings.ToLower(agent), dimStyle.Render(truncateDisplay(oneLine(result), delegateResultWidth)))
}

func (d *display) answer(agent, text string) {
	fmt.Fprintf(d.out, "\n%s\n%s\n\n", agentStyle.Render(strings.ToUpper(agent)+":"), answerStyle.Render(wordwrap.String(text, d.width)))
}

func (d *display) final(text string) {
	fmt.Fprintln(d.errOut)
	fmt.Fprintln(d.out, wordwrap.String(text, d.width))
}

func (d *display) banner(agent string) {
	fmt.Fprintf(d.out, "%s %s\n", bannerStyle.Render("Interactive session with"), agentStyle.Render(strings.ToUpper(agent)))
	fmt.Fprintln(d.out, dimStyle.Render("Type 'exit' or 'quit' to leave."))
}

func (d *display) note(msg string) {
	fmt.Fprintln(d.errOut, dimStyle.Render(msg))
}

// formatArgs renders arguments as sorted key=value pairs.
func formatArgs(args map[string]interface{}) string {
	if len(args) == 0 {
		return ""
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, truncateDisplay(oneLine(fmt.Sprintf("%v", args[k])), 60)))
	}
	return strings.Join(parts, " ")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
