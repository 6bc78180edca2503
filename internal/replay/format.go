package replay

import (
	"fmt"
	"strings"

	"github.com/vinayprograms/agentloop/internal/session"
)

// formatEvent formats a single event for display.
func (r *Replayer) formatEvent(seq int, event *session.Event, lastStep *string) {
	// Show step transitions
	if event.StepID != *lastStep {
		indent := strings.Repeat("  ", event.Depth)
		fmt.Fprintln(r.output)
		fmt.Fprintf(r.output, "%s%s %s %s\n", indent,
			stepStyle.Render("STEP"),
			agentStyle(event.Depth).Render(strings.ToUpper(event.Agent)),
			dimStyle.Render(fmt.Sprintf("%s (depth %d)", event.StepID, event.Depth)))
		*lastStep = event.StepID
	}

	ts := timeStyle.Render(event.Timestamp.Format("15:04:05"))
	seqNum := seqStyle.Render(fmt.Sprintf("%d", seq))
	data := payloadMap(event.Payload)

	switch event.Kind {
	case session.EventContext:
		r.fmtContext(seqNum, ts, data)
	case session.EventInput:
		r.fmtInput(seqNum, ts, event.Payload)
	case session.EventOutput:
		r.fmtOutput(seqNum, ts, data)
	case session.EventToolResult:
		r.fmtToolResult(seqNum, ts, data)
	case session.EventError:
		r.fmtError(seqNum, ts, data)
	default:
		fmt.Fprintf(r.output, "%s │ %s │ %s\n", seqNum, ts, dimStyle.Render(event.Kind))
	}
}

func (r *Replayer) fmtContext(seqNum, ts string, data map[string]interface{}) {
	// Context snapshots repeat every step; show them only when asked.
	if r.verbosity < 1 {
		return
	}
	file := "-"
	sess := payloadMap(data["session"])
	if p, _ := sess["last_accessed_path"].(string); p != "" {
		file = p
		if a, _ := sess["last_action"].(string); a != "" {
			file += " (" + a + ")"
		}
	}
	skills := stringList(data["skills"])
	fmt.Fprintf(r.output, "%s │ %s │ %s %s %s\n", seqNum, ts,
		contextStyle.Render("CONTEXT"),
		labelStyle.Render("file:"), valueStyle.Render(file))
	if len(skills) > 0 {
		fmt.Fprintf(r.output, "      │          │   %s %s\n", labelStyle.Render("skills:"), valueStyle.Render(strings.Join(skills, ", ")))
	}
}

func (r *Replayer) fmtInput(seqNum, ts string, payload interface{}) {
	messages := messageList(payload)
	fmt.Fprintf(r.output, "%s │ %s │ %s %s\n", seqNum, ts,
		inputStyle.Render("INPUT"),
		dimStyle.Render(fmt.Sprintf("(%d messages)", len(messages))))

	if r.verbosity >= 2 {
		for _, m := range messages {
			fmt.Fprintf(r.output, "      │          │   %s\n", blockHeaderStyle.Render("── "+strings.ToUpper(m.role)+" ──"))
			r.printContent(m.content)
		}
		return
	}
	if r.verbosity >= 1 && len(messages) > 0 {
		last := messages[len(messages)-1]
		fmt.Fprintf(r.output, "      │          │   %s\n", blockHeaderStyle.Render("── LAST "+strings.ToUpper(last.role)+" TURN ──"))
		r.printContent(last.content)
	}
}

func (r *Replayer) fmtOutput(seqNum, ts string, data map[string]interface{}) {
	content, _ := data["content"].(string)
	line := fmt.Sprintf("%s │ %s │ %s", seqNum, ts, outputStyle.Render("OUTPUT"))
	if _, ok := data["usage"]; ok {
		usage := payloadMap(data["usage"])
		line += " " + dimStyle.Render(fmt.Sprintf("(tokens %d→%d)", toInt(usage["input_tokens"]), toInt(usage["output_tokens"])))
	}
	fmt.Fprintln(r.output, line)

	if r.verbosity >= 1 {
		r.printContent(content)
		return
	}
	fmt.Fprintf(r.output, "      │          │   %s\n", dimStyle.Render(truncateHint(firstLine(content), 80)))
}

func (r *Replayer) fmtToolResult(seqNum, ts string, data map[string]interface{}) {
	tool, _ := data["tool"].(string)
	args, _ := data["arguments"].(map[string]interface{})
	result, _ := data["result"].(string)

	style := toolStyle
	label := "TOOL"
	if tool == "delegate_to_agent" {
		style = delegateStyle
		label = "DELEGATE"
	}

	hint := getArgsHint(tool, args)
	if hint != "" {
		hint = " " + dimStyle.Render(hint)
	}
	fmt.Fprintf(r.output, "%s │ %s │ %s %s%s\n", seqNum, ts,
		style.Render(label), valueStyle.Render(tool), hint)

	if r.verbosity >= 1 {
		if len(args) > 0 {
			r.printArgs(args)
		}
		fmt.Fprintf(r.output, "      │          │   %s\n", blockHeaderStyle.Render("── RESULT ──"))
		r.printContent(result)
		return
	}
	fmt.Fprintf(r.output, "      │          │   %s\n", dimStyle.Render(truncateHint(firstLine(result), 80)))
}

func (r *Replayer) fmtError(seqNum, ts string, data map[string]interface{}) {
	msg, _ := data["error"].(string)
	label := "BACKEND ERROR"
	if d, ok := data["diagnostic"].(string); ok {
		msg = d
		label = "PARSE ERROR"
	}
	fmt.Fprintf(r.output, "%s │ %s │ %s\n", seqNum, ts, errorStyle.Render(label))
	r.printError(msg)
}

// getArgsHint picks the most telling argument of a tool call.
func getArgsHint(tool string, args map[string]interface{}) string {
	if args == nil {
		return ""
	}
	var key string
	switch tool {
	case "execute_shell":
		key = "command"
	case "read_file", "write_file", "edit_file", "load_skill":
		key = "path"
	case "delegate_to_agent", "get_agent_info":
		key = "name"
	case "search_skills":
		key = "query"
	case "list_skills_page":
		key = "page"
	default:
		return ""
	}
	v, ok := args[key]
	if !ok {
		return ""
	}
	hint := truncateHint(fmt.Sprintf("%v", v), 60)
	if tool == "delegate_to_agent" {
		if task, ok := args["task"].(string); ok {
			hint += ": " + truncateHint(task, 50)
		}
	}
	return "(" + hint + ")"
}
