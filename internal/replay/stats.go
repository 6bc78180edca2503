package replay

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vinayprograms/agentloop/internal/session"
)

// Stats holds aggregate statistics for a run.
type Stats struct {
	Start     time.Time
	End       time.Time
	RootAgent string

	Events   int
	Steps    int
	MaxDepth int

	// Steps per agent
	AgentSteps map[string]int

	// Tool calls per tool
	ToolCalls   map[string]int
	Delegations int

	ParseErrors   int
	BackendErrors int

	InputTokens  int
	OutputTokens int
}

// Pricing converts token usage to cost.
type Pricing struct {
	InputPer1M  float64
	OutputPer1M float64
}

// ParsePricing parses "input,output" prices per 1M tokens.
func ParsePricing(spec string) (*Pricing, error) {
	prices := strings.Split(spec, ",")
	if len(prices) != 2 {
		return nil, fmt.Errorf("expected input,output prices")
	}

	inPrice, err := strconv.ParseFloat(strings.TrimSpace(prices[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid input price: %w", err)
	}
	outPrice, err := strconv.ParseFloat(strings.TrimSpace(prices[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid output price: %w", err)
	}
	if inPrice < 0 || outPrice < 0 {
		return nil, fmt.Errorf("prices must not be negative")
	}
	return &Pricing{InputPer1M: inPrice, OutputPer1M: outPrice}, nil
}

// Cost returns the cost of the given usage.
func (p *Pricing) Cost(in, out int) float64 {
	return float64(in)/1e6*p.InputPer1M + float64(out)/1e6*p.OutputPer1M
}

// ComputeStats calculates aggregate statistics from trace events.
func ComputeStats(events []session.Event) *Stats {
	stats := &Stats{
		AgentSteps: make(map[string]int),
		ToolCalls:  make(map[string]int),
		Events:     len(events),
	}
	steps := make(map[string]bool)

	for _, event := range events {
		// Track overall duration
		if stats.Start.IsZero() || event.Timestamp.Before(stats.Start) {
			stats.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.End) {
			stats.End = event.Timestamp
		}
		if event.Depth == 0 && stats.RootAgent == "" {
			stats.RootAgent = event.Agent
		}
		if event.Depth > stats.MaxDepth {
			stats.MaxDepth = event.Depth
		}
		if !steps[event.StepID] {
			steps[event.StepID] = true
			stats.AgentSteps[event.Agent]++
		}

		data := payloadMap(event.Payload)
		switch event.Kind {
		case session.EventOutput:
			usage := payloadMap(data["usage"])
			stats.InputTokens += toInt(usage["input_tokens"])
			stats.OutputTokens += toInt(usage["output_tokens"])

		case session.EventToolResult:
			tool, _ := data["tool"].(string)
			stats.ToolCalls[tool]++
			if tool == "delegate_to_agent" {
				stats.Delegations++
			}

		case session.EventError:
			if _, ok := data["diagnostic"]; ok {
				stats.ParseErrors++
			} else {
				stats.BackendErrors++
			}
		}
	}
	stats.Steps = len(steps)
	return stats
}

// Duration is the span between the first and last event.
func (s *Stats) Duration() time.Duration {
	if s.Start.IsZero() {
		return 0
	}
	return s.End.Sub(s.Start)
}

// PrintStats outputs the statistics to the writer.
func PrintStats(w io.Writer, stats *Stats) {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	fmt.Fprintln(w, headerStyle.Render("RUN STATISTICS"))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Total Duration:"), valueStyle.Render(formatDuration(stats.Duration().Milliseconds())))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Steps:"), valueStyle.Render(fmt.Sprintf("%d", stats.Steps)))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Max Depth:"), valueStyle.Render(fmt.Sprintf("%d", stats.MaxDepth)))
	fmt.Fprintln(w)

	if len(stats.AgentSteps) > 0 {
		fmt.Fprintln(w, headerStyle.Render("Steps per Agent:"))
		for _, name := range sortedKeys(stats.AgentSteps) {
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(name+":"), valueStyle.Render(fmt.Sprintf("%d", stats.AgentSteps[name])))
		}
		fmt.Fprintln(w)
	}

	if len(stats.ToolCalls) > 0 {
		fmt.Fprintln(w, headerStyle.Render("Tool Calls:"))
		for _, name := range sortedKeys(stats.ToolCalls) {
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(name+":"), valueStyle.Render(fmt.Sprintf("%d", stats.ToolCalls[name])))
		}
		fmt.Fprintln(w)
	}

	if stats.ParseErrors > 0 || stats.BackendErrors > 0 {
		fmt.Fprintln(w, headerStyle.Render("Errors:"))
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Malformed tool calls:"), valueStyle.Render(fmt.Sprintf("%d", stats.ParseErrors)))
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Backend failures:"), valueStyle.Render(fmt.Sprintf("%d", stats.BackendErrors)))
		fmt.Fprintln(w)
	}
}

// PrintTokenUsage outputs token totals, with cost when pricing is known.
func PrintTokenUsage(w io.Writer, stats *Stats, pricing *Pricing) {
	if stats.InputTokens == 0 && stats.OutputTokens == 0 {
		return
	}
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	fmt.Fprintln(w, headerStyle.Render("Token Usage:"))
	fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Input:"), valueStyle.Render(fmt.Sprintf("%d", stats.InputTokens)))
	fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Output:"), valueStyle.Render(fmt.Sprintf("%d", stats.OutputTokens)))
	if pricing != nil {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Cost:"), valueStyle.Render(fmt.Sprintf("$%.4f", pricing.Cost(stats.InputTokens, stats.OutputTokens))))
	}
	fmt.Fprintln(w)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatDuration formats milliseconds as human-readable duration.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.2fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm%ds", mins, secs)
}
