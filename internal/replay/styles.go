// Package replay renders recorded runs as a timeline for forensic analysis.
package replay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Component color scheme - each event kind has a distinct, consistent color.
var (
	// Structural / metadata
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")) // Gray - timestamps, metadata

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")) // Gray - labels

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")) // White - values

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")) // White bold - headers

	// Step transitions
	stepStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	// Backend turns
	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")) // Green

	// Tools - Blue
	toolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	// Delegation - Magenta
	delegateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13"))

	contextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")) // Cyan

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")) // Red

	// Timeline
	seqStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Width(5).
			Align(lipgloss.Right)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	// Content blocks
	blockHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("8")).
				Italic(true)

	divider = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render(strings.Repeat("━", 60))
)

// agentColors cycle by delegation depth.
var agentColors = []lipgloss.Color{"15", "13", "11", "14", "12"}

func agentStyle(depth int) lipgloss.Style {
	if depth < 0 {
		depth = 0
	}
	return lipgloss.NewStyle().Bold(true).Foreground(agentColors[depth%len(agentColors)])
}
