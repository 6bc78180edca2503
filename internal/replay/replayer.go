package replay

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/vinayprograms/agentloop/internal/session"
)

// Replayer reads and formats trace events for forensic analysis.
type Replayer struct {
	output         io.Writer
	verbosity      int      // 0=normal, 1=verbose (-v), 2=very verbose (-vv)
	maxContentSize int      // Maximum size for content fields (0 = unlimited)
	width          int      // Wrap width for content blocks
	pricing        *Pricing // Optional pricing for cost calculation
}

// ReplayerOption configures a Replayer.
type ReplayerOption func(*Replayer)

// WithMaxContentSize limits content field size to keep large runs readable.
func WithMaxContentSize(size int) ReplayerOption {
	return func(r *Replayer) {
		r.maxContentSize = size
	}
}

// WithWidth sets the wrap width of content blocks.
func WithWidth(width int) ReplayerOption {
	return func(r *Replayer) {
		if width > 0 {
			r.width = width
		}
	}
}

// WithPricing enables cost calculation with the given pricing.
func WithPricing(inputPer1M, outputPer1M float64) ReplayerOption {
	return func(r *Replayer) {
		r.pricing = &Pricing{
			InputPer1M:  inputPer1M,
			OutputPer1M: outputPer1M,
		}
	}
}

// New creates a new Replayer.
func New(output io.Writer, verbosity int, opts ...ReplayerOption) *Replayer {
	r := &Replayer{
		output:         output,
		verbosity:      verbosity,
		maxContentSize: 50 * 1024,
		width:          100,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReplayDir loads and replays a run directory written by a FileRecorder.
func (r *Replayer) ReplayDir(dir string) error {
	events, err := session.LoadRun(dir)
	if err != nil {
		return err
	}
	return r.Replay(filepath.Base(filepath.Clean(dir)), events)
}

// ReplaySQLite loads and replays one run from a SQLite trace store.
func (r *Replayer) ReplaySQLite(path, runID string) error {
	events, err := session.LoadSQLite(path, runID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("no events for run %s in %s", runID, path)
	}
	return r.Replay(runID, events)
}

// Replay outputs a formatted timeline of events.
func (r *Replayer) Replay(runID string, events []session.Event) error {
	events = append([]session.Event(nil), events...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	stats := ComputeStats(events)
	r.printHeader(runID, stats)
	r.printTimeline(events)
	r.printSummary(stats)
	return nil
}

func (r *Replayer) printHeader(runID string, stats *Stats) {
	fmt.Fprintln(r.output)
	fmt.Fprintf(r.output, "%s %s\n", titleStyle.Render("RUN"), valueStyle.Render(runID))
	fmt.Fprintln(r.output, divider)
	if !stats.Start.IsZero() {
		fmt.Fprintf(r.output, "%s %s\n", labelStyle.Render("Started: "), valueStyle.Render(stats.Start.Format("2006-01-02 15:04:05")))
	}
	if stats.RootAgent != "" {
		fmt.Fprintf(r.output, "%s %s\n", labelStyle.Render("Agent:   "), valueStyle.Render(stats.RootAgent))
	}
	fmt.Fprintln(r.output)
}

func (r *Replayer) printTimeline(events []session.Event) {
	fmt.Fprintf(r.output, "%s %s\n", titleStyle.Render("TIMELINE"), dimStyle.Render(fmt.Sprintf("(%d events)", len(events))))
	fmt.Fprintln(r.output, divider)

	var lastStep string
	for i := range events {
		r.formatEvent(i+1, &events[i], &lastStep)
	}
}

func (r *Replayer) printSummary(stats *Stats) {
	fmt.Fprintln(r.output)
	fmt.Fprintln(r.output, divider)
	PrintStats(r.output, stats)
	PrintTokenUsage(r.output, stats, r.pricing)
}
