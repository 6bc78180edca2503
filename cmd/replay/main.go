// Package main is the entry point for the agent-replay CLI.
// A standalone tool for forensic analysis of recorded runs.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/vinayprograms/agentloop/internal/replay"
)

// Build-time variables
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

type cli struct {
	Runs    []string         `arg:"" help:"Run directories, or run ids with --db, replayed in order"`
	DB      string           `help:"SQLite trace store to read from"`
	Verbose int              `short:"v" type:"counter" help:"Verbosity level (-v, -vv)"`
	Cost    string           `help:"Pricing per 1M tokens: input,output" placeholder:"IN,OUT"`
	Width   int              `default:"100" help:"Wrap width for content blocks"`
	Version kong.VersionFlag `help:"Show version information"`
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("agent-replay"),
		kong.Description("Replay recorded agent runs for forensic analysis."),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("agent-replay version %s (commit: %s, built: %s)", version, commit, buildTime)},
	)
	ctx.FatalIfErrorf(c.run())
}

func (c *cli) run() error {
	opts := []replay.ReplayerOption{replay.WithWidth(c.Width)}
	if c.Cost != "" {
		p, err := replay.ParsePricing(c.Cost)
		if err != nil {
			return fmt.Errorf("invalid --cost value %q: %w", c.Cost, err)
		}
		opts = append(opts, replay.WithPricing(p.InputPer1M, p.OutputPer1M))
	}
	r := replay.New(os.Stdout, c.Verbose, opts...)

	for i, run := range c.Runs {
		if len(c.Runs) > 1 {
			fmt.Fprintf(os.Stdout, "\n[%d/%d] %s\n", i+1, len(c.Runs), run)
		}
		var err error
		if c.DB != "" {
			err = r.ReplaySQLite(c.DB, run)
		} else {
			err = r.ReplayDir(run)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", run, err)
		}
	}
	return nil
}
