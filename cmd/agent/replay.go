package main

import (
	"fmt"
	"os"

	"github.com/vinayprograms/agentloop/internal/replay"
	"github.com/vinayprograms/agentloop/internal/session"
)

// Run replays a run directory, or a run from a SQLite trace store.
func (c *ReplayCmd) Run() error {
	opts := []replay.ReplayerOption{replay.WithWidth(c.Width)}
	if c.Cost != "" {
		p, err := replay.ParsePricing(c.Cost)
		if err != nil {
			return fmt.Errorf("invalid --cost value %q: %w", c.Cost, err)
		}
		opts = append(opts, replay.WithPricing(p.InputPer1M, p.OutputPer1M))
	}
	r := replay.New(os.Stdout, c.Verbose, opts...)

	if c.DB == "" {
		if c.Run == "" {
			return fmt.Errorf("run directory required (or --db to list recorded runs)")
		}
		return r.ReplayDir(c.Run)
	}
	if c.Run == "" {
		return listRuns(c.DB)
	}
	return r.ReplaySQLite(c.DB, c.Run)
}

func listRuns(db string) error {
	runs, err := session.ListSQLiteRuns(db)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded in " + db)
		return nil
	}
	for _, id := range runs {
		fmt.Println(id)
	}
	return nil
}
