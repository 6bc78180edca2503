// Package main defines the CLI structure using kong.
package main

import (
	"fmt"

	"github.com/alecthomas/kong"
)

// CLI defines the command-line interface.
type CLI struct {
	Run     RunCmd     `cmd:"" help:"Run an agent on a task, or start an interactive session"`
	Agents  AgentsCmd  `cmd:"" help:"List the agent catalog"`
	Skills  SkillsCmd  `cmd:"" help:"Search or page through the skill catalog"`
	Replay  ReplayCmd  `cmd:"" help:"Replay a recorded run for forensic analysis"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// RunCmd activates an agent.
type RunCmd struct {
	Task    string `arg:"" optional:"" help:"Task for the agent (omit for an interactive session)"`
	Agent   string `short:"a" help:"Agent to activate (default: agent.root from config)"`
	Context string `short:"c" help:"Extra context appended to the task"`
	Config  string `help:"Config file path (default: ./agent.toml)"`
	NoTrace bool   `help:"Do not record a trace"`
}

// AgentsCmd lists agents.
type AgentsCmd struct {
	Config string `help:"Config file path (default: ./agent.toml)"`
}

// SkillsCmd searches or lists skills.
type SkillsCmd struct {
	Query  string `arg:"" optional:"" help:"Search terms (omit to list packages)"`
	Page   int    `short:"p" default:"1" help:"Page of the package listing"`
	Config string `help:"Config file path (default: ./agent.toml)"`
}

// ReplayCmd replays a run for analysis.
type ReplayCmd struct {
	Run     string `arg:"" optional:"" help:"Run directory, or run id with --db (omit with --db to list runs)"`
	DB      string `help:"SQLite trace store to read from"`
	Verbose int    `short:"v" type:"counter" help:"Verbosity level (-v, -vv)"`
	Cost    string `help:"Pricing per 1M tokens: input,output" placeholder:"IN,OUT"`
	Width   int    `default:"100" help:"Wrap width for content blocks"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

// Run prints the build information.
func (c *VersionCmd) Run() error {
	fmt.Printf("agent version %s (commit: %s, built: %s)\n", version, commit, buildTime)
	return nil
}

// kongVars returns variables for kong (version info).
func kongVars() kong.Vars {
	return kong.Vars{
		"version": version,
	}
}
