// Package main provides configuration loading for the commands.
package main

import (
	"fmt"
	"os"

	"github.com/vinayprograms/agentloop/internal/agents"
	"github.com/vinayprograms/agentloop/internal/config"
	"github.com/vinayprograms/agentloop/internal/skills"
)

// workspace handles the configuration phase of a command.
type workspace struct {
	// Parsed from CLI
	configPath string

	// Loaded artifacts
	cfg *config.Config
}

// load loads, overrides and validates config, then checks the catalogs.
func (w *workspace) load() error {
	if err := w.loadConfig(); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := w.checkCatalogs(); err != nil {
		return err
	}
	return nil
}

// loadConfig loads and applies configuration.
func (w *workspace) loadConfig() error {
	var err error
	if w.configPath != "" {
		w.cfg, err = config.LoadFile(w.configPath)
	} else {
		w.cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}
	w.cfg.ApplyEnv()
	return w.cfg.Validate()
}

// checkCatalogs reports missing catalog directories.
func (w *workspace) checkCatalogs() error {
	for _, dir := range []struct{ kind, path string }{
		{"agents", w.cfg.Agent.AgentsDir},
		{"skills", w.cfg.Agent.SkillsDir},
	} {
		info, err := os.Stat(dir.path)
		if err != nil {
			return fmt.Errorf("%s directory %s not found", dir.kind, dir.path)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s directory %s is not a directory", dir.kind, dir.path)
		}
	}
	return nil
}

// agentCatalog opens the agent catalog, cached when watching is enabled.
func (w *workspace) agentCatalog() *agents.Catalog {
	if w.cfg.Catalog.Watch {
		return agents.NewCatalog(w.cfg.Agent.AgentsDir, agents.WithCache())
	}
	return agents.NewCatalog(w.cfg.Agent.AgentsDir)
}

// skillCatalog opens the skill catalog, cached when watching is enabled.
func (w *workspace) skillCatalog() *skills.Catalog {
	if w.cfg.Catalog.Watch {
		return skills.NewCatalog(w.cfg.Agent.SkillsDir, skills.WithCache())
	}
	return skills.NewCatalog(w.cfg.Agent.SkillsDir)
}
