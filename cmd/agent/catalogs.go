package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	nameStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Run lists every agent, the root agent first.
func (c *AgentsCmd) Run() error {
	ws := &workspace{configPath: c.Config}
	if err := ws.load(); err != nil {
		return err
	}
	cat := ws.agentCatalog()

	list, err := cat.List("")
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No agents found in " + ws.cfg.Agent.AgentsDir)
		return nil
	}

	for _, a := range list {
		marker := "  "
		if strings.EqualFold(a.Name, ws.cfg.Agent.Root) {
			marker = "* "
		}
		fmt.Printf("%s%s %s\n", marker, nameStyle.Render(a.Name), labelStyle.Render("- "+a.Description))

		def, err := cat.Load(a.Name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "    %v\n", err)
			continue
		}
		tools := "all tools"
		if !def.Unrestricted {
			tools = "tools: " + strings.Join(def.Tools, ", ")
			if len(def.Tools) == 0 {
				tools = "no tools"
			}
		}
		fmt.Printf("    %s\n", labelStyle.Render(fmt.Sprintf("model: %s, %s", def.Model, tools)))
	}
	return nil
}

// Run searches skills, or pages through packages when no query is given.
func (c *SkillsCmd) Run() error {
	ws := &workspace{configPath: c.Config}
	if err := ws.load(); err != nil {
		return err
	}
	cat := ws.skillCatalog()

	var (
		out string
		err error
	)
	if strings.TrimSpace(c.Query) != "" {
		out, err = cat.Search(c.Query)
	} else {
		out, err = cat.Page(c.Page)
	}
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
