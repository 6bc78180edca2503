package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	// DefaultShell runs execute_shell commands.
	DefaultShell = "/bin/bash"

	// DefaultShellTimeout bounds a single command.
	DefaultShellTimeout = 60 * time.Second

	// shellWaitDelay bounds how long output pipes are drained after the process is killed.
	shellWaitDelay = 2 * time.Second
)

func shellDefinition() Definition {
	return Definition{
		Name:        "execute_shell",
		Description: "Run a shell command. Use it to list (ls), search (grep/find), read (cat), run git and other native tools.",
		Parameters:  Schema(map[string]interface{}{"command": "string"}, "command"),
	}
}

func (b *builtins) executeShell(ctx context.Context, args Args) string {
	command := args.String("command")

	ctx, cancel := context.WithTimeout(ctx, b.opts.ShellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, b.opts.Shell, "-c", command)
	cmd.WaitDelay = shellWaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Sprintf("Error: command timed out after %s", b.opts.ShellTimeout)
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Sprintf("Error: %v", err)
		}
		exitCode = exitErr.ExitCode()
	}

	return formatShellOutput(stdout.String(), stderr.String(), exitCode)
}

// formatShellOutput joins stdout, stderr and a non-zero exit code.
func formatShellOutput(stdout, stderr string, exitCode int) string {
	out := stdout
	if stderr != "" {
		out += "\n[STDERR] " + stderr
	}
	if exitCode != 0 {
		out += fmt.Sprintf("\n[EXIT CODE] %d", exitCode)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "(No output)"
	}
	return out
}
