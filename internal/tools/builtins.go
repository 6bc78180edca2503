package tools

import (
	"time"

	"github.com/vinayprograms/agentloop/internal/session"
)

// Options configures the built-in tools.
type Options struct {
	Shell        string
	ShellTimeout time.Duration
}

type builtins struct {
	sess *session.Context
	opts Options
}

// NewBuiltins returns a registry holding execute_shell, read_file,
// write_file and edit_file. File tools record resolved paths in sess.
func NewBuiltins(sess *session.Context, opts Options) *Registry {
	if opts.Shell == "" {
		opts.Shell = DefaultShell
	}
	if opts.ShellTimeout <= 0 {
		opts.ShellTimeout = DefaultShellTimeout
	}
	b := &builtins{sess: sess, opts: opts}

	r := NewRegistry()
	r.Register(shellDefinition(), b.executeShell)

	handlers := map[string]Handler{
		"read_file":  b.readFile,
		"write_file": b.writeFile,
		"edit_file":  b.editFile,
	}
	for _, def := range fileDefinitions() {
		r.Register(def, handlers[def.Name])
	}
	return r
}
