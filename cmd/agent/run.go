package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

// Run activates the agent. Interrupts cancel the run.
func (c *RunCmd) Run(kctx *kong.Context) error {
	ws := &workspace{configPath: c.Config}
	if err := ws.load(); err != nil {
		return err
	}

	rt := newRuntime(ws)
	rt.noTrace = c.NoTrace
	if err := rt.setup(); err != nil {
		rt.cleanup()
		return err
	}
	defer rt.cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if code := rt.run(ctx, c.Agent, c.Task, c.Context); code != 0 {
		rt.cleanup()
		kctx.Exit(code)
	}
	return nil
}
