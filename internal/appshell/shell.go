// Package appshell holds the plumbing shared by the fptools commands:
// signal handling, common flags, configuration and the
// read/transform/write sequence.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitInterrupted = 130
)

// Main runs a command under a context cancelled by SIGINT or SIGTERM and
// exits the process with its code. The command alone decides whether an
// interrupt cost it its output, see Execute.
func Main(run func(context.Context, []string, io.Writer, io.Writer) int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
