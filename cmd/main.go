package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/eqviz/internal/shared"
	"github.com/urfave/cli/v3"
)

// Exit statuses reported by the binary.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
	exitAuth    = 3
)

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "eqviz",
		Usage:    "Upload equipment CSV files and explore their statistics",
		Version:  "0.1.0",
		Flags:    globalFlags(),
		Before:   r.Before,
		After:    r.After,
		Commands: r.register(),
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var vErr *shared.ValidationError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &vErr),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrInvalidConfig),
		errors.Is(err, shared.ErrMissingConfig):
		return exitUsage
	case errors.Is(err, shared.ErrAuthentication), errors.Is(err, shared.ErrNotAuthenticated):
		return exitAuth
	default:
		return exitFailure
	}
}

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		logger.Debug("command failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s\n", shared.UserMessage(err))
		stop()
		os.Exit(exitCode(err))
	}
}
