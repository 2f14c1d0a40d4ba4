package main

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gpuvenv/gpuvenv/internal/cli"
	"github.com/gpuvenv/gpuvenv/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx); err != nil {
		if stderrors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		// Failed external commands propagate their own exit status;
		// everything else maps to 1. Diagnostics were already printed
		// by the failing command.
		os.Exit(errors.ExitStatus(err))
	}
}
