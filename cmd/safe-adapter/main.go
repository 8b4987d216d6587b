package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smartcontractkit/safe-adapters/pkg/commands"
	"github.com/smartcontractkit/safe-adapters/pkg/logger"
)

func main() {
	lggr, err := logger.NewWithLevel(os.Getenv("SAFE_LOG_LEVEL"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.New(lggr).Root().ExecuteContext(ctx); err != nil {
		lggr.Errorw("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
