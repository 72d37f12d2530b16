package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/TFMV/forcegraph/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		cmd.Bad.Fprintf(os.Stderr, "forcegraph: %v\n", err)
		stop()
		os.Exit(1)
	}
}
