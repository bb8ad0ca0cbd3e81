package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/riskibarqy/scout-pro/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := newRunner(runnerOptions{})
	if err := r.command().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "scout-sync: %v\n", err)
		stop()
		os.Exit(1)
	}
}
