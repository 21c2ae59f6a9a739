package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adda-Baaj/docquery/internal/cli"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run executes the command line; failures are already reported on stderr.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
