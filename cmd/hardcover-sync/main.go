// Package main provides the entry point for the hardcover-sync command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/listenupapp/hardcover-sync/internal/cli"
)

func main() {
	// Stop in-flight requests when the reader goes to sleep or the user cancels.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}
