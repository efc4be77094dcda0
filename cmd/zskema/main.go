// Command zskema validates JSON and YAML documents against schema manifests.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/reoring/zskema/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args, os.Stdout, os.Stderr, nil); err != nil {
		stop()
		os.Exit(1)
	}
}
