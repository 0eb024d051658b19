package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bookvault-cli/bookvault/internal/cli"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Channel to catch OS signals. An open catalog is closed through the
	// same path as a normal exit.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigs
		cancel()
	}()

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
