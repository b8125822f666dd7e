package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"autohide/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := cli.NewAppContext(version)
	if err := cli.New(app).Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "autohide:", err)
		cancel()
		os.Exit(1)
	}
}
