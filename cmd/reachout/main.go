package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/doeshing/reachout/internal/infrastructure/cli"
)

func main() {
	// Interrupt stops admission of new work at the next safe checkpoint;
	// in-flight calls drain rather than being abandoned mid-call.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(cli.Options{Verbose: isVerbose()})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func isVerbose() bool {
	v := os.Getenv("REACHOUT_DEBUG")
	return strings.EqualFold(v, "1") || strings.EqualFold(v, "true")
}
