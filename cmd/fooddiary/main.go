// Package main is the entry point for the fooddiary CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/runger/fooddiary/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
