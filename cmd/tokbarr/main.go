// Package main is the entrypoint of Tokbarr.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"tokbarr/internal/cfg"
	"tokbarr/internal/domain/paths"
	"tokbarr/internal/logging"
)

// init runs before the program begins.
func init() {
	if err := paths.InitProgFilesDirs(); err != nil {
		fmt.Printf("Tokbarr exiting with error: %v\n", err)
		os.Exit(1)
	}
}

func main() {
	if err := logging.SetupLogging(paths.LogFilePath); err != nil {
		fmt.Printf("Tokbarr exiting with error: %v\n", err)
		os.Exit(1)
	}

	// Cancellable context for shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	defer cancel()

	if err := cfg.InitCommands(ctx); err != nil {
		logging.E("Error: %v", err)
		os.Exit(1)
	}

	if err := cfg.Execute(); err != nil {
		logging.E("Error: %v", err)
		os.Exit(1)
	}
}
