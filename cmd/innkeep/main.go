// Package main provides the entry point for the innkeep CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tavernworks/innkeep/internal/cli"
	"github.com/tavernworks/innkeep/internal/config"
)

func main() {
	cfg := config.Load()
	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	slog.SetDefault(logger)
	defer func() {
		if err := closeLog(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
	}()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
