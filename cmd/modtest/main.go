package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"modtest/internal/cli"
	"modtest/internal/cli/commands"
	"modtest/internal/ui"
)

var version = "dev"

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()

	rootCmd := &cobra.Command{
		Use:           "modtest [paths...]",
		Short:         "Parallel test runner for compiled modules",
		Long:          `Resolve test modules, compile them once and run every exported test suite across a pool of worker processes, one per logical processor.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Flags struct populated by command flags
	var flags cli.Flags

	cmds := commands.NewCommands(&flags, version, logger)
	cmds.Register(rootCmd, &flags)

	// Interrupts cancel the run; child processes are killed and reaped before exit
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", ui.Describe(err))
		os.Exit(1)
	}
}
