package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"modtest/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	loader  *Loader
	version string
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(loader *Loader, version string) *RunCommand {
	return &RunCommand{loader: loader, version: version}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	app, err := rc.loader.Load()
	if err != nil {
		return err
	}
	app.Formatter.PrintHeadline(rc.version)

	ctx := cmd.Context()
	found, err := app.Pipeline.Discover(ctx, args)
	if err != nil {
		return err
	}

	progressBar := ui.NewProgressBar(len(found.Tests))
	app.Pool.SetProgress(progressBar)

	report, err := app.Pipeline.Execute(ctx, found)
	if err != nil {
		return err
	}

	if err := app.Storage.Save(report); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	app.Formatter.PrintSummary(report)

	if app.Config.Flags.OpenFailures && !report.Success {
		if err := app.Viewer.View(report); err != nil {
			return err
		}
	}
	return report.Err()
}
