package commands

import (
	"github.com/spf13/cobra"

	"modtest/internal/domain"
)

// ListCommand handles the list command
type ListCommand struct {
	loader *Loader
}

// NewListCommand creates a new ListCommand
func NewListCommand(loader *Loader) *ListCommand {
	return &ListCommand{loader: loader}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	app, err := lc.loader.Load()
	if err != nil {
		return err
	}

	failed := lc.lastFailures(app)

	if !app.Config.Flags.ListTests {
		modules, err := app.Pipeline.Modules(args)
		if err != nil {
			return err
		}
		app.Formatter.PrintTestList(modules, nil, false, failed)
		return nil
	}

	found, err := app.Pipeline.Discover(cmd.Context(), args)
	if err != nil {
		return err
	}
	app.Formatter.PrintTestList(found.Modules, found.Tests, true, failed)
	return nil
}

// lastFailures returns the modules that failed on the last saved run, if any
func (lc *ListCommand) lastFailures(app *App) map[domain.ModuleName]bool {
	report, err := app.Storage.Load()
	if err != nil {
		app.Logger.Debug().Err(err).Msg("no previous report")
		return nil
	}
	failed := make(map[domain.ModuleName]bool)
	for _, f := range report.Failures {
		if !f.Resolved {
			failed[domain.ModuleName(f.Module)] = true
		}
	}
	return failed
}
