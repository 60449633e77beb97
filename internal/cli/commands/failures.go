package commands

import (
	"github.com/spf13/cobra"
)

// FailuresCommand handles the failures command
type FailuresCommand struct {
	loader *Loader
}

// NewFailuresCommand creates a new FailuresCommand
func NewFailuresCommand(loader *Loader) *FailuresCommand {
	return &FailuresCommand{loader: loader}
}

// Execute runs the command
func (fc *FailuresCommand) Execute(cmd *cobra.Command, args []string) error {
	app, err := fc.loader.Load()
	if err != nil {
		return err
	}

	report, err := app.Storage.Load()
	if err != nil {
		return err
	}
	return app.Viewer.View(report)
}
