// Package compile runs the external compiler over the resolved test modules.
package compile

import (
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"modtest/internal/domain"
)

// Flags passed after the file list; the run needs interface artifacts, not an executable
var Flags = []string{"--emit-interfaces", "--no-executable-output"}

// Compiler compiles a set of source files in one process
type Compiler interface {
	Compile(ctx context.Context, files []string) error
}

// ProcessCompiler runs the compiler executable
type ProcessCompiler struct {
	Path   string    // Compiler executable
	Dir    string    // Working directory, the project root
	Stdout io.Writer // Defaults to os.Stdout
	Stderr io.Writer // Defaults to os.Stderr
	logger zerolog.Logger
}

// NewProcessCompiler creates a compiler that runs path from dir
func NewProcessCompiler(path, dir string, logger zerolog.Logger) *ProcessCompiler {
	return &ProcessCompiler{
		Path:   path,
		Dir:    dir,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		logger: logger.With().Str("component", "compile").Logger(),
	}
}

// Args returns the compiler arguments for files
func Args(files []string) []string {
	args := make([]string, 0, len(files)+len(Flags))
	args = append(args, files...)
	return append(args, Flags...)
}

// Compile runs the compiler once and waits for it. A start failure is SpawnFailed,
// any unsuccessful exit is CompilationFailed.
func (c *ProcessCompiler) Compile(ctx context.Context, files []string) error {
	cmd := exec.CommandContext(ctx, c.Path, Args(files)...)
	cmd.Dir = c.Dir
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	c.logger.Debug().Str("compiler", c.Path).Int("files", len(files)).Msg("starting compiler")

	if err := cmd.Start(); err != nil {
		return domain.NewError(domain.SpawnFailed, c.Path, err)
	}
	err := cmd.Wait()
	c.logger.Debug().Dur("duration", time.Since(start)).Err(err).Msg("compiler exited")

	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return domain.NewError(domain.CompilationFailed, "", err)
	}
	return nil
}
