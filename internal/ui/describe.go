package ui

import (
	"errors"
	"fmt"
	"strings"

	"modtest/internal/domain"
)

// Describe renders a run error as a message for the terminal, with a hint
// where the fix is usually obvious
func Describe(err error) string {
	var e *domain.Error
	if !errors.As(err, &e) {
		return err.Error()
	}

	var b strings.Builder
	switch e.Kind {
	case domain.NoTestsFound:
		b.WriteString("No tests found")
		if e.Path != "" {
			fmt.Fprintf(&b, " in %s", e.Path)
		}
		b.WriteString(".\nTest suites are exported values of type Test.Test or functions of type () -> Test.Test.")
	case domain.UnresolvableModule:
		fmt.Fprintf(&b, "%s is not inside any source directory.\nAdd its directory to \"source-directories\" in modtest.json.", e.Path)
	case domain.AmbiguousModule:
		fmt.Fprintf(&b, "%s resolves to more than one module name: %s.\nCheck \"source-directories\" for nested or symlinked directories.",
			e.Path, strings.Join(e.Candidates, ", "))
	case domain.InvalidModuleName:
		fmt.Fprintf(&b, "%s does not map to a valid module name.\nEvery path component below a source directory must start with an upper case letter.", e.Path)
	case domain.InvalidCompiler:
		fmt.Fprintf(&b, "The compiler %s cannot be used", e.Path)
	case domain.CompilationFailed:
		b.WriteString("Compilation failed. See the compiler output above.")
	case domain.MissingInterface:
		fmt.Fprintf(&b, "No interface artifact at %s.\nThe compiler did not emit one for this module.", e.Path)
	case domain.MalformedInterface:
		fmt.Fprintf(&b, "The interface artifact %s is corrupt or was written by an incompatible compiler", e.Path)
	case domain.SpawnFailed:
		fmt.Fprintf(&b, "Could not start %s", e.Path)
	default:
		return e.Error()
	}

	if e.Err != nil && e.Kind != domain.CompilationFailed && e.Kind != domain.NoTestsFound {
		fmt.Fprintf(&b, "\n%v", e.Err)
	}
	return b.String()
}
