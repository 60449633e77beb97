package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies every fatal condition of a run
type Kind string

const (
	ConfigurationError Kind = "configuration error"
	NoTestsFound       Kind = "no tests found"
	ReadTestFiles      Kind = "cannot read test files"
	UnresolvableModule Kind = "unresolvable module"
	AmbiguousModule    Kind = "ambiguous module"
	InvalidModuleName  Kind = "invalid module name"
	InvalidCompiler    Kind = "invalid compiler"
	CompilationFailed  Kind = "compilation failed"
	SpawnFailed        Kind = "spawn failed"
	MissingInterface   Kind = "missing interface"
	MalformedInterface Kind = "malformed interface"
	WorkerFailure      Kind = "worker failure"
)

// Error is the error type returned by every stage of a run
type Error struct {
	Kind       Kind
	Path       string   // File or artifact the error is about, if any
	Candidates []string // Candidate module names for AmbiguousModule
	Err        error
}

// NewError creates an Error of the given kind about path
func NewError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
	}
	if len(e.Candidates) > 0 {
		fmt.Fprintf(&b, " (candidates: %s)", strings.Join(e.Candidates, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, &Error{Kind: k}) works
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// IsKind checks if the error is or wraps an Error of the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	return err != nil && errors.As(err, &e) && e.Kind == kind
}

// KindOf returns the kind of the outermost Error in the chain, or "" if there is none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
