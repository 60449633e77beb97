package domain

import "strings"

// ModuleName is a dot-separated module identifier such as "Foo.BarTest"
type ModuleName string

// ArtifactBase returns the file name stem the compiler uses for the module's interface artifact
func (m ModuleName) ArtifactBase() string {
	return strings.ReplaceAll(string(m), ".", "-")
}

// Module is a test file resolved to its canonical module name
type Module struct {
	Name ModuleName // Canonical module name
	Path string     // Absolute path to the source file
}

// TestKind describes which test-suite shape an exported symbol has
type TestKind string

const (
	// KindValue is a plain exported value of the test type
	KindValue TestKind = "value"
	// KindThunk is a zero-argument function returning the test type
	KindThunk TestKind = "thunk"
)

// TestIdentity is a (module, exported symbol) pair confirmed to be a test suite
type TestIdentity struct {
	Module ModuleName `json:"module"`
	Symbol string     `json:"symbol"`
	Kind   TestKind   `json:"kind"`
}

// String returns the qualified name, e.g. "Foo.BarTest.suite"
func (t TestIdentity) String() string {
	return string(t.Module) + "." + t.Symbol
}

// Less orders identities by module name, then symbol name
func (t TestIdentity) Less(other TestIdentity) bool {
	if t.Module != other.Module {
		return t.Module < other.Module
	}
	return t.Symbol < other.Symbol
}
