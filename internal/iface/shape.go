package iface

import "modtest/internal/domain"

// The test type every runnable suite must have, fixed by schema version 1
const (
	TestTypeModule = "Test"
	TestTypeName   = "Test"
)

// TestKind reports whether t is a test-suite shape: a value of type Test.Test,
// or a function () -> Test.Test.
func TestKind(t *Type) (domain.TestKind, bool) {
	if isTestType(t) {
		return domain.KindValue, true
	}
	if t != nil && t.Tag == TagLambda && len(t.Args) == 2 && t.Args[0].Tag == TagUnit && isTestType(t.Args[1]) {
		return domain.KindThunk, true
	}
	return "", false
}

func isTestType(t *Type) bool {
	return t != nil && t.Tag == TagNamed && t.Module == TestTypeModule && t.Name == TestTypeName && len(t.Args) == 0
}

// Tests returns the test identities of a decoded interface, in declaration order
func (i *Interface) Tests() []domain.TestIdentity {
	var tests []domain.TestIdentity
	for _, sym := range i.Symbols {
		if kind, ok := TestKind(sym.Type); ok {
			tests = append(tests, domain.TestIdentity{
				Module: domain.ModuleName(i.Module),
				Symbol: sym.Name,
				Kind:   kind,
			})
		}
	}
	return tests
}
