package discovery

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"modtest/internal/domain"
)

// Filter filters test identities by qualified name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps identities whose qualified name ("Module.symbol") matches pattern.
// Patterns with wildcards ("*Payment*", "Foo.*Test.suite") use glob matching,
// plain patterns match as a substring.
func (f *Filter) FilterByName(tests []domain.TestIdentity, pattern string) []domain.TestIdentity {
	if pattern == "" {
		return tests
	}

	var filtered []domain.TestIdentity
	hasWildcard := strings.ContainsAny(pattern, "*?[{")

	for _, test := range tests {
		name := test.String()

		if !hasWildcard {
			if strings.Contains(name, pattern) {
				filtered = append(filtered, test)
			}
			continue
		}

		matched, err := doublestar.Match(pattern, name)
		if err == nil && matched {
			filtered = append(filtered, test)
		}
	}

	return filtered
}
