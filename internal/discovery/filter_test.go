package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"modtest/internal/domain"
)

func ids(names ...string) []domain.TestIdentity {
	var out []domain.TestIdentity
	for i := 0; i+1 < len(names); i += 2 {
		out = append(out, domain.TestIdentity{Module: domain.ModuleName(names[i]), Symbol: names[i+1], Kind: domain.KindValue})
	}
	return out
}

func TestFilter_FilterByName(t *testing.T) {
	filter := NewFilter()
	all := ids(
		"UserTest", "suite",
		"PaymentTest", "suite",
		"OrderTest", "suite",
		"Billing.PaymentServiceTest", "tests",
	)

	tests := []struct {
		name     string
		pattern  string
		expected int // Expected number of matches
	}{
		{name: "empty pattern returns all", pattern: "", expected: 4},
		{name: "wildcard pattern matches suffix", pattern: "*Test.tests", expected: 1},
		{name: "wildcard pattern matches substring", pattern: "*Payment*", expected: 2},
		{name: "simple contains match", pattern: "Order", expected: 1},
		{name: "exact qualified name", pattern: "UserTest.suite", expected: 1},
		{name: "no matches", pattern: "*NonExistent*", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.FilterByName(all, tt.pattern)
			assert.Len(t, result, tt.expected)
		})
	}
}

func TestFilter_FilterByName_EdgeCases(t *testing.T) {
	filter := NewFilter()

	t.Run("empty test list", func(t *testing.T) {
		assert.Empty(t, filter.FilterByName(nil, "*Test*"))
	})

	t.Run("order is preserved", func(t *testing.T) {
		result := filter.FilterByName(ids("A", "x", "B", "y", "C", "x"), "*.x")
		assert.Equal(t, ids("A", "x", "C", "x"), result)
	})
}
