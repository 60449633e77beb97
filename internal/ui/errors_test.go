package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"modtest/internal/domain"
)

func TestFailureViewer_Text(t *testing.T) {
	failure := domain.TestFailure{
		Test:    "Foo.BarTest.sum",
		Module:  "Foo.BarTest",
		Path:    "/p/tests/Foo/BarTest.mt",
		Status:  domain.StatusFail,
		Message: "expected [1] got [2]",
		Worker:  2,
	}

	assert.Equal(t, "[yellow]1.[white] Foo.BarTest.sum", listItemText(failure, 0))

	details := formatFailureDetails(failure)
	assert.Contains(t, details, "File: /p/tests/Foo/BarTest.mt")
	assert.Contains(t, details, "Worker: 2")
	assert.Contains(t, details, "expected [1[] got [2[]")

	failure.Resolved = true
	assert.Contains(t, listItemText(failure, 0), "✓")
	assert.Equal(t, 1, countUnresolved([]domain.TestFailure{failure, {Test: "x"}}))
}
