package execution

import (
	"context"

	"modtest/internal/domain"
)

// Executor executes test identities and returns the aggregated report
type Executor interface {
	Execute(ctx context.Context, tests []domain.TestIdentity) (*domain.ExecutionReport, error)
}

// Progress receives pass/fail counts as outcomes arrive
type Progress interface {
	Update(passed, failed int)
	Finish()
}
