package execution

import "modtest/internal/domain"

// Scheduler distributes tests across workers
type Scheduler interface {
	Schedule(tests []domain.TestIdentity, workerCount int) [][]domain.TestIdentity
}

// ContiguousScheduler splits tests into evenly sized contiguous slices
type ContiguousScheduler struct{}

// NewContiguousScheduler creates a new ContiguousScheduler
func NewContiguousScheduler() *ContiguousScheduler {
	return &ContiguousScheduler{}
}

// Schedule returns min(workerCount, len(tests)) non-empty, disjoint partitions whose
// concatenation is tests. The first len(tests)%n partitions get one extra test, so
// 10 tests over 4 workers are split 3/3/2/2.
func (s *ContiguousScheduler) Schedule(tests []domain.TestIdentity, workerCount int) [][]domain.TestIdentity {
	if len(tests) == 0 {
		return nil
	}
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > len(tests) {
		workerCount = len(tests)
	}

	size, extra := len(tests)/workerCount, len(tests)%workerCount
	distribution := make([][]domain.TestIdentity, 0, workerCount)
	start := 0
	for i := 0; i < workerCount; i++ {
		end := start + size
		if i < extra {
			end++
		}
		distribution = append(distribution, tests[start:end:end])
		start = end
	}

	return distribution
}
