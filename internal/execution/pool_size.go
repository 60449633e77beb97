package execution

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
)

// LogicalCPUs returns the number of logical processors, at least 1
func LogicalCPUs() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		n = runtime.NumCPU()
	}
	if n < 1 {
		n = 1
	}
	return n
}

// PoolSize returns how many worker slots to spawn for tests identities.
// requested <= 0 means one slot per logical processor.
func PoolSize(requested, tests int) int {
	n := requested
	if n <= 0 {
		n = LogicalCPUs()
	}
	if n > tests {
		n = tests
	}
	if n < 1 {
		n = 1
	}
	return n
}
