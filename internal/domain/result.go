package domain

import (
	"fmt"
	"time"
)

// Status is the outcome of a single test identity
type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusError Status = "error"
)

// Outcome is the result a worker reported for one test identity
type Outcome struct {
	Test     TestIdentity  `json:"test"`
	Status   Status        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
	Worker   int           `json:"worker"`
}

// Passed reports whether the test passed
func (o Outcome) Passed() bool {
	return o.Status == StatusPass
}

// SlotResult is what a single worker slot produced
type SlotResult struct {
	Worker   int            // 1-based slot number
	Tests    []TestIdentity // Partition handed to the slot
	Outcomes []Outcome      // Outcomes keyed by the partition order
	ExitCode int            // Process exit code, -1 if killed by a signal
	Stderr   string         // Captured standard error, trimmed
	Err      error          // Non-nil if the slot did not exit cleanly
}

// ReportMeta contains metadata about a test run
type ReportMeta struct {
	Total           int     `json:"total"`
	Passed          int     `json:"passed"`
	Failed          int     `json:"failed"`
	Errored         int     `json:"errored"`
	Workers         int     `json:"workers"`
	Seed            int64   `json:"seed"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Timestamp       string  `json:"timestamp"`
}

// WorkerSummary describes how one worker slot ended
type WorkerSummary struct {
	Worker   int    `json:"worker"`
	Tests    int    `json:"tests"`
	ExitCode int    `json:"exit_code"`
	Failed   bool   `json:"failed"`
	Error    string `json:"error,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
}

// ExecutionReport aggregates per-identity outcomes of one run
type ExecutionReport struct {
	Meta     ReportMeta      `json:"meta"`
	Success  bool            `json:"success"`
	Outcomes []Outcome       `json:"outcomes"`
	Workers  []WorkerSummary `json:"workers"`
	Failures []TestFailure   `json:"failures"`
}

// Err returns a WorkerFailure error unless every test passed and every worker exited cleanly
func (r *ExecutionReport) Err() error {
	if r.Success {
		return nil
	}
	var failedWorkers int
	for _, w := range r.Workers {
		if w.Failed {
			failedWorkers++
		}
	}
	return NewError(WorkerFailure, "", fmt.Errorf("%d of %d tests did not pass, %d of %d workers failed",
		r.Meta.Failed+r.Meta.Errored, r.Meta.Total, failedWorkers, len(r.Workers)))
}
