package parser

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"modtest/internal/domain"
)

// ResultLine is one machine-readable line a worker prints per test identity
type ResultLine struct {
	Module     string `json:"module"`
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// ResultParser parses worker result lines
type ResultParser struct{}

// NewResultParser creates a new ResultParser
func NewResultParser() *ResultParser {
	return &ResultParser{}
}

// ParseLine parses a single stdout line. Lines that are not result objects
// (plain program output) return false.
func (p *ResultParser) ParseLine(line []byte) (domain.Outcome, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return domain.Outcome{}, false
	}

	var rl ResultLine
	if err := json.Unmarshal(line, &rl); err != nil {
		return domain.Outcome{}, false
	}
	if rl.Module == "" || rl.Symbol == "" {
		return domain.Outcome{}, false
	}

	outcome := domain.Outcome{
		Test:     domain.TestIdentity{Module: domain.ModuleName(rl.Module), Symbol: rl.Symbol},
		Message:  rl.Message,
		Duration: time.Duration(rl.DurationMs) * time.Millisecond,
	}
	switch domain.Status(rl.Status) {
	case domain.StatusPass, domain.StatusFail, domain.StatusError:
		outcome.Status = domain.Status(rl.Status)
	default:
		outcome.Status = domain.StatusError
		outcome.Message = fmt.Sprintf("worker reported unknown status %q", rl.Status)
		if rl.Message != "" {
			outcome.Message += ": " + rl.Message
		}
	}
	return outcome, true
}

// ParseFailures extracts failures from outcomes, in order. paths maps modules to source files.
func (p *ResultParser) ParseFailures(outcomes []domain.Outcome, paths map[domain.ModuleName]string) []domain.TestFailure {
	var failures []domain.TestFailure
	for _, o := range outcomes {
		if o.Passed() {
			continue
		}
		failures = append(failures, domain.TestFailure{
			Test:    o.Test.String(),
			Module:  string(o.Test.Module),
			Path:    paths[o.Test.Module],
			Status:  o.Status,
			Message: o.Message,
			Worker:  o.Worker,
		})
	}
	return failures
}
