package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"modtest/internal/domain"
)

func TestResultParser_ParseLine(t *testing.T) {
	p := NewResultParser()

	tests := []struct {
		name     string
		line     string
		ok       bool
		expected domain.Outcome
	}{
		{
			name: "pass",
			line: `{"module":"Foo.BarTest","symbol":"suite","status":"pass","duration_ms":12}`,
			ok:   true,
			expected: domain.Outcome{
				Test:     domain.TestIdentity{Module: "Foo.BarTest", Symbol: "suite"},
				Status:   domain.StatusPass,
				Duration: 12 * time.Millisecond,
			},
		},
		{
			name: "fail with message and surrounding whitespace",
			line: "  {\"module\":\"A\",\"symbol\":\"t\",\"status\":\"fail\",\"message\":\"1 /= 2\"}\r",
			ok:   true,
			expected: domain.Outcome{
				Test:    domain.TestIdentity{Module: "A", Symbol: "t"},
				Status:  domain.StatusFail,
				Message: "1 /= 2",
			},
		},
		{
			name: "unknown status is an error",
			line: `{"module":"A","symbol":"t","status":"skipped"}`,
			ok:   true,
			expected: domain.Outcome{
				Test:    domain.TestIdentity{Module: "A", Symbol: "t"},
				Status:  domain.StatusError,
				Message: `worker reported unknown status "skipped"`,
			},
		},
		{name: "plain output", line: "Debug: hello", ok: false},
		{name: "broken json", line: `{"module":`, ok: false},
		{name: "object without identity", line: `{"status":"pass"}`, ok: false},
		{name: "empty", line: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, ok := p.ParseLine([]byte(tt.line))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, outcome)
			}
		})
	}
}

func TestResultParser_ParseFailures(t *testing.T) {
	p := NewResultParser()
	outcomes := []domain.Outcome{
		{Test: domain.TestIdentity{Module: "A", Symbol: "ok"}, Status: domain.StatusPass, Worker: 1},
		{Test: domain.TestIdentity{Module: "A", Symbol: "bad"}, Status: domain.StatusFail, Message: "boom", Worker: 1},
		{Test: domain.TestIdentity{Module: "B", Symbol: "lost"}, Status: domain.StatusError, Worker: 2},
	}

	failures := p.ParseFailures(outcomes, map[domain.ModuleName]string{"A": "/p/tests/A.mt"})
	assert.Equal(t, []domain.TestFailure{
		{Test: "A.bad", Module: "A", Path: "/p/tests/A.mt", Status: domain.StatusFail, Message: "boom", Worker: 1},
		{Test: "B.lost", Module: "B", Status: domain.StatusError, Worker: 2},
	}, failures)
}
