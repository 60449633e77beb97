package parser

import "modtest/internal/domain"

// Parser turns worker output into outcomes and failures
type Parser interface {
	ParseLine(line []byte) (domain.Outcome, bool)
	ParseFailures(outcomes []domain.Outcome, paths map[domain.ModuleName]string) []domain.TestFailure
}
