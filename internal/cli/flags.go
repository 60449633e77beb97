package cli

import "modtest/internal/config"

// Flags holds command-line flags
type Flags struct {
	Compiler     string
	Processors   int
	Filter       string
	Seed         int64
	Fuzz         int
	Report       string
	Verbose      bool
	ListTests    bool
	OpenFailures bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Compiler:     f.Compiler,
		Processors:   f.Processors,
		Filter:       f.Filter,
		Seed:         f.Seed,
		Fuzz:         f.Fuzz,
		Report:       f.Report,
		Verbose:      f.Verbose,
		ListTests:    f.ListTests,
		OpenFailures: f.OpenFailures,
	}
}
