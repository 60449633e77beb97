package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"modtest/internal/config"
	"modtest/internal/domain"
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to stdout
func NewFormatter(cfg *config.Config) *Formatter {
	return &Formatter{config: cfg, out: os.Stdout}
}

// SetOutput redirects the formatter's output
func (f *Formatter) SetOutput(out io.Writer) {
	f.out = out
}

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
)

// PrintHeadline prints the tool name and version followed by a rule
func (f *Formatter) PrintHeadline(version string) {
	line := fmt.Sprintf("modtest %s", version)
	cyan.Fprintln(f.out, line)
	fmt.Fprintln(f.out, strings.Repeat("-", len(line)))
}

// PrintSummary prints the statistics table of a report and, when tests failed,
// the failures grouped by source file
func (f *Formatter) PrintSummary(report *domain.ExecutionReport) {
	meta := report.Meta

	fmt.Fprintln(f.out)
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                    Test Execution Statistics                  ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")

	rule := "├─────────────────────────────────┼─────────────────────────────┤"
	rows := []struct {
		label string
		value string
		c     *color.Color
	}{
		{"Total Tests", fmt.Sprint(meta.Total), white},
		{"Passed", fmt.Sprint(meta.Passed), green},
		{"Failed", fmt.Sprint(meta.Failed), red},
		{"Errored", fmt.Sprint(meta.Errored), red},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), white},
		{"Workers", fmt.Sprint(meta.Workers), white},
		{"Seed", fmt.Sprint(meta.Seed), white},
		{"Timestamp", meta.Timestamp, white},
	}

	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(f.out, "│ %-31s │ ", row.label)
		row.c.Fprintf(f.out, "%-27s", row.value)
		fmt.Fprintln(f.out, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, rule)
		}
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")

	for _, w := range report.Workers {
		if !w.Failed {
			continue
		}
		red.Fprintf(f.out, "✗ worker %d exited with code %d\n", w.Worker, w.ExitCode)
		if w.Stderr != "" {
			fmt.Fprintln(f.out, indent(w.Stderr, "    "))
		}
	}

	fmt.Fprintln(f.out)
	if report.Success {
		green.Fprintln(f.out, "✓ All tests passed!")
		return
	}
	red.Fprintf(f.out, "✗ %d test(s) failed, %d errored\n", meta.Failed, meta.Errored)
	fmt.Fprintln(f.out)
	f.printFailureTree(report.Failures)
}

// printFailureTree prints failures grouped by the file that declares them
func (f *Formatter) printFailureTree(failures []domain.TestFailure) {
	byFile := make(map[string][]domain.TestFailure)
	for _, failure := range failures {
		key := f.relative(failure.Path)
		if key == "" {
			key = failure.Module
		}
		byFile[key] = append(byFile[key], failure)
	}

	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Strings(files)

	for i, file := range files {
		lastFile := i == len(files)-1
		yellow.Fprintf(f.out, "%s%s\n", branch(lastFile), file)

		cases := byFile[file]
		for j, failure := range cases {
			symbol := strings.TrimPrefix(failure.Test, failure.Module+".")
			red.Fprintf(f.out, "%s%s%s", stem(lastFile), branch(j == len(cases)-1), symbol)
			if failure.Status == domain.StatusError {
				fmt.Fprint(f.out, " (error)")
			}
			fmt.Fprintln(f.out)
		}
	}
}

// PrintTestList prints the modules and, with showTests, the test identities they export.
// Modules whose tests failed on the last run are marked with [F].
func (f *Formatter) PrintTestList(modules []domain.Module, tests []domain.TestIdentity, showTests bool, failed map[domain.ModuleName]bool) {
	byModule := make(map[domain.ModuleName][]domain.TestIdentity)
	for _, t := range tests {
		byModule[t.Module] = append(byModule[t.Module], t)
	}

	if showTests {
		green.Fprintf(f.out, "Found %d test module(s) with %d test(s):\n\n", len(modules), len(tests))
	} else {
		green.Fprintf(f.out, "Found %d test module(s):\n\n", len(modules))
	}

	for i, m := range modules {
		last := i == len(modules)-1
		marker := ""
		if failed[m.Name] {
			marker = " " + color.RedString("[F]")
		}
		cyan.Fprintf(f.out, "%s%s", branch(last), m.Name)
		fmt.Fprintf(f.out, "%s  %s\n", marker, color.HiBlackString(f.relative(m.Path)))

		if !showTests {
			continue
		}
		ids := byModule[m.Name]
		if len(ids) == 0 {
			fmt.Fprintf(f.out, "%s%s\n", stem(last)+branch(true), red.Sprint("(no tests found)"))
		}
		for j, id := range ids {
			fmt.Fprintf(f.out, "%s%s%s\n", stem(last), branch(j == len(ids)-1), yellow.Sprintf("%s [%s]", id.Symbol, id.Kind))
		}
	}
}

func (f *Formatter) relative(path string) string {
	if path == "" || f.config == nil || f.config.ProjectRoot == "" {
		return path
	}
	rel, err := filepath.Rel(f.config.ProjectRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func branch(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}

func stem(last bool) string {
	if last {
		return "    "
	}
	return "│   "
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
