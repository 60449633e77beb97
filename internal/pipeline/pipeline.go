// Package pipeline sequences a run: gather test files, resolve module names,
// compile, read interface artifacts and hand the test identities to the workers.
package pipeline

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"modtest/internal/compile"
	"modtest/internal/config"
	"modtest/internal/discovery"
	"modtest/internal/domain"
	"modtest/internal/execution"
)

// Reader reads the test identities exported by compiled modules
type Reader interface {
	ReadAll(ctx context.Context, modules []domain.ModuleName) ([]domain.TestIdentity, error)
}

// Executor runs test identities; module paths are used to locate failures
type Executor interface {
	execution.Executor
	SetModulePaths(paths map[domain.ModuleName]string)
}

// Discovery is the outcome of gathering, compiling and reading interfaces
type Discovery struct {
	Modules []domain.Module
	Tests   []domain.TestIdentity
}

// Pipeline runs the stages of a test run in order
type Pipeline struct {
	config   *config.Config
	scanner  *discovery.Scanner
	resolver *discovery.Resolver
	filter   *discovery.Filter
	compiler compile.Compiler
	reader   Reader
	executor Executor
	logger   zerolog.Logger
}

// New creates a Pipeline for cfg
func New(cfg *config.Config, compiler compile.Compiler, reader Reader, executor Executor, logger zerolog.Logger) *Pipeline {
	roots := discovery.NewSourceRootSet(cfg.GetSourceDirectories())
	return &Pipeline{
		config:   cfg,
		scanner:  discovery.NewScanner(cfg.PathsToIgnore, config.SourceExtension),
		resolver: discovery.NewResolver(roots, config.SourceExtension),
		filter:   discovery.NewFilter(),
		compiler: compiler,
		reader:   reader,
		executor: executor,
		logger:   logger.With().Str("component", "pipeline").Logger(),
	}
}

// Modules gathers test files under args and resolves their module names
func (p *Pipeline) Modules(args []string) ([]domain.Module, error) {
	paths := p.config.GetTestPaths(args)
	files, err := p.scanner.Gather(paths)
	if err != nil {
		return nil, err
	}
	p.logger.Debug().Strs("paths", paths).Int("files", len(files)).Msg("gathered test files")

	return p.resolver.ResolveAll(files)
}

// Discover resolves, compiles and reads the test identities under args, applying
// the configured name filter. No identities is a NoTestsFound error.
func (p *Pipeline) Discover(ctx context.Context, args []string) (*Discovery, error) {
	modules, err := p.Modules(args)
	if err != nil {
		return nil, err
	}

	files := make([]string, len(modules))
	names := make([]domain.ModuleName, len(modules))
	for i, m := range modules {
		files[i] = m.Path
		names[i] = m.Name
	}

	if err := p.compiler.Compile(ctx, files); err != nil {
		return nil, err
	}

	tests, err := p.reader.ReadAll(ctx, names)
	if err != nil {
		return nil, err
	}

	if pattern := p.config.Flags.Filter; pattern != "" {
		tests = p.filter.FilterByName(tests, pattern)
		p.logger.Debug().Str("filter", pattern).Int("tests", len(tests)).Msg("filtered tests")
	}
	if len(tests) == 0 {
		return nil, domain.NewError(domain.NoTestsFound, strings.Join(args, " "), nil)
	}

	p.logger.Info().Int("modules", len(modules)).Int("tests", len(tests)).Msg("discovered tests")
	return &Discovery{Modules: modules, Tests: tests}, nil
}

// Execute hands discovered tests to the executor. The returned report is nil
// when the run could not complete.
func (p *Pipeline) Execute(ctx context.Context, found *Discovery) (*domain.ExecutionReport, error) {
	paths := make(map[domain.ModuleName]string, len(found.Modules))
	for _, m := range found.Modules {
		paths[m.Name] = m.Path
	}
	p.executor.SetModulePaths(paths)

	return p.executor.Execute(ctx, found.Tests)
}

// Run discovers the tests under args and executes them
func (p *Pipeline) Run(ctx context.Context, args []string) (*domain.ExecutionReport, error) {
	found, err := p.Discover(ctx, args)
	if err != nil {
		return nil, err
	}
	return p.Execute(ctx, found)
}
