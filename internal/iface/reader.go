package iface

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"modtest/internal/domain"
)

// Reader reads the interface artifacts of compiled modules from a directory
type Reader struct {
	dir         string
	logger      zerolog.Logger
	concurrency int
}

// NewReader creates a Reader for artifacts stored in dir
func NewReader(dir string, logger zerolog.Logger) *Reader {
	return &Reader{
		dir:         dir,
		logger:      logger.With().Str("component", "iface").Logger(),
		concurrency: runtime.GOMAXPROCS(0),
	}
}

// Path returns where the artifact of module is expected
func (r *Reader) Path(module domain.ModuleName) string {
	return filepath.Join(r.dir, module.ArtifactBase()+Extension)
}

// ReadTests returns the test identities exported by module, in declaration order.
// A module without test-shaped exports yields no identities and no error.
func (r *Reader) ReadTests(module domain.ModuleName) ([]domain.TestIdentity, error) {
	path := r.Path(module)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewError(domain.MissingInterface, path, fmt.Errorf("no artifact for module %s", module))
		}
		return nil, domain.NewError(domain.MalformedInterface, path, err)
	}

	iface, err := Decode(data)
	if err != nil {
		return nil, domain.NewError(domain.MalformedInterface, path, err)
	}
	if iface.Module != string(module) {
		return nil, domain.NewError(domain.MalformedInterface, path, fmt.Errorf("artifact describes module %s, want %s", iface.Module, module))
	}

	tests := iface.Tests()
	r.logger.Debug().Str("module", string(module)).Int("symbols", len(iface.Symbols)).Int("tests", len(tests)).Msg("read interface")
	return tests, nil
}

// ReadAll reads every module's artifact concurrently and returns the deduplicated
// identities sorted by module and symbol. When several modules fail, the error of
// the first module in the given order is returned.
func (r *Reader) ReadAll(ctx context.Context, modules []domain.ModuleName) ([]domain.TestIdentity, error) {
	results := make([][]domain.TestIdentity, len(modules))
	errs := make([]error, len(modules))

	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)
	for i, module := range modules {
		i, module := i, module
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = r.ReadTests(module)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	seen := make(map[domain.TestIdentity]bool)
	var all []domain.TestIdentity
	for _, tests := range results {
		for _, t := range tests {
			key := domain.TestIdentity{Module: t.Module, Symbol: t.Symbol}
			if seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, t)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Less(all[j]) })
	return all, nil
}
