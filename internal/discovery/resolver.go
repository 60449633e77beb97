package discovery

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"modtest/internal/domain"
)

var upperName = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*$`)

// Resolver maps test files to canonical module names
type Resolver struct {
	roots     *SourceRootSet
	extension string
}

// NewResolver creates a Resolver over the given source roots for files with extension
func NewResolver(roots *SourceRootSet, extension string) *Resolver {
	return &Resolver{roots: roots, extension: extension}
}

// Resolve converts a file path into exactly one module name.
// The file is matched both as given and with symlinks evaluated, so a file
// reachable through two source directories is reported as ambiguous.
func (r *Resolver) Resolve(file string) (domain.ModuleName, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", domain.NewError(domain.UnresolvableModule, file, err)
	}

	candidates := make(map[string]bool)
	for _, p := range withRealPath(abs) {
		for _, match := range r.roots.Match(p) {
			candidates[r.moduleName(match.Remainder)] = true
		}
	}

	switch len(candidates) {
	case 0:
		return "", domain.NewError(domain.UnresolvableModule, file, nil)
	case 1:
		// Keep going.
	default:
		names := make([]string, 0, len(candidates))
		for name := range candidates {
			names = append(names, name)
		}
		sort.Strings(names)
		return "", &domain.Error{Kind: domain.AmbiguousModule, Path: file, Candidates: names}
	}

	var name string
	for n := range candidates {
		name = n
	}
	for _, part := range strings.Split(name, ".") {
		if !upperName.MatchString(part) {
			return "", &domain.Error{Kind: domain.InvalidModuleName, Path: file, Candidates: []string{name}}
		}
	}
	return domain.ModuleName(name), nil
}

// ResolveAll resolves every file and returns modules sorted by name, one per name.
// The first failure in path order is returned.
func (r *Resolver) ResolveAll(files []string) ([]domain.Module, error) {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	byName := make(map[domain.ModuleName]domain.Module, len(sorted))
	for _, file := range sorted {
		name, err := r.Resolve(file)
		if err != nil {
			return nil, err
		}
		if _, ok := byName[name]; ok {
			continue
		}
		abs, _ := filepath.Abs(file)
		byName[name] = domain.Module{Name: name, Path: abs}
	}

	modules := make([]domain.Module, 0, len(byName))
	for _, m := range byName {
		modules = append(modules, m)
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].Name < modules[j].Name })
	return modules, nil
}

func (r *Resolver) moduleName(rest string) string {
	rest = strings.TrimSuffix(rest, r.extension)
	return strings.ReplaceAll(rest, string(filepath.Separator), ".")
}

// withRealPath returns p and, if different, p with symlinks evaluated
func withRealPath(p string) []string {
	real, err := filepath.EvalSymlinks(p)
	if err != nil || real == p {
		return []string{p}
	}
	return []string{p, real}
}
