package discovery

import (
	"path/filepath"
	"strings"
)

// RootMatch is a source directory that is a path-prefix of a file, with the remaining path
type RootMatch struct {
	Dir       string // Source directory as declared (absolute)
	Remainder string // File path relative to Dir
}

type sourceRoot struct {
	dir  string
	real string // dir with symlinks evaluated, "" if equal to dir or unresolvable
}

// SourceRootSet holds the ordered, deduplicated source directories of a project
type SourceRootSet struct {
	roots []sourceRoot
}

// NewSourceRootSet creates a SourceRootSet from absolute directory paths, keeping first occurrences
func NewSourceRootSet(dirs []string) *SourceRootSet {
	seen := make(map[string]bool, len(dirs))
	set := &SourceRootSet{}
	for _, dir := range dirs {
		dir = filepath.Clean(dir)
		if seen[dir] {
			continue
		}
		seen[dir] = true

		root := sourceRoot{dir: dir}
		if real, err := filepath.EvalSymlinks(dir); err == nil && real != dir {
			root.real = real
		}
		set.roots = append(set.roots, root)
	}
	return set
}

// Dirs returns the directories in declaration order
func (s *SourceRootSet) Dirs() []string {
	dirs := make([]string, 0, len(s.roots))
	for _, root := range s.roots {
		dirs = append(dirs, root.dir)
	}
	return dirs
}

// Match returns every directory that is a path-prefix of the absolute file path.
// A directory reached through a symlink also matches files under its target.
func (s *SourceRootSet) Match(file string) []RootMatch {
	file = filepath.Clean(file)
	var matches []RootMatch
	for _, root := range s.roots {
		if rest, ok := cutDir(file, root.dir); ok {
			matches = append(matches, RootMatch{Dir: root.dir, Remainder: rest})
			continue
		}
		if root.real == "" {
			continue
		}
		if rest, ok := cutDir(file, root.real); ok {
			matches = append(matches, RootMatch{Dir: root.dir, Remainder: rest})
		}
	}
	return matches
}

// cutDir strips dir from file when dir is a proper ancestor of file.
// "tests2/Foo.mt" is not under "tests".
func cutDir(file, dir string) (string, bool) {
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	rest, ok := strings.CutPrefix(file, prefix)
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}
