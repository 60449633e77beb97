package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"modtest/internal/domain"
)

// Scanner gathers candidate test files from path arguments
type Scanner struct {
	skipDirs  map[string]bool
	extension string
}

// NewScanner creates a new Scanner for files with extension, skipping the given directory names
func NewScanner(skipDirs []string, extension string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap, extension: extension}
}

// Gather expands files, directories and glob patterns into a sorted, deduplicated
// list of absolute file paths. Explicit files are kept whatever their extension.
func (s *Scanner) Gather(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = filepath.Clean(p)
		}
		if !seen[abs] {
			seen[abs] = true
			files = append(files, abs)
		}
	}

	for _, p := range paths {
		if isGlob(p) {
			matches, err := doublestar.FilepathGlob(p)
			if err != nil {
				return nil, domain.NewError(domain.ReadTestFiles, p, err)
			}
			for _, match := range matches {
				found, err := s.expand(match, true)
				if err != nil {
					return nil, err
				}
				for _, f := range found {
					add(f)
				}
			}
			continue
		}

		found, err := s.expand(p, false)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	if len(files) == 0 {
		return nil, domain.NewError(domain.NoTestsFound, strings.Join(paths, " "), nil)
	}
	sort.Strings(files)
	return files, nil
}

// expand returns the files a single path stands for. Glob matches are filtered by extension.
func (s *Scanner) expand(p string, fromGlob bool) ([]string, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, domain.NewError(domain.ReadTestFiles, p, err)
	}
	if info.IsDir() {
		return s.Scan(p)
	}
	if fromGlob && !strings.HasSuffix(p, s.extension) {
		return nil, nil
	}
	return []string{p}, nil
}

// Scan finds all source files under the given root directory
func (s *Scanner) Scan(root string) ([]string, error) {
	var files []string

	// Clean and validate the root path
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, domain.NewError(domain.ReadTestFiles, root, err)
	}
	if !info.IsDir() {
		return nil, domain.NewError(domain.ReadTestFiles, root, fmt.Errorf("not a directory"))
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			// Skip hidden directories (starting with .)
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}

			if s.skipDirs[name] {
				return filepath.SkipDir
			}

			return nil
		}

		if strings.HasSuffix(d.Name(), s.extension) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, domain.NewError(domain.ReadTestFiles, root, err)
	}

	return files, nil
}

func isGlob(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}
