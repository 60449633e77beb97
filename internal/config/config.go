package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"modtest/internal/domain"
)

// Config holds all configuration for a run
type Config struct {
	// Project settings
	ProjectRoot       string
	SourceDirectories []string
	ArtifactsDir      string

	// External processes
	Compiler string
	Worker   []string

	// Execution settings
	Processors int
	Seed       int64
	Fuzz       int

	// Output settings
	ReportFile string

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

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

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ArtifactsDir: DefaultArtifactsDir,
		Compiler:     DefaultCompiler,
		Worker:       []string{DefaultWorker},
		Fuzz:         DefaultFuzz,
		ReportFile:   DefaultReportFile,
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	cfg.SourceDirectories = make([]string, len(DefaultSourceDirectories))
	copy(cfg.SourceDirectories, DefaultSourceDirectories)
	return cfg
}

// Load creates a config for the project rooted at root, applying project file,
// environment overlay and flags in that order
func Load(root string, flags Flags) (*Config, error) {
	cfg := New()
	cfg.ProjectRoot = root
	cfg.Flags = flags

	project, err := ReadProject(root)
	if err != nil {
		return nil, err
	}
	cfg.SourceDirectories = project.SourceDirectories
	cfg.ArtifactsDir = project.ArtifactsDir
	if len(project.Worker) > 0 {
		cfg.Worker = project.Worker
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// Apply flag overrides
	if flags.Compiler != "" {
		compiler, err := ResolveCompiler(flags.Compiler)
		if err != nil {
			return nil, err
		}
		cfg.Compiler = compiler
	}
	if flags.Processors > 0 {
		cfg.Processors = flags.Processors
	}
	if flags.Seed != 0 {
		cfg.Seed = flags.Seed
	}
	if flags.Fuzz > 0 {
		cfg.Fuzz = flags.Fuzz
	}
	if flags.Report != "" {
		cfg.ReportFile = flags.Report
	}
	return cfg, nil
}

// applyEnv overlays MODTEST_* variables. The process environment wins over .env.
func (c *Config) applyEnv() error {
	dotenv, err := godotenv.Read(filepath.Join(c.ProjectRoot, EnvFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.NewError(domain.ConfigurationError, filepath.Join(c.ProjectRoot, EnvFile), err)
	}
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return dotenv[key]
	}

	if v := lookup(EnvCompiler); v != "" {
		c.Compiler = v
	}
	if v := lookup(EnvWorker); v != "" {
		c.Worker = strings.Fields(v)
	}
	if v := lookup(EnvProcessors); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return domain.NewError(domain.ConfigurationError, EnvProcessors, fmt.Errorf("invalid processor count %q", v))
		}
		c.Processors = n
	}
	return nil
}

// ResolveCompiler canonicalizes a --compiler value; it must name an existing file
func ResolveCompiler(flag string) (string, error) {
	abs, err := filepath.Abs(flag)
	if err != nil {
		return "", domain.NewError(domain.InvalidCompiler, flag, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", domain.NewError(domain.InvalidCompiler, flag, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", domain.NewError(domain.InvalidCompiler, flag, err)
	}
	if info.IsDir() {
		return "", domain.NewError(domain.InvalidCompiler, flag, errors.New("is a directory"))
	}
	return resolved, nil
}

// GetTestPaths returns the user paths relative to the project root, or the default test path
func (c *Config) GetTestPaths(args []string) []string {
	if len(args) == 0 {
		return []string{filepath.Join(c.ProjectRoot, DefaultTestPath)}
	}
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		paths = append(paths, c.abs(arg))
	}
	return paths
}

// GetSourceDirectories returns the source directories as absolute paths, in declaration order
func (c *Config) GetSourceDirectories() []string {
	dirs := make([]string, 0, len(c.SourceDirectories))
	for _, dir := range c.SourceDirectories {
		dirs = append(dirs, c.abs(dir))
	}
	return dirs
}

// GetArtifactsPath returns the directory holding interface artifacts
func (c *Config) GetArtifactsPath() string {
	return c.abs(c.ArtifactsDir)
}

// GetReportPath returns the full path to the saved report
func (c *Config) GetReportPath() string {
	return c.abs(c.ReportFile)
}

func (c *Config) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.ProjectRoot, p)
}
