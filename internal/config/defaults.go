package config

const (
	// ProjectFile is the project configuration file that marks the project root
	ProjectFile = "modtest.json"
	// EnvFile is the optional environment overlay read from the project root
	EnvFile = ".env"
	// DefaultTestPath is searched when no paths are given on the command line
	DefaultTestPath = "tests"
	// SourceExtension is the extension of module source files
	SourceExtension = ".mt"
	// DefaultArtifactsDir is where the compiler writes interface artifacts
	DefaultArtifactsDir = ".modtest/interfaces"
	// DefaultReportFile is the path of the saved report, relative to the project root
	DefaultReportFile = ".modtest/last-run.json"
	// DefaultCompiler is looked up on PATH when --compiler is not given
	DefaultCompiler = "compile"
	// DefaultWorker is the worker executable looked up on PATH
	DefaultWorker = "modtest-worker"
	// DefaultFuzz is the number of fuzz runs workers perform per fuzz test
	DefaultFuzz = 100
)

// Environment variables honoured from the process environment and the .env overlay
const (
	EnvCompiler   = "MODTEST_COMPILER"
	EnvWorker     = "MODTEST_WORKER"
	EnvProcessors = "MODTEST_PROCESSORS"
)

// DefaultPathsToIgnore are the directories skipped when scanning for test files
var DefaultPathsToIgnore = []string{
	"node_modules",
	".modtest",
}

// DefaultSourceDirectories is used when the project file does not declare any
var DefaultSourceDirectories = []string{"src", DefaultTestPath}
