package commands

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"modtest/internal/cli"
	"modtest/internal/compile"
	"modtest/internal/config"
	"modtest/internal/execution"
	"modtest/internal/iface"
	"modtest/internal/parser"
	"modtest/internal/pipeline"
	"modtest/internal/storage"
	"modtest/internal/ui"
)

// App holds the dependencies of a command, built once the project root is known
type App struct {
	Config    *config.Config
	Pipeline  *pipeline.Pipeline
	Pool      *execution.WorkerPool
	Storage   storage.Storage
	Formatter *ui.Formatter
	Viewer    ui.Viewer
	Logger    zerolog.Logger
}

// Loader builds the App from parsed flags
type Loader struct {
	flags  *cli.Flags
	logger zerolog.Logger
}

// Load finds the project root from the working directory, loads its
// configuration and wires the run's components
func (l *Loader) Load() (*App, error) {
	logger := l.logger
	if l.flags.Verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := config.FindRoot(wd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root, l.flags.ToConfigFlags())
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("root", root).Strs("source_directories", cfg.SourceDirectories).Msg("loaded configuration")

	var workerOutput io.Writer = io.Discard
	if cfg.Flags.Verbose {
		workerOutput = os.Stdout
	}

	resultParser := parser.NewResultParser()
	runner := execution.NewRunner(cfg, resultParser, workerOutput, logger)
	pool := execution.NewWorkerPool(cfg, runner, execution.NewContiguousScheduler(), resultParser, logger)
	compiler := compile.NewProcessCompiler(cfg.Compiler, cfg.ProjectRoot, logger)
	reader := iface.NewReader(cfg.GetArtifactsPath(), logger)
	jsonStorage := storage.NewJSONStorage(cfg)

	return &App{
		Config:    cfg,
		Pipeline:  pipeline.New(cfg, compiler, reader, pool, logger),
		Pool:      pool,
		Storage:   jsonStorage,
		Formatter: ui.NewFormatter(cfg),
		Viewer:    ui.NewFailureViewer(cfg, jsonStorage),
		Logger:    logger,
	}, nil
}

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Failures *FailuresCommand
}

// NewCommands creates all commands; dependencies are built when a command runs
func NewCommands(flags *cli.Flags, version string, logger zerolog.Logger) *Commands {
	loader := &Loader{flags: flags, logger: logger}
	return &Commands{
		Run:      NewRunCommand(loader, version),
		List:     NewListCommand(loader),
		Failures: NewFailuresCommand(loader),
	}
}

func addRunFlags(cmd *cobra.Command, flags *cli.Flags) {
	cmd.Flags().StringVar(&flags.Compiler, "compiler", "", "Path to the compiler executable (default: compile on PATH)")
	cmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, "Number of worker processes (default: logical CPU count)")
	cmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Filter tests by qualified name (supports wildcards, e.g. 'Foo.*' or '*Payment*')")
	cmd.Flags().Int64Var(&flags.Seed, "seed", 0, "Random seed forwarded to workers")
	cmd.Flags().IntVar(&flags.Fuzz, "fuzz", 0, "Number of fuzz runs per fuzz test")
	cmd.Flags().StringVar(&flags.Report, "report", "", "Path of the JSON report (default: .modtest/last-run.json)")
	cmd.Flags().BoolVar(&flags.OpenFailures, "open-failures", false, "Open the failures viewer when the run finishes with failures")
}

// Register registers all commands with cobra. The root command runs tests.
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging and show worker output")

	rootCmd.Args = cobra.ArbitraryArgs
	rootCmd.RunE = c.Run.Execute
	addRunFlags(rootCmd, flags)

	runCmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Compile and run tests in parallel",
		Long:  "Gather test modules under the given paths (default: tests), compile them and run every exported test across a pool of workers",
		RunE:  c.Run.Execute,
	}
	addRunFlags(runCmd, flags)
	rootCmd.AddCommand(runCmd)

	listCmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List discovered test modules",
		Long:  "Resolve and list test modules without running them; with --tests, compile and list their test suites",
		RunE:  c.List.Execute,
	}
	listCmd.Flags().BoolVarP(&flags.ListTests, "tests", "t", false, "Compile and list test suites instead of modules")
	listCmd.Flags().StringVar(&flags.Compiler, "compiler", "", "Path to the compiler executable (default: compile on PATH)")
	listCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Filter tests by qualified name (supports wildcards)")
	rootCmd.AddCommand(listCmd)

	failuresCmd := &cobra.Command{
		Use:   "failures",
		Short: "View test failures interactively",
		Long:  "Display test failures from the last run in an interactive viewer",
		Args:  cobra.NoArgs,
		RunE:  c.Failures.Execute,
	}
	rootCmd.AddCommand(failuresCmd)
}
