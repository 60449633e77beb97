package execution

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"modtest/internal/config"
	"modtest/internal/domain"
	"modtest/internal/parser"
)

// Manifest is the work description handed to one worker slot
type Manifest struct {
	Worker       int                   `json:"worker"`
	ProjectRoot  string                `json:"project_root"`
	ArtifactsDir string                `json:"artifacts_dir"`
	Seed         int64                 `json:"seed"`
	Fuzz         int                   `json:"fuzz"`
	Tests        []domain.TestIdentity `json:"tests"`
}

// maxLineSize bounds a single worker output line
const maxLineSize = 1 << 20

// Runner spawns worker processes
type Runner struct {
	config *config.Config
	parser parser.Parser
	output io.Writer
	logger zerolog.Logger
}

// NewRunner creates a new Runner. Non-result worker output is copied to output.
func NewRunner(cfg *config.Config, p parser.Parser, output io.Writer, logger zerolog.Logger) *Runner {
	return &Runner{
		config: cfg,
		parser: p,
		output: output,
		logger: logger.With().Str("component", "worker").Logger(),
	}
}

// Slot is one started worker process
type Slot struct {
	worker    int
	tests     []domain.TestIdentity
	cmd       *exec.Cmd
	cancel    context.CancelFunc
	runner    *Runner
	logger    zerolog.Logger
	onOutcome func(domain.Outcome)

	index    map[domain.TestIdentity]int
	reported []*domain.Outcome
	stdout   *os.File
	stderr   *os.File
	errBuf   bytes.Buffer
	scanErr  error
	readers  sync.WaitGroup
}

// Start writes the manifest for tests into dir and starts the worker process in
// its own process group. onOutcome, if set, is called for each result as it arrives.
// A worker that cannot be started is a SpawnFailed error.
func (r *Runner) Start(ctx context.Context, worker int, tests []domain.TestIdentity, dir string, onOutcome func(domain.Outcome)) (*Slot, error) {
	if len(r.config.Worker) == 0 {
		return nil, domain.NewError(domain.SpawnFailed, "", fmt.Errorf("no worker command configured"))
	}

	manifestPath := filepath.Join(dir, fmt.Sprintf("worker-%d.json", worker))
	manifest := Manifest{
		Worker:       worker,
		ProjectRoot:  r.config.ProjectRoot,
		ArtifactsDir: r.config.GetArtifactsPath(),
		Seed:         r.config.Seed,
		Fuzz:         r.config.Fuzz,
		Tests:        tests,
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		return nil, domain.NewError(domain.SpawnFailed, manifestPath, fmt.Errorf("marshal manifest: %w", err))
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return nil, domain.NewError(domain.SpawnFailed, manifestPath, fmt.Errorf("write manifest: %w", err))
	}

	// The pipes are plain files so that descendants left holding them cannot
	// keep Wait blocked; the slot closes its read ends itself.
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, domain.NewError(domain.SpawnFailed, r.config.Worker[0], err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return nil, domain.NewError(domain.SpawnFailed, r.config.Worker[0], err)
	}

	slotCtx, cancel := context.WithCancel(ctx)
	args := append(append([]string(nil), r.config.Worker[1:]...), "--manifest", manifestPath)
	cmd := exec.CommandContext(slotCtx, r.config.Worker[0], args...)
	cmd.Dir = r.config.ProjectRoot
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	cmd.SysProcAttr = procAttr()
	cmd.Cancel = func() error {
		return killTree(cmd.Process.Pid)
	}
	cmd.WaitDelay = 5 * time.Second

	err = cmd.Start()
	stdoutW.Close()
	stderrW.Close()
	if err != nil {
		stdoutR.Close()
		stderrR.Close()
		cancel()
		return nil, domain.NewError(domain.SpawnFailed, r.config.Worker[0], err)
	}
	r.logger.Debug().Int("worker", worker).Int("pid", cmd.Process.Pid).Int("tests", len(tests)).Msg("worker started")

	s := &Slot{
		worker:    worker,
		tests:     tests,
		cmd:       cmd,
		cancel:    cancel,
		runner:    r,
		logger:    r.logger.With().Int("worker", worker).Logger(),
		onOutcome: onOutcome,
		index:     make(map[domain.TestIdentity]int, len(tests)),
		reported:  make([]*domain.Outcome, len(tests)),
		stdout:    stdoutR,
		stderr:    stderrR,
	}
	for i, t := range tests {
		s.index[domain.TestIdentity{Module: t.Module, Symbol: t.Symbol}] = i
	}

	s.readers.Add(2)
	go func() {
		defer s.readers.Done()
		s.readResults()
	}()
	go func() {
		defer s.readers.Done()
		_, _ = io.Copy(&s.errBuf, s.stderr)
	}()
	return s, nil
}

// Kill terminates the worker and its descendants; Wait must still be called
func (s *Slot) Kill() {
	s.cancel()
}

func (s *Slot) readResults() {
	scanner := bufio.NewScanner(s.stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		s.handleLine(scanner.Bytes())
	}
	if err := scanner.Err(); err != nil {
		s.scanErr = err
		// Drain so the process is not blocked on a full pipe.
		_, _ = io.Copy(io.Discard, s.stdout)
	}
}

func (s *Slot) handleLine(line []byte) {
	outcome, ok := s.runner.parser.ParseLine(line)
	if !ok {
		if s.runner.output != nil {
			fmt.Fprintf(s.runner.output, "%s\n", line)
		}
		return
	}

	i, known := s.index[outcome.Test]
	if !known {
		s.logger.Warn().Str("test", outcome.Test.String()).Msg("worker reported a test outside its partition")
		return
	}
	if s.reported[i] != nil {
		s.logger.Warn().Str("test", outcome.Test.String()).Msg("worker reported a test twice")
		return
	}
	outcome.Test = s.tests[i]
	outcome.Worker = s.worker
	s.reported[i] = &outcome
	if s.onOutcome != nil {
		s.onOutcome(outcome)
	}
}

// Wait waits for the worker to exit, kills whatever it left running in its
// process group and collects its results. When the worker did not exit cleanly
// every outcome of its partition is recorded as a non-pass.
func (s *Slot) Wait() domain.SlotResult {
	defer s.cancel()

	waitErr := s.cmd.Wait()
	if err := killGroup(s.cmd.Process.Pid); err != nil && !errors.Is(err, os.ErrProcessDone) {
		s.logger.Warn().Err(err).Msg("kill worker process group")
	}

	done := make(chan struct{})
	go func() {
		s.readers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.cmd.WaitDelay):
		// A descendant outside the group still holds the pipes.
		s.stdout.Close()
		s.stderr.Close()
		<-done
	}
	s.stdout.Close()
	s.stderr.Close()

	result := domain.SlotResult{
		Worker:   s.worker,
		Tests:    s.tests,
		ExitCode: s.cmd.ProcessState.ExitCode(),
		Stderr:   strings.TrimSpace(s.errBuf.String()),
	}

	switch {
	case waitErr != nil:
		result.Err = domain.NewError(domain.WorkerFailure, fmt.Sprintf("worker %d", s.worker), waitErr)
	case s.scanErr != nil:
		result.Err = domain.NewError(domain.WorkerFailure, fmt.Sprintf("worker %d", s.worker), fmt.Errorf("read results: %w", s.scanErr))
	}

	failure := ""
	if result.Err != nil {
		failure = fmt.Sprintf("worker %d exited with code %d", s.worker, result.ExitCode)
		if result.ExitCode < 0 {
			failure = fmt.Sprintf("worker %d was killed", s.worker)
		}
	}

	result.Outcomes = make([]domain.Outcome, len(s.tests))
	for i, t := range s.tests {
		if reported := s.reported[i]; reported != nil {
			outcome := *reported
			if failure != "" && outcome.Passed() {
				outcome.Status = domain.StatusError
				outcome.Message = failure + " after reporting a pass"
			}
			result.Outcomes[i] = outcome
			continue
		}

		message := "no result reported"
		if failure != "" {
			message = failure + " before reporting a result"
		}
		outcome := domain.Outcome{Test: t, Status: domain.StatusError, Message: message, Worker: s.worker}
		result.Outcomes[i] = outcome
		if s.onOutcome != nil {
			s.onOutcome(outcome)
		}
	}

	s.logger.Debug().Int("exit_code", result.ExitCode).Err(result.Err).Msg("worker exited")
	return result
}
