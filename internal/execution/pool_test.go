package execution

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modtest/internal/config"
	"modtest/internal/domain"
	"modtest/internal/parser"
)

const (
	helperEnv  = "MODTEST_HELPER_WORKER"
	sleeperEnv = "MODTEST_HELPER_SLEEPER"
)

// TestMain turns the test binary into a fake worker when helperEnv is set.
// The fake reads its manifest and reports every test; symbols starting with
// "failing" fail. MODTEST_HELPER_SKIP names a symbol left unreported,
// MODTEST_HELPER_CRASH a worker number that exits 3 before reporting,
// MODTEST_HELPER_EXIT_AFTER a worker number that exits 3 after reporting, and
// MODTEST_HELPER_SLEEP makes every worker hang. With MODTEST_HELPER_LINGER set
// to a file, workers leave a sleeping child holding their stdout and write its pid there.
func TestMain(m *testing.M) {
	if os.Getenv(sleeperEnv) == "1" {
		time.Sleep(time.Minute)
		os.Exit(0)
	}
	if os.Getenv(helperEnv) == "1" {
		os.Exit(runHelperWorker())
	}
	os.Exit(m.Run())
}

func runHelperWorker() int {
	var manifestPath string
	for i, arg := range os.Args {
		if arg == "--manifest" && i+1 < len(os.Args) {
			manifestPath = os.Args[i+1]
		}
	}
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if os.Getenv("MODTEST_HELPER_CRASH") == strconv.Itoa(manifest.Worker) {
		fmt.Fprintln(os.Stderr, "worker crashed")
		return 3
	}

	if pidFile := os.Getenv("MODTEST_HELPER_LINGER"); pidFile != "" {
		child := exec.Command(os.Args[0])
		child.Env = append(os.Environ(), sleeperEnv+"=1")
		child.Stdout = os.Stdout
		if err := child.Start(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		_ = os.WriteFile(pidFile, []byte(strconv.Itoa(child.Process.Pid)), 0644)
	}

	if os.Getenv("MODTEST_HELPER_SLEEP") != "" {
		time.Sleep(time.Minute)
	}

	for _, test := range manifest.Tests {
		if test.Symbol == os.Getenv("MODTEST_HELPER_SKIP") {
			continue
		}
		fmt.Printf("running %s\n", test)
		status := "pass"
		message := ""
		if strings.HasPrefix(test.Symbol, "failing") {
			status, message = "fail", "expected 1, got 2"
		}
		line, _ := json.Marshal(parser.ResultLine{
			Module:     string(test.Module),
			Symbol:     test.Symbol,
			Status:     status,
			Message:    message,
			DurationMs: 1,
		})
		fmt.Println(string(line))
	}
	if os.Getenv("MODTEST_HELPER_EXIT_AFTER") == strconv.Itoa(manifest.Worker) {
		return 3
	}
	return 0
}

type recordingProgress struct {
	mu       sync.Mutex
	updates  int
	passed   int
	failed   int
	finished bool
}

func (p *recordingProgress) Update(passed, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates++
	p.passed, p.failed = passed, failed
}

func (p *recordingProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished = true
}

func newHelperPool(t *testing.T, processors int) (*WorkerPool, *bytes.Buffer) {
	t.Helper()
	t.Setenv(helperEnv, "1")
	cfg := &config.Config{
		ProjectRoot:  t.TempDir(),
		ArtifactsDir: config.DefaultArtifactsDir,
		Worker:       []string{os.Args[0]},
		Processors:   processors,
		Seed:         7,
		Fuzz:         config.DefaultFuzz,
	}
	p := parser.NewResultParser()
	var output bytes.Buffer
	runner := NewRunner(cfg, p, &output, zerolog.Nop())
	return NewWorkerPool(cfg, runner, NewContiguousScheduler(), p, zerolog.Nop()), &output
}

func outcomesByWorker(report *domain.ExecutionReport) map[int]int {
	counts := make(map[int]int)
	for _, o := range report.Outcomes {
		counts[o.Worker]++
	}
	return counts
}

func TestWorkerPool_Execute(t *testing.T) {
	pool, output := newHelperPool(t, 4)
	progress := &recordingProgress{}
	pool.SetProgress(progress)
	tests := makeTests(10)

	report, err := pool.Execute(context.Background(), tests)
	require.NoError(t, err)

	assert.True(t, report.Success)
	require.NoError(t, report.Err())
	assert.Equal(t, 10, report.Meta.Total)
	assert.Equal(t, 10, report.Meta.Passed)
	assert.Equal(t, 4, report.Meta.Workers)
	assert.Equal(t, int64(7), report.Meta.Seed)
	assert.Equal(t, map[int]int{1: 3, 2: 3, 3: 2, 4: 2}, outcomesByWorker(report))
	assert.Empty(t, report.Failures)

	var reported []domain.TestIdentity
	for _, o := range report.Outcomes {
		reported = append(reported, o.Test)
		assert.Equal(t, time.Millisecond, o.Duration)
	}
	assert.Equal(t, tests, reported)

	assert.Contains(t, output.String(), "running Suite.test00")
	assert.NotContains(t, output.String(), `"status"`)

	assert.True(t, progress.finished)
	assert.Equal(t, 10, progress.updates)
	assert.Equal(t, 10, progress.passed)
}

func TestWorkerPool_Execute_Failures(t *testing.T) {
	pool, _ := newHelperPool(t, 2)
	pool.SetModulePaths(map[domain.ModuleName]string{"Suite": "/p/tests/Suite.mt"})
	tests := makeTests(3)
	tests[1].Symbol = "failingSum"

	report, err := pool.Execute(context.Background(), tests)
	require.NoError(t, err)

	assert.False(t, report.Success)
	assert.True(t, domain.IsKind(report.Err(), domain.WorkerFailure))
	assert.Equal(t, 2, report.Meta.Passed)
	assert.Equal(t, 1, report.Meta.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "Suite.failingSum", report.Failures[0].Test)
	assert.Equal(t, "/p/tests/Suite.mt", report.Failures[0].Path)
	assert.Equal(t, "expected 1, got 2", report.Failures[0].Message)
	for _, w := range report.Workers {
		assert.False(t, w.Failed)
	}
}

func TestWorkerPool_Execute_WorkerCrash(t *testing.T) {
	pool, _ := newHelperPool(t, 3)
	t.Setenv("MODTEST_HELPER_CRASH", "2")

	report, err := pool.Execute(context.Background(), makeTests(6))
	require.NoError(t, err)

	assert.False(t, report.Success)
	assert.Equal(t, 6, report.Meta.Total)
	assert.Equal(t, 4, report.Meta.Passed)
	assert.Equal(t, 2, report.Meta.Errored)

	require.Len(t, report.Workers, 3)
	crashed := report.Workers[1]
	assert.True(t, crashed.Failed)
	assert.Equal(t, 3, crashed.ExitCode)
	assert.Equal(t, "worker crashed", crashed.Stderr)
	assert.False(t, report.Workers[0].Failed)
	assert.False(t, report.Workers[2].Failed)

	for _, o := range report.Outcomes {
		if o.Worker == 2 {
			assert.Equal(t, domain.StatusError, o.Status)
			assert.Equal(t, "worker 2 exited with code 3 before reporting a result", o.Message)
		}
	}
}

func TestWorkerPool_Execute_WorkerFailsAfterPassing(t *testing.T) {
	pool, _ := newHelperPool(t, 2)
	t.Setenv("MODTEST_HELPER_EXIT_AFTER", "1")

	report, err := pool.Execute(context.Background(), makeTests(4))
	require.NoError(t, err)

	assert.False(t, report.Success)
	assert.Equal(t, 2, report.Meta.Passed)
	assert.Equal(t, 2, report.Meta.Errored)
	assert.True(t, report.Workers[0].Failed)
	assert.Equal(t, 3, report.Workers[0].ExitCode)

	require.Len(t, report.Failures, 2)
	for _, f := range report.Failures {
		assert.Equal(t, 1, f.Worker)
		assert.Equal(t, domain.StatusError, f.Status)
		assert.Equal(t, "worker 1 exited with code 3 after reporting a pass", f.Message)
	}
}

func TestWorkerPool_Execute_UnreportedTest(t *testing.T) {
	pool, _ := newHelperPool(t, 1)
	t.Setenv("MODTEST_HELPER_SKIP", "test01")

	report, err := pool.Execute(context.Background(), makeTests(3))
	require.NoError(t, err)

	assert.False(t, report.Success)
	assert.Equal(t, 1, report.Meta.Errored)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "Suite.test01", report.Failures[0].Test)
	assert.Equal(t, domain.StatusError, report.Failures[0].Status)
}

func TestWorkerPool_Execute_NoTests(t *testing.T) {
	pool, _ := newHelperPool(t, 4)

	report, err := pool.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Zero(t, report.Meta.Workers)
}

func TestWorkerPool_Execute_SpawnFailure(t *testing.T) {
	pool, _ := newHelperPool(t, 2)
	pool.config.Worker = []string{"/nonexistent/modtest-worker"}

	report, err := pool.Execute(context.Background(), makeTests(4))
	assert.Nil(t, report)
	assert.True(t, domain.IsKind(err, domain.SpawnFailed))
}

func TestWorkerPool_Execute_Cancel(t *testing.T) {
	pool, _ := newHelperPool(t, 2)
	t.Setenv("MODTEST_HELPER_SLEEP", "1")
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	report, err := pool.Execute(ctx, makeTests(4))
	assert.Nil(t, report)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 30*time.Second)
}
