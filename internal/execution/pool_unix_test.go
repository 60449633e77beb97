//go:build unix

package execution

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alive(pid int) bool {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	status, err := p.Status()
	if err != nil {
		return false
	}
	return !slices.Contains(status, process.Zombie)
}

func lingeringChild(t *testing.T, pidFile string) int {
	t.Helper()
	data, err := os.ReadFile(pidFile)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.NoError(t, err)
	return pid
}

func TestWorkerPool_Execute_KillsLeftoverChildren(t *testing.T) {
	pool, _ := newHelperPool(t, 1)
	pidFile := filepath.Join(t.TempDir(), "child.pid")
	t.Setenv("MODTEST_HELPER_LINGER", pidFile)

	start := time.Now()
	report, err := pool.Execute(context.Background(), makeTests(2))
	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Less(t, time.Since(start), 4*time.Second)

	pid := lingeringChild(t, pidFile)
	assert.Eventually(t, func() bool { return !alive(pid) }, 5*time.Second, 50*time.Millisecond)
}

func TestWorkerPool_Execute_CancelKillsLeftoverChildren(t *testing.T) {
	pool, _ := newHelperPool(t, 1)
	pidFile := filepath.Join(t.TempDir(), "child.pid")
	t.Setenv("MODTEST_HELPER_LINGER", pidFile)
	t.Setenv("MODTEST_HELPER_SLEEP", "1")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	_, err := pool.Execute(ctx, makeTests(2))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)

	pid := lingeringChild(t, pidFile)
	assert.Eventually(t, func() bool { return !alive(pid) }, 5*time.Second, 50*time.Millisecond)
}
