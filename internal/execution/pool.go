package execution

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"modtest/internal/config"
	"modtest/internal/domain"
	"modtest/internal/parser"
)

// WorkerPool runs test identities across a pool of worker processes
type WorkerPool struct {
	config    *config.Config
	runner    *Runner
	scheduler Scheduler
	parser    parser.Parser
	progress  Progress
	paths     map[domain.ModuleName]string
	logger    zerolog.Logger
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(cfg *config.Config, runner *Runner, scheduler Scheduler, p parser.Parser, logger zerolog.Logger) *WorkerPool {
	return &WorkerPool{
		config:    cfg,
		runner:    runner,
		scheduler: scheduler,
		parser:    p,
		logger:    logger.With().Str("component", "pool").Logger(),
	}
}

// SetProgress sets the progress indicator for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// SetModulePaths records source paths so failures can point at files
func (wp *WorkerPool) SetModulePaths(paths map[domain.ModuleName]string) {
	wp.paths = paths
}

// Execute partitions tests over the pool, waits for every worker and aggregates
// their outcomes. A failing worker does not stop the others. The returned error is
// non-nil only if the run could not complete: a worker failed to start
// (SpawnFailed) or ctx was cancelled. Test failures are reported through the
// report's Success flag.
func (wp *WorkerPool) Execute(ctx context.Context, tests []domain.TestIdentity) (*domain.ExecutionReport, error) {
	start := time.Now()
	if len(tests) == 0 {
		return wp.buildReport(nil, start), nil
	}

	workerCount := PoolSize(wp.config.Processors, len(tests))
	partitions := wp.scheduler.Schedule(tests, workerCount)
	wp.logger.Info().Int("tests", len(tests)).Int("workers", len(partitions)).Msg("starting workers")

	dir, err := os.MkdirTemp("", "modtest-manifests-*")
	if err != nil {
		return nil, domain.NewError(domain.SpawnFailed, "", err)
	}
	defer os.RemoveAll(dir)

	var mu sync.Mutex
	var passed, failed int
	record := func(o domain.Outcome) {
		mu.Lock()
		defer mu.Unlock()
		if o.Passed() {
			passed++
		} else {
			failed++
		}
		if wp.progress != nil {
			wp.progress.Update(passed, failed)
		}
	}

	slots := make([]*Slot, 0, len(partitions))
	for i, partition := range partitions {
		slot, err := wp.runner.Start(ctx, i+1, partition, dir, record)
		if err != nil {
			wp.logger.Error().Err(err).Int("worker", i+1).Msg("worker failed to start")
			for _, started := range slots {
				started.Kill()
			}
			for _, started := range slots {
				started.Wait()
			}
			return nil, err
		}
		slots = append(slots, slot)
	}

	results := make([]domain.SlotResult, len(slots))
	var wg sync.WaitGroup
	for i, slot := range slots {
		wg.Add(1)
		go func(i int, slot *Slot) {
			defer wg.Done()
			results[i] = slot.Wait()
		}(i, slot)
	}
	wg.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := wp.buildReport(results, start)
	wp.logger.Info().
		Int("passed", report.Meta.Passed).
		Int("failed", report.Meta.Failed).
		Int("errored", report.Meta.Errored).
		Dur("duration", time.Since(start)).
		Msg("workers finished")
	return report, nil
}

func (wp *WorkerPool) buildReport(results []domain.SlotResult, start time.Time) *domain.ExecutionReport {
	duration := time.Since(start)
	report := &domain.ExecutionReport{
		Success:  true,
		Outcomes: []domain.Outcome{},
		Workers:  []domain.WorkerSummary{},
	}

	for _, res := range results {
		summary := domain.WorkerSummary{
			Worker:   res.Worker,
			Tests:    len(res.Tests),
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		}
		if res.Err != nil {
			summary.Failed = true
			summary.Error = res.Err.Error()
			report.Success = false
		}
		report.Workers = append(report.Workers, summary)

		for _, o := range res.Outcomes {
			switch o.Status {
			case domain.StatusPass:
				report.Meta.Passed++
			case domain.StatusFail:
				report.Meta.Failed++
				report.Success = false
			default:
				report.Meta.Errored++
				report.Success = false
			}
			report.Outcomes = append(report.Outcomes, o)
		}
	}

	report.Meta.Total = len(report.Outcomes)
	report.Meta.Workers = len(results)
	report.Meta.Seed = wp.config.Seed
	report.Meta.Duration = duration.String()
	report.Meta.DurationSeconds = duration.Seconds()
	report.Meta.Timestamp = time.Now().Format(time.RFC3339)
	report.Failures = wp.parser.ParseFailures(report.Outcomes, wp.paths)
	return report
}
