package evaluation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/logger"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/quality"
)

// Result statuses
const (
	StatusOK           = "ok"
	StatusRequestError = "request_error"
)

// Options configures a harness run.
type Options struct {
	Workers        int
	Repeats        int
	MaxAttempts    int
	AttemptTimeout time.Duration
}

// DefaultOptions returns the standard batch settings.
func DefaultOptions() Options {
	return Options{
		Workers:        2,
		Repeats:        3,
		MaxAttempts:    2,
		AttemptTimeout: 90 * time.Second,
	}
}

// Result is the scored outcome of one job. It is not modified after the
// worker that produced it appends it.
type Result struct {
	Job        Job
	Status     string
	HTTPStatus int
	Attempts   int
	LatencyMs  int64
	Response   string
	Error      string
	Score      quality.RubricScore
}

// Run is a completed batch.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []Result
	Thresholds quality.Thresholds
}

// Harness fans jobs out to a fixed pool of workers.
type Harness struct {
	generator Generator
	evaluator *quality.Evaluator
	options   Options
	now       func() time.Time
}

// NewHarness creates a harness that scores generator output with evaluator.
func NewHarness(generator Generator, evaluator *quality.Evaluator, options Options) *Harness {
	if options.Workers < 1 {
		options.Workers = 1
	}
	if options.MaxAttempts < 1 {
		options.MaxAttempts = 1
	}
	if options.AttemptTimeout <= 0 {
		options.AttemptTimeout = DefaultOptions().AttemptTimeout
	}
	return &Harness{
		generator: generator,
		evaluator: evaluator,
		options:   options,
		now:       time.Now,
	}
}

// Run executes every case options.Repeats times and returns results in job
// order. Job failures are captured in the results, so the only error
// is a cancelled context.
func (h *Harness) Run(ctx context.Context, cases []PersonaCase) (Run, error) {
	jobs := ExpandJobs(cases, h.options.Repeats)
	run := Run{
		ID:         uuid.NewString(),
		StartedAt:  h.now().UTC(),
		Thresholds: h.evaluator.Thresholds(),
	}

	logger.Info("Starting evaluation run", "run_id", run.ID, "jobs", len(jobs), "workers", h.options.Workers)

	var (
		cursor  atomic.Int64
		mu      sync.Mutex
		results = make([]Result, 0, len(jobs))
	)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < h.options.Workers; w++ {
		g.Go(func() error {
			for {
				idx := int(cursor.Add(1) - 1)
				if idx >= len(jobs) {
					return nil
				}
				if err := gctx.Err(); err != nil {
					return err
				}
				res := h.runJob(gctx, jobs[idx])

				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
		})
	}
	if err := g.Wait(); err != nil {
		return Run{}, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Job.Index < results[j].Job.Index
	})
	run.Results = results
	run.FinishedAt = h.now().UTC()

	logger.Info("Evaluation run complete", "run_id", run.ID, "jobs", len(results), "failures", countFailures(results))
	return run, nil
}

func (h *Harness) runJob(ctx context.Context, job Job) Result {
	res := Result{Job: job}
	start := time.Now()

	var (
		text   string
		status int
		err    error
	)
	for attempt := 1; attempt <= h.options.MaxAttempts; attempt++ {
		res.Attempts = attempt

		text, status, err = h.attempt(ctx, job.Payload)

		if err == nil {
			break
		}
		logger.Warn("Evaluation attempt failed", "batch_id", job.BatchID, "attempt", attempt, "status", status, "error", err)
		if ctx.Err() != nil {
			break
		}
	}

	res.LatencyMs = time.Since(start).Milliseconds()
	res.HTTPStatus = status

	if err != nil {
		res.Status = StatusRequestError
		res.Error = err.Error()
		res.Score = quality.EmptyScore()
		return res
	}

	res.Status = StatusOK
	res.Response = text
	res.Score = h.evaluator.Score(text, job.Payload, quality.Outcome{
		Succeeded: true,
		Attempts:  res.Attempts,
		LatencyMs: res.LatencyMs,
	})
	return res
}

type attemptResult struct {
	text   string
	status int
	err    error
}

// attempt races one Generate call against the attempt timeout. A generator
// that ignores its context keeps running in the background, but its late
// result is discarded.
func (h *Harness) attempt(ctx context.Context, payload core.IntakePayload) (string, int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, h.options.AttemptTimeout)
	defer cancel()

	done := make(chan attemptResult, 1)
	go func() {
		text, status, err := h.generator.Generate(attemptCtx, payload)
		done <- attemptResult{text: text, status: status, err: err}
	}()

	select {
	case r := <-done:
		return r.text, r.status, r.err
	case <-attemptCtx.Done():
		return "", 0, fmt.Errorf("attempt timed out after %s: %w", h.options.AttemptTimeout, attemptCtx.Err())
	}
}

func countFailures(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Status != StatusOK {
			n++
		}
	}
	return n
}
