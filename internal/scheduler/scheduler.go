// Package scheduler runs the full pipeline on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonathan/notion-insights/internal/pipeline"
)

// runTimeout bounds a single scheduled pipeline run.
const runTimeout = time.Hour

// Runner triggers a full pipeline run.
type Runner interface {
	RunFull(ctx context.Context, limit int) (*pipeline.Result, error)
}

// Scheduler triggers the pipeline on a cron spec. Overlapping runs are
// prevented by cron's SkipIfStillRunning wrapper.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	spec   string
}

// New creates a scheduler with the given cron spec (standard 5-field
// format, e.g. "0 6 * * 1" for Mondays at 06:00).
func New(runner Runner, spec string) *Scheduler {
	logger := cron.VerbosePrintfLogger(log.Default())
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(logger),
			cron.Recover(logger),
		)),
		runner: runner,
		spec:   spec,
	}
}

// Start registers the job and starts the cron loop. Returns an error when
// the spec does not parse.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		result, err := s.runner.RunFull(ctx, 0)
		if err != nil {
			log.Printf("scheduled pipeline run failed: %v", err)
			return
		}
		log.Printf("scheduled pipeline run %s complete: %d extracted, %d classified",
			result.RunID, result.Extracted, result.Classified)
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.spec, err)
	}

	s.cron.Start()
	log.Printf("scheduler started with spec %q", s.spec)
	return nil
}

// Stop halts the cron loop and returns a context that is done once any
// in-flight run finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
