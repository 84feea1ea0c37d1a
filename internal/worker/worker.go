package worker

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Berenger2/carbu-track/internal/config"
	"github.com/Berenger2/carbu-track/internal/pipeline"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) (pipeline.RunSummary, error)
}

// Run starts the scheduler loop: it executes the pipeline once immediately,
// then on every schedule tick. A failed run is retried exactly once after a
// fixed delay; there is no backoff beyond that. Runs never overlap: the loop
// is a single goroutine and each run completes before the next is scheduled.
func Run(ctx context.Context, cfg config.Config, runner Runner) error {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	nextRun := time.Now()
	log.Printf("worker: starting, schedule=%q retry_delay=%s", cfg.Schedule, cfg.RetryDelay)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if time.Now().Before(nextRun) {
				continue
			}
			executeWithRetry(ctx, cfg, runner)
			nextRun = NextRun(cfg.Schedule, time.Now())
			log.Printf("worker: next run at %s", nextRun.Format(time.RFC3339))
		}
	}
}

func executeWithRetry(ctx context.Context, cfg config.Config, runner Runner) {
	summary, err := runner.Run(ctx)
	if err == nil {
		logSummary(summary)
		return
	}
	log.Printf("worker: run %s failed: %v; retrying in %s", summary.RunID, err, cfg.RetryDelay)

	select {
	case <-ctx.Done():
		return
	case <-time.After(cfg.RetryDelay):
	}

	summary, err = runner.Run(ctx)
	if err != nil {
		log.Printf("worker: retry %s failed: %v; giving up until next scheduled run", summary.RunID, err)
		return
	}
	logSummary(summary)
}

func logSummary(s pipeline.RunSummary) {
	log.Printf("worker: run %s done in %s: fetched=%d transformed=%d filtered=%d limited=%d inserted=%d skipped=%d failed=%d",
		s.RunID, s.Duration.Round(time.Millisecond), s.Fetched, s.Transformed, s.Filtered, s.Limited,
		s.Persist.Inserted, s.Persist.Skipped, s.Persist.Failed)
}

// NextRun computes the next execution time from a schedule setting, which is
// either an integer number of seconds or a cron expression (including the
// @daily style descriptors). Unparseable settings fall back to 24 hours.
func NextRun(setting string, lastRun time.Time) time.Time {
	if v, err := strconv.Atoi(setting); err == nil && v > 0 {
		return lastRun.Add(time.Duration(v) * time.Second)
	}
	if sched, err := cron.ParseStandard(setting); err == nil {
		return sched.Next(lastRun)
	}
	return lastRun.Add(24 * time.Hour)
}
