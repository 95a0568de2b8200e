// Package jobs schedules and executes the recurring cleanup tasks over
// asynq. The scheduler enqueues a task on each cron tick; the worker
// consumes it and runs the corresponding cleanup cycle.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"uploadapi/internal/cleanup"
	"uploadapi/internal/config"
)

const (
	TaskOrphanFiles     = "cleanup:orphan_files"
	TaskUnverifiedUsers = "cleanup:unverified_users"
)

// Runner owns the asynq scheduler and worker for the cleanup jobs.
type Runner struct {
	reclaimer *cleanup.OrphanReclaimer
	purger    *cleanup.UnverifiedPurger
	metrics   *cleanup.Metrics
	cfg       config.CleanupConfig
	redisOpt  asynq.RedisClientOpt
	log       *slog.Logger

	scheduler *asynq.Scheduler
	server    *asynq.Server
}

// NewRunner constructs a Runner. metrics may be nil.
func NewRunner(reclaimer *cleanup.OrphanReclaimer, purger *cleanup.UnverifiedPurger, metrics *cleanup.Metrics, cfg config.CleanupConfig, redisOpt asynq.RedisClientOpt, log *slog.Logger) *Runner {
	return &Runner{
		reclaimer: reclaimer,
		purger:    purger,
		metrics:   metrics,
		cfg:       cfg,
		redisOpt:  redisOpt,
		log:       log,
	}
}

// Start registers the cron entries and launches the scheduler and worker.
// It returns once both are running.
func (r *Runner) Start() error {
	r.scheduler = asynq.NewScheduler(r.redisOpt, &asynq.SchedulerOpts{})

	entries := []struct {
		spec string
		task string
	}{
		{r.cfg.OrphanCron, TaskOrphanFiles},
		{r.cfg.UnverifiedCron, TaskUnverifiedUsers},
	}
	for _, e := range entries {
		// Each tick enqueues a fresh task; a failed cycle waits for the
		// next tick instead of retrying immediately.
		if _, err := r.scheduler.Register(e.spec, asynq.NewTask(e.task, nil), asynq.MaxRetry(0)); err != nil {
			return fmt.Errorf("register %s: %w", e.task, err)
		}
	}
	if err := r.scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	r.server = asynq.NewServer(r.redisOpt, asynq.Config{
		Concurrency: r.cfg.Concurrency,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskOrphanFiles, r.HandleOrphanFiles)
	mux.HandleFunc(TaskUnverifiedUsers, r.HandleUnverifiedUsers)

	if err := r.server.Start(mux); err != nil {
		r.scheduler.Shutdown()
		return fmt.Errorf("start worker: %w", err)
	}

	r.log.Info("cleanup jobs scheduled",
		"orphan_cron", r.cfg.OrphanCron,
		"unverified_cron", r.cfg.UnverifiedCron,
		"concurrency", r.cfg.Concurrency,
	)
	return nil
}

// Stop shuts down the scheduler and worker, waiting for in-flight tasks.
func (r *Runner) Stop() {
	if r.scheduler != nil {
		r.scheduler.Shutdown()
	}
	if r.server != nil {
		r.server.Shutdown()
	}
}

// HandleOrphanFiles runs one orphan reclamation cycle. Errors are logged
// and swallowed so asynq never retries a cycle; the schedule provides the
// retry.
func (r *Runner) HandleOrphanFiles(ctx context.Context, _ *asynq.Task) error {
	if _, err := r.reclaimer.Run(ctx); err != nil {
		r.log.Error("orphan reclamation cycle failed", "error", err)
		if r.metrics != nil {
			r.metrics.CycleFailures.WithLabelValues(TaskOrphanFiles).Inc()
		}
	}
	return nil
}

// HandleUnverifiedUsers runs one unverified-account purge cycle.
func (r *Runner) HandleUnverifiedUsers(ctx context.Context, _ *asynq.Task) error {
	if _, err := r.purger.Run(ctx); err != nil {
		r.log.Error("unverified purge cycle failed", "error", err)
		if r.metrics != nil {
			r.metrics.CycleFailures.WithLabelValues(TaskUnverifiedUsers).Inc()
		}
	}
	return nil
}
