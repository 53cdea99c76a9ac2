package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Worker serves TaskDueSoonScan from redis and, when a cron spec is set,
// schedules it.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

// WorkerConfig wires the scan job into the queue.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	// Location is the time zone the cron spec is read in.
	Location *time.Location
	DueSoon  *DueSoonJob
	// CronSpec schedules a scan with the default threshold. Empty disables
	// scheduling; scans then only come from Enqueuer.
	CronSpec string
}

// NewWorker builds the worker. Scans run one at a time.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.DueSoon == nil {
		return nil, errors.New("worker: due-soon job is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskDueSoonScan, cfg.DueSoon.Handle)

	w := &Worker{
		server: asynq.NewServer(cfg.RedisOpts, asynq.Config{
			Concurrency: 1,
			Queues:      map[string]int{QueueDefault: 1},
		}),
		mux:    mux,
		logger: logger,
	}

	if cfg.CronSpec != "" {
		task, err := NewDueSoonScanTask(nil)
		if err != nil {
			return nil, err
		}
		w.scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: location})
		if _, err := w.scheduler.Register(cfg.CronSpec, task); err != nil {
			return nil, fmt.Errorf("worker: schedule %q: %w", cfg.CronSpec, err)
		}
		logger.Info("due-soon scan scheduled",
			slog.String("spec", cfg.CronSpec),
			slog.String("location", location.String()),
		)
	}
	return w, nil
}

// Run processes scans until ctx is cancelled or the server stops.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return fmt.Errorf("worker: start scheduler: %w", err)
		}
		defer w.scheduler.Shutdown()
	}

	done := make(chan error, 1)
	go func() {
		done <- w.server.Run(w.mux)
	}()

	select {
	case <-ctx.Done():
		w.logger.Info("worker stopping")
		w.server.Shutdown()
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// Enqueuer submits on-demand scans to a running worker.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer connects to the queue.
func NewEnqueuer(redisOpts asynq.RedisClientOpt) *Enqueuer {
	return &Enqueuer{client: asynq.NewClient(redisOpts)}
}

// EnqueueDueSoonScan queues one scan. A nil threshold uses the worker default.
func (e *Enqueuer) EnqueueDueSoonScan(ctx context.Context, thresholdDays *int) (*asynq.TaskInfo, error) {
	task, err := NewDueSoonScanTask(thresholdDays)
	if err != nil {
		return nil, err
	}
	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue %s: %w", TaskDueSoonScan, err)
	}
	return info, nil
}

// Close releases the queue connection.
func (e *Enqueuer) Close() error {
	return e.client.Close()
}
