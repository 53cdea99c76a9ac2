package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mmynk/famledger/internal/notify"
)

// Scanner runs one due-soon pass. *notify.Notifier implements it.
type Scanner interface {
	Run(ctx context.Context, threshold int) (notify.Result, error)
}

// DueSoonJob runs the due-soon notifier from the queue, the CLI or the API.
type DueSoonJob struct {
	Scanner          Scanner
	RunLog           *RunLog
	Logger           *slog.Logger
	Metrics          *Metrics
	DefaultThreshold int

	// mu keeps overlapping triggers in one process from scanning together.
	mu    sync.Mutex
	clock func() time.Time
}

// NewDueSoonJob initialises the due-soon scan handler.
func NewDueSoonJob(scanner Scanner, runLog *RunLog, logger *slog.Logger, metrics *Metrics, defaultThreshold int) *DueSoonJob {
	return &DueSoonJob{
		Scanner:          scanner,
		RunLog:           runLog,
		Logger:           logger,
		Metrics:          metrics,
		DefaultThreshold: defaultThreshold,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes TaskDueSoonScan. Failures are never retried by the queue.
func (j *DueSoonJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("due-soon scan: handler not configured")
	}
	var payload DueSoonScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("due-soon scan: invalid payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	threshold := j.DefaultThreshold
	if payload.ThresholdDays != nil {
		threshold = *payload.ThresholdDays
	}

	if _, err := j.Scan(ctx, threshold); err != nil {
		return fmt.Errorf("due-soon scan: %w: %w", err, asynq.SkipRetry)
	}
	return nil
}

// Scan runs the notifier once, then records metrics and the run log.
func (j *DueSoonJob) Scan(ctx context.Context, threshold int) (res notify.Result, resultErr error) {
	if j == nil || j.Scanner == nil {
		return notify.Result{}, errors.New("due-soon scan: scanner not configured")
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	start := j.now()
	tracker := j.Metrics.Track(TaskDueSoonScan)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("threshold_days", threshold))
	logger.Info("starting due-soon scan")

	res, resultErr = j.Scanner.Run(ctx, threshold)
	j.Metrics.AddResult(res)

	run := Run{StartedAt: start, FinishedAt: j.now(), ThresholdDays: threshold, Result: res}
	if resultErr != nil {
		run.Error = resultErr.Error()
		logger.Error("due-soon scan failed", slog.Any("error", resultErr))
	}
	if err := j.RunLog.Record(ctx, run); err != nil {
		logger.Warn("record run", slog.Any("error", err))
	}

	logger.Info("completed due-soon scan",
		slog.Int("sent", res.Sent),
		slog.Int("failed", res.Failed),
		slog.Duration("duration", run.FinishedAt.Sub(start)),
	)
	return res, resultErr
}

func (j *DueSoonJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDueSoonScan))
	}
	return slog.Default().With(slog.String("job", TaskDueSoonScan))
}

func (j *DueSoonJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
