package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmynk/famledger/internal/app"
	"github.com/mmynk/famledger/internal/config"
	"github.com/mmynk/famledger/internal/jobs"
	"github.com/mmynk/famledger/pkg/logging"
)

func main() {
	once := flag.Bool("once", false, "run a single due-soon scan without redis and exit")
	enqueue := flag.Bool("enqueue", false, "enqueue a due-soon scan for a running worker and exit")
	threshold := flag.Int("threshold", -1, "threshold in days for -once and -enqueue (default from config)")
	flag.Parse()

	if err := run(*once, *enqueue, *threshold); err != nil {
		slog.Error("Worker failed", "error", err)
		os.Exit(1)
	}
}

func run(once, enqueue bool, threshold int) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if threshold < 0 {
		threshold = cfg.Notifier.ThresholdDays
	}

	if enqueue {
		client := jobs.NewEnqueuer(app.RedisOpts(cfg.Redis))
		defer client.Close()
		info, err := client.EnqueueDueSoonScan(ctx, &threshold)
		if err != nil {
			return fmt.Errorf("failed to enqueue scan: %w", err)
		}
		logger.Info("Scan enqueued", "task_id", info.ID, "queue", info.Queue, "threshold_days", threshold)
		return nil
	}

	store, table, err := app.OpenLedger(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer table.Close()

	notifier, err := app.NewNotifier(cfg, store, logger)
	if err != nil {
		return err
	}

	if once {
		job := jobs.NewDueSoonJob(notifier, nil, logger, nil, cfg.Notifier.ThresholdDays)
		res, err := job.Scan(ctx, threshold)
		fmt.Printf("sent=%d skipped_no_address=%d already_notified=%d not_in_window=%d failed=%d dry_run=%d\n",
			res.Sent, res.SkippedNoAddress, res.AlreadyNotified, res.NotInWindow, res.Failed, res.DryRun)
		return err
	}

	location, err := cfg.Ledger.Location()
	if err != nil {
		return fmt.Errorf("failed to load time zone: %w", err)
	}

	redisClient := app.NewRedis(cfg.Redis)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	job := jobs.NewDueSoonJob(notifier, jobs.NewRunLog(redisClient), logger, jobs.NewMetrics(nil), cfg.Notifier.ThresholdDays)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: app.RedisOpts(cfg.Redis),
		Logger:    logger,
		Location:  location,
		DueSoon:   job,
		CronSpec:  cfg.Notifier.Cron,
	})
	if err != nil {
		return fmt.Errorf("init worker: %w", err)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("worker run: %w", err)
	}
	return nil
}
