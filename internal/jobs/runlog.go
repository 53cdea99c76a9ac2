package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/famledger/internal/notify"
)

const (
	runLogLastKey    = "famledger:notifier:last_run"
	runLogHistoryKey = "famledger:notifier:runs"
	runLogHistoryLen = 50
)

// Run is the record of one notifier pass.
type Run struct {
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
	ThresholdDays int           `json:"threshold_days"`
	Result        notify.Result `json:"result"`
	Error         string        `json:"error,omitempty"`
}

// RunLog keeps the last notifier runs in redis. A nil RunLog records nothing.
type RunLog struct {
	client *redis.Client
}

// NewRunLog creates a RunLog on client.
func NewRunLog(client *redis.Client) *RunLog {
	return &RunLog{client: client}
}

// Record stores run as the last run and prepends it to the history.
func (l *RunLog) Record(ctx context.Context, run Run) error {
	if l == nil || l.client == nil {
		return nil
	}
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, runLogLastKey, data, 0)
		pipe.LPush(ctx, runLogHistoryKey, data)
		pipe.LTrim(ctx, runLogHistoryKey, 0, runLogHistoryLen-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Last returns the most recent run. ok is false when nothing was recorded.
func (l *RunLog) Last(ctx context.Context) (run Run, ok bool, err error) {
	if l == nil || l.client == nil {
		return Run{}, false, nil
	}
	data, err := l.client.Get(ctx, runLogLastKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("failed to read last run: %w", err)
	}
	if err := json.Unmarshal(data, &run); err != nil {
		return Run{}, false, fmt.Errorf("failed to decode last run: %w", err)
	}
	return run, true, nil
}

// Recent returns up to n runs, newest first.
func (l *RunLog) Recent(ctx context.Context, n int) ([]Run, error) {
	if l == nil || l.client == nil || n <= 0 {
		return []Run{}, nil
	}
	items, err := l.client.LRange(ctx, runLogHistoryKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read run history: %w", err)
	}
	runs := make([]Run, 0, len(items))
	for _, item := range items {
		var run Run
		if err := json.Unmarshal([]byte(item), &run); err != nil {
			return nil, fmt.Errorf("failed to decode run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
