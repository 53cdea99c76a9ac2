package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue every ledger task runs on.
	QueueDefault = "default"
	// TaskDueSoonScan runs one pass of the due-soon notifier.
	TaskDueSoonScan = "ledger:due_soon_scan"
)

// DueSoonScanPayload configures one scan. A nil ThresholdDays uses the
// configured default.
type DueSoonScanPayload struct {
	ThresholdDays *int `json:"threshold_days,omitempty"`
}

// NewDueSoonScanTask constructs the scan task. Scans are never retried by the
// queue: a retry after a partial run could resend a reminder whose marker
// write failed.
func NewDueSoonScanTask(thresholdDays *int) (*asynq.Task, error) {
	data, err := json.Marshal(DueSoonScanPayload{ThresholdDays: thresholdDays})
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return asynq.NewTask(TaskDueSoonScan, data, asynq.MaxRetry(0), asynq.Queue(QueueDefault)), nil
}
