// Package notify sends one due-soon reminder per OPEN obligation and records
// the delivery in the sheet right after each successful send.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/famledger/internal/ledger"
	"github.com/mmynk/famledger/internal/models"
)

// ErrMarkFailed is returned when a reminder was sent but its marker could not
// be written. The obligation may be reminded again on the next run.
var ErrMarkFailed = errors.New("reminder sent but not marked")

// DefaultThreshold is the reminder window in days.
const DefaultThreshold = 7

// Result counts what one run did with each row it looked at.
type Result struct {
	Sent             int `json:"sent"`
	SkippedNoAddress int `json:"skipped_no_address"`
	AlreadyNotified  int `json:"already_notified"`
	NotInWindow      int `json:"not_in_window"`
	Failed           int `json:"failed"`
	// DryRun counts reminders the log channel printed instead of delivering.
	DryRun int `json:"dry_run"`
}

// Config configures a Notifier. Zero values fall back to defaults.
type Config struct {
	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger
}

// Notifier scans the ledger for obligations falling due.
type Notifier struct {
	store    *ledger.Store
	sender   Sender
	book     AddressBook
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// New creates a Notifier.
func New(store *ledger.Store, sender Sender, book AddressBook, cfg Config) *Notifier {
	n := &Notifier{
		store:    store,
		sender:   sender,
		book:     book,
		location: cfg.Location,
		now:      cfg.Now,
		logger:   cfg.Logger,
	}
	if n.location == nil {
		n.location = time.Local
	}
	if n.now == nil {
		n.now = time.Now
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	return n
}

// Run makes a single pass over the sheet with a window of [0, threshold] days.
//
// Send failures are counted and joined into the returned error; the remaining
// rows are still processed. A marker write failing after a successful send
// stops the run and returns ErrMarkFailed, since every later send would risk
// the same duplicate.
func (n *Notifier) Run(ctx context.Context, threshold int) (Result, error) {
	var res Result
	if threshold < 0 {
		return res, fmt.Errorf("threshold must not be negative, got %d", threshold)
	}

	if err := n.store.EnsureColumn(ctx, ledger.ColNotifiedDueSoon); err != nil {
		return res, fmt.Errorf("failed to ensure reminder column: %w", err)
	}
	rows, err := n.store.ReadRows(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to read ledger: %w", err)
	}

	now := n.now().In(n.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var sendErrs []error
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, errors.Join(append(sendErrs, err)...)
		}

		o := row.Obligation
		if !o.IsOpen() {
			continue
		}
		daysLeft, ok := o.DaysLeft(today)
		if !ok {
			continue
		}
		if o.IsNotified() {
			res.AlreadyNotified++
			continue
		}
		if daysLeft < 0 || daysLeft > threshold {
			res.NotInWindow++
			continue
		}
		address, ok := n.book.Lookup(o.Debtor)
		if !ok {
			n.logger.Warn("No address for debtor", "obligation_id", o.ID, "debtor", o.Debtor)
			res.SkippedNoAddress++
			continue
		}

		err := n.sender.Send(ctx, address, FormatReminder(o, daysLeft))
		if errors.Is(err, ErrDryRun) {
			res.DryRun++
			continue
		}
		if err != nil {
			n.logger.Error("Reminder send failed", "obligation_id", o.ID, "debtor", o.Debtor, "error", err)
			res.Failed++
			sendErrs = append(sendErrs, fmt.Errorf("failed to send reminder for %s: %w", o.ID, err))
			continue
		}
		res.Sent++

		if err := n.mark(ctx, row.Position, o.ID); err != nil {
			n.logger.Error("Reminder sent but not marked", "obligation_id", o.ID, "error", err)
			markErr := fmt.Errorf("%w: obligation %s: %w", ErrMarkFailed, o.ID, err)
			return res, errors.Join(append(sendErrs, markErr)...)
		}
		n.logger.Info("Reminder sent", "obligation_id", o.ID, "debtor", o.Debtor, "days_left", daysLeft)
	}

	n.logger.Info("Due-soon scan finished",
		"threshold_days", threshold,
		"sent", res.Sent,
		"already_notified", res.AlreadyNotified,
		"not_in_window", res.NotInWindow,
		"skipped_no_address", res.SkippedNoAddress,
		"failed", res.Failed,
		"dry_run", res.DryRun,
	)
	return res, errors.Join(sendErrs...)
}

// mark writes the reminder timestamp for id. The position read at the start
// of the run is used when it still holds id; otherwise id is looked up again.
// A row deleted meanwhile has nothing left to mark and is not an error.
func (n *Notifier) mark(ctx context.Context, position int, id string) error {
	current, err := n.store.IDAt(ctx, position)
	if err != nil {
		return err
	}
	if current != id {
		n.logger.Debug("Row moved during scan", "obligation_id", id, "position", position)
		position, err = n.store.FindRowPosition(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			n.logger.Info("Obligation removed before marking", "obligation_id", id)
			return nil
		}
		if err != nil {
			return err
		}
	}
	stamp := models.FormatTimestamp(n.now().In(n.location))
	return n.store.UpdateFields(ctx, position, map[string]string{ledger.ColNotifiedDueSoon: stamp})
}
