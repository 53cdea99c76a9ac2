package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the settlement state of an obligation.
type Status string

const (
	StatusOpen Status = "OPEN"
	StatusPaid Status = "PAID"
)

const (
	// DateLayout is the stored format of due dates.
	DateLayout = "2006-01-02"
	// TimestampLayout is the stored format of created_at, paid_at and the reminder marker.
	TimestampLayout = "2006-01-02T15:04:05"
)

var timestampLayouts = []string{
	TimestampLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	DateLayout,
}

// Obligation is one debt recorded on the board.
type Obligation struct {
	// ID is an opaque UUID assigned at creation. It is the only stable key.
	ID string

	// Debtor owes the money. Always different from Creditor.
	Debtor string

	// Creditor is owed the money.
	Creditor string

	// AmountMinor is the amount in cents. Positive for every valid row.
	AmountMinor int64

	Description string
	Category    string

	// DueDate is YYYY-MM-DD, or empty for "no deadline".
	DueDate string

	Status Status

	CreatedAt string
	PaidAt    string

	// NotifiedDueSoonAt is set once, when a due-soon reminder was delivered.
	NotifiedDueSoonAt string
}

// NewObligation builds a fresh OPEN obligation with a new ID. Inputs are
// expected to be validated already.
func NewObligation(debtor, creditor string, amountMinor int64, description, category, dueDate string, now time.Time) Obligation {
	return Obligation{
		ID:          uuid.NewString(),
		Debtor:      debtor,
		Creditor:    creditor,
		AmountMinor: amountMinor,
		Description: description,
		Category:    category,
		DueDate:     dueDate,
		Status:      StatusOpen,
		CreatedAt:   FormatTimestamp(now),
	}
}

// IsOpen reports whether the obligation is still outstanding.
func (o Obligation) IsOpen() bool {
	return o.Status == StatusOpen
}

// IsPaid reports whether the obligation was settled.
func (o Obligation) IsPaid() bool {
	return o.Status == StatusPaid
}

// IsNotified reports whether a due-soon reminder was already delivered. Any
// non-empty marker counts, even one that does not parse.
func (o Obligation) IsNotified() bool {
	return o.NotifiedDueSoonAt != ""
}

// Due returns the due date as a UTC midnight. ok is false when the date is
// missing or unparsable.
func (o Obligation) Due() (due time.Time, ok bool) {
	if o.DueDate == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, o.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// DaysLeft returns the whole calendar days from today to the due date. It is
// negative for overdue obligations.
func (o Obligation) DaysLeft(today time.Time) (int, bool) {
	due, ok := o.Due()
	if !ok {
		return 0, false
	}
	return DaysBetween(today, due), true
}

// Paid returns the settlement time, if stored and parsable.
func (o Obligation) Paid() (time.Time, bool) {
	return ParseTimestamp(o.PaidAt)
}

// Created returns the creation time, if stored and parsable.
func (o Obligation) Created() (time.Time, bool) {
	return ParseTimestamp(o.CreatedAt)
}

// Involves reports whether person is the debtor or the creditor.
func (o Obligation) Involves(person string) bool {
	return o.Debtor == person || o.Creditor == person
}

// Badge classifies an obligation's deadline for display.
type Badge string

const (
	BadgeNone    Badge = "none"
	BadgeOverdue Badge = "overdue"
	BadgeDueSoon Badge = "due_soon"
	BadgeLater   Badge = "later"
	BadgeInvalid Badge = "invalid"
)

// DueSoonDays is the window used by the board badge.
const DueSoonDays = 7

// DueBadge returns the deadline badge relative to today.
func (o Obligation) DueBadge(today time.Time) Badge {
	if o.DueDate == "" {
		return BadgeNone
	}
	days, ok := o.DaysLeft(today)
	switch {
	case !ok:
		return BadgeInvalid
	case days < 0:
		return BadgeOverdue
	case days <= DueSoonDays:
		return BadgeDueSoon
	default:
		return BadgeLater
	}
}

// IsOverdue reports whether the due date is before today.
func (o Obligation) IsOverdue(today time.Time) bool {
	days, ok := o.DaysLeft(today)
	return ok && days < 0
}

// DaysBetween counts calendar days from a to b, using each value's own
// wall-clock date.
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// FormatTimestamp renders t in the stored timestamp layout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// FormatDate renders t in the stored date layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseTimestamp accepts every timestamp layout the board has written.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
