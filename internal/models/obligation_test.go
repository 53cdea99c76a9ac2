package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObligation(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	o := NewObligation("Elia", "Mamma", 1250, "Rata università", "Università", "2026-03-20", now)

	require.NotEmpty(t, o.ID)
	assert.Equal(t, StatusOpen, o.Status)
	assert.Equal(t, "2026-03-14T09:30:00", o.CreatedAt)
	assert.Empty(t, o.PaidAt)
	assert.Empty(t, o.NotifiedDueSoonAt)
	assert.True(t, o.IsOpen())
	assert.False(t, o.IsNotified())

	other := NewObligation("Elia", "Mamma", 1250, "Rata università", "Università", "", now)
	assert.NotEqual(t, o.ID, other.ID)
}

func TestDaysLeft(t *testing.T) {
	today := time.Date(2026, 3, 14, 23, 59, 0, 0, time.Local)
	tests := []struct {
		name   string
		due    string
		want   int
		wantOK bool
	}{
		{"today", "2026-03-14", 0, true},
		{"in three days", "2026-03-17", 3, true},
		{"yesterday", "2026-03-13", -1, true},
		{"across month", "2026-04-01", 18, true},
		{"missing", "", 0, false},
		{"garbage", "next week", 0, false},
		{"italian layout", "17/03/2026", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Obligation{DueDate: tt.due}
			got, ok := o.DaysLeft(today)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDueBadge(t *testing.T) {
	today := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, BadgeNone, Obligation{}.DueBadge(today))
	assert.Equal(t, BadgeOverdue, Obligation{DueDate: "2026-03-01"}.DueBadge(today))
	assert.Equal(t, BadgeDueSoon, Obligation{DueDate: "2026-03-14"}.DueBadge(today))
	assert.Equal(t, BadgeDueSoon, Obligation{DueDate: "2026-03-21"}.DueBadge(today))
	assert.Equal(t, BadgeLater, Obligation{DueDate: "2026-03-22"}.DueBadge(today))
	assert.Equal(t, BadgeInvalid, Obligation{DueDate: "soon"}.DueBadge(today))
	assert.True(t, Obligation{DueDate: "2026-03-13"}.IsOverdue(today))
	assert.False(t, Obligation{}.IsOverdue(today))
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{"2026-03-14T09:30:00", "2026-03-14T09:30:00+01:00", "2026-03-14 09:30:00", "2026-03-14"} {
		ts, ok := ParseTimestamp(s)
		require.True(t, ok, s)
		assert.Equal(t, 14, ts.Day())
	}
	_, ok := ParseTimestamp("")
	assert.False(t, ok)
	_, ok = ParseTimestamp("yesterday")
	assert.False(t, ok)

	// an unparsable marker still counts as notified
	assert.True(t, Obligation{NotifiedDueSoonAt: "sent"}.IsNotified())
}

func TestValidationError(t *testing.T) {
	var verr ValidationError
	assert.NoError(t, verr.OrNil())

	verr.Add("debtor", "debtor and creditor must differ")
	verr.Add("amount", "amount must be positive")
	err := verr.OrNil()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "amount must be positive")
}
