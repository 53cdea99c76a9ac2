package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/famledger/internal/ledger"
	"github.com/mmynk/famledger/internal/models"
	"github.com/mmynk/famledger/internal/storage/memory"
)

func seededService(t *testing.T, rows ...[]string) *LedgerService {
	t.Helper()
	header := []string{"id", "debtor", "creditor", "amount_cents", "description", "category", "due_date", "status", "created_at", "paid_at"}
	tbl := memory.New(append([][]string{header}, rows...)...)
	return NewLedgerService(ledger.New(tbl), testDir,
		WithClock(func() time.Time { return testNow }),
		WithLocation(time.UTC),
	)
}

func ids(obligations []models.Obligation) []string {
	out := make([]string, len(obligations))
	for i, o := range obligations {
		out[i] = o.ID
	}
	return out
}

func boardRows() [][]string {
	return [][]string{
		{"o1", "Elia", "Mamma", "1000", "Rata universitaria", "Università", "2026-05-01", "OPEN", "2026-04-01T10:00:00", ""},
		{"o2", "Tommy", "Papà", "550", "Visita medico", "Salute", "2026-05-12", "OPEN", "2026-04-02T10:00:00", ""},
		{"o3", "Mamma", "Elia", "200", "Spesa", "Spesa", "", "OPEN", "2026-04-03T10:00:00", ""},
		{"p1", "Elia", "Papà", "700", "Libri", "Università", "2025-12-01", "PAID", "2025-11-01T10:00:00", "2025-12-02T09:00:00"},
		{"p2", "Tommy", "Mamma", "300", "Farmacia", "Salute", "", "PAID", "2026-01-01T10:00:00", "2026-02-15T09:00:00"},
		{"p3", "Elia", "Mamma", "150", "Spesa medico", "Salute", "", "PAID", "2026-03-01T10:00:00", "not a date"},
	}
}

func TestListOpen(t *testing.T) {
	ctx := context.Background()
	svc := seededService(t, boardRows()...)

	tests := []struct {
		name   string
		filter OpenFilter
		want   []string
	}{
		{"all open in sheet order", OpenFilter{}, []string{"o1", "o2", "o3"}},
		{"person as debtor or creditor", OpenFilter{Person: "Elia"}, []string{"o1", "o3"}},
		{"overdue only", OpenFilter{OverdueOnly: true}, []string{"o1"}},
		{"query is case insensitive", OpenFilter{Query: "  MEDICO "}, []string{"o2"}},
		{"no match", OpenFilter{Person: "Papà", OverdueOnly: true}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ListOpen(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	svc := seededService(t, boardRows()...)

	tests := []struct {
		name      string
		filter    HistoryFilter
		want      []string
		wantTotal int64
	}{
		{"all settled", HistoryFilter{}, []string{"p1", "p2", "p3"}, 1150},
		{"by category", HistoryFilter{Category: "Salute"}, []string{"p2", "p3"}, 450},
		{"by person", HistoryFilter{Person: "Tommy"}, []string{"p2"}, 300},
		{"by year skips unreadable paid_at", HistoryFilter{Year: 2026}, []string{"p2"}, 300},
		{
			name:      "date range is inclusive",
			filter:    HistoryFilter{From: time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC), To: time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)},
			want:      []string{"p1", "p2"},
			wantTotal: 1000,
		},
		{"query", HistoryFilter{Query: "medico"}, []string{"p3"}, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := svc.History(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(h.Obligations))
			assert.Equal(t, tt.wantTotal, h.TotalMinor)
			assert.Equal(t, []int{2026, 2025}, h.Years)
		})
	}
}

func TestHistoryEmptySheet(t *testing.T) {
	svc := seededService(t)
	h, err := svc.History(context.Background(), HistoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, h.Obligations)
	assert.Empty(t, h.Years)
	assert.Zero(t, h.TotalMinor)
}

func TestSummary(t *testing.T) {
	svc := seededService(t, boardRows()...)
	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{OpenCount: 3, OpenTotalMinor: 1750, OverdueCount: 1, People: 4}, sum)
}

func TestBalances(t *testing.T) {
	svc := seededService(t, boardRows()...)
	b, err := svc.Balances(context.Background())
	require.NoError(t, err)

	net := map[string]int64{}
	for _, m := range b.Members {
		net[m.Person] = m.NetMinor
	}
	assert.Equal(t, map[string]int64{"Elia": -800, "Mamma": 800, "Tommy": -550, "Papà": 550}, net)
	assert.Len(t, b.SettleUp, 2)
}
