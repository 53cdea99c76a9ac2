package calculator

import (
	"testing"

	"github.com/mmynk/famledger/internal/models"
)

func TestSplitEvenly(t *testing.T) {
	tests := []struct {
		name         string
		total        int64
		participants []string
		want         []int64
		wantErr      bool
	}{
		{
			name:         "exact division",
			total:        3000,
			participants: []string{"Elia", "Tommy", "Alice"},
			want:         []int64{1000, 1000, 1000},
		},
		{
			name:         "remainder goes to first participants",
			total:        1000,
			participants: []string{"Elia", "Tommy", "Alice"},
			want:         []int64{334, 333, 333},
		},
		{
			name:         "two cents over three people",
			total:        1001,
			participants: []string{"Elia", "Tommy", "Alice"},
			want:         []int64{334, 334, 333},
		},
		{
			name:         "single participant takes everything",
			total:        1,
			participants: []string{"Elia"},
			want:         []int64{1},
		},
		{
			name:         "more participants than cents",
			total:        2,
			participants: []string{"Elia", "Tommy", "Alice"},
			want:         []int64{1, 1, 0},
		},
		{
			name:         "zero total should error",
			total:        0,
			participants: []string{"Elia"},
			wantErr:      true,
		},
		{
			name:    "no participants should error",
			total:   100,
			wantErr: true,
		},
		{
			name:         "duplicate participant should error",
			total:        100,
			participants: []string{"Elia", "Elia"},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := SplitEvenly(tt.total, tt.participants)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitEvenly() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(shares) != len(tt.want) {
				t.Fatalf("got %d shares, want %d", len(shares), len(tt.want))
			}
			var sum int64
			for i, s := range shares {
				if s.Person != tt.participants[i] {
					t.Errorf("share %d person = %q, want %q", i, s.Person, tt.participants[i])
				}
				if s.AmountMinor != tt.want[i] {
					t.Errorf("%s share = %d, want %d", s.Person, s.AmountMinor, tt.want[i])
				}
				sum += s.AmountMinor
			}
			if sum != tt.total {
				t.Errorf("shares sum to %d, want %d", sum, tt.total)
			}
		})
	}
}

func open(debtor, creditor string, cents int64) models.Obligation {
	return models.Obligation{Debtor: debtor, Creditor: creditor, AmountMinor: cents, Status: models.StatusOpen}
}

func TestCalculateBalances(t *testing.T) {
	tests := []struct {
		name        string
		obligations []models.Obligation
		wantNet     map[string]int64
		wantEdges   []DebtEdge
	}{
		{
			name:        "empty ledger",
			obligations: nil,
			wantNet:     map[string]int64{},
			wantEdges:   []DebtEdge{},
		},
		{
			name: "opposite debts cancel out",
			obligations: []models.Obligation{
				open("Elia", "Mamma", 1000),
				open("Mamma", "Elia", 400),
			},
			wantNet:   map[string]int64{"Elia": -600, "Mamma": 600},
			wantEdges: []DebtEdge{{From: "Elia", To: "Mamma", AmountMinor: 600}},
		},
		{
			name: "chain is simplified",
			obligations: []models.Obligation{
				open("Elia", "Tommy", 500),
				open("Tommy", "Alice", 500),
			},
			wantNet:   map[string]int64{"Elia": -500, "Tommy": 0, "Alice": 500},
			wantEdges: []DebtEdge{{From: "Elia", To: "Alice", AmountMinor: 500}},
		},
		{
			name: "paid and invalid rows are ignored",
			obligations: []models.Obligation{
				open("Elia", "Mamma", 1000),
				{Debtor: "Tommy", Creditor: "Mamma", AmountMinor: 700, Status: models.StatusPaid},
				open("Tommy", "Mamma", 0),
				open("Tommy", "Tommy", 300),
			},
			wantNet:   map[string]int64{"Elia": -1000, "Mamma": 1000},
			wantEdges: []DebtEdge{{From: "Elia", To: "Mamma", AmountMinor: 1000}},
		},
		{
			name: "largest debtor pays largest creditor first",
			obligations: []models.Obligation{
				open("Elia", "Mamma", 300),
				open("Tommy", "Mamma", 700),
				open("Tommy", "Papà", 200),
			},
			wantNet: map[string]int64{"Elia": -300, "Tommy": -900, "Mamma": 1000, "Papà": 200},
			wantEdges: []DebtEdge{
				{From: "Tommy", To: "Mamma", AmountMinor: 900},
				{From: "Elia", To: "Mamma", AmountMinor: 100},
				{From: "Elia", To: "Papà", AmountMinor: 200},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members, edges := CalculateBalances(tt.obligations)

			if len(members) != len(tt.wantNet) {
				t.Fatalf("got %d members, want %d", len(members), len(tt.wantNet))
			}
			var total int64
			for i, m := range members {
				if i > 0 && members[i-1].Person >= m.Person {
					t.Errorf("members not sorted: %q before %q", members[i-1].Person, m.Person)
				}
				if want := tt.wantNet[m.Person]; m.NetMinor != want {
					t.Errorf("%s net = %d, want %d", m.Person, m.NetMinor, want)
				}
				total += m.NetMinor
			}
			if total != 0 {
				t.Errorf("net balances sum to %d, want 0", total)
			}

			if len(edges) != len(tt.wantEdges) {
				t.Fatalf("got edges %+v, want %+v", edges, tt.wantEdges)
			}
			for i := range edges {
				if edges[i] != tt.wantEdges[i] {
					t.Errorf("edge %d = %+v, want %+v", i, edges[i], tt.wantEdges[i])
				}
			}
		})
	}
}
