package calculator

import (
	"sort"

	"github.com/mmynk/famledger/internal/models"
)

// MemberBalance is the open position of one person across the ledger.
type MemberBalance struct {
	Person    string
	NetMinor  int64 // Positive = is owed money, negative = owes money
	OwedMinor int64 // Total others owe this person
	OwesMinor int64 // Total this person owes others
}

// DebtEdge is one suggested payment that settles net balances.
type DebtEdge struct {
	From        string // Person who pays
	To          string // Person who receives
	AmountMinor int64
}

// CalculateBalances nets every OPEN obligation into per-person balances and a
// simplified list of payments.
//
// Algorithm:
// - For each open obligation: creditor +amount, debtor -amount
// - Debtors and creditors are ordered by size, largest first (ties by name)
// - Greedy matching: pay the smaller of what the debtor owes and the creditor is owed
//
// Paid obligations and rows with a non-positive amount are ignored.
func CalculateBalances(obligations []models.Obligation) ([]MemberBalance, []DebtEdge) {
	balances := make(map[string]*MemberBalance)
	get := func(person string) *MemberBalance {
		b, ok := balances[person]
		if !ok {
			b = &MemberBalance{Person: person}
			balances[person] = b
		}
		return b
	}

	for _, o := range obligations {
		if !o.IsOpen() || o.AmountMinor <= 0 || o.Debtor == o.Creditor {
			continue
		}
		get(o.Creditor).OwedMinor += o.AmountMinor
		get(o.Debtor).OwesMinor += o.AmountMinor
	}

	memberBalances := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		b.NetMinor = b.OwedMinor - b.OwesMinor
		memberBalances = append(memberBalances, *b)
	}
	sort.Slice(memberBalances, func(i, j int) bool {
		return memberBalances[i].Person < memberBalances[j].Person
	})

	// Create lists of creditors (owed money) and debtors (owe money)
	type position struct {
		person string
		amount int64
	}
	var creditors, debtors []position
	for _, b := range memberBalances {
		switch {
		case b.NetMinor > 0:
			creditors = append(creditors, position{b.Person, b.NetMinor})
		case b.NetMinor < 0:
			debtors = append(debtors, position{b.Person, -b.NetMinor})
		}
	}
	bySize := func(p []position) func(i, j int) bool {
		return func(i, j int) bool {
			if p[i].amount != p[j].amount {
				return p[i].amount > p[j].amount
			}
			return p[i].person < p[j].person
		}
	}
	sort.SliceStable(creditors, bySize(creditors))
	sort.SliceStable(debtors, bySize(debtors))

	edges := []DebtEdge{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := min(debtors[i].amount, creditors[j].amount)
		edges = append(edges, DebtEdge{
			From:        debtors[i].person,
			To:          creditors[j].person,
			AmountMinor: amount,
		})

		debtors[i].amount -= amount
		creditors[j].amount -= amount

		// Move to next debtor/creditor if fully settled
		if debtors[i].amount == 0 {
			i++
		}
		if creditors[j].amount == 0 {
			j++
		}
	}

	return memberBalances, edges
}
