package calculator

import (
	"fmt"
)

// Share is one person's part of a shared expense, in minor units.
type Share struct {
	Person      string
	AmountMinor int64
}

// SplitEvenly divides totalMinor across participants in order. Remainder cents
// go to the first participants, one each, so the shares always sum to the total.
func SplitEvenly(totalMinor int64, participants []string) ([]Share, error) {
	if totalMinor <= 0 {
		return nil, fmt.Errorf("total must be positive")
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}

	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if seen[p] {
			return nil, fmt.Errorf("duplicate participant %q", p)
		}
		seen[p] = true
	}

	n := int64(len(participants))
	base, remainder := totalMinor/n, totalMinor%n

	shares := make([]Share, len(participants))
	for i, p := range participants {
		amount := base
		if int64(i) < remainder {
			amount++
		}
		shares[i] = Share{Person: p, AmountMinor: amount}
	}
	return shares, nil
}
