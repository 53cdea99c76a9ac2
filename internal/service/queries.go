package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mmynk/famledger/internal/calculator"
	"github.com/mmynk/famledger/internal/models"
)

// OpenFilter narrows the board of OPEN obligations. Zero values match all.
type OpenFilter struct {
	Person      string
	OverdueOnly bool
	Query       string
}

// HistoryFilter narrows the settled history. Year, From and To compare
// against the settlement date; rows without a readable paid_at never match
// them. Zero values match all.
type HistoryFilter struct {
	Person   string
	Category string
	Year     int
	From     time.Time
	To       time.Time
	Query    string
}

// History is a filtered view of PAID obligations.
type History struct {
	Obligations []models.Obligation
	TotalMinor  int64
	// Years lists every settlement year present, newest first.
	Years []int
}

// Summary holds the board headline numbers.
type Summary struct {
	OpenCount      int   `json:"open_count"`
	OpenTotalMinor int64 `json:"open_total_cents"`
	OverdueCount   int   `json:"overdue_count"`
	People         int   `json:"people"`
}

// Balances is the net position of every person over OPEN obligations.
type Balances struct {
	Members  []calculator.MemberBalance
	SettleUp []calculator.DebtEdge
}

// ListOpen returns OPEN obligations in sheet order.
func (s *LedgerService) ListOpen(ctx context.Context, f OpenFilter) ([]models.Obligation, error) {
	all, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	today := s.Today()
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := []models.Obligation{}
	for _, o := range all {
		if !o.IsOpen() {
			continue
		}
		if f.Person != "" && !o.Involves(f.Person) {
			continue
		}
		if f.OverdueOnly && !o.IsOverdue(today) {
			continue
		}
		if !matchesQuery(o, query) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// History returns PAID obligations matching f and their total.
func (s *LedgerService) History(ctx context.Context, f HistoryFilter) (History, error) {
	all, err := s.store.ReadAll(ctx)
	if err != nil {
		return History{}, fmt.Errorf("failed to read ledger: %w", err)
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))
	from, to := dateOnly(f.From), dateOnly(f.To)

	h := History{Obligations: []models.Obligation{}, Years: []int{}}
	years := make(map[int]bool)
	for _, o := range all {
		if !o.IsPaid() {
			continue
		}
		paid, hasPaid := o.Paid()
		if hasPaid {
			years[paid.Year()] = true
		}

		if f.Person != "" && !o.Involves(f.Person) {
			continue
		}
		if f.Category != "" && o.Category != f.Category {
			continue
		}
		if f.Year != 0 && (!hasPaid || paid.Year() != f.Year) {
			continue
		}
		if !from.IsZero() && (!hasPaid || dateOnly(paid).Before(from)) {
			continue
		}
		if !to.IsZero() && (!hasPaid || dateOnly(paid).After(to)) {
			continue
		}
		if !matchesQuery(o, query) {
			continue
		}
		h.Obligations = append(h.Obligations, o)
		h.TotalMinor += o.AmountMinor
	}

	for y := range years {
		h.Years = append(h.Years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(h.Years)))
	return h, nil
}

// Summary computes the board headline numbers over OPEN obligations.
func (s *LedgerService) Summary(ctx context.Context) (Summary, error) {
	all, err := s.store.ReadAll(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read ledger: %w", err)
	}
	today := s.Today()
	sum := Summary{People: len(s.dir.People)}
	for _, o := range all {
		if !o.IsOpen() {
			continue
		}
		sum.OpenCount++
		sum.OpenTotalMinor += o.AmountMinor
		if o.IsOverdue(today) {
			sum.OverdueCount++
		}
	}
	return sum, nil
}

// Balances nets OPEN obligations per person and suggests settle-up payments.
func (s *LedgerService) Balances(ctx context.Context) (Balances, error) {
	all, err := s.store.ReadAll(ctx)
	if err != nil {
		return Balances{}, fmt.Errorf("failed to read ledger: %w", err)
	}
	members, edges := calculator.CalculateBalances(all)
	return Balances{Members: members, SettleUp: edges}, nil
}

// matchesQuery is a case-insensitive substring match on the description.
// query must already be lower-cased.
func matchesQuery(o models.Obligation, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(o.Description), query)
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
