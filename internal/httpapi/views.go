package httpapi

import (
	"time"

	"github.com/mmynk/famledger/internal/calculator"
	"github.com/mmynk/famledger/internal/jobs"
	"github.com/mmynk/famledger/internal/models"
	"github.com/mmynk/famledger/internal/money"
	"github.com/mmynk/famledger/internal/notify"
	"github.com/mmynk/famledger/internal/service"
)

type obligationView struct {
	ID                string       `json:"id"`
	Debtor            string       `json:"debtor"`
	Creditor          string       `json:"creditor"`
	AmountCents       int64        `json:"amount_cents"`
	Amount            string       `json:"amount"`
	Description       string       `json:"description"`
	Category          string       `json:"category"`
	DueDate           string       `json:"due_date,omitempty"`
	Status            string       `json:"status"`
	CreatedAt         string       `json:"created_at,omitempty"`
	PaidAt            string       `json:"paid_at,omitempty"`
	NotifiedDueSoonAt string       `json:"notified_due_soon_at,omitempty"`
	Badge             models.Badge `json:"badge,omitempty"`
	DaysLeft          *int         `json:"days_left,omitempty"`
}

func toView(o models.Obligation, today time.Time) obligationView {
	v := obligationView{
		ID:                o.ID,
		Debtor:            o.Debtor,
		Creditor:          o.Creditor,
		AmountCents:       o.AmountMinor,
		Amount:            money.FormatMinor(o.AmountMinor),
		Description:       o.Description,
		Category:          o.Category,
		DueDate:           o.DueDate,
		Status:            string(o.Status),
		CreatedAt:         o.CreatedAt,
		PaidAt:            o.PaidAt,
		NotifiedDueSoonAt: o.NotifiedDueSoonAt,
	}
	if o.IsOpen() {
		v.Badge = o.DueBadge(today)
		if days, ok := o.DaysLeft(today); ok {
			v.DaysLeft = &days
		}
	}
	return v
}

func toViews(obligations []models.Obligation, today time.Time) []obligationView {
	out := make([]obligationView, len(obligations))
	for i, o := range obligations {
		out[i] = toView(o, today)
	}
	return out
}

type openResponse struct {
	Obligations []obligationView `json:"obligations"`
}

type historyResponse struct {
	Obligations []obligationView `json:"obligations"`
	TotalCents  int64            `json:"total_cents"`
	Total       string           `json:"total"`
	Years       []int            `json:"years"`
}

type summaryResponse struct {
	service.Summary
	OpenTotal string `json:"open_total"`
}

type memberView struct {
	Person    string `json:"person"`
	NetCents  int64  `json:"net_cents"`
	Net       string `json:"net"`
	OwedCents int64  `json:"owed_cents"`
	OwesCents int64  `json:"owes_cents"`
}

type paymentView struct {
	From        string `json:"from"`
	To          string `json:"to"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
}

type balancesResponse struct {
	Members  []memberView  `json:"members"`
	SettleUp []paymentView `json:"settle_up"`
}

func toBalancesResponse(b service.Balances) balancesResponse {
	resp := balancesResponse{
		Members:  make([]memberView, len(b.Members)),
		SettleUp: make([]paymentView, len(b.SettleUp)),
	}
	for i, m := range b.Members {
		resp.Members[i] = memberView{
			Person:    m.Person,
			NetCents:  m.NetMinor,
			Net:       money.FormatMinor(m.NetMinor),
			OwedCents: m.OwedMinor,
			OwesCents: m.OwesMinor,
		}
	}
	for i, e := range b.SettleUp {
		resp.SettleUp[i] = paymentFrom(e)
	}
	return resp
}

func paymentFrom(e calculator.DebtEdge) paymentView {
	return paymentView{From: e.From, To: e.To, AmountCents: e.AmountMinor, Amount: money.FormatMinor(e.AmountMinor)}
}

type directoryResponse struct {
	People     []string `json:"people"`
	Categories []string `json:"categories"`
}

type notifierRunResponse struct {
	ThresholdDays int           `json:"threshold_days"`
	Result        notify.Result `json:"result"`
	Error         string        `json:"error,omitempty"`
}

type lastRunResponse struct {
	jobs.Run
}

type runsResponse struct {
	Runs []jobs.Run `json:"runs"`
}

type loginRequest struct {
	Person     string `json:"person"`
	Passphrase string `json:"passphrase"`
}
