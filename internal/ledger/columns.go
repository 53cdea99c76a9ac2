package ledger

import (
	"strconv"

	"github.com/mmynk/famledger/internal/models"
	"github.com/mmynk/famledger/internal/money"
)

// Logical column names. Physical positions come from the header row.
const (
	ColID              = "id"
	ColDebtor          = "debtor"
	ColCreditor        = "creditor"
	ColAmountCents     = "amount_cents"
	ColDescription     = "description"
	ColCategory        = "category"
	ColDueDate         = "due_date"
	ColStatus          = "status"
	ColCreatedAt       = "created_at"
	ColPaidAt          = "paid_at"
	ColNotifiedDueSoon = "notified_7d_at"
)

// Columns is the header written to a blank sheet.
var Columns = []string{
	ColID,
	ColDebtor,
	ColCreditor,
	ColAmountCents,
	ColDescription,
	ColCategory,
	ColDueDate,
	ColStatus,
	ColCreatedAt,
	ColPaidAt,
	ColNotifiedDueSoon,
}

// header maps a column name to its 0-based index. The first occurrence of a
// duplicated name wins.
type header map[string]int

func newHeader(names []string) header {
	h := make(header, len(names))
	for i, name := range names {
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	return h
}

// value returns the cell for name, or "" when the column or the cell is missing.
func (h header) value(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func (h header) has(name string) bool {
	_, ok := h[name]
	return ok
}

func decode(h header, row []string) models.Obligation {
	return models.Obligation{
		ID:                h.value(row, ColID),
		Debtor:            h.value(row, ColDebtor),
		Creditor:          h.value(row, ColCreditor),
		AmountMinor:       money.ParseMinor(h.value(row, ColAmountCents)),
		Description:       h.value(row, ColDescription),
		Category:          h.value(row, ColCategory),
		DueDate:           h.value(row, ColDueDate),
		Status:            models.Status(h.value(row, ColStatus)),
		CreatedAt:         h.value(row, ColCreatedAt),
		PaidAt:            h.value(row, ColPaidAt),
		NotifiedDueSoonAt: h.value(row, ColNotifiedDueSoon),
	}
}

func encode(o models.Obligation) map[string]string {
	return map[string]string{
		ColID:              o.ID,
		ColDebtor:          o.Debtor,
		ColCreditor:        o.Creditor,
		ColAmountCents:     strconv.FormatInt(o.AmountMinor, 10),
		ColDescription:     o.Description,
		ColCategory:        o.Category,
		ColDueDate:         o.DueDate,
		ColStatus:          string(o.Status),
		ColCreatedAt:       o.CreatedAt,
		ColPaidAt:          o.PaidAt,
		ColNotifiedDueSoon: o.NotifiedDueSoonAt,
	}
}
