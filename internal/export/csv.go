// Package export renders settled obligations for use outside the board.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/mmynk/famledger/internal/models"
	"github.com/mmynk/famledger/internal/money"
)

const csvBufferSize = 32 * 1024

// HistoryColumns is the CSV header of the history export.
var HistoryColumns = []string{"Debtor", "Creditor", "Description", "Category", "Amount", "Due date", "Paid date"}

// WriteHistoryCSV writes obligations as CSV. Amounts are plain decimals and
// dates are YYYY-MM-DD; unreadable dates are left empty.
func WriteHistoryCSV(w io.Writer, obligations []models.Obligation) error {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)

	if err := writer.Write(HistoryColumns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, o := range obligations {
		if err := writer.Write(historyRow(o)); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", o.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Flush()
}

func historyRow(o models.Obligation) []string {
	var due, paid string
	if d, ok := o.Due(); ok {
		due = models.FormatDate(d)
	}
	if p, ok := o.Paid(); ok {
		paid = models.FormatDate(p)
	}
	return []string{
		o.Debtor,
		o.Creditor,
		o.Description,
		o.Category,
		money.FormatMinor(o.AmountMinor),
		due,
		paid,
	}
}
