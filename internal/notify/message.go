package notify

import (
	"fmt"

	"github.com/mmynk/famledger/internal/models"
	"github.com/mmynk/famledger/internal/money"
)

// Subject is used by channels that need a message title.
const Subject = "Family ledger: payment due soon"

// FormatReminder renders the reminder text sent to the debtor.
func FormatReminder(o models.Obligation, daysLeft int) string {
	var when string
	switch daysLeft {
	case 0:
		when = "today"
	case 1:
		when = "tomorrow"
	default:
		when = fmt.Sprintf("in %d days", daysLeft)
	}

	text := fmt.Sprintf("Hi %s, you owe %s %s for %q",
		o.Debtor, o.Creditor, money.Display(o.AmountMinor), o.Description)
	if o.Category != "" {
		text += fmt.Sprintf(" (%s)", o.Category)
	}
	return text + fmt.Sprintf(". It is due %s, %s.", when, o.DueDate)
}
