package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/famledger/internal/models"
)

func TestWriteHistoryCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHistoryCSV(&buf, []models.Obligation{
		{ID: "a", Debtor: "Elia", Creditor: "Mamma", AmountMinor: 2550, Description: "Rata, secondo semestre", Category: "Università", DueDate: "2026-01-31", Status: models.StatusPaid, PaidAt: "2026-01-30T18:22:10"},
		{ID: "b", Debtor: "Tommy", Creditor: "Papà", AmountMinor: 5, Description: "Gelato", Category: "Altro", DueDate: "", Status: models.StatusPaid, PaidAt: "garbage"},
	})
	require.NoError(t, err)

	want := "Debtor,Creditor,Description,Category,Amount,Due date,Paid date\n" +
		"Elia,Mamma,\"Rata, secondo semestre\",Università,25.50,2026-01-31,2026-01-30\n" +
		"Tommy,Papà,Gelato,Altro,0.05,,\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteHistoryCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistoryCSV(&buf, nil))
	assert.Equal(t, "Debtor,Creditor,Description,Category,Amount,Due date,Paid date\n", buf.String())
}
