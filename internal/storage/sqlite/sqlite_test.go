package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mmynk/famledger/internal/storage"
	"github.com/mmynk/famledger/internal/storage/storagetest"
)

func newTestTable(t *testing.T, dbPath, sheet string) *SQLiteTable {
	t.Helper()
	tbl, err := New(dbPath, sheet)
	if err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	t.Cleanup(func() { tbl.Close() })
	return tbl
}

func TestSQLiteTable(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Table {
		return newTestTable(t, filepath.Join(t.TempDir(), "ledger.db"), "family_ledger")
	})
}

func TestSheetsAreIsolated(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "ledger.db")

	ledger := newTestTable(t, dbPath, "family_ledger")
	if err := ledger.AppendRow(ctx, []string{"id"}); err != nil {
		t.Fatalf("AppendRow failed: %v", err)
	}

	other := newTestTable(t, dbPath, "archive")
	header, err := other.Header(ctx)
	if err != nil {
		t.Fatalf("Header failed: %v", err)
	}
	if len(header) != 0 {
		t.Errorf("Expected blank archive sheet, got header %v", header)
	}
}

func TestUpdateCellsPadsMissingRows(t *testing.T) {
	ctx := context.Background()
	tbl := newTestTable(t, filepath.Join(t.TempDir(), "ledger.db"), "family_ledger")

	if err := tbl.UpdateCells(ctx, []storage.Cell{{Row: 3, Col: 2, Value: "x"}}); err != nil {
		t.Fatalf("UpdateCells failed: %v", err)
	}

	col, err := tbl.Column(ctx, 2)
	if err != nil {
		t.Fatalf("Column failed: %v", err)
	}
	want := []string{"", "", "x"}
	if len(col) != len(want) {
		t.Fatalf("Column length: got %d, want %d", len(col), len(want))
	}
	for i := range want {
		if col[i] != want[i] {
			t.Errorf("Column[%d]: got %q, want %q", i, col[i], want[i])
		}
	}
}

func TestNewRequiresSheet(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "ledger.db"), ""); err == nil {
		t.Error("Expected error for empty sheet name, got nil")
	}
}
