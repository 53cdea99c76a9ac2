// Package memory provides an in-memory implementation of storage.Table.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mmynk/famledger/internal/storage"
)

// Ensure Table implements storage.Table
var _ storage.Table = (*Table)(nil)

// Table is a worksheet held in memory. Row 1 is rows[0].
type Table struct {
	mu   sync.Mutex
	rows [][]string
}

// New creates a table from initial rows, header first. The rows are copied.
func New(rows ...[]string) *Table {
	t := &Table{}
	for _, r := range rows {
		t.rows = append(t.rows, clone(r))
	}
	return t
}

func (t *Table) Header(ctx context.Context) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.rows) == 0 {
		return []string{}, nil
	}
	return clone(t.rows[0]), nil
}

func (t *Table) Rows(ctx context.Context) ([][]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.rows) <= 1 {
		return [][]string{}, nil
	}
	out := make([][]string, 0, len(t.rows)-1)
	for _, r := range t.rows[1:] {
		out = append(out, clone(r))
	}
	return out, nil
}

func (t *Table) Row(ctx context.Context, row int) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if row < 1 || row > len(t.rows) {
		return nil, fmt.Errorf("row %d: %w", row, storage.ErrRowOutOfRange)
	}
	return clone(t.rows[row-1]), nil
}

func (t *Table) Column(ctx context.Context, col int) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if col < 1 {
		return nil, fmt.Errorf("column %d: %w", col, storage.ErrRowOutOfRange)
	}
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		if col <= len(r) {
			out[i] = r[col-1]
		}
	}
	return out, nil
}

func (t *Table) AppendRow(ctx context.Context, values []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, clone(values))
	return nil
}

func (t *Table) UpdateCells(ctx context.Context, cells []storage.Cell) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range cells {
		if c.Row < 1 || c.Col < 1 {
			return fmt.Errorf("cell %d:%d: %w", c.Row, c.Col, storage.ErrRowOutOfRange)
		}
		for len(t.rows) < c.Row {
			t.rows = append(t.rows, []string{})
		}
		r := t.rows[c.Row-1]
		for len(r) < c.Col {
			r = append(r, "")
		}
		r[c.Col-1] = c.Value
		t.rows[c.Row-1] = r
	}
	return nil
}

func (t *Table) DeleteRow(ctx context.Context, row int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if row < 1 || row > len(t.rows) {
		return fmt.Errorf("row %d: %w", row, storage.ErrRowOutOfRange)
	}
	t.rows = append(t.rows[:row-1], t.rows[row:]...)
	return nil
}

// Close is a no-op.
func (t *Table) Close() error {
	return nil
}

func clone(r []string) []string {
	out := make([]string, len(r))
	copy(out, r)
	return out
}
