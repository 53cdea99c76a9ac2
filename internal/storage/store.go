// Package storage provides the worksheet abstraction the ledger is persisted in.
package storage

import (
	"context"
	"errors"
)

// ErrRowOutOfRange is returned when a row or column position does not exist.
var ErrRowOutOfRange = errors.New("row out of range")

// HeaderRow is the position of the column header. Data rows start right after it.
const HeaderRow = 1

// Cell addresses one value by 1-based row and column.
type Cell struct {
	Row   int
	Col   int
	Value string
}

// Table defines a row-oriented worksheet without indexes or transactions.
// Rows and columns are 1-based; row 1 holds the column header.
// This abstraction allows swapping backends (SQLite, in-memory, a remote
// spreadsheet) without changing the ledger layer.
type Table interface {
	// Header returns the values of row 1. An empty slice means the sheet is blank.
	Header(ctx context.Context) ([]string, error)

	// Rows returns every row after the header, in sheet order. Rows may be
	// shorter than the header.
	Rows(ctx context.Context) ([][]string, error)

	// Row returns the values of one row.
	// Returns ErrRowOutOfRange if the row does not exist.
	Row(ctx context.Context, row int) ([]string, error)

	// Column returns one column top to bottom, header included.
	Column(ctx context.Context, col int) ([]string, error)

	// AppendRow writes values as a new last row.
	AppendRow(ctx context.Context, values []string) error

	// UpdateCells writes the given cells, growing rows as needed. Cells not
	// listed are left untouched.
	UpdateCells(ctx context.Context, cells []Cell) error

	// DeleteRow removes a row; every following row moves up by one.
	DeleteRow(ctx context.Context, row int) error

	// Close releases any resources held by the table.
	Close() error
}
