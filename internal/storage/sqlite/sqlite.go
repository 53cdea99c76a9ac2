// Package sqlite provides a SQLite-backed implementation of the storage.Table interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/famledger/internal/storage"
)

// Ensure SQLiteTable implements storage.Table
var _ storage.Table = (*SQLiteTable)(nil)

// SQLiteTable implements storage.Table for one named sheet of a SQLite file.
type SQLiteTable struct {
	db    *sql.DB
	sheet string
}

// New opens (or creates) the database at dbPath and binds it to sheet.
// It creates the parent directories and runs migrations automatically.
func New(dbPath, sheet string) (*SQLiteTable, error) {
	if sheet == "" {
		return nil, fmt.Errorf("sheet name is required")
	}

	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; avoids SQLITE_BUSY inside row renumbering.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteTable{db: db, sheet: sheet}, nil
}

// Close closes the database connection.
func (s *SQLiteTable) Close() error {
	return s.db.Close()
}

// Header returns row 1, or an empty slice for a blank sheet.
func (s *SQLiteTable) Header(ctx context.Context) ([]string, error) {
	cells, err := s.loadRow(ctx, s.db, storage.HeaderRow)
	if err == sql.ErrNoRows {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get header: %w", err)
	}
	return cells, nil
}

// Rows returns every data row in position order.
func (s *SQLiteTable) Rows(ctx context.Context) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT cells FROM worksheet_rows WHERE sheet = ? AND position > ? ORDER BY position",
		s.sheet, storage.HeaderRow,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list rows: %w", err)
	}
	defer rows.Close()

	out := [][]string{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		cells, err := decodeCells(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}

// Row returns the cells at one position.
func (s *SQLiteTable) Row(ctx context.Context, row int) ([]string, error) {
	cells, err := s.loadRow(ctx, s.db, row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("row %d: %w", row, storage.ErrRowOutOfRange)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get row %d: %w", row, err)
	}
	return cells, nil
}

// Column returns the values of one column for every row, header included.
func (s *SQLiteTable) Column(ctx context.Context, col int) ([]string, error) {
	if col < 1 {
		return nil, fmt.Errorf("column %d: %w", col, storage.ErrRowOutOfRange)
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT cells FROM worksheet_rows WHERE sheet = ? ORDER BY position",
		s.sheet,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read column: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		cells, err := decodeCells(raw)
		if err != nil {
			return nil, err
		}
		value := ""
		if col <= len(cells) {
			value = cells[col-1]
		}
		out = append(out, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}

// AppendRow inserts values after the current last row.
func (s *SQLiteTable) AppendRow(ctx context.Context, values []string) error {
	raw, err := encodeCells(values)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	last, err := s.lastPosition(ctx, tx)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO worksheet_rows (sheet, position, cells) VALUES (?, ?, ?)",
		s.sheet, last+1, raw,
	); err != nil {
		return fmt.Errorf("failed to insert row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateCells writes the listed cells. Rows past the end are created empty so
// positions stay contiguous.
func (s *SQLiteTable) UpdateCells(ctx context.Context, cells []storage.Cell) error {
	byRow := make(map[int][]storage.Cell)
	for _, c := range cells {
		if c.Row < 1 || c.Col < 1 {
			return fmt.Errorf("cell %d:%d: %w", c.Row, c.Col, storage.ErrRowOutOfRange)
		}
		byRow[c.Row] = append(byRow[c.Row], c)
	}
	positions := make([]int, 0, len(byRow))
	for row := range byRow {
		positions = append(positions, row)
	}
	sort.Ints(positions)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	last, err := s.lastPosition(ctx, tx)
	if err != nil {
		return err
	}

	for _, row := range positions {
		for last < row-1 {
			last++
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO worksheet_rows (sheet, position, cells) VALUES (?, ?, '[]')",
				s.sheet, last,
			); err != nil {
				return fmt.Errorf("failed to pad rows: %w", err)
			}
		}

		current, err := s.loadRow(ctx, tx, row)
		exists := err == nil
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to get row %d: %w", row, err)
		}
		for _, c := range byRow[row] {
			for len(current) < c.Col {
				current = append(current, "")
			}
			current[c.Col-1] = c.Value
		}
		raw, err := encodeCells(current)
		if err != nil {
			return err
		}

		if exists {
			_, err = tx.ExecContext(ctx,
				"UPDATE worksheet_rows SET cells = ? WHERE sheet = ? AND position = ?",
				raw, s.sheet, row,
			)
		} else {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO worksheet_rows (sheet, position, cells) VALUES (?, ?, ?)",
				s.sheet, row, raw,
			)
			last = row
		}
		if err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteRow removes a row and shifts the following rows up.
func (s *SQLiteTable) DeleteRow(ctx context.Context, row int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM worksheet_rows WHERE sheet = ? AND position = ?",
		s.sheet, row,
	)
	if err != nil {
		return fmt.Errorf("failed to delete row: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete row: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("row %d: %w", row, storage.ErrRowOutOfRange)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE worksheet_rows SET position = position - 1 WHERE sheet = ? AND position > ?",
		s.sheet, row,
	); err != nil {
		return fmt.Errorf("failed to shift rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteTable) loadRow(ctx context.Context, q querier, row int) ([]string, error) {
	var raw string
	err := q.QueryRowContext(ctx,
		"SELECT cells FROM worksheet_rows WHERE sheet = ? AND position = ?",
		s.sheet, row,
	).Scan(&raw)
	if err != nil {
		return nil, err
	}
	return decodeCells(raw)
}

func (s *SQLiteTable) lastPosition(ctx context.Context, q querier) (int, error) {
	var last int
	if err := q.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), 0) FROM worksheet_rows WHERE sheet = ?",
		s.sheet,
	).Scan(&last); err != nil {
		return 0, fmt.Errorf("failed to get last position: %w", err)
	}
	return last, nil
}

func encodeCells(cells []string) (string, error) {
	if cells == nil {
		cells = []string{}
	}
	raw, err := json.Marshal(cells)
	if err != nil {
		return "", fmt.Errorf("failed to encode cells: %w", err)
	}
	return string(raw), nil
}

func decodeCells(raw string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, fmt.Errorf("failed to decode cells: %w", err)
	}
	if cells == nil {
		cells = []string{}
	}
	return cells, nil
}
