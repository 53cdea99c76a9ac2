// Package ledger maps the worksheet onto obligations.
//
// The header row is the only source of truth for column layout: every read and
// write resolves field names against a freshly read header. Columns missing
// from the header read as empty and are skipped on write.
//
// Row positions are only valid until the next insert or delete anywhere in the
// sheet. Mutations keyed by ID (UpdateByID, DeleteByID) re-resolve the position
// immediately before writing.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/famledger/internal/models"
	"github.com/mmynk/famledger/internal/storage"
)

var (
	// ErrNoHeader is returned when writing to a sheet that has no header row.
	ErrNoHeader = errors.New("sheet has no header row")
	// ErrMissingIDColumn is returned by lookups on a sheet without an id
	// column. The sheet is broken, so it does not match models.ErrNotFound.
	ErrMissingIDColumn = fmt.Errorf("sheet has no %q column", ColID)
)

// FirstDataRow is the position of the first obligation row.
const FirstDataRow = storage.HeaderRow + 1

// Row is an obligation together with the position it was read from.
type Row struct {
	Position   int
	Obligation models.Obligation
}

// Store is the only writer of the ledger worksheet.
type Store struct {
	table storage.Table
}

// New creates a Store over table.
func New(table storage.Table) *Store {
	return &Store{table: table}
}

// Init writes the default header to a blank sheet. An existing header is left
// as is.
func (s *Store) Init(ctx context.Context) error {
	names, err := s.table.Header(ctx)
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if len(names) > 0 {
		return nil
	}
	cells := make([]storage.Cell, len(Columns))
	for i, name := range Columns {
		cells[i] = storage.Cell{Row: storage.HeaderRow, Col: i + 1, Value: name}
	}
	if err := s.table.UpdateCells(ctx, cells); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

// ReadAll decodes every data row in sheet order. A sheet without data rows
// yields an empty slice.
func (s *Store) ReadAll(ctx context.Context) ([]models.Obligation, error) {
	rows, err := s.ReadRows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Obligation, len(rows))
	for i, r := range rows {
		out[i] = r.Obligation
	}
	return out, nil
}

// ReadRows is ReadAll with each row's position preserved.
func (s *Store) ReadRows(ctx context.Context) ([]Row, error) {
	h, err := s.header(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.table.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	out := make([]Row, 0, len(data))
	for i, cells := range data {
		out = append(out, Row{Position: FirstDataRow + i, Obligation: decode(h, cells)})
	}
	return out, nil
}

// ReadAt decodes the row at position.
func (s *Store) ReadAt(ctx context.Context, position int) (models.Obligation, error) {
	if position < FirstDataRow {
		return models.Obligation{}, fmt.Errorf("invalid data row %d: %w", position, storage.ErrRowOutOfRange)
	}
	h, err := s.header(ctx)
	if err != nil {
		return models.Obligation{}, err
	}
	cells, err := s.table.Row(ctx, position)
	if err != nil {
		return models.Obligation{}, fmt.Errorf("failed to read row: %w", err)
	}
	return decode(h, cells), nil
}

// Append writes o as a new last row, laid out in current header order.
// Header columns the obligation does not know are left empty.
func (s *Store) Append(ctx context.Context, o models.Obligation) error {
	names, err := s.table.Header(ctx)
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if len(names) == 0 {
		return ErrNoHeader
	}
	fields := encode(o)
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = fields[name]
	}
	if err := s.table.AppendRow(ctx, values); err != nil {
		return fmt.Errorf("failed to append obligation: %w", err)
	}
	return nil
}

// FindRowPosition scans the id column for id. It returns models.ErrNotFound
// when no row matches; callers treat that as a normal outcome.
func (s *Store) FindRowPosition(ctx context.Context, id string) (int, error) {
	if id == "" {
		return 0, models.ErrNotFound
	}
	h, err := s.header(ctx)
	if err != nil {
		return 0, err
	}
	idx, ok := h[ColID]
	if !ok {
		return 0, ErrMissingIDColumn
	}
	values, err := s.table.Column(ctx, idx+1)
	if err != nil {
		return 0, fmt.Errorf("failed to read id column: %w", err)
	}
	for i := FirstDataRow - 1; i < len(values); i++ {
		if values[i] == id {
			return i + 1, nil
		}
	}
	return 0, models.ErrNotFound
}

// UpdateFields writes only the named fields of the row at position. Names not
// in the current header are ignored; the schema is never extended here.
func (s *Store) UpdateFields(ctx context.Context, position int, fields map[string]string) error {
	if position < FirstDataRow {
		return fmt.Errorf("invalid data row %d: %w", position, storage.ErrRowOutOfRange)
	}
	h, err := s.header(ctx)
	if err != nil {
		return err
	}
	cells := make([]storage.Cell, 0, len(fields))
	for name, value := range fields {
		idx, ok := h[name]
		if !ok {
			continue
		}
		cells = append(cells, storage.Cell{Row: position, Col: idx + 1, Value: value})
	}
	if len(cells) == 0 {
		return nil
	}
	if err := s.table.UpdateCells(ctx, cells); err != nil {
		return fmt.Errorf("failed to update row %d: %w", position, err)
	}
	return nil
}

// DeleteRow removes the row at position. Positions read before the call are
// stale afterwards.
func (s *Store) DeleteRow(ctx context.Context, position int) error {
	if position < FirstDataRow {
		return fmt.Errorf("invalid data row %d: %w", position, storage.ErrRowOutOfRange)
	}
	if err := s.table.DeleteRow(ctx, position); err != nil {
		return fmt.Errorf("failed to delete row %d: %w", position, err)
	}
	return nil
}

// EnsureColumn appends name to the header if it is not there yet.
func (s *Store) EnsureColumn(ctx context.Context, name string) error {
	names, err := s.table.Header(ctx)
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if newHeader(names).has(name) {
		return nil
	}
	cell := storage.Cell{Row: storage.HeaderRow, Col: len(names) + 1, Value: name}
	if err := s.table.UpdateCells(ctx, []storage.Cell{cell}); err != nil {
		return fmt.Errorf("failed to add column %q: %w", name, err)
	}
	return nil
}

// UpdateByID resolves id to its current position and updates fields there.
func (s *Store) UpdateByID(ctx context.Context, id string, fields map[string]string) error {
	position, err := s.FindRowPosition(ctx, id)
	if err != nil {
		return err
	}
	return s.UpdateFields(ctx, position, fields)
}

// DeleteByID resolves id to its current position and deletes that row.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	position, err := s.FindRowPosition(ctx, id)
	if err != nil {
		return err
	}
	return s.DeleteRow(ctx, position)
}

// IDAt returns the id stored at position, or "" when the row is gone.
func (s *Store) IDAt(ctx context.Context, position int) (string, error) {
	o, err := s.ReadAt(ctx, position)
	if errors.Is(err, storage.ErrRowOutOfRange) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return o.ID, nil
}

func (s *Store) header(ctx context.Context) (header, error) {
	names, err := s.table.Header(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	return newHeader(names), nil
}
