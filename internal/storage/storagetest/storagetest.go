// Package storagetest holds behaviour checks shared by every storage.Table backend.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/famledger/internal/storage"
)

// Run exercises a backend. newTable must return an empty table each call.
func Run(t *testing.T, newTable func(t *testing.T) storage.Table) {
	ctx := context.Background()

	t.Run("blank sheet", func(t *testing.T) {
		tbl := newTable(t)
		header, err := tbl.Header(ctx)
		require.NoError(t, err)
		assert.Empty(t, header)

		rows, err := tbl.Rows(ctx)
		require.NoError(t, err)
		assert.Empty(t, rows)

		_, err = tbl.Row(ctx, 1)
		assert.True(t, errors.Is(err, storage.ErrRowOutOfRange))
	})

	t.Run("append and read", func(t *testing.T) {
		tbl := newTable(t)
		require.NoError(t, tbl.AppendRow(ctx, []string{"id", "name"}))
		require.NoError(t, tbl.AppendRow(ctx, []string{"a", "Alice"}))
		require.NoError(t, tbl.AppendRow(ctx, []string{"b"}))

		header, err := tbl.Header(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "name"}, header)

		rows, err := tbl.Rows(ctx)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"a", "Alice"}, {"b"}}, rows)

		row, err := tbl.Row(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, row)

		col, err := tbl.Column(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "Alice", ""}, col)
	})

	t.Run("update cells leaves others untouched", func(t *testing.T) {
		tbl := newTable(t)
		require.NoError(t, tbl.AppendRow(ctx, []string{"id", "status", "paid_at"}))
		require.NoError(t, tbl.AppendRow(ctx, []string{"a", "OPEN", ""}))
		require.NoError(t, tbl.AppendRow(ctx, []string{"b", "OPEN", ""}))

		require.NoError(t, tbl.UpdateCells(ctx, []storage.Cell{
			{Row: 2, Col: 2, Value: "PAID"},
			{Row: 2, Col: 3, Value: "2026-01-02T10:00:00"},
			{Row: 1, Col: 4, Value: "extra"},
		}))

		rows, err := tbl.Rows(ctx)
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"a", "PAID", "2026-01-02T10:00:00"},
			{"b", "OPEN", ""},
		}, rows)

		header, err := tbl.Header(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "status", "paid_at", "extra"}, header)
	})

	t.Run("delete shifts rows up", func(t *testing.T) {
		tbl := newTable(t)
		for _, r := range [][]string{{"id"}, {"a"}, {"b"}, {"c"}} {
			require.NoError(t, tbl.AppendRow(ctx, r))
		}
		require.NoError(t, tbl.DeleteRow(ctx, 2))

		col, err := tbl.Column(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "b", "c"}, col)

		row, err := tbl.Row(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, row)

		require.NoError(t, tbl.AppendRow(ctx, []string{"d"}))
		col, err = tbl.Column(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "b", "c", "d"}, col)

		err = tbl.DeleteRow(ctx, 10)
		assert.True(t, errors.Is(err, storage.ErrRowOutOfRange))
	})
}
