package sqlite

import "database/sql"

// schema stores a worksheet as positioned rows. Each row's cells are a JSON
// array of strings; position 1 is the header. Positions are kept contiguous,
// so they are not a primary key: deleting a row renumbers everything below it.
const schema = `
CREATE TABLE IF NOT EXISTS worksheet_rows (
    sheet TEXT NOT NULL,
    position INTEGER NOT NULL,
    cells TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_worksheet_rows_sheet_position ON worksheet_rows(sheet, position);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
