package fetch

import (
	"cherrypick/internal/introspect"
	"cherrypick/internal/value"
)

// Row is one fetched database row.
type Row struct {
	Table *introspect.Table
	// ID is the display form of the primary key value.
	ID string
	// Columns keeps the result set column order.
	Columns []string
	Values  map[string]value.CellValue
}

// RowKey identifies a row for de-duplication.
type RowKey struct {
	Table introspect.TableIdentity
	ID    string
}

func (k RowKey) String() string {
	return k.Table.String() + "#" + k.ID
}

func (r *Row) Key() RowKey {
	return RowKey{Table: r.Table.Identity, ID: r.ID}
}

// Value returns the cell for column.
func (r *Row) Value(column string) (value.CellValue, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// PrimaryValue returns the primary key cell.
func (r *Row) PrimaryValue() value.CellValue {
	return r.Values[r.Table.Primary.Name]
}
