package fetch

import (
	"fmt"

	"cherrypick/internal/introspect"
)

// RowNotFoundError reports a single-row lookup that matched nothing.
type RowNotFoundError struct {
	Table  introspect.TableIdentity
	Column string
	Value  string
}

func (e *RowNotFoundError) Error() string {
	return fmt.Sprintf("no row in %s where %s = %s", e.Table, e.Column, e.Value)
}

// TooManyRowsError reports a single-row lookup that matched several rows.
type TooManyRowsError struct {
	Table  introspect.TableIdentity
	Column string
	Value  string
	Count  int
}

func (e *TooManyRowsError) Error() string {
	return fmt.Sprintf("expected one row in %s where %s = %s, got %d", e.Table, e.Column, e.Value, e.Count)
}

// UnknownColumnError reports a lookup on a column the table does not have.
type UnknownColumnError struct {
	Table  introspect.TableIdentity
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("table %s has no column %q", e.Table, e.Column)
}
