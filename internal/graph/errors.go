package graph

import (
	"fmt"

	"cherrypick/internal/introspect"
)

// UnknownTableError reports a table that is not in the registry, either the
// seed table or the target of a foreign key.
type UnknownTableError struct {
	Table      introspect.TableIdentity
	Constraint string // empty for the seed table
}

func (e *UnknownTableError) Error() string {
	if e.Constraint == "" {
		return fmt.Sprintf("table %s not found in schema registry", e.Table)
	}
	return fmt.Sprintf("table %s referenced by %s not found in schema registry", e.Table, e.Constraint)
}
