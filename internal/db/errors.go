package db

import "fmt"

// SchemaLoadError reports a failed catalog extraction. It is fatal: no
// partial registry is ever returned alongside it.
type SchemaLoadError struct {
	Schema string
	Err    error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("load schema %q: %v", e.Schema, e.Err)
}

func (e *SchemaLoadError) Unwrap() error { return e.Err }
