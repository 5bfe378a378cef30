package value

import "fmt"

// InvalidParameterError reports a lookup value that cannot be coerced to the
// column's declared type.
type InvalidParameterError struct {
	Column   string
	DataType DataType
	Value    string
	Err      error
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s value %q for column %s: %v", e.DataType, e.Value, e.Column, e.Err)
}

func (e *InvalidParameterError) Unwrap() error { return e.Err }

// UnrepresentableError reports a cell that has no literal form in a dialect,
// such as an infinite float on an engine without infinities.
type UnrepresentableError struct {
	Value CellValue
	Style Style
}

func (e *UnrepresentableError) Error() string {
	return fmt.Sprintf("%s value %s has no %s literal", e.Value.Kind(), e.Value, e.Style)
}
