// Package value converts between string input, driver values and SQL
// literals for the small set of column types the extractor understands.
package value

import (
	"encoding/hex"
	"strconv"

	"github.com/google/uuid"
)

// Kind tags the variant held by a CellValue.
type Kind uint8

const (
	KindNull Kind = iota
	KindInteger
	KindNumeric
	KindBoolean
	KindUUID
	KindText
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindNumeric:
		return "numeric"
	case KindBoolean:
		return "boolean"
	case KindUUID:
		return "uuid"
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// CellValue is a single typed column value. The zero value is NULL.
type CellValue struct {
	kind Kind
	i    int64
	s    string
	b    bool
	u    uuid.UUID
}

// Null returns the NULL cell.
func Null() CellValue { return CellValue{} }

// Int returns an integer cell.
func Int(v int64) CellValue { return CellValue{kind: KindInteger, i: v} }

// Numeric returns a non-integer number held in its decimal text form.
func Numeric(s string) CellValue { return CellValue{kind: KindNumeric, s: s} }

// Bool returns a boolean cell.
func Bool(v bool) CellValue { return CellValue{kind: KindBoolean, b: v} }

// UUID returns a uuid cell.
func UUID(v uuid.UUID) CellValue { return CellValue{kind: KindUUID, u: v} }

// Text returns a text cell.
func Text(s string) CellValue { return CellValue{kind: KindText, s: s} }

// Binary returns a byte string cell. The bytes are copied.
func Binary(b []byte) CellValue { return CellValue{kind: KindBinary, s: string(b)} }

func (v CellValue) Kind() Kind   { return v.kind }
func (v CellValue) IsNull() bool { return v.kind == KindNull }

// Int64 returns the integer payload; ok is false for other kinds.
func (v CellValue) Int64() (int64, bool) { return v.i, v.kind == KindInteger }

// UUIDValue returns the uuid payload; ok is false for other kinds.
func (v CellValue) UUIDValue() (uuid.UUID, bool) { return v.u, v.kind == KindUUID }

// Bytes returns the binary payload; ok is false for other kinds.
func (v CellValue) Bytes() ([]byte, bool) {
	if v.kind != KindBinary {
		return nil, false
	}
	return []byte(v.s), true
}

// String renders the value for display, not as a SQL literal.
func (v CellValue) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindUUID:
		return v.u.String()
	case KindBinary:
		return `\x` + hex.EncodeToString([]byte(v.s))
	default:
		return v.s
	}
}

// Param returns the value to bind as a query argument.
func (v CellValue) Param() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindInteger:
		return v.i
	case KindBoolean:
		return v.b
	case KindUUID:
		return v.u.String()
	case KindBinary:
		return []byte(v.s)
	default:
		return v.s
	}
}

// Equal reports whether both cells hold the same kind and payload.
func (v CellValue) Equal(o CellValue) bool {
	return v == o
}
