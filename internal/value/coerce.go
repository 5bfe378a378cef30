package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"cherrypick/internal/introspect"
)

// DataType is the declared column type as far as parameter parsing cares.
type DataType string

const (
	TypeInteger DataType = "integer"
	TypeUUID    DataType = "uuid"
	TypeText    DataType = "text"
)

// timestampLayout is accepted as a literal by postgres, mysql, sqlite and sqlserver.
const timestampLayout = "2006-01-02 15:04:05.999999999Z07:00"

// NormalizeDataType maps a catalog type name onto the closed DataType set.
func NormalizeDataType(declared string) DataType {
	switch baseType(declared) {
	case "integer", "int", "int4", "int2", "smallint", "mediumint", "serial", "smallserial":
		return TypeInteger
	case "uuid", "uniqueidentifier":
		return TypeUUID
	default:
		return TypeText
	}
}

// baseType lowercases a type name and drops any length/precision suffix,
// so "INT(11) unsigned" and "int" compare equal.
func baseType(declared string) string {
	t := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexAny(t, "( "); i >= 0 {
		t = t[:i]
	}
	return t
}

// ParseParameter coerces a user supplied string into a query parameter for col.
func ParseParameter(col introspect.Column, s string) (CellValue, error) {
	dt := NormalizeDataType(col.DataType)
	switch dt {
	case TypeInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return CellValue{}, &InvalidParameterError{Column: col.Name, DataType: dt, Value: s, Err: err}
		}
		return Int(n), nil
	case TypeUUID:
		u, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return CellValue{}, &InvalidParameterError{Column: col.Name, DataType: dt, Value: s, Err: err}
		}
		return UUID(u), nil
	default:
		return Text(s), nil
	}
}

type class int

const (
	classText class = iota
	classInteger
	classNumeric
	classBoolean
	classUUID
	classBinary
)

func classify(dbType string) class {
	switch baseType(dbType) {
	case "int", "int2", "int4", "int8", "integer", "smallint", "bigint", "tinyint", "mediumint",
		"serial", "bigserial", "smallserial":
		return classInteger
	case "numeric", "decimal", "float", "float4", "float8", "real", "double":
		return classNumeric
	case "bool", "boolean":
		return classBoolean
	case "uuid", "uniqueidentifier":
		return classUUID
	case "bytea", "blob", "tinyblob", "mediumblob", "longblob", "binary", "varbinary", "image", "raw":
		return classBinary
	default:
		return classText
	}
}

// timeLayout keeps the precision of the declared type so a value replays
// unchanged: dates stay dates and zone-less timestamps get no zone.
func timeLayout(dbType string) string {
	switch baseType(dbType) {
	case "date":
		return "2006-01-02"
	case "time":
		return "15:04:05.999999999"
	case "timestamp", "datetime", "datetime2", "smalldatetime":
		return "2006-01-02 15:04:05.999999999"
	default:
		return timestampLayout
	}
}

// Decode builds a cell from a value scanned by database/sql. dbType is the
// driver's column type name (sql.ColumnType.DatabaseTypeName).
func Decode(src any, dbType string) (CellValue, error) {
	c := classify(dbType)
	switch v := src.(type) {
	case nil:
		return Null(), nil
	case int64:
		if c == classBoolean {
			return Bool(v != 0), nil
		}
		return Int(v), nil
	case int32:
		return Int(int64(v)), nil
	case int:
		return Int(int64(v)), nil
	case float64:
		return floatCell(v, 64), nil
	case float32:
		return floatCell(float64(v), 32), nil
	case bool:
		return Bool(v), nil
	case time.Time:
		return Text(v.Format(timeLayout(dbType))), nil
	case uuid.UUID:
		return UUID(v), nil
	case [16]byte:
		return UUID(uuid.UUID(v)), nil
	case []byte:
		if c == classUUID && len(v) == 16 {
			return UUID(mssqlUUID(v)), nil
		}
		if c == classBinary || (c == classText && !isText(v)) {
			return Binary(v), nil
		}
		return decodeString(string(v), c, dbType)
	case string:
		return decodeString(v, c, dbType)
	default:
		return CellValue{}, fmt.Errorf("unsupported driver value %T for column type %q", src, dbType)
	}
}

func floatCell(f float64, bits int) CellValue {
	switch {
	case math.IsInf(f, 1):
		return Numeric(posInf)
	case math.IsInf(f, -1):
		return Numeric(negInf)
	case math.IsNaN(f):
		return Numeric(nan)
	default:
		return Numeric(strconv.FormatFloat(f, 'g', -1, bits))
	}
}

// isText reports whether b is UTF-8 without control bytes other than tab,
// newline and carriage return.
func isText(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, c := range b {
		if (c < 0x20 && c != '\t' && c != '\n' && c != '\r') || c == 0x7f {
			return false
		}
	}
	return true
}

func decodeString(s string, c class, dbType string) (CellValue, error) {
	switch c {
	case classInteger:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return CellValue{}, fmt.Errorf("decode %s value %q: %w", dbType, s, err)
		}
		return Int(n), nil
	case classNumeric:
		f, err := strconv.ParseFloat(s, 64)
		if errors.Is(err, strconv.ErrRange) {
			// a valid decimal beyond float64 range; keep its digits
			return Numeric(s), nil
		}
		if err != nil {
			return CellValue{}, fmt.Errorf("decode %s value %q: %w", dbType, s, err)
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return floatCell(f, 64), nil
		}
		return Numeric(s), nil
	case classBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return CellValue{}, fmt.Errorf("decode %s value %q: %w", dbType, s, err)
		}
		return Bool(b), nil
	case classUUID:
		u, err := uuid.Parse(s)
		if err != nil {
			return CellValue{}, fmt.Errorf("decode %s value %q: %w", dbType, s, err)
		}
		return UUID(u), nil
	default:
		return Text(s), nil
	}
}

// mssqlUUID reorders the little-endian leading groups SQL Server uses on the wire.
func mssqlUUID(b []byte) uuid.UUID {
	var u uuid.UUID
	copy(u[:], b)
	u[0], u[1], u[2], u[3] = b[3], b[2], b[1], b[0]
	u[4], u[5] = b[5], b[4]
	u[6], u[7] = b[7], b[6]
	return u
}
