package value

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// Style selects how a dialect spells the literals that have no portable form:
// booleans, byte strings and non-finite numbers.
type Style uint8

const (
	// StyleANSI uses TRUE/FALSE and X'..' and has no non-finite numbers.
	StyleANSI Style = iota
	// StyleSQLite is ANSI plus 9e999 for infinities.
	StyleSQLite
	// StylePostgres uses '\x..' byte strings and quoted 'Infinity'/'NaN'.
	StylePostgres
	StyleMySQL
	// StyleMSSQL uses 1/0 for bit and 0x.. for binary.
	StyleMSSQL
	// StyleOracle uses 1/0, HEXTORAW and the BINARY_DOUBLE constants.
	StyleOracle
)

func (s Style) String() string {
	switch s {
	case StyleANSI:
		return "ansi"
	case StyleSQLite:
		return "sqlite"
	case StylePostgres:
		return "postgres"
	case StyleMySQL:
		return "mysql"
	case StyleMSSQL:
		return "sqlserver"
	case StyleOracle:
		return "oracle"
	default:
		return "style(" + strconv.Itoa(int(s)) + ")"
	}
}

// Canonical spellings of non-finite numeric cells.
const (
	posInf = "Infinity"
	negInf = "-Infinity"
	nan    = "NaN"
)

// RenderLiteral renders the cell as a SQL literal in style s. Text and uuid
// values are single-quoted with embedded quotes doubled; finite numbers are
// bare. A cell the dialect cannot spell is an UnrepresentableError.
func RenderLiteral(v CellValue, s Style) (string, error) {
	switch v.kind {
	case KindNull:
		return "NULL", nil
	case KindInteger:
		return strconv.FormatInt(v.i, 10), nil
	case KindNumeric:
		if v.s == posInf || v.s == negInf || v.s == nan {
			return nonFinite(v, s)
		}
		return v.s, nil
	case KindBoolean:
		return boolLiteral(v.b, s), nil
	case KindUUID:
		return quote(v.u.String()), nil
	case KindBinary:
		return binaryLiteral([]byte(v.s), s), nil
	default:
		return quote(v.s), nil
	}
}

func boolLiteral(b bool, s Style) string {
	switch s {
	case StyleMSSQL, StyleOracle:
		if b {
			return "1"
		}
		return "0"
	default:
		if b {
			return "TRUE"
		}
		return "FALSE"
	}
}

func binaryLiteral(b []byte, s Style) string {
	h := hex.EncodeToString(b)
	switch s {
	case StylePostgres:
		return `'\x` + h + `'`
	case StyleMSSQL:
		return "0x" + strings.ToUpper(h)
	case StyleOracle:
		return "HEXTORAW('" + h + "')"
	default:
		return "X'" + h + "'"
	}
}

func nonFinite(v CellValue, s Style) (string, error) {
	switch s {
	case StylePostgres:
		return quote(v.s), nil
	case StyleOracle:
		switch v.s {
		case posInf:
			return "BINARY_DOUBLE_INFINITY", nil
		case negInf:
			return "-BINARY_DOUBLE_INFINITY", nil
		default:
			return "BINARY_DOUBLE_NAN", nil
		}
	case StyleSQLite:
		// sqlite reads an overflowing real as infinity and stores NaN as NULL
		switch v.s {
		case posInf:
			return "9e999", nil
		case negInf:
			return "-9e999", nil
		}
	}
	return "", &UnrepresentableError{Value: v, Style: s}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
