package value

import (
	"database/sql"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"cherrypick/internal/introspect"
)

func TestNormalizeDataType(t *testing.T) {
	var tests = []struct {
		declared string
		want     DataType
	}{
		{"integer", TypeInteger},
		{"INTEGER", TypeInteger},
		{"int4", TypeInteger},
		{"int(11)", TypeInteger},
		{"smallint", TypeInteger},
		{"uuid", TypeUUID},
		{"uniqueidentifier", TypeUUID},
		{"character varying", TypeText},
		{"bigint", TypeText},
		{"", TypeText},
	}

	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDataType(tt.declared))
		})
	}
}

func TestParseParameter(t *testing.T) {
	id := uuid.MustParse("6f1c9c8e-3a8e-4c53-9d0e-7b6c1f2a9e11")

	var tests = []struct {
		name     string
		dataType string
		input    string
		want     CellValue
		errIsNil bool
	}{
		{"integer", "integer", "42", Int(42), true},
		{"negative integer", "int4", "-7", Int(-7), true},
		{"integer out of range", "integer", "2147483648", CellValue{}, false},
		{"integer not numeric", "integer", "abc", CellValue{}, false},
		{"uuid", "uuid", id.String(), UUID(id), true},
		{"uuid malformed", "uuid", "not-a-uuid", CellValue{}, false},
		{"text passthrough", "character varying", " O'Brien ", Text(" O'Brien "), true},
		{"unknown type is text", "jsonb", "{}", Text("{}"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParameter(introspect.Column{Name: "c", DataType: tt.dataType}, tt.input)
			if !tt.errIsNil {
				var ipe *InvalidParameterError
				require.True(t, errors.As(err, &ipe), "expected InvalidParameterError, got %v", err)
				assert.Equal(t, "c", ipe.Column)
				assert.Equal(t, tt.input, ipe.Value)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, wanted %v", got, tt.want)
		})
	}
}

func TestRenderLiteral(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0000-0000-0000000000ab")
	blob := Binary([]byte{0x00, 0xff, 0x27})

	var tests = []struct {
		name  string
		in    CellValue
		style Style
		want  string
	}{
		{"null", Null(), StyleANSI, "NULL"},
		{"integer", Int(-12), StyleANSI, "-12"},
		{"numeric", Numeric("3.25"), StyleANSI, "3.25"},
		{"true", Bool(true), StyleANSI, "TRUE"},
		{"false", Bool(false), StylePostgres, "FALSE"},
		{"mssql bit true", Bool(true), StyleMSSQL, "1"},
		{"mssql bit false", Bool(false), StyleMSSQL, "0"},
		{"oracle boolean", Bool(true), StyleOracle, "1"},
		{"uuid", UUID(id), StyleANSI, "'00000000-0000-0000-0000-0000000000ab'"},
		{"text", Text("plain"), StyleANSI, "'plain'"},
		{"text with quotes", Text("it's 'quoted'"), StyleANSI, "'it''s ''quoted'''"},
		{"empty text", Text(""), StyleANSI, "''"},
		{"blob sqlite", blob, StyleSQLite, "X'00ff27'"},
		{"blob mysql", blob, StyleMySQL, "X'00ff27'"},
		{"blob postgres", blob, StylePostgres, `'\x00ff27'`},
		{"blob mssql", blob, StyleMSSQL, "0x00FF27"},
		{"blob oracle", blob, StyleOracle, "HEXTORAW('00ff27')"},
		{"infinity postgres", Numeric("Infinity"), StylePostgres, "'Infinity'"},
		{"nan postgres", Numeric("NaN"), StylePostgres, "'NaN'"},
		{"infinity sqlite", Numeric("Infinity"), StyleSQLite, "9e999"},
		{"negative infinity sqlite", Numeric("-Infinity"), StyleSQLite, "-9e999"},
		{"infinity oracle", Numeric("-Infinity"), StyleOracle, "-BINARY_DOUBLE_INFINITY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderLiteral(tt.in, tt.style)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderLiteralUnrepresentable(t *testing.T) {
	var tests = []struct {
		name  string
		in    CellValue
		style Style
	}{
		{"infinity mysql", Numeric("Infinity"), StyleMySQL},
		{"infinity mssql", Numeric("-Infinity"), StyleMSSQL},
		{"infinity ansi", Numeric("Infinity"), StyleANSI},
		{"nan sqlite", Numeric("NaN"), StyleSQLite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderLiteral(tt.in, tt.style)
			var ue *UnrepresentableError
			require.True(t, errors.As(err, &ue), "expected UnrepresentableError, got %v", err)
			assert.Equal(t, tt.style, ue.Style)
		})
	}
}

// literal renders v in the ANSI style, failing the test on error.
func literal(t *testing.T, v CellValue) string {
	t.Helper()
	s, err := RenderLiteral(v, StyleANSI)
	require.NoError(t, err)
	return s
}

// unquoteLiteral parses a literal produced by RenderLiteral back into a cell
// of the given declared type.
func unquoteLiteral(t *testing.T, lit, dataType string) CellValue {
	t.Helper()
	if lit == "NULL" {
		return Null()
	}
	if strings.HasPrefix(lit, "'") {
		require.True(t, strings.HasSuffix(lit, "'"), "unterminated literal %s", lit)
		body := lit[1 : len(lit)-1]
		require.NotContains(t, strings.ReplaceAll(body, "''", ""), "'", "unescaped quote in %s", lit)
		s := strings.ReplaceAll(body, "''", "'")
		if NormalizeDataType(dataType) == TypeUUID {
			return UUID(uuid.MustParse(s))
		}
		return Text(s)
	}
	n, err := strconv.ParseInt(lit, 10, 64)
	require.NoError(t, err)
	return Int(n)
}

var roundTripCases = []struct {
	name     string
	dataType string
	input    string
}{
	{"integer", "integer", "123"},
	{"integer min", "integer", "-2147483648"},
	{"integer zero", "int", "0"},
	{"uuid", "uuid", "a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11"},
	{"text", "text", "hello"},
	{"text single quote", "text", "O'Reilly"},
	{"text only quotes", "varchar", "''"},
	{"text with newline", "text", "line1\nline2"},
	{"text empty", "text", ""},
}

func TestLiteralRoundTrip(t *testing.T) {
	for _, tt := range roundTripCases {
		t.Run(tt.name, func(t *testing.T) {
			col := introspect.Column{Name: "c", DataType: tt.dataType}
			direct, err := ParseParameter(col, tt.input)
			require.NoError(t, err)

			back := unquoteLiteral(t, literal(t, direct), tt.dataType)
			assert.True(t, direct.Equal(back), "got %v, wanted %v", back, direct)
		})
	}
}

func TestLiteralRoundTripThroughSQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, tt := range roundTripCases {
		t.Run(tt.name, func(t *testing.T) {
			col := introspect.Column{Name: "c", DataType: tt.dataType}
			direct, err := ParseParameter(col, tt.input)
			require.NoError(t, err)

			var got any
			require.NoError(t, db.QueryRow("SELECT "+literal(t, direct)).Scan(&got))

			back, err := Decode(got, tt.dataType)
			require.NoError(t, err)
			assert.True(t, direct.Equal(back), "got %v, wanted %v", back, direct)
		})
	}
}

func TestDecode(t *testing.T) {
	id := uuid.MustParse("01020304-0506-0708-090a-0b0c0d0e0f10")
	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	var tests = []struct {
		name     string
		src      any
		dbType   string
		want     CellValue
		errIsNil bool
	}{
		{"nil", nil, "INT4", Null(), true},
		{"int64", int64(9), "INT8", Int(9), true},
		{"integer bytes", []byte("77"), "INT", Int(77), true},
		{"numeric bytes", []byte("12.50"), "NUMERIC", Numeric("12.50"), true},
		{"bad numeric", []byte("twelve"), "DECIMAL", CellValue{}, false},
		{"float", 1.5, "FLOAT8", Numeric("1.5"), true},
		{"bool", true, "BOOL", Bool(true), true},
		{"postgres bool text", "t", "BOOL", Bool(true), true},
		{"uuid text", id.String(), "UUID", UUID(id), true},
		{"uuid bytes text", []byte(id.String()), "UUID", UUID(id), true},
		{"mssql uniqueidentifier", []byte{4, 3, 2, 1, 6, 5, 8, 7, 9, 10, 11, 12, 13, 14, 15, 16}, "UNIQUEIDENTIFIER", UUID(id), true},
		{"text bytes", []byte("abc"), "VARCHAR", Text("abc"), true},
		{"bytea", []byte{0xde, 0xad}, "BYTEA", Binary([]byte{0xde, 0xad}), true},
		{"blob", []byte("plain"), "BLOB", Binary([]byte("plain")), true},
		{"varbinary", []byte{0x01}, "VARBINARY", Binary([]byte{0x01}), true},
		{"raw bytes in text column", []byte{0x00, 0xff, 0x27}, "", Binary([]byte{0x00, 0xff, 0x27}), true},
		{"text bytes with newline", []byte("a\tb\n"), "TEXT", Text("a\tb\n"), true},
		{"positive infinity", math.Inf(1), "REAL", Numeric("Infinity"), true},
		{"negative infinity", math.Inf(-1), "FLOAT8", Numeric("-Infinity"), true},
		{"nan", math.NaN(), "FLOAT8", Numeric("NaN"), true},
		{"postgres infinity text", []byte("Infinity"), "NUMERIC", Numeric("Infinity"), true},
		{"postgres nan text", []byte("NaN"), "NUMERIC", Numeric("NaN"), true},
		{"decimal beyond float range", []byte("1e400"), "NUMERIC", Numeric("1e400"), true},
		{"timestamptz", ts, "TIMESTAMPTZ", Text("2024-03-01 10:30:00Z"), true},
		{"timestamp without zone", ts, "TIMESTAMP", Text("2024-03-01 10:30:00"), true},
		{"datetime2", ts, "DATETIME2", Text("2024-03-01 10:30:00"), true},
		{"date", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "DATE", Text("2024-01-01"), true},
		{"time", ts, "TIME", Text("10:30:00"), true},
		{"unsupported", struct{}{}, "TEXT", CellValue{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.src, tt.dbType)
			if !tt.errIsNil {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v (%s), wanted %v (%s)", got, got.Kind(), tt.want, tt.want.Kind())
		})
	}
}
