package db

import (
	"strings"

	"github.com/jackc/pgx/v5"
)

// QuoteANSI quotes an identifier with double quotes, doubling embedded ones.
func QuoteANSI(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// QuotePostgres quotes an identifier the way pgx does.
func QuotePostgres(ident string) string {
	return pgx.Identifier{ident}.Sanitize()
}

// QuoteMySQL quotes an identifier with backticks.
func QuoteMySQL(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

// QuoteMSSQL quotes an identifier with square brackets.
func QuoteMSSQL(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}
