package extractors

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"cherrypick/internal/db"
	"cherrypick/internal/introspect"
	"cherrypick/internal/value"
)

// myExtractor implements Extractor for MySQL (information_schema).
// The schema is the MySQL database name.
type myExtractor struct{}

var myQueries = catalogQueries{
	columns: `
        SELECT c.table_schema, c.table_name, c.column_name, c.data_type, c.ordinal_position
        FROM information_schema.columns c
        JOIN information_schema.tables t
          ON t.table_schema = c.table_schema
         AND t.table_name = c.table_name
        WHERE c.table_schema = ?
          AND t.table_type = 'BASE TABLE'
        ORDER BY c.table_name, c.ordinal_position`,
	primaryKeys: `
        SELECT k.table_schema, k.table_name, k.column_name
        FROM information_schema.key_column_usage k
        WHERE k.constraint_name = 'PRIMARY'
          AND k.table_schema = ?
        ORDER BY k.table_name, k.ordinal_position`,
	foreignKeys: `
        SELECT constraint_name,
               table_schema AS from_schema, table_name AS from_table, column_name AS from_column,
               referenced_table_schema AS to_schema, referenced_table_name AS to_table,
               referenced_column_name AS to_column
        FROM information_schema.key_column_usage
        WHERE referenced_table_name IS NOT NULL
          AND table_schema = ?
        ORDER BY table_name, constraint_name, ordinal_position`,
}

// This is the extractor for MySQL
func (myExtractor) Extract(ctx context.Context, dbConn *sql.DB, schema string) (introspect.Catalog, error) {
	return extractCatalog(ctx, dbConn, myQueries, schema)
}

func init() {
	db.Register("mysql", db.Dialect{
		Name:        "mysql",
		Driver:      "mysql",
		Placeholder: sq.Question,
		Quote:       db.QuoteMySQL,
		Literals:    value.StyleMySQL,
		Extractor:   myExtractor{},
	})
}
